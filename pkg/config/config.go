package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// Config represents the application configuration
type Config struct {
	MySQL    MySQLConfig    `env:", prefix=MYSQL_"`
	Redis    RedisConfig    `env:", prefix=REDIS_"`
	NATS     NATSConfig     `env:", prefix=NATS_"`
	Provider ProviderConfig `env:", prefix=PROVIDER_"`
	Sync     SyncConfig     `env:", prefix=SYNC_"`
	Logging  LoggingConfig  `env:", prefix=LOG_"`
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	Host            string        `env:"HOST, default=localhost"`
	Port            int           `env:"PORT, default=3306"`
	Database        string        `env:"DATABASE, default=stocks"`
	User            string        `env:"USER, default=stocks"`
	Password        string        `env:"PASSWORD, default=stocks123"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS, default=25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME, default=5m"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled      bool          `env:"ENABLED, default=false"`
	Host         string        `env:"HOST, default=localhost"`
	Port         int           `env:"PORT, default=6379"`
	Password     string        `env:"PASSWORD"`
	DB           int           `env:"DB, default=0"`
	PoolSize     int           `env:"POOL_SIZE, default=10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS, default=5"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT, default=5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=3s"`
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled       bool          `env:"ENABLED, default=false"`
	URL           string        `env:"URL, default=nats://localhost:4222"`
	MaxReconnect  int           `env:"MAX_RECONNECT, default=10"`
	ReconnectWait time.Duration `env:"RECONNECT_WAIT, default=2s"`
	DrainTimeout  time.Duration `env:"DRAIN_TIMEOUT, default=30s"`
}

// ProviderConfig holds external data provider configuration
type ProviderConfig struct {
	YahooBaseURL    string        `env:"YAHOO_BASE_URL, default=https://query1.finance.yahoo.com"`
	ScreenerBaseURL string        `env:"SCREENER_BASE_URL, default=https://www.screener.in"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT, default=30s"`
	UserAgent       string        `env:"USER_AGENT, default=Mozilla/5.0 (compatible; stock-sync/1.0)"`
}

// SyncConfig holds the tuning knobs for the incremental sync engine
type SyncConfig struct {
	// Validation
	Tolerance             float64 `env:"TOLERANCE, default=0.01"`
	VolumeToleranceFactor float64 `env:"VOLUME_TOLERANCE_FACTOR, default=10"`

	// Full backfill window
	RetentionDays int `env:"RETENTION_DAYS, default=1825"`

	// Batching and pacing
	BatchSize    int           `env:"BATCH_SIZE, default=20"`
	RequestDelay time.Duration `env:"REQUEST_DELAY, default=200ms"`

	// Storage retry
	RetryAttempts  int           `env:"RETRY_ATTEMPTS, default=3"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY, default=2s"`

	// Fetch cache
	CacheTTL     time.Duration `env:"CACHE_TTL, default=5m"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE, default=1000"`

	// Per-type re-check intervals
	OHLCVInterval      time.Duration `env:"OHLCV_INTERVAL, default=24h"`
	NewsInterval       time.Duration `env:"NEWS_INTERVAL, default=1h"`
	FinancialsInterval time.Duration `env:"FINANCIALS_INTERVAL, default=168h"`
	EarningsInterval   time.Duration `env:"EARNINGS_INTERVAL, default=720h"`
	QuarterlyInterval  time.Duration `env:"QUARTERLY_INTERVAL, default=720h"`
}

// Interval returns the configured re-check interval for a data type.
func (s *SyncConfig) Interval(dt models.DataType) time.Duration {
	switch dt {
	case models.DataTypeOHLCV:
		return s.OHLCVInterval
	case models.DataTypeNews:
		return s.NewsInterval
	case models.DataTypeFinancials:
		return s.FinancialsInterval
	case models.DataTypeEarnings:
		return s.EarningsInterval
	case models.DataTypeQuarterlyResults:
		return s.QuarterlyInterval
	default:
		return 24 * time.Hour
	}
}

// RetentionWindow returns the full backfill window as a duration.
func (s *SyncConfig) RetentionWindow() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=text"`
	Output string `env:"OUTPUT, default=stdout"`
}

// Load loads configuration from environment variables using go-envconfig
func Load() (*Config, error) {
	// .env values fill gaps; real environment variables win
	_ = LoadDotEnv()

	ctx := context.Background()
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MySQL.Host == "" {
		return fmt.Errorf("MySQL host is required")
	}
	if c.Sync.Tolerance <= 0 || c.Sync.Tolerance >= 1 {
		return fmt.Errorf("invalid validation tolerance: %f", c.Sync.Tolerance)
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size: %d", c.Sync.BatchSize)
	}
	if c.Sync.RetryAttempts <= 0 {
		return fmt.Errorf("invalid retry attempts: %d", c.Sync.RetryAttempts)
	}
	if c.Sync.RetentionDays <= 0 {
		return fmt.Errorf("invalid retention days: %d", c.Sync.RetentionDays)
	}
	return nil
}

// DSN returns the MySQL connection string
func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		m.User,
		m.Password,
		m.Host,
		m.Port,
		m.Database,
	)
}

// Addr returns the Redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
