package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

// keyBatchSize bounds how many natural keys go into a single existence
// lookup or bulk insert round-trip.
const keyBatchSize = 1000

// MySQLClient handles MySQL database operations
type MySQLClient struct {
	db     *sql.DB
	logger *logrus.Entry
	cfg    *config.MySQLConfig
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(cfg *config.MySQLConfig, logger *logrus.Logger) (*MySQLClient, error) {
	logger.WithField("dsn", fmt.Sprintf("%s:***@tcp(%s:%d)/%s", cfg.User, cfg.Host, cfg.Port, cfg.Database)).Debug("Connecting to MySQL")

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	return &MySQLClient{
		db:     db,
		logger: logger.WithField("component", "mysql"),
		cfg:    cfg,
	}, nil
}

// Close closes the database connection
func (mc *MySQLClient) Close() error {
	return mc.db.Close()
}

// Health checks database health
func (mc *MySQLClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return mc.db.PingContext(ctx)
}

// Exec executes a raw statement, used by schema migration
func (mc *MySQLClient) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := mc.db.ExecContext(ctx, query, args...)
	return classify("exec", err)
}

// Stock operations

// GetActiveStocks retrieves all active stocks ordered by symbol
func (mc *MySQLClient) GetActiveStocks(ctx context.Context) ([]*models.Stock, error) {
	query := `
		SELECT id, name, isin, bse_symbol, nse_symbol, industry, sector, is_active, created_at, updated_at
		FROM stocks
		WHERE is_active = 1
		ORDER BY nse_symbol
	`

	rows, err := mc.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("query stocks", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		stock, err := scanStock(rows)
		if err != nil {
			return nil, classify("scan stock", err)
		}
		stocks = append(stocks, stock)
	}

	return stocks, classify("iterate stocks", rows.Err())
}

// GetStockBySymbol retrieves a stock by NSE or BSE symbol
func (mc *MySQLClient) GetStockBySymbol(ctx context.Context, symbol string) (*models.Stock, error) {
	query := `
		SELECT id, name, isin, bse_symbol, nse_symbol, industry, sector, is_active, created_at, updated_at
		FROM stocks
		WHERE nse_symbol = ? OR bse_symbol = ?
	`

	row := mc.db.QueryRowContext(ctx, query, symbol, symbol)
	stock, err := scanStock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get stock", err)
	}

	return stock, nil
}

// UpsertStock inserts a stock or refreshes its descriptive fields
func (mc *MySQLClient) UpsertStock(ctx context.Context, stock *models.Stock) error {
	query := `
		INSERT INTO stocks (name, isin, bse_symbol, nse_symbol, industry, sector, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			industry = VALUES(industry),
			sector = VALUES(sector),
			is_active = VALUES(is_active),
			updated_at = CURRENT_TIMESTAMP
	`

	result, err := mc.db.ExecContext(ctx, query,
		stock.Name,
		stock.ISIN,
		stock.BSESymbol,
		stock.NSESymbol,
		stock.Industry,
		stock.Sector,
		stock.IsActive,
	)
	if err != nil {
		return classify("upsert stock", err)
	}

	if stock.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			stock.ID = id
		}
	}

	return nil
}

// Sync tracker operations

// GetCheckpoint retrieves the sync checkpoint for a (stock, data type) pair.
// A nil checkpoint with nil error means the pair was never synced.
func (mc *MySQLClient) GetCheckpoint(ctx context.Context, stockID int64, dataType models.DataType) (*models.SyncCheckpoint, error) {
	query := `
		SELECT id, stock_id, data_type, last_sync_time, last_data_date, records_count, sync_status, error_message, created_at, updated_at
		FROM sync_tracker
		WHERE stock_id = ? AND data_type = ?
	`

	cp := &models.SyncCheckpoint{}
	var lastDataDate sql.NullTime
	var errorMessage sql.NullString

	err := mc.db.QueryRowContext(ctx, query, stockID, string(dataType)).Scan(
		&cp.ID,
		&cp.StockID,
		&cp.DataType,
		&cp.LastSyncTime,
		&lastDataDate,
		&cp.RecordsCount,
		&cp.Status,
		&errorMessage,
		&cp.CreatedAt,
		&cp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get checkpoint", err)
	}

	if lastDataDate.Valid {
		cp.LastDataDate = &lastDataDate.Time
	}
	cp.ErrorMessage = errorMessage.String

	return cp, nil
}

// UpsertCheckpoint writes the sync checkpoint for a (stock, data type) pair
func (mc *MySQLClient) UpsertCheckpoint(ctx context.Context, cp *models.SyncCheckpoint) error {
	query := `
		INSERT INTO sync_tracker (stock_id, data_type, last_sync_time, last_data_date, records_count, sync_status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			last_sync_time = VALUES(last_sync_time),
			last_data_date = VALUES(last_data_date),
			records_count = VALUES(records_count),
			sync_status = VALUES(sync_status),
			error_message = VALUES(error_message),
			updated_at = CURRENT_TIMESTAMP
	`

	var lastDataDate interface{}
	if cp.LastDataDate != nil {
		lastDataDate = *cp.LastDataDate
	}
	var errorMessage interface{}
	if cp.ErrorMessage != "" {
		errorMessage = cp.ErrorMessage
	}

	_, err := mc.db.ExecContext(ctx, query,
		cp.StockID,
		string(cp.DataType),
		cp.LastSyncTime,
		lastDataDate,
		cp.RecordsCount,
		cp.Status,
		errorMessage,
	)
	return classify("upsert checkpoint", err)
}

// GetCheckpointsForStock retrieves every checkpoint for one stock
func (mc *MySQLClient) GetCheckpointsForStock(ctx context.Context, stockID int64) ([]*models.SyncCheckpoint, error) {
	query := `
		SELECT id, stock_id, data_type, last_sync_time, last_data_date, records_count, sync_status, error_message, created_at, updated_at
		FROM sync_tracker
		WHERE stock_id = ?
		ORDER BY data_type
	`

	rows, err := mc.db.QueryContext(ctx, query, stockID)
	if err != nil {
		return nil, classify("query checkpoints", err)
	}
	defer rows.Close()

	var checkpoints []*models.SyncCheckpoint
	for rows.Next() {
		cp := &models.SyncCheckpoint{}
		var lastDataDate sql.NullTime
		var errorMessage sql.NullString

		err := rows.Scan(
			&cp.ID,
			&cp.StockID,
			&cp.DataType,
			&cp.LastSyncTime,
			&lastDataDate,
			&cp.RecordsCount,
			&cp.Status,
			&errorMessage,
			&cp.CreatedAt,
			&cp.UpdatedAt,
		)
		if err != nil {
			return nil, classify("scan checkpoint", err)
		}

		if lastDataDate.Valid {
			cp.LastDataDate = &lastDataDate.Time
		}
		cp.ErrorMessage = errorMessage.String
		checkpoints = append(checkpoints, cp)
	}

	return checkpoints, classify("iterate checkpoints", rows.Err())
}

// Record operations

// GetLatestDailyPrice returns the most recent daily bar for a stock, or nil
// when no bars exist yet.
func (mc *MySQLClient) GetLatestDailyPrice(ctx context.Context, stockID int64) (*models.DailyPrice, error) {
	query := `
		SELECT id, stock_id, date, open_price, high_price, low_price, close_price, volume, turnover, created_at
		FROM daily_prices
		WHERE stock_id = ?
		ORDER BY date DESC
		LIMIT 1
	`

	p := &models.DailyPrice{}
	var volume sql.NullInt64
	var turnover sql.NullFloat64

	err := mc.db.QueryRowContext(ctx, query, stockID).Scan(
		&p.ID,
		&p.StockID,
		&p.Date,
		&p.Open,
		&p.High,
		&p.Low,
		&p.Close,
		&volume,
		&turnover,
		&p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get latest daily price", err)
	}

	p.Volume = volume.Int64
	p.Turnover = turnover.Float64

	return p, nil
}

// CountRecords returns the number of stored rows for a (stock, data type) pair
func (mc *MySQLClient) CountRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	table, err := tableFor(dataType)
	if err != nil {
		return 0, err
	}

	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE stock_id = ?", table)
	if err := mc.db.QueryRowContext(ctx, query, stockID).Scan(&count); err != nil {
		return 0, classify("count records", err)
	}

	return count, nil
}

// ExistingKeys returns the subset of natural keys already present for a
// (stock, data type) pair. Lookups run in bounded IN-list batches.
func (mc *MySQLClient) ExistingKeys(ctx context.Context, stockID int64, dataType models.DataType, keys []string) (map[string]struct{}, error) {
	keyExpr, table, err := keyExprFor(dataType)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(keys))

	for start := 0; start < len(keys); start += keyBatchSize {
		end := start + keyBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		args := make([]interface{}, 0, len(batch)+1)
		args = append(args, stockID)
		for _, k := range batch {
			args = append(args, k)
		}

		query := fmt.Sprintf(
			"SELECT %s FROM %s WHERE stock_id = ? AND %s IN (%s)",
			keyExpr, table, keyExpr, placeholders(len(batch)),
		)

		rows, err := mc.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, classify("query existing keys", err)
		}

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				rows.Close()
				return nil, classify("scan existing key", err)
			}
			existing[key] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, classify("iterate existing keys", err)
		}
		rows.Close()
	}

	return existing, nil
}

// InsertRecords bulk-inserts rows for a (stock, data type) pair using one
// multi-row INSERT per bounded batch. Callers are expected to have removed
// duplicates already; this path never updates existing rows.
func (mc *MySQLClient) InsertRecords(ctx context.Context, stockID int64, dataType models.DataType, records []models.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	// One transaction per upsert: either every chunk lands or none do.
	inserted := 0
	err := mc.ExecTx(ctx, func(tx *sql.Tx) error {
		for start := 0; start < len(records); start += keyBatchSize {
			end := start + keyBatchSize
			if end > len(records) {
				end = len(records)
			}
			batch := records[start:end]

			query, args, err := buildInsert(stockID, dataType, batch)
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return classify("bulk insert records", err)
			}
			inserted += len(batch)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	mc.logger.WithFields(logrus.Fields{
		"stock_id":  stockID,
		"data_type": dataType,
		"rows":      inserted,
	}).Debug("Bulk insert completed")

	return inserted, nil
}

// DeleteAllRecords removes every stored row for a (stock, data type) pair.
// Only the refresh path is allowed to call this.
func (mc *MySQLClient) DeleteAllRecords(ctx context.Context, stockID int64, dataType models.DataType) (int64, error) {
	table, err := tableFor(dataType)
	if err != nil {
		return 0, err
	}

	result, err := mc.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE stock_id = ?", table), stockID)
	if err != nil {
		return 0, classify("delete records", err)
	}

	deleted, _ := result.RowsAffected()
	mc.logger.WithFields(logrus.Fields{
		"stock_id":  stockID,
		"data_type": dataType,
		"rows":      deleted,
	}).Info("Deleted all records for stock")

	return deleted, nil
}

// Transaction support

// ExecTx executes a function within a transaction
func (mc *MySQLClient) ExecTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := mc.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return classify("commit tx", tx.Commit())
}

// Helpers

func tableFor(dataType models.DataType) (string, error) {
	switch dataType {
	case models.DataTypeOHLCV:
		return "daily_prices", nil
	case models.DataTypeNews:
		return "news", nil
	case models.DataTypeFinancials:
		return "financial_statements", nil
	case models.DataTypeEarnings:
		return "earnings_events", nil
	case models.DataTypeQuarterlyResults:
		return "quarterly_results", nil
	default:
		return "", fmt.Errorf("unknown data type: %s", dataType)
	}
}

// keyExprFor returns the SQL expression producing the natural key for a
// data type. The expression must format identically to the corresponding
// models.Record NaturalKey method.
func keyExprFor(dataType models.DataType) (expr, table string, err error) {
	table, err = tableFor(dataType)
	if err != nil {
		return "", "", err
	}

	switch dataType {
	case models.DataTypeOHLCV:
		expr = "DATE_FORMAT(date, '%Y-%m-%d')"
	case models.DataTypeNews:
		expr = "CONCAT(title, '|', DATE_FORMAT(published_date, '%Y-%m-%dT%H:%i:%sZ'))"
	case models.DataTypeFinancials:
		expr = "CONCAT(statement_type, '|', year, '|', quarter)"
	case models.DataTypeEarnings:
		expr = "CONCAT(title, '|', DATE_FORMAT(event_date, '%Y-%m-%d'))"
	case models.DataTypeQuarterlyResults:
		expr = "CONCAT(quarter, '|', year, '|', source)"
	}
	return expr, table, nil
}

func buildInsert(stockID int64, dataType models.DataType, records []models.Record) (string, []interface{}, error) {
	switch dataType {
	case models.DataTypeOHLCV:
		return buildDailyPriceInsert(stockID, records)
	case models.DataTypeNews:
		return buildNewsInsert(stockID, records)
	case models.DataTypeFinancials:
		return buildFinancialsInsert(stockID, records)
	case models.DataTypeEarnings:
		return buildEarningsInsert(stockID, records)
	case models.DataTypeQuarterlyResults:
		return buildQuarterlyInsert(stockID, records)
	default:
		return "", nil, fmt.Errorf("unknown data type: %s", dataType)
	}
}

func buildDailyPriceInsert(stockID int64, records []models.Record) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO daily_prices (stock_id, date, open_price, high_price, low_price, close_price, volume, turnover) VALUES ")

	args := make([]interface{}, 0, len(records)*8)
	for i, r := range records {
		p, ok := r.(*models.DailyPrice)
		if !ok {
			return "", nil, fmt.Errorf("expected *models.DailyPrice, got %T", r)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, stockID, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, p.Turnover)
	}

	return sb.String(), args, nil
}

func buildNewsInsert(stockID int64, records []models.Record) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO news (stock_id, title, content, source, url, published_date) VALUES ")

	args := make([]interface{}, 0, len(records)*6)
	for i, r := range records {
		n, ok := r.(*models.NewsItem)
		if !ok {
			return "", nil, fmt.Errorf("expected *models.NewsItem, got %T", r)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, stockID, n.Title, n.Content, n.Source, n.URL, n.PublishedDate.UTC())
	}

	return sb.String(), args, nil
}

func buildFinancialsInsert(stockID int64, records []models.Record) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO financial_statements (stock_id, statement_type, period, year, quarter, data, filing_date) VALUES ")

	args := make([]interface{}, 0, len(records)*7)
	for i, r := range records {
		f, ok := r.(*models.FinancialStatement)
		if !ok {
			return "", nil, fmt.Errorf("expected *models.FinancialStatement, got %T", r)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		var filingDate interface{}
		if f.FilingDate != nil {
			filingDate = *f.FilingDate
		}
		args = append(args, stockID, f.StatementType, f.Period, f.Year, f.Quarter, f.Data, filingDate)
	}

	return sb.String(), args, nil
}

func buildEarningsInsert(stockID int64, records []models.Record) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO earnings_events (stock_id, title, event_date) VALUES ")

	args := make([]interface{}, 0, len(records)*3)
	for i, r := range records {
		e, ok := r.(*models.EarningsEvent)
		if !ok {
			return "", nil, fmt.Errorf("expected *models.EarningsEvent, got %T", r)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, stockID, e.Title, e.EventDate.UTC())
	}

	return sb.String(), args, nil
}

func buildQuarterlyInsert(stockID int64, records []models.Record) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO quarterly_results (stock_id, quarter, year, quarter_number, sales, expenses, operating_profit, opm_percent, other_income, interest, depreciation, profit_before_tax, tax_percent, net_profit, eps, is_consolidated, source, filing_date) VALUES `)

	args := make([]interface{}, 0, len(records)*18)
	for i, r := range records {
		q, ok := r.(*models.QuarterlyResult)
		if !ok {
			return "", nil, fmt.Errorf("expected *models.QuarterlyResult, got %T", r)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		var filingDate interface{}
		if q.FilingDate != nil {
			filingDate = *q.FilingDate
		}
		args = append(args,
			stockID, q.Quarter, q.Year, q.QuarterNumber,
			q.Sales, q.Expenses, q.OperatingProfit, q.OPMPercent,
			q.OtherIncome, q.Interest, q.Depreciation, q.ProfitBeforeTax,
			q.TaxPercent, q.NetProfit, q.EPS,
			q.IsConsolidated, q.Source, filingDate,
		)
	}

	return sb.String(), args, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func scanStock(row interface{ Scan(...interface{}) error }) (*models.Stock, error) {
	stock := &models.Stock{}
	var isin, bse, industry, sector sql.NullString

	err := row.Scan(
		&stock.ID,
		&stock.Name,
		&isin,
		&bse,
		&stock.NSESymbol,
		&industry,
		&sector,
		&stock.IsActive,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	stock.ISIN = isin.String
	stock.BSESymbol = bse.String
	stock.Industry = industry.String
	stock.Sector = sector.String

	return stock, nil
}
