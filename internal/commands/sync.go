package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/cache"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/fetcher"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/messaging"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/services"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

var (
	syncSymbols      []string
	syncTypes        []string
	syncValidateOnly bool
	syncTolerance    float64
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run an incremental sync for all or selected stocks",
	Long: `Runs the sync pipeline: for each due (stock, data type) pair, fetch new
records, validate stored history against the provider, refresh on drift and
insert whatever is missing. Exits non-zero if any pair failed.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringSliceVarP(&syncSymbols, "symbol", "s", nil, "sync only these symbols (default: all active stocks)")
	syncCmd.Flags().StringSliceVarP(&syncTypes, "types", "t", nil, "data types to sync (default: all)")
	syncCmd.Flags().BoolVar(&syncValidateOnly, "validate-only", false, "validate stored prices without writing")
	syncCmd.Flags().Float64Var(&syncTolerance, "tolerance", 0, "override the validation tolerance")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if syncTolerance > 0 {
		cfg.Sync.Tolerance = syncTolerance
	}

	dataTypes, err := parseDataTypes(syncTypes)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.NewMySQLClient(&cfg.MySQL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	fetchCache := cache.NewFetchCache(cfg.Sync.CacheTTL, cfg.Sync.CacheMaxSize, nil)
	provider := fetcher.NewCachedProvider(fetcher.NewSource(&cfg.Provider, log), fetchCache)

	orchestrator := services.NewOrchestrator(db, provider, &cfg.Sync, log)

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cfg.Redis, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, continuing without quote cache")
		} else {
			defer redisClient.Close()
			orchestrator.WithQuoteCache(redisClient)
		}
	}
	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(&cfg.NATS, log)
		if err != nil {
			log.WithError(err).Warn("NATS unavailable, continuing without events")
		} else {
			defer natsClient.Close()
			orchestrator.WithMessaging(natsClient)
		}
	}

	var summary *services.RunSummary
	if len(syncSymbols) > 0 {
		summary, err = orchestrator.SyncSymbols(ctx, syncSymbols, dataTypes, syncValidateOnly)
	} else {
		summary, err = orchestrator.SyncAll(ctx, dataTypes, syncValidateOnly)
	}
	if err != nil {
		return err
	}

	if summary.HasFailures() {
		return fmt.Errorf("sync run %s finished with %d failures", summary.RunID, len(summary.Failures))
	}
	return nil
}

func parseDataTypes(names []string) ([]models.DataType, error) {
	if len(names) == 0 {
		return models.AllDataTypes, nil
	}

	valid := make(map[models.DataType]struct{}, len(models.AllDataTypes))
	for _, dt := range models.AllDataTypes {
		valid[dt] = struct{}{}
	}

	types := make([]models.DataType, 0, len(names))
	for _, name := range names {
		dt := models.DataType(name)
		if _, ok := valid[dt]; !ok {
			return nil, fmt.Errorf("unknown data type %q (valid: %v)", name, models.AllDataTypes)
		}
		types = append(types, dt)
	}
	return types, nil
}
