package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/config"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "stock-sync",
	Short: "Incremental sync engine for Indian equity market data",
	Long: `stock-sync keeps a local MySQL database of Indian equity data fresh:
daily OHLCV bars, news, financial statements, earnings dates and quarterly
results. Each (stock, data type) pair tracks its own checkpoint, so runs
only fetch what is stale and only insert what is new.`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(symbolsCmd)
}

// bootstrap loads configuration and builds the shared logger.
func bootstrap() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return cfg, log, nil
}
