package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/cache"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/messaging"
	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/services"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

var (
	statusSymbol string
	statusWatch  bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-stock sync checkpoints and the last run summary",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusSymbol, "symbol", "s", "", "show checkpoints for one symbol only")
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "stream live sync progress events (requires NATS)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if statusWatch {
		if !cfg.NATS.Enabled {
			return fmt.Errorf("--watch requires NATS to be enabled")
		}
		nc, err := messaging.NewNATSClient(&cfg.NATS, log)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub, err := nc.SubscribeSyncProgress(func(event *messaging.SyncProgressEvent) {
			fmt.Printf("%s  %-12s %-18s written=%-5d refreshed=%v\n",
				event.Timestamp.Format("15:04:05"), event.Symbol, event.DataType,
				event.Written, event.Refreshed)
		})
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		<-watchCtx.Done()
		return nil
	}

	db, err := database.NewMySQLClient(&cfg.MySQL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis, log)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, showing checkpoints only")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	if redisClient != nil {
		var summary services.RunSummary
		found, err := redisClient.GetLastRunSummary(ctx, &summary)
		if err != nil {
			log.WithError(err).Warn("Failed to read cached run summary")
		} else if found {
			writeRunSummary(os.Stdout, &summary)
		}
	}

	var stocks []*models.Stock
	if statusSymbol != "" {
		stock, err := db.GetStockBySymbol(ctx, statusSymbol)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("symbol %q not found", statusSymbol)
		}
		stocks = []*models.Stock{stock}

		if redisClient != nil {
			bar, err := redisClient.GetLatestClose(ctx, stock.Symbol())
			if err == nil && bar != nil {
				fmt.Printf("Latest close for %s: %.2f on %s\n\n",
					stock.Symbol(), bar.Close, bar.Date.Format("2006-01-02"))
			}
		}
	} else {
		stocks, err = db.GetActiveStocks(ctx)
		if err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tDATA TYPE\tSTATUS\tLAST SYNC\tLAST DATA\tRECORDS\tERROR")

	for _, stock := range stocks {
		checkpoints, err := db.GetCheckpointsForStock(ctx, stock.ID)
		if err != nil {
			return err
		}
		if len(checkpoints) == 0 {
			fmt.Fprintf(w, "%s\t-\tnever synced\t-\t-\t-\t\n", stock.Symbol())
			continue
		}
		for _, cp := range checkpoints {
			lastData := "-"
			if cp.LastDataDate != nil {
				lastData = cp.LastDataDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				stock.Symbol(), cp.DataType, cp.Status,
				cp.LastSyncTime.Format("2006-01-02 15:04"),
				lastData, cp.RecordsCount, cp.ErrorMessage)
		}
	}

	return w.Flush()
}

// writeRunSummary prints the cached summary of the most recent sync run.
func writeRunSummary(w io.Writer, s *services.RunSummary) {
	fmt.Fprintf(w, "Last run %s\n", s.RunID)
	fmt.Fprintf(w, "  started %s, finished %s, %d stocks, %d failures\n",
		s.StartedAt.Format("2006-01-02 15:04:05"),
		s.FinishedAt.Format("2006-01-02 15:04:05"),
		s.Stocks, len(s.Failures))

	for _, dt := range models.AllDataTypes {
		st, ok := s.ByType[dt]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-18s due=%d skipped=%d succeeded=%d refreshed=%d failed=%d rows=%d rejected=%d\n",
			dt, st.Due, st.Skipped, st.Succeeded, st.Refreshed, st.Failed,
			st.RowsWritten, st.RowsRejected)
	}

	for _, f := range s.Failures {
		fmt.Fprintf(w, "  FAILED %s %s: %s\n", f.Symbol, f.DataType, f.Error)
	}
	fmt.Fprintln(w)
}
