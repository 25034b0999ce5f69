package commands

import (
	"github.com/spf13/cobra"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS stocks (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		isin VARCHAR(20),
		bse_symbol VARCHAR(32),
		nse_symbol VARCHAR(32),
		industry VARCHAR(128),
		sector VARCHAR(128),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_nse_symbol (nse_symbol),
		KEY idx_is_active (is_active)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS daily_prices (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		date DATE NOT NULL,
		open_price DOUBLE NOT NULL,
		high_price DOUBLE NOT NULL,
		low_price DOUBLE NOT NULL,
		close_price DOUBLE NOT NULL,
		volume BIGINT NOT NULL DEFAULT 0,
		turnover DOUBLE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_date (stock_id, date),
		CONSTRAINT fk_daily_prices_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS news (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		title VARCHAR(512) NOT NULL,
		content TEXT,
		source VARCHAR(128),
		url VARCHAR(1024),
		published_date DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_title_date (stock_id, title(191), published_date),
		KEY idx_stock_published (stock_id, published_date),
		CONSTRAINT fk_news_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS financial_statements (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		statement_type VARCHAR(64) NOT NULL,
		period VARCHAR(16) NOT NULL,
		year INT NOT NULL,
		quarter INT NOT NULL DEFAULT 0,
		data JSON NOT NULL,
		filing_date DATETIME,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_statement (stock_id, statement_type, year, quarter),
		CONSTRAINT fk_financials_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS earnings_events (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		title VARCHAR(255) NOT NULL,
		event_date DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_event (stock_id, title, event_date),
		CONSTRAINT fk_earnings_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS quarterly_results (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		quarter VARCHAR(16) NOT NULL,
		year INT NOT NULL,
		quarter_number INT NOT NULL DEFAULT 0,
		sales DOUBLE NOT NULL DEFAULT 0,
		expenses DOUBLE NOT NULL DEFAULT 0,
		operating_profit DOUBLE NOT NULL DEFAULT 0,
		opm_percent DOUBLE NOT NULL DEFAULT 0,
		other_income DOUBLE NOT NULL DEFAULT 0,
		interest DOUBLE NOT NULL DEFAULT 0,
		depreciation DOUBLE NOT NULL DEFAULT 0,
		profit_before_tax DOUBLE NOT NULL DEFAULT 0,
		tax_percent DOUBLE NOT NULL DEFAULT 0,
		net_profit DOUBLE NOT NULL DEFAULT 0,
		eps DOUBLE NOT NULL DEFAULT 0,
		is_consolidated BOOLEAN NOT NULL DEFAULT TRUE,
		source VARCHAR(32) NOT NULL,
		filing_date DATETIME,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_quarter_source (stock_id, quarter, year, source),
		CONSTRAINT fk_quarterly_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS sync_tracker (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		stock_id BIGINT NOT NULL,
		data_type VARCHAR(32) NOT NULL,
		last_sync_time DATETIME NOT NULL,
		last_data_date DATETIME,
		records_count INT NOT NULL DEFAULT 0,
		sync_status VARCHAR(16) NOT NULL DEFAULT 'success',
		error_message TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_stock_data_type (stock_id, data_type),
		CONSTRAINT fk_sync_tracker_stock FOREIGN KEY (stock_id) REFERENCES stocks(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := database.NewMySQLClient(&cfg.MySQL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	for i, stmt := range migrations {
		if err := db.Exec(ctx, stmt); err != nil {
			return err
		}
		log.WithField("migration", i+1).Debug("Applied migration")
	}

	log.WithField("migrations", len(migrations)).Info("Schema up to date")
	return nil
}
