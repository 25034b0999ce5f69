package commands

import (
	"github.com/spf13/cobra"

	"github.com/gurudayal37/indian-stock-ai-chatbot/internal/database"
	"github.com/gurudayal37/indian-stock-ai-chatbot/pkg/models"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Seed the stock universe",
	Long:  `Inserts or updates the tracked NSE stock universe. Existing rows keep their IDs.`,
	RunE:  runSymbols,
}

// seedStocks is the default tracked universe, a NIFTY 50 subset.
var seedStocks = []models.Stock{
	{Name: "Reliance Industries", NSESymbol: "RELIANCE", Sector: "Energy", Industry: "Refineries"},
	{Name: "Tata Consultancy Services", NSESymbol: "TCS", Sector: "IT", Industry: "Software Services"},
	{Name: "HDFC Bank", NSESymbol: "HDFCBANK", Sector: "Financials", Industry: "Private Banks"},
	{Name: "Infosys", NSESymbol: "INFY", Sector: "IT", Industry: "Software Services"},
	{Name: "ICICI Bank", NSESymbol: "ICICIBANK", Sector: "Financials", Industry: "Private Banks"},
	{Name: "Hindustan Unilever", NSESymbol: "HINDUNILVR", Sector: "FMCG", Industry: "Personal Care"},
	{Name: "ITC", NSESymbol: "ITC", Sector: "FMCG", Industry: "Diversified FMCG"},
	{Name: "State Bank of India", NSESymbol: "SBIN", Sector: "Financials", Industry: "Public Banks"},
	{Name: "Bharti Airtel", NSESymbol: "BHARTIARTL", Sector: "Telecom", Industry: "Telecom Services"},
	{Name: "Kotak Mahindra Bank", NSESymbol: "KOTAKBANK", Sector: "Financials", Industry: "Private Banks"},
	{Name: "Larsen & Toubro", NSESymbol: "LT", Sector: "Industrials", Industry: "Construction"},
	{Name: "Axis Bank", NSESymbol: "AXISBANK", Sector: "Financials", Industry: "Private Banks"},
	{Name: "Asian Paints", NSESymbol: "ASIANPAINT", Sector: "Materials", Industry: "Paints"},
	{Name: "Maruti Suzuki India", NSESymbol: "MARUTI", Sector: "Automobiles", Industry: "Passenger Cars"},
	{Name: "HCL Technologies", NSESymbol: "HCLTECH", Sector: "IT", Industry: "Software Services"},
	{Name: "Sun Pharmaceutical", NSESymbol: "SUNPHARMA", Sector: "Healthcare", Industry: "Pharmaceuticals"},
	{Name: "Tata Motors", NSESymbol: "TATAMOTORS", Sector: "Automobiles", Industry: "Commercial Vehicles"},
	{Name: "Titan Company", NSESymbol: "TITAN", Sector: "Consumer", Industry: "Jewellery"},
	{Name: "UltraTech Cement", NSESymbol: "ULTRACEMCO", Sector: "Materials", Industry: "Cement"},
	{Name: "Wipro", NSESymbol: "WIPRO", Sector: "IT", Industry: "Software Services"},
}

func runSymbols(cmd *cobra.Command, args []string) error {
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

	for i := range seedStocks {
		stock := seedStocks[i]
		stock.IsActive = true
		if err := db.UpsertStock(ctx, &stock); err != nil {
			return err
		}
	}

	log.WithField("stocks", len(seedStocks)).Info("Stock universe seeded")
	return nil
}
