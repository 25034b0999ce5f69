package models

import "time"

// Stock represents a tracked company and its exchange listings.
type Stock struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ISIN      string    `json:"isin,omitempty"`
	BSESymbol string    `json:"bse_symbol,omitempty"`
	NSESymbol string    `json:"nse_symbol"`
	Industry  string    `json:"industry,omitempty"`
	Sector    string    `json:"sector,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Symbol returns the identifier used against external providers.
// NSE listing is preferred; BSE is the fallback.
func (s *Stock) Symbol() string {
	if s.NSESymbol != "" {
		return s.NSESymbol
	}
	return s.BSESymbol
}
