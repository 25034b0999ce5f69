package models

import (
	"fmt"
	"time"
)

// NewsItem is a provider news article linked to a stock.
type NewsItem struct {
	ID            int64     `json:"id"`
	StockID       int64     `json:"stock_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	Source        string    `json:"source,omitempty"`
	URL           string    `json:"url,omitempty"`
	PublishedDate time.Time `json:"published_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// NaturalKey identifies an article by title and publication time.
func (n *NewsItem) NaturalKey() string {
	return fmt.Sprintf("%s|%s", n.Title, n.PublishedDate.UTC().Format(time.RFC3339))
}
