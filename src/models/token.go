package models

import "time"

// -----------------------------------------------------------------------------
// Token Category
// -----------------------------------------------------------------------------

type TokenCategory string

const (
	CategoryNewPairs     TokenCategory = "new-pairs"
	CategoryFinalStretch TokenCategory = "final-stretch"
	CategoryMigrated     TokenCategory = "migrated"
)

// Categories is the fixed order used for id lookups and iteration.
var Categories = []TokenCategory{
	CategoryNewPairs,
	CategoryFinalStretch,
	CategoryMigrated,
}

// IsValid reports whether c is one of the three known categories.
func (c TokenCategory) IsValid() bool {
	switch c {
	case CategoryNewPairs, CategoryFinalStretch, CategoryMigrated:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Token
// -----------------------------------------------------------------------------

// Token is the display/state record of one tradable item.
// Records are replaced, never mutated in place.
type Token struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Ticker         string        `json:"ticker"`
	Icon           string        `json:"icon,omitempty"`
	Price          float64       `json:"price"`
	PriceChange1m  float64       `json:"priceChange1m"`
	PriceChange5m  float64       `json:"priceChange5m"`
	PriceChange1h  float64       `json:"priceChange1h"`
	PriceChange24h float64       `json:"priceChange24h"`
	MarketCap      float64       `json:"marketCap"`
	Liquidity      float64       `json:"liquidity"`
	Volume24h      float64       `json:"volume24h"`
	CreatedAt      time.Time     `json:"createdAt"`
	Holders        int           `json:"holders"`
	TxCount        int           `json:"txCount"`
	Category       TokenCategory `json:"category"`
}

// -----------------------------------------------------------------------------
// Price Update
// -----------------------------------------------------------------------------

// PriceUpdate is a partial patch: only price, 1m and 5m changes are carried.
type PriceUpdate struct {
	TokenID       string  `json:"tokenId"`
	Price         float64 `json:"price"`
	PriceChange1m float64 `json:"priceChange1m"`
	PriceChange5m float64 `json:"priceChange5m"`
	Timestamp     int64   `json:"timestamp"` // unix ms
}

// Apply returns a copy of t with the patched fields replaced.
func (u PriceUpdate) Apply(t Token) Token {
	t.Price = u.Price
	t.PriceChange1m = u.PriceChange1m
	t.PriceChange5m = u.PriceChange5m
	return t
}
