package models

// RingBuffer indices and constants
const (
	RB_IDX_TIMESTAMP = 0
	RB_IDX_PRICE     = 1
	RB_NUM_FEATURES  = 2
)

// -----------------------------------------------------------------------------

// PricePoint is one entry of a token's price history.
type PricePoint struct {
	Timestamp int64   `json:"time"`
	Price     float64 `json:"price"`
}
