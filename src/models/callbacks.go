package models

// -----------------------------------------------------------------------------
// Callbacks shared by the data sources and their consumers
// -----------------------------------------------------------------------------

// BatchFunc receives the full collection generated so far for a category.
// isLast is true exactly once per category.
type BatchFunc func(category TokenCategory, tokens []Token, isLast bool)

// BatchHandler receives every tick's batch. All handlers share the same
// slice and must not modify it.
type BatchHandler func(updates []PriceUpdate)

// ListingFunc receives each freshly listed token.
type ListingFunc func(token Token)
