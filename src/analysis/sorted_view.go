package analysis

import (
	"sort"
	"sync"

	"token-pulse/src/models"
)

// -----------------------------------------------------------------------------
// Projection
// -----------------------------------------------------------------------------

// compare returns <0, 0 or >0 for a against b on field
func compare(a, b models.Token, field models.SortOption) float64 {
	switch field {
	case models.SortByPrice:
		return a.Price - b.Price
	case models.SortByPriceChange1m:
		return a.PriceChange1m - b.PriceChange1m
	case models.SortByPriceChange5m:
		return a.PriceChange5m - b.PriceChange5m
	case models.SortByPriceChange1h:
		return a.PriceChange1h - b.PriceChange1h
	case models.SortByMarketCap:
		return a.MarketCap - b.MarketCap
	case models.SortByLiquidity:
		return a.Liquidity - b.Liquidity
	case models.SortByVolume24h:
		return a.Volume24h - b.Volume24h
	case models.SortByCreatedAt:
		return float64(a.CreatedAt.Sub(b.CreatedAt))
	case models.SortByHolders:
		return float64(a.Holders - b.Holders)
	}
	return 0
}

// -----------------------------------------------------------------------------

// Project returns a stably sorted copy of tokens. Ascending uses the raw
// comparison, descending negates it; unknown fields keep input order.
func Project(tokens []models.Token, cfg models.SortConfig) []models.Token {
	out := make([]models.Token, len(tokens))
	copy(out, tokens)
	if len(out) < 2 {
		return out
	}

	sign := 1.0
	if cfg.SortOrder != models.SortAsc {
		sign = -1.0
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*compare(out[i], out[j], cfg.SortBy) < 0
	})
	return out
}

// -----------------------------------------------------------------------------
// SortedView memoizes projections per category
// -----------------------------------------------------------------------------

// TokenSource is the read side SortedView needs from the store.
type TokenSource interface {
	TokensWithRevision(category models.TokenCategory) ([]models.Token, uint64)
	SortConfig(category models.TokenCategory) (models.SortConfig, bool)
}

type SortedView struct {
	source TokenSource
	mu     sync.Mutex
	cache  map[models.TokenCategory]projection
}

type projection struct {
	revision uint64
	config   models.SortConfig
	tokens   []models.Token
}

// -----------------------------------------------------------------------------

func NewSortedView(source TokenSource) *SortedView {
	return &SortedView{
		source: source,
		cache:  make(map[models.TokenCategory]projection),
	}
}

// -----------------------------------------------------------------------------

// View returns category's collection sorted by its current sort config.
// The projection is recomputed only when the collection or config changed.
func (v *SortedView) View(category models.TokenCategory) []models.Token {
	cfg, _ := v.source.SortConfig(category)
	tokens, revision := v.source.TokensWithRevision(category)

	v.mu.Lock()
	defer v.mu.Unlock()

	if cached, ok := v.cache[category]; ok && cached.revision == revision && cached.config == cfg {
		return cloneTokens(cached.tokens)
	}

	sorted := Project(tokens, cfg)
	v.cache[category] = projection{revision: revision, config: cfg, tokens: sorted}
	return cloneTokens(sorted)
}

// -----------------------------------------------------------------------------

// Invalidate drops every cached projection
func (v *SortedView) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache = make(map[models.TokenCategory]projection)
}

// -----------------------------------------------------------------------------

func cloneTokens(tokens []models.Token) []models.Token {
	out := make([]models.Token, len(tokens))
	copy(out, tokens)
	return out
}
