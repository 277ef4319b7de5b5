package mock

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"token-pulse/src/models"
	"token-pulse/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Name tables
// -----------------------------------------------------------------------------

var namePrefixes = []string{
	"Moon", "Doge", "Shiba", "Pepe", "Floki", "Baby", "Safe", "Elon", "Chad", "Giga",
	"Based", "Alpha", "Sigma", "Turbo", "Mega", "Ultra", "Super", "Hyper", "Quantum", "Cosmic",
	"Solar", "Lunar", "Stellar", "Galactic", "Atomic", "Zen", "Ninja", "Samurai", "Dragon", "Phoenix",
}

var nameSuffixes = []string{
	"Inu", "Coin", "Token", "Dog", "Cat", "Moon", "Mars", "AI", "Bot", "Swap", "Fi",
	"Dex", "Chain", "Protocol", "Network", "Verse", "World", "Land", "City", "Kingdom", "Empire", "Hub",
}

// Percentage change volatility per timeframe
const (
	volatility1m  = 1.0
	volatility5m  = 1.5
	volatility1h  = 2.0
	volatility24h = 3.0

	updateVolatility1m = 0.5
	updateVolatility5m = 0.8

	maxTokenAge = 7 * 24 * time.Hour
)

// -----------------------------------------------------------------------------
// TokenFactory synthesizes token records and price updates
// -----------------------------------------------------------------------------

type TokenFactory struct {
	rng   *rand.Rand
	clock utils.Clock
	mu    sync.Mutex
}

// -----------------------------------------------------------------------------

// NewTokenFactory creates a factory. A nil rng seeds from runtime entropy.
func NewTokenFactory(rng *rand.Rand, clock utils.Clock) *TokenFactory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &TokenFactory{rng: rng, clock: clock}
}

// -----------------------------------------------------------------------------

// GenerateToken creates one token for category with randomized bounded fields
func (f *TokenFactory) GenerateToken(category models.TokenCategory) models.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := namePrefixes[f.rng.IntN(len(namePrefixes))]
	suffix := nameSuffixes[f.rng.IntN(len(nameSuffixes))]

	price := f.price()
	marketCap := price * (f.rng.Float64()*1e9 + 1e4)
	now := f.clock.Now()

	return models.Token{
		ID:             newTokenID(category),
		Name:           prefix + suffix,
		Ticker:         ticker(prefix, suffix),
		Price:          price,
		PriceChange1m:  f.change(volatility1m),
		PriceChange5m:  f.change(volatility5m),
		PriceChange1h:  f.change(volatility1h),
		PriceChange24h: f.change(volatility24h),
		MarketCap:      marketCap,
		Liquidity:      marketCap * (f.rng.Float64()*0.5 + 0.1),
		Volume24h:      marketCap * (f.rng.Float64()*0.3 + 0.05),
		CreatedAt:      now.Add(-time.Duration(f.rng.Float64() * float64(maxTokenAge))),
		Holders:        f.rng.IntN(10000) + 10,
		TxCount:        f.rng.IntN(50000) + 100,
		Category:       category,
	}
}

// -----------------------------------------------------------------------------

// GenerateInitialTokens creates count tokens for category
func (f *TokenFactory) GenerateInitialTokens(category models.TokenCategory, count int) []models.Token {
	if count <= 0 {
		return []models.Token{}
	}
	tokens := make([]models.Token, count)
	for i := range tokens {
		tokens[i] = f.GenerateToken(category)
	}
	return tokens
}

// -----------------------------------------------------------------------------

// GeneratePriceUpdate moves the price by up to ±5% and redraws the short-term changes
func (f *TokenFactory) GeneratePriceUpdate(token models.Token) models.PriceUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	return models.PriceUpdate{
		TokenID:       token.ID,
		Price:         token.Price * (1 + (f.rng.Float64()-0.5)*0.1),
		PriceChange1m: f.change(updateVolatility1m),
		PriceChange5m: f.change(updateVolatility5m),
		Timestamp:     utils.UnixMilli(f.clock),
	}
}

// -----------------------------------------------------------------------------
// Helpers (caller holds f.mu)
// -----------------------------------------------------------------------------

// price picks one of four magnitude tiers with probability 30/30/25/15%
func (f *TokenFactory) price() float64 {
	tier := f.rng.Float64()
	r := f.rng.Float64()
	switch {
	case tier < 0.3:
		return r * 0.0001
	case tier < 0.6:
		return r * 0.01
	case tier < 0.85:
		return r
	default:
		return r * 100
	}
}

// change draws a signed percentage in [-50·vol, 50·vol], rounded to 2 decimals
func (f *TokenFactory) change(vol float64) float64 {
	return round2((f.rng.Float64() - 0.5) * 2 * vol * 50)
}

// -----------------------------------------------------------------------------

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ticker(prefix, suffix string) string {
	p := strings.ToUpper(prefix)
	if len(p) > 3 {
		p = p[:3]
	}
	return "$" + p + strings.ToUpper(suffix)[:1]
}

// newTokenID namespaces a random uuid by category
func newTokenID(category models.TokenCategory) string {
	return string(category) + "-" + uuid.NewString()
}
