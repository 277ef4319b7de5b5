package models

import "time"

// -----------------------------------------------------------------------------
// Connection Status
// -----------------------------------------------------------------------------

type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
)

func (s ConnectionStatus) IsValid() bool {
	switch s {
	case StatusConnected, StatusConnecting, StatusDisconnected, StatusError:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Sorting
// -----------------------------------------------------------------------------

type SortOption string

const (
	SortByPrice         SortOption = "price"
	SortByPriceChange1m SortOption = "priceChange1m"
	SortByPriceChange5m SortOption = "priceChange5m"
	SortByPriceChange1h SortOption = "priceChange1h"
	SortByMarketCap     SortOption = "marketCap"
	SortByLiquidity     SortOption = "liquidity"
	SortByVolume24h     SortOption = "volume24h"
	SortByCreatedAt     SortOption = "createdAt"
	SortByHolders       SortOption = "holders"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

type SortConfig struct {
	SortBy    SortOption `json:"sortBy"`
	SortOrder SortOrder  `json:"sortOrder"`
}

// MSortOptionLabel pairs a sort field with its column header.
type MSortOptionLabel struct {
	Value SortOption `json:"value"`
	Label string     `json:"label"`
}

// SortOptions lists every sortable column in display order.
var SortOptions = []MSortOptionLabel{
	{Value: SortByPrice, Label: "Price"},
	{Value: SortByPriceChange1m, Label: "1m %"},
	{Value: SortByPriceChange5m, Label: "5m %"},
	{Value: SortByPriceChange1h, Label: "1h %"},
	{Value: SortByMarketCap, Label: "Market Cap"},
	{Value: SortByLiquidity, Label: "Liquidity"},
	{Value: SortByVolume24h, Label: "24h Volume"},
	{Value: SortByCreatedAt, Label: "Age"},
	{Value: SortByHolders, Label: "Holders"},
}

func (o SortOption) IsValid() bool {
	for _, opt := range SortOptions {
		if opt.Value == o {
			return true
		}
	}
	return false
}

// DefaultSortConfig returns the initial per-category sort configuration.
func DefaultSortConfig() map[TokenCategory]SortConfig {
	return map[TokenCategory]SortConfig{
		CategoryNewPairs:     {SortBy: SortByCreatedAt, SortOrder: SortDesc},
		CategoryFinalStretch: {SortBy: SortByPriceChange1m, SortOrder: SortDesc},
		CategoryMigrated:     {SortBy: SortByMarketCap, SortOrder: SortDesc},
	}
}

// -----------------------------------------------------------------------------
// Presets
// -----------------------------------------------------------------------------

type Preset string

const (
	PresetP1 Preset = "P1"
	PresetP2 Preset = "P2"
	PresetP3 Preset = "P3"
)

func (p Preset) IsValid() bool {
	return p == PresetP1 || p == PresetP2 || p == PresetP3
}

func DefaultPresets() map[TokenCategory]Preset {
	return map[TokenCategory]Preset{
		CategoryNewPairs:     PresetP1,
		CategoryFinalStretch: PresetP1,
		CategoryMigrated:     PresetP1,
	}
}

// -----------------------------------------------------------------------------
// Store Snapshot
// -----------------------------------------------------------------------------

// TokensState is a point-in-time copy of the store.
type TokensState struct {
	NewPairs           []Token                       `json:"newPairs"`
	FinalStretch       []Token                       `json:"finalStretch"`
	Migrated           []Token                       `json:"migrated"`
	Loading            map[TokenCategory]bool        `json:"loading"`
	Error              *string                       `json:"error"`
	ConnectionStatus   ConnectionStatus              `json:"connectionStatus"`
	SortConfig         map[TokenCategory]SortConfig  `json:"sortConfig"`
	ActivePreset       map[TokenCategory]Preset      `json:"activePreset"`
	LastUpdated        *time.Time                    `json:"lastUpdated"`
	LastConnectionTime *time.Time                    `json:"lastConnectionTime"`
	SelectedToken      *Token                        `json:"selectedToken"`
}

// Collection returns the slice held for category c.
func (s *TokensState) Collection(c TokenCategory) []Token {
	switch c {
	case CategoryNewPairs:
		return s.NewPairs
	case CategoryFinalStretch:
		return s.FinalStretch
	case CategoryMigrated:
		return s.Migrated
	}
	return nil
}
