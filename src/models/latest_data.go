package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

// MColumnView is one dashboard column as served by the API.
type MColumnView struct {
	Category   TokenCategory `json:"category"`
	SortConfig SortConfig    `json:"sortConfig"`
	Preset     Preset        `json:"preset"`
	Loading    bool          `json:"loading"`
	Tokens     []Token       `json:"tokens"`
}

// MHealth is the payload of the health endpoint.
type MHealth struct {
	Status           string           `json:"status"`
	Connections      int              `json:"connections"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	LatestUpdate     int64            `json:"latest_update"`
}

// MHistoryStats summarizes a token's recorded price history.
type MHistoryStats struct {
	Points    int     `json:"points"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdDev"`
	ChangePct float64 `json:"changePct"`
}
