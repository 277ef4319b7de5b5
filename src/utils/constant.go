package utils

import "time"

// -----------------------------------------------------------------------------

// Defaults shared by the feed and the store.
const (
	DefaultHistoryPoints   = 120
	DefaultUpdateFrequency = 1500 * time.Millisecond
)

// -----------------------------------------------------------------------------

// Milliseconds converts a configured millisecond count into a duration.
func Milliseconds(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
