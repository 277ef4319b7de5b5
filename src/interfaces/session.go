package interfaces

import "time"

// -----------------------------------------------------------------------------
// ISessionControl is the slice of the dashboard session the HTTP layer drives
// -----------------------------------------------------------------------------

type ISessionControl interface {
	Reload()
	SetUpdateFrequency(d time.Duration)
}
