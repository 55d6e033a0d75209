// Package gather fetches historical market data from external providers and
// writes it into the bar store.
package gather

import (
	"context"
	"time"
)

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes the gathering process. It returns when the fetch is
	// complete or the context is cancelled.
	Run(ctx context.Context) error
}

// DateRange is an inclusive time range for data fetching.
type DateRange struct {
	Start time.Time
	End   time.Time
}
