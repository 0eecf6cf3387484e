// Package storage provides the activity-record backend. The engine only
// depends on the Store interface; the sqlite implementation in this package
// is the default backend.
package storage

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/fact"
)

// Store is the minimal contract the engine needs from a record backend.
// Implementations are not required to provide transactional isolation across
// calls; racing invocations of the tool are the backend's concern.
type Store interface {
	// FactsForDay returns the facts whose start time falls on the calendar
	// day of date, ordered by start time. When endDate is non-nil the window
	// extends through that day. Non-empty searchTerms filter the results:
	// "," separates alternatives (OR), spaces separate required terms (AND).
	FactsForDay(date time.Time, endDate *time.Time, searchTerms string) ([]*fact.Fact, error)

	// Latest returns the most recently started fact within the lookback
	// window: maxAgeDays of 1 means "only today", 2 "today or yesterday".
	// Returns (nil, nil) when no fact exists in the window.
	Latest(maxAgeDays int) (*fact.Fact, error)

	// GetByID retrieves a single fact.
	GetByID(id string) (*fact.Fact, error)

	// Add persists a new fact (open or closed).
	Add(f *fact.Fact) error

	// Update persists mutated fields of an existing fact.
	Update(f *fact.Fact) error
}
