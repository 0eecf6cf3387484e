package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// requireStore rejects operations up front when no storage backend is
// configured, rather than failing halfway through a mutation.
func requireStore(store storage.Store) error {
	if store == nil {
		return errors.NewStorageUnavailable("no storage backend configured")
	}
	return nil
}

// resolveActivity splits an "activity@category" mask, falling back to the
// configured default activity for an empty activity part.
func resolveActivity(mask string, cfg *config.Config) (string, *string) {
	activity, category := fact.SplitActivity(mask)
	if activity == "" {
		activity = cfg.DefaultActivity
	}
	return activity, category
}

// latestFact fetches the most recent fact within the configured lookback.
func latestFact(store storage.Store, cfg *config.Config) (*fact.Fact, error) {
	return store.Latest(cfg.LatestLookbackDays)
}

// currentFact returns the latest fact if it is still open, nil otherwise.
func currentFact(store storage.Store, cfg *config.Config) (*fact.Fact, error) {
	f, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if f == nil || !f.Open() {
		return nil, nil
	}
	return f, nil
}

// lastAnchor returns the instant a new interval naturally follows on from:
// the fact's end time, or its start when it is still open.
func lastAnchor(f *fact.Fact) *time.Time {
	if f == nil {
		return nil
	}
	if f.EndTime != nil {
		return f.EndTime
	}
	return &f.StartTime
}

// resolveNow pins the reference instant for an operation. Inputs carry an
// optional Now so tests can fix the clock; the zero value means "right now".
// Facts are minute-granular, so seconds are dropped.
func resolveNow(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Truncate(time.Minute)
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
