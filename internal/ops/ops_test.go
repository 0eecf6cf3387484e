package ops

import (
	"testing"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

func testStore(t *testing.T) *storage.SQLite {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func todayAt(hour, minute int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.Local)
}

func addClosed(t *testing.T, store storage.Store, id, activity string, start, end time.Time) *fact.Fact {
	t.Helper()
	f := &fact.Fact{
		ID:        id,
		Activity:  activity,
		StartTime: start,
		EndTime:   &end,
		CreatedAt: start.Unix(),
		UpdatedAt: start.Unix(),
	}
	if err := store.Add(f); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return f
}

func addOpen(t *testing.T, store storage.Store, id, activity string, start time.Time) *fact.Fact {
	t.Helper()
	f := &fact.Fact{
		ID:        id,
		Activity:  activity,
		StartTime: start,
		CreatedAt: start.Unix(),
		UpdatedAt: start.Unix(),
	}
	if err := store.Add(f); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return f
}
