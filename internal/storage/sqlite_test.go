package storage

import (
	"testing"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newFact(id, activity string, start time.Time, end *time.Time) *fact.Fact {
	now := time.Now().Unix()
	return &fact.Fact{
		ID:        id,
		Activity:  activity,
		StartTime: start,
		EndTime:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func todayAt(hour, minute int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.Local)
}

func TestOpen_Reopen(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Close()

	// Second open must not re-run migrations destructively.
	store, err = Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	store.Close()
}

func TestAddAndGetByID(t *testing.T) {
	store := openTestStore(t)

	start := todayAt(9, 0)
	end := todayAt(10, 30)
	cat := "work"
	f := newFact("01A", "coding", start, &end)
	f.Category = &cat
	f.Tags = []string{"timetra-log", "deep"}
	f.Description = "morning session"

	if err := store.Add(f); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.GetByID("01A")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Activity != "coding" {
		t.Errorf("Activity = %q", got.Activity)
	}
	if got.Category == nil || *got.Category != "work" {
		t.Errorf("Category = %v", got.Category)
	}
	if len(got.Tags) != 2 {
		t.Errorf("Tags = %v", got.Tags)
	}
	if !got.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}
	if got.Description != "morning session" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByID("missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestAdd_OpenFact(t *testing.T) {
	store := openTestStore(t)
	if err := store.Add(newFact("01B", "work", todayAt(9, 0), nil)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, err := store.GetByID("01B")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.Open() {
		t.Error("fact should be open")
	}
}

func TestFactsForDay_OrderedWindow(t *testing.T) {
	store := openTestStore(t)

	endA := todayAt(9, 0)
	endB := todayAt(12, 0)
	yesterdayStart := todayAt(10, 0).AddDate(0, 0, -1)
	yesterdayEnd := todayAt(11, 0).AddDate(0, 0, -1)

	// Insert out of order; yesterday's fact must not appear.
	if err := store.Add(newFact("2", "later", todayAt(11, 0), &endB)); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newFact("1", "earlier", todayAt(8, 0), &endA)); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newFact("0", "old", yesterdayStart, &yesterdayEnd)); err != nil {
		t.Fatal(err)
	}

	facts, err := store.FactsForDay(time.Now(), nil, "")
	if err != nil {
		t.Fatalf("FactsForDay failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	if facts[0].ID != "1" || facts[1].ID != "2" {
		t.Errorf("wrong order: %s, %s", facts[0].ID, facts[1].ID)
	}
}

func TestFactsForDay_EndDateExtendsWindow(t *testing.T) {
	store := openTestStore(t)

	yesterdayStart := todayAt(10, 0).AddDate(0, 0, -1)
	yesterdayEnd := todayAt(11, 0).AddDate(0, 0, -1)
	todayEnd := todayAt(9, 0)

	if err := store.Add(newFact("old", "reading", yesterdayStart, &yesterdayEnd)); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newFact("new", "coding", todayAt(8, 0), &todayEnd)); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	facts, err := store.FactsForDay(now.AddDate(0, 0, -1), &now, "")
	if err != nil {
		t.Fatalf("FactsForDay failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
}

func TestFactsForDay_SearchTerms(t *testing.T) {
	store := openTestStore(t)

	end1 := todayAt(9, 0)
	end2 := todayAt(10, 0)
	end3 := todayAt(11, 0)
	f1 := newFact("1", "coding", todayAt(8, 0), &end1)
	f1.Description = "fixing the parser"
	f2 := newFact("2", "meeting", todayAt(9, 0), &end2)
	f2.Tags = []string{"sprint"}
	f3 := newFact("3", "reading", todayAt(10, 0), &end3)
	for _, f := range []*fact.Fact{f1, f2, f3} {
		if err := store.Add(f); err != nil {
			t.Fatal(err)
		}
	}

	// AND: both terms required
	facts, err := store.FactsForDay(time.Now(), nil, "coding parser")
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 || facts[0].ID != "1" {
		t.Errorf("AND search = %v", ids(facts))
	}

	// OR: comma separates alternatives; tags are searched too
	facts, err = store.FactsForDay(time.Now(), nil, "sprint,reading")
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 2 {
		t.Errorf("OR search = %v", ids(facts))
	}
}

func TestLatest(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.Latest(2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Latest on empty store = %v, want nil", latest)
	}

	end := todayAt(9, 0)
	if err := store.Add(newFact("a", "early", todayAt(8, 0), &end)); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(newFact("b", "late", todayAt(10, 0), nil)); err != nil {
		t.Fatal(err)
	}

	latest, err = store.Latest(2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest == nil || latest.ID != "b" {
		t.Errorf("Latest = %v, want fact b", latest)
	}
}

func TestLatest_LookbackFindsYesterday(t *testing.T) {
	store := openTestStore(t)

	start := todayAt(22, 0).AddDate(0, 0, -1)
	end := todayAt(23, 0).AddDate(0, 0, -1)
	if err := store.Add(newFact("y", "evening", start, &end)); err != nil {
		t.Fatal(err)
	}

	latest, err := store.Latest(2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest == nil || latest.ID != "y" {
		t.Errorf("Latest = %v, want yesterday's fact", latest)
	}

	// A one-day window must not see it.
	latest, err = store.Latest(1)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Latest(1) = %v, want nil", latest)
	}
}

func TestUpdate(t *testing.T) {
	store := openTestStore(t)

	f := newFact("u", "work", todayAt(9, 0), nil)
	if err := store.Add(f); err != nil {
		t.Fatal(err)
	}

	end := todayAt(10, 0)
	f.EndTime = &end
	f.Tags = []string{"done"}
	f.Description = "wrapped up"
	if err := store.Update(f); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID("u")
	if err != nil {
		t.Fatal(err)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "done" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.Description != "wrapped up" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store := openTestStore(t)
	err := store.Update(newFact("ghost", "work", todayAt(9, 0), nil))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func ids(facts []*fact.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.ID
	}
	return out
}
