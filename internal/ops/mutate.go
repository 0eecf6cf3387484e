package ops

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// FieldUpdates describes a set of mutations to apply to a fact. Pointer
// fields replace outright when non-nil; ExtraTags merge as a set union, and
// ExtraDescription appends a timestamped note. Existing tags and description
// text are never dropped except through explicit Tags replacement.
type FieldUpdates struct {
	Activity  *string
	Category  *string
	StartTime *time.Time
	EndTime   *time.Time

	// ClearEnd reopens the fact. Takes precedence over EndTime.
	ClearEnd bool

	// Tags replaces the tag list outright (deduplicated).
	Tags *[]string

	// ExtraTags are unioned with the existing tags.
	ExtraTags []string

	// ExtraDescription is appended after a blank line, prefixed with the
	// elapsed time since the fact's start.
	ExtraDescription string
}

// ApplyUpdates mutates f in memory and returns the names of the fields that
// actually changed. now anchors the elapsed-time prefix of an appended note.
func ApplyUpdates(f *fact.Fact, u FieldUpdates, now time.Time) []string {
	var changed []string

	if u.Activity != nil && *u.Activity != f.Activity {
		f.Activity = *u.Activity
		changed = append(changed, "activity")
	}
	if u.Category != nil {
		if f.Category == nil || *f.Category != *u.Category {
			f.Category = u.Category
			changed = append(changed, "category")
		}
	}
	if u.StartTime != nil && !u.StartTime.Equal(f.StartTime) {
		f.StartTime = u.StartTime.Truncate(time.Minute)
		changed = append(changed, "start_time")
	}
	if u.ClearEnd {
		if f.EndTime != nil {
			f.EndTime = nil
			changed = append(changed, "end_time")
		}
	} else if u.EndTime != nil {
		if f.EndTime == nil || !f.EndTime.Equal(*u.EndTime) {
			end := u.EndTime.Truncate(time.Minute)
			f.EndTime = &end
			changed = append(changed, "end_time")
		}
	}
	if u.Tags != nil {
		merged := fact.MergeTags(*u.Tags)
		if !sameStrings(f.Tags, merged) {
			f.Tags = merged
			changed = append(changed, "tags")
		}
	}
	if len(u.ExtraTags) > 0 {
		merged := fact.MergeTags(f.Tags, u.ExtraTags)
		if !sameStrings(f.Tags, merged) {
			f.Tags = merged
			changed = append(changed, "tags")
		}
	}
	if u.ExtraDescription != "" {
		f.Description = fact.AppendNote(f.Description, now.Sub(f.StartTime), u.ExtraDescription)
		changed = append(changed, "description")
	}

	return changed
}

// Mutate applies the updates to f and persists the result unless dryRun is
// set, in which case the mutation is computed and reported but not written.
func Mutate(store storage.Store, f *fact.Fact, u FieldUpdates, now time.Time, dryRun bool) ([]string, error) {
	changed := ApplyUpdates(f, u, now)
	if dryRun || len(changed) == 0 {
		return changed, nil
	}
	if err := store.Update(f); err != nil {
		return nil, err
	}
	return changed, nil
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
