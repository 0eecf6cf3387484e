package fact

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the display format for fact timestamps.
const TimeLayout = "2006-01-02 15:04"

// Fact represents one logged interval of activity.
type Fact struct {
	// ID is a ULID that uniquely identifies this fact
	ID string

	// Activity is the activity name (non-empty)
	Activity string

	// Category is an optional category name (nullable)
	Category *string

	// Tags is a set of tags (stored as JSON in DB, duplicates collapse)
	Tags []string

	// Description is free text; it grows by append, never silently overwritten
	Description string

	// StartTime is when the activity started
	StartTime time.Time

	// EndTime is when the activity ended; nil means the fact is still open
	EndTime *time.Time

	// CreatedAt is the Unix timestamp when the fact was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the fact was last updated
	UpdatedAt int64
}

// Open reports whether the fact has no end time yet.
func (f *Fact) Open() bool {
	return f.EndTime == nil
}

// Delta returns the fact's duration. Zero when the fact is still open.
func (f *Fact) Delta() time.Duration {
	if f.EndTime == nil {
		return 0
	}
	return f.EndTime.Sub(f.StartTime)
}

// Elapsed returns the time covered by the fact as of now: the closed
// duration, or the time since start for an open fact.
func (f *Fact) Elapsed(now time.Time) time.Duration {
	if f.EndTime == nil {
		return now.Sub(f.StartTime)
	}
	return f.EndTime.Sub(f.StartTime)
}

// Name returns "activity@category", or just the activity when the fact has
// no category.
func (f *Fact) Name() string {
	if f.Category == nil || *f.Category == "" {
		return f.Activity
	}
	return f.Activity + "@" + *f.Category
}

// SplitActivity splits an "activity@category" mask. The category part is nil
// when the mask has no "@".
func SplitActivity(mask string) (string, *string) {
	activity, category, found := strings.Cut(mask, "@")
	if !found {
		return strings.TrimSpace(mask), nil
	}
	category = strings.TrimSpace(category)
	return strings.TrimSpace(activity), &category
}

// MergeTags returns the set union of the given tag lists. Duplicates and
// blank entries collapse; the result is sorted so merges are order-independent.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0)
	for _, list := range lists {
		for _, tag := range list {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			result = append(result, tag)
		}
	}
	if len(result) == 0 {
		return nil
	}
	sort.Strings(result)
	return result
}

// AppendNote appends a timestamped note to a description: the note goes
// after a blank line, prefixed with the elapsed time since the fact's start,
// and the combined text is trimmed. Prior content is never discarded.
func AppendNote(description string, elapsed time.Duration, note string) string {
	return strings.TrimSpace(description + "\n\n(+" + FormatDelta(elapsed) + ") " + note)
}

// FormatDelta formats a duration as "H:MM".
func FormatDelta(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// Summary is the JSON-friendly representation of a fact used by CLI and MCP
// output.
type Summary struct {
	ID          string   `json:"id"`
	Activity    string   `json:"activity"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     *string  `json:"end_time,omitempty"`
	Delta       string   `json:"delta,omitempty"`
	Open        bool     `json:"open,omitempty"`
}

// ToSummary converts the fact to its display form.
func (f *Fact) ToSummary() Summary {
	s := Summary{
		ID:          f.ID,
		Activity:    f.Activity,
		Category:    f.Category,
		Tags:        f.Tags,
		Description: f.Description,
		StartTime:   f.StartTime.Format(TimeLayout),
		Open:        f.EndTime == nil,
	}
	if f.EndTime != nil {
		end := f.EndTime.Format(TimeLayout)
		s.EndTime = &end
		s.Delta = FormatDelta(f.Delta())
	}
	return s
}
