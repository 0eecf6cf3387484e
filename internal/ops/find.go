package ops

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// FindInput describes a search over a trailing window of days. In the query,
// "," separates alternatives (OR) and spaces separate required terms (AND);
// an empty query matches everything.
type FindInput struct {
	Query string

	// Days is the window size ending today; 0 or 1 means only today.
	Days int

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// FindStats summarizes the matched facts.
type FindStats struct {
	Count         int    `json:"count"`
	Total         string `json:"total"`
	AvgPerFact    string `json:"avg_per_fact,omitempty"`
	AvgPerDay     string `json:"avg_per_day"`
	AvgPerWorkday string `json:"avg_per_workday,omitempty"`
}

// FindOutput is the result of a Find call.
type FindOutput struct {
	Facts []fact.Summary `json:"facts"`
	Stats FindStats      `json:"stats"`
}

// Find searches facts over the window and computes summary statistics: time
// spent in total and on average per matched fact, per calendar day of the
// window, and per workday (Monday through Friday).
func Find(store storage.Store, cfg *config.Config, in FindInput) (*FindOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	now := resolveNow(in.Now)
	days := in.Days
	if days < 1 {
		days = 1
	}

	from := now.AddDate(0, 0, -(days - 1))
	facts, err := store.FactsForDay(from, &now, in.Query)
	if err != nil {
		return nil, err
	}

	summaries := make([]fact.Summary, len(facts))
	var total time.Duration
	for i, f := range facts {
		summaries[i] = f.ToSummary()
		total += f.Elapsed(now)
	}

	stats := FindStats{
		Count:     len(facts),
		Total:     fact.FormatDelta(total),
		AvgPerDay: fact.FormatDelta(total / time.Duration(days)),
	}
	if len(facts) > 0 {
		stats.AvgPerFact = fact.FormatDelta(total / time.Duration(len(facts)))
	}
	if workdays := countWorkdays(from, days); workdays > 0 {
		stats.AvgPerWorkday = fact.FormatDelta(total / time.Duration(workdays))
	}

	return &FindOutput{Facts: summaries, Stats: stats}, nil
}

// countWorkdays counts the Monday-through-Friday days among the `days`
// calendar days starting at from.
func countWorkdays(from time.Time, days int) int {
	count := 0
	for i := 0; i < days; i++ {
		switch from.AddDate(0, 0, i).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
