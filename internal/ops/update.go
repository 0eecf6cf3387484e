package ops

import (
	"fmt"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// SetActivityInput re-categorizes one of today's facts.
type SetActivityInput struct {
	// Activity is the new "activity@category" mask.
	Activity string

	// Number selects the Nth-latest fact of the day, counted from 1.
	Number int

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// SetActivityOutput is the result of a SetActivity call.
type SetActivityOutput struct {
	Fact    fact.Summary `json:"fact"`
	Changed []string     `json:"changed,omitempty"`
}

// SetActivity replaces the activity (and category) of the Nth-latest fact of
// today: 1 is the most recent, 2 the one before it, and so on.
func SetActivity(store storage.Store, cfg *config.Config, in SetActivityInput) (*SetActivityOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	activity, category := fact.SplitActivity(in.Activity)
	if activity == "" {
		return nil, errors.NewInvalidRequest("activity must not be empty")
	}
	number := in.Number
	if number < 1 {
		number = 1
	}
	now := resolveNow(in.Now)

	facts, err := store.FactsForDay(now, nil, "")
	if err != nil {
		return nil, err
	}
	if number > len(facts) {
		return nil, errors.NewNotFound(fmt.Sprintf(
			"fact %d of %d today", number, len(facts)))
	}
	target := facts[len(facts)-number]

	updates := FieldUpdates{Activity: &activity, Category: category}
	changed, err := Mutate(store, target, updates, now, false)
	if err != nil {
		return nil, err
	}
	return &SetActivityOutput{Fact: target.ToSummary(), Changed: changed}, nil
}
