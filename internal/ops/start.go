package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/reconcile"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// StartInput describes a punch-in request.
type StartInput struct {
	Activity    string
	Description string
	Tags        []string

	// Continued picks the start up where the last fact left off instead of
	// now. When the last fact is the same activity and already closed it is
	// reopened in place (gated by the confirmation strategy).
	Continued bool

	// Confirm gates reopening a closed fact. A nil strategy declines.
	Confirm reconcile.ConfirmFunc

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// StartOutput is the result of a Start call.
type StartOutput struct {
	Fact    fact.Summary `json:"fact"`
	Resumed bool         `json:"resumed,omitempty"`
}

// Start opens a new fact. Only one fact may be open at a time; starting
// while another activity is running is rejected.
func Start(store storage.Store, cfg *config.Config, in StartInput) (*StartOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}

	activity, category := resolveActivity(in.Activity, cfg)
	now := resolveNow(in.Now)

	last, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if last != nil && last.Open() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf(
			"%q is still running since %s; stop it first",
			last.Name(), last.StartTime.Format("15:04")))
	}

	start := now
	if in.Continued {
		if last == nil {
			return nil, errors.NewNotFound("no recent fact to continue from")
		}
		name := activity
		if category != nil && *category != "" {
			name = activity + "@" + *category
		}
		if last.Name() == name {
			return resumeFact(store, last, in, now)
		}
		start = last.EndTime.Truncate(time.Minute)
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	created := now.Unix()
	f := &fact.Fact{
		ID:          id,
		Activity:    activity,
		Category:    category,
		Tags:        fact.MergeTags(in.Tags),
		Description: strings.TrimSpace(in.Description),
		StartTime:   start,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if err := store.Add(f); err != nil {
		return nil, err
	}
	return &StartOutput{Fact: f.ToSummary()}, nil
}

// resumeFact reopens a closed fact of the same activity, discarding its end
// time. Destructive, so it goes through the confirmation strategy.
func resumeFact(store storage.Store, f *fact.Fact, in StartInput, now time.Time) (*StartOutput, error) {
	if in.Confirm == nil {
		return nil, errors.NewAborted()
	}
	prompt := fmt.Sprintf("Resume [%s %s], discarding its end time at %s",
		fact.FormatDelta(f.Delta()), f.Name(), f.EndTime.Format("15:04"))
	ok, err := in.Confirm(prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewAborted()
	}

	updates := FieldUpdates{
		ClearEnd:         true,
		ExtraTags:        in.Tags,
		ExtraDescription: in.Description,
	}
	if _, err := Mutate(store, f, updates, now, false); err != nil {
		return nil, err
	}
	return &StartOutput{Fact: f.ToSummary(), Resumed: true}, nil
}
