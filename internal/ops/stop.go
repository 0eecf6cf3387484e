package ops

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// StopInput describes a punch-out request. Tags are unioned into the fact's
// existing tags and Description is appended as a timestamped note.
type StopInput struct {
	Description string
	Tags        []string

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// StopOutput is the result of a Stop call.
type StopOutput struct {
	Fact  fact.Summary `json:"fact"`
	Delta string       `json:"delta"`
}

// Stop closes the currently open fact at the present minute.
func Stop(store storage.Store, cfg *config.Config, in StopInput) (*StopOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	now := resolveNow(in.Now)

	current, err := currentFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, errors.NewInvalidRequest("no activity is running")
	}

	updates := FieldUpdates{
		EndTime:          &now,
		ExtraTags:        in.Tags,
		ExtraDescription: in.Description,
	}
	if _, err := Mutate(store, current, updates, now, false); err != nil {
		return nil, err
	}
	return &StopOutput{
		Fact:  current.ToSummary(),
		Delta: fact.FormatDelta(current.Delta()),
	}, nil
}
