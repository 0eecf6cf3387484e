package ops

import (
	"strings"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// PostScriptumInput describes a note to append to the latest fact.
type PostScriptumInput struct {
	Text string

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// PostScriptumOutput is the result of a PostScriptum call.
type PostScriptumOutput struct {
	Fact fact.Summary `json:"fact"`
}

// PostScriptum appends free text to the latest fact's description, prefixed
// with the time elapsed since that fact started. Works on open and closed
// facts alike; prior description text is never discarded.
func PostScriptum(store storage.Store, cfg *config.Config, in PostScriptumInput) (*PostScriptumOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest("nothing to append")
	}
	now := resolveNow(in.Now)

	latest, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.NewNotFound("no recent fact to annotate")
	}

	if _, err := Mutate(store, latest, FieldUpdates{ExtraDescription: text}, now, false); err != nil {
		return nil, err
	}
	return &PostScriptumOutput{Fact: latest.ToSummary()}, nil
}
