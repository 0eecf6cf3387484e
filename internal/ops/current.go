package ops

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// CurrentInput selects the "what is happening now" view.
type CurrentInput struct {
	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// CurrentOutput describes the latest fact relative to now: the running time
// of an open fact, or the idle gap since a closed one ended.
type CurrentOutput struct {
	Fact    fact.Summary `json:"fact"`
	Running bool         `json:"running"`
	Elapsed string       `json:"elapsed"`
	Gap     string       `json:"gap,omitempty"`
}

// Current reports the latest fact and how it relates to the present moment.
func Current(store storage.Store, cfg *config.Config, in CurrentInput) (*CurrentOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}
	now := resolveNow(in.Now)

	latest, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.NewNotFound("no facts in the lookback window")
	}

	out := &CurrentOutput{
		Fact:    latest.ToSummary(),
		Running: latest.Open(),
		Elapsed: fact.FormatDelta(latest.Elapsed(now)),
	}
	if !latest.Open() {
		out.Gap = fact.FormatDelta(now.Sub(*latest.EndTime))
	}
	return out, nil
}
