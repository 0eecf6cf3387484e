package ops

import (
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/storage"
)

// LastOutput is the full field dump of the most recent fact.
type LastOutput struct {
	Fact      fact.Summary `json:"fact"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// Last returns the most recent fact in detail.
func Last(store storage.Store, cfg *config.Config) (*LastOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}

	latest, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, errors.NewNotFound("no facts in the lookback window")
	}

	return &LastOutput{
		Fact:      latest.ToSummary(),
		CreatedAt: time.Unix(latest.CreatedAt, 0).Format(fact.TimeLayout),
		UpdatedAt: time.Unix(latest.UpdatedAt, 0).Format(fact.TimeLayout),
	}, nil
}
