// Package reconcile classifies a newly resolved interval against a day's
// existing facts and decides whether to insert cleanly, truncate a preceding
// fact, or reject the operation.
package reconcile

import (
	"fmt"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
)

// Action is the outcome of overlap classification.
type Action int

const (
	// ActionInsert means no conflict: the new fact is recorded as-is.
	ActionInsert Action = iota
	// ActionTruncate means one preceding fact must be shortened to end
	// where the new fact begins. Destructive; requires confirmation.
	ActionTruncate
)

// Plan describes the mutation decided by Classify. When Action is
// ActionTruncate, Conflict is the fact whose end time will be set to Start.
type Plan struct {
	Action   Action
	Start    time.Time
	End      time.Time
	Conflict *fact.Fact
}

// Overlaps reports whether the interval [start, end) conflicts with f.
// An open fact always conflicts: its true extent is unknown.
func Overlaps(f *fact.Fact, start, end time.Time) bool {
	if f.EndTime == nil {
		return true
	}
	return start.Before(*f.EndTime) && end.After(f.StartTime)
}

// Classify inspects the day's existing facts and decides how the interval
// [start, end) can be recorded. When amendID is non-empty, the fact with that
// ID is being amended and is excluded from conflict consideration.
//
// Zero overlapping facts yield a clean insert. More than one is rejected:
// the engine refuses to guess which fact to truncate. Exactly one overlap is
// salvageable only when the new interval starts strictly after the
// conflicting fact does; the plan then shortens that fact to end at start.
func Classify(start, end time.Time, existing []*fact.Fact, amendID string) (*Plan, error) {
	var overlapping []*fact.Fact
	for _, f := range existing {
		if amendID != "" && f.ID == amendID {
			continue
		}
		if Overlaps(f, start, end) {
			overlapping = append(overlapping, f)
		}
	}

	switch len(overlapping) {
	case 0:
		return &Plan{Action: ActionInsert, Start: start, End: end}, nil
	case 1:
		p := overlapping[0]
		if !start.After(p.StartTime) {
			// The new interval would engulf or precede the existing fact
			// entirely; truncation cannot salvage it.
			return nil, errors.NewWouldReplace(p.Activity)
		}
		return &Plan{Action: ActionTruncate, Start: start, End: end, Conflict: p}, nil
	default:
		return nil, errors.NewAmbiguousOverlap(len(overlapping))
	}
}

// Describe renders the pending mutation for a confirmation prompt, e.g.
//
//	Change [1:30 work] → [0:45 work] [0:45 coding]
//
// Only meaningful for truncation plans.
func (p *Plan) Describe(activity string) string {
	if p.Action != ActionTruncate || p.Conflict == nil {
		return ""
	}
	origLength := p.Conflict.Elapsed(p.Start)
	newLength := p.Start.Sub(p.Conflict.StartTime)
	return fmt.Sprintf("Change [%s %s] → [%s %s] [%s %s]",
		fact.FormatDelta(origLength), p.Conflict.Name(),
		fact.FormatDelta(newLength), p.Conflict.Name(),
		fact.FormatDelta(p.End.Sub(p.Start)), activity)
}

// ConfirmFunc gates destructive mutations: it receives a human-readable
// description of the pending change and returns whether to apply it.
type ConfirmFunc func(prompt string) (bool, error)

// AssumeYes applies every mutation without asking.
func AssumeYes(string) (bool, error) { return true, nil }

// AssumeNo declines every mutation.
func AssumeNo(string) (bool, error) { return false, nil }
