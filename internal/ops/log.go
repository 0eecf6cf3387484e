package ops

import (
	"strings"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/config"
	"github.com/hyiltiz/timetra.diary/internal/errors"
	"github.com/hyiltiz/timetra.diary/internal/fact"
	"github.com/hyiltiz/timetra.diary/internal/reconcile"
	"github.com/hyiltiz/timetra.diary/internal/storage"
	"github.com/hyiltiz/timetra.diary/internal/timespec"
)

// LogInput describes a "log this activity" request. The interval can be
// given three ways, checked in this order: a combined Spec expression
// ("14:00..15:30", "1230+45", "+5"), a Between pair ("12:30-14:15"), or the
// individual Since/Until/Duration fields. All time fields are raw tokens in
// the terse clock syntax; empty means absent.
type LogInput struct {
	// Activity is an "activity@category" mask. An empty activity part falls
	// back to the configured default.
	Activity    string
	Description string
	Tags        []string

	Spec     string
	Between  string
	Since    string
	Until    string
	Duration string

	// Amend rebounds the latest fact instead of creating a new one; the
	// amended fact is excluded from overlap detection.
	Amend bool

	// DryRun computes and reports the full mutation without writing.
	DryRun bool

	// Confirm gates the destructive truncation of an overlapped fact. A nil
	// strategy declines: destructive changes need an explicit yes.
	Confirm reconcile.ConfirmFunc

	// Now fixes the reference instant; zero means the current time.
	Now time.Time
}

// TruncatedFact reports the collateral mutation of a log: the conflicting
// fact that was shortened to make room.
type TruncatedFact struct {
	ID       string `json:"id"`
	Activity string `json:"activity"`
	NewEnd   string `json:"new_end"`
}

// LogOutput is the result of a Log call.
type LogOutput struct {
	Fact      fact.Summary   `json:"fact"`
	Truncated *TruncatedFact `json:"truncated,omitempty"`
	Amended   bool           `json:"amended,omitempty"`
	DryRun    bool           `json:"dry_run,omitempty"`
}

// Log records a closed interval of activity: it resolves the requested
// bounds against the latest known fact and the current time, reconciles the
// interval with the day's existing facts (truncating at most one of them,
// behind confirmation), and persists the result.
func Log(store storage.Store, cfg *config.Config, in LogInput) (*LogOutput, error) {
	if err := requireStore(store); err != nil {
		return nil, err
	}

	activity, category := resolveActivity(in.Activity, cfg)
	now := resolveNow(in.Now)

	last, err := latestFact(store, cfg)
	if err != nil {
		return nil, err
	}

	var amendTarget *fact.Fact
	if in.Amend {
		if last == nil {
			return nil, errors.NewNotFound("no recent fact to amend")
		}
		amendTarget = last
	}

	start, end, err := resolveBounds(in, lastAnchor(last), now)
	if err != nil {
		return nil, err
	}
	if end.After(now) {
		return nil, errors.NewInvalidRange("cannot set end time in the future")
	}

	existing, err := store.FactsForDay(start, &end, "")
	if err != nil {
		return nil, err
	}

	amendID := ""
	if amendTarget != nil {
		amendID = amendTarget.ID
	}
	plan, err := reconcile.Classify(start, end, existing, amendID)
	if err != nil {
		return nil, err
	}

	if plan.Action == reconcile.ActionTruncate {
		if err := confirmPlan(plan, activity, in.Confirm); err != nil {
			return nil, err
		}
	}

	out := &LogOutput{DryRun: in.DryRun}

	if plan.Action == reconcile.ActionTruncate {
		conflict := plan.Conflict
		if !in.DryRun {
			endAt := plan.Start
			conflict.EndTime = &endAt
			if err := store.Update(conflict); err != nil {
				return nil, err
			}
		}
		out.Truncated = &TruncatedFact{
			ID:       conflict.ID,
			Activity: conflict.Name(),
			NewEnd:   plan.Start.Format(fact.TimeLayout),
		}
	}

	if amendTarget != nil {
		updates := FieldUpdates{
			StartTime:        &start,
			EndTime:          &end,
			ExtraTags:        in.Tags,
			ExtraDescription: in.Description,
		}
		if in.Activity != "" {
			updates.Activity = &activity
			updates.Category = category
		}
		if _, err := Mutate(store, amendTarget, updates, now, in.DryRun); err != nil {
			return nil, err
		}
		out.Fact = amendTarget.ToSummary()
		out.Amended = true
		return out, nil
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
		Tags:        fact.MergeTags(cfg.LogTags, in.Tags),
		Description: strings.TrimSpace(in.Description),
		StartTime:   start,
		EndTime:     &end,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if !in.DryRun {
		if err := store.Add(f); err != nil {
			return nil, err
		}
	}
	out.Fact = f.ToSummary()
	return out, nil
}

// confirmPlan runs the confirmation strategy over a truncation plan. A nil
// strategy counts as a decline.
func confirmPlan(plan *reconcile.Plan, activity string, confirm reconcile.ConfirmFunc) error {
	if confirm == nil {
		return errors.NewAborted()
	}
	ok, err := confirm(plan.Describe(activity))
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewAborted()
	}
	return nil
}

// resolveBounds turns the input's interval description into absolute start
// and end times, in precedence order: Spec, Between, then the since/until/
// duration flags.
func resolveBounds(in LogInput, last *time.Time, now time.Time) (time.Time, time.Time, error) {
	if in.Spec != "" {
		return timespec.ResolveSpec(in.Spec, last, now)
	}
	if in.Between != "" {
		return resolveBetween(in.Between, now)
	}

	since, err := timespec.ParseTimeToDatetime(in.Since, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	until, err := timespec.ParseTimeToDatetime(in.Until, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	delta, err := timespec.ParseDelta(in.Duration)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return resolveFlagBounds(last, since, until, delta, now)
}

// resolveBetween handles the "-b 12:30-14:15" convenience form: two clock
// tokens joined by a dash, both anchored to the recent past.
func resolveBetween(between string, now time.Time) (time.Time, time.Time, error) {
	sinceRaw, untilRaw, found := strings.Cut(between, "-")
	if !found || sinceRaw == "" || untilRaw == "" {
		return time.Time{}, time.Time{}, errors.NewParse(between, "expected START-END")
	}
	since, err := timespec.ParseTimeToDatetime(sinceRaw, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	until, err := timespec.ParseTimeToDatetime(untilRaw, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkOrdered(*since, *until)
}

// resolveFlagBounds resolves the since/until/duration flag triple. Each flag
// may be absent; the combinations fall back to the last fact's end and the
// current instant.
func resolveFlagBounds(last, since, until *time.Time, delta *time.Duration, now time.Time) (time.Time, time.Time, error) {
	switch {
	case since != nil && until != nil:
		return checkOrdered(*since, *until)
	case since != nil && delta != nil:
		return checkOrdered(*since, since.Add(*delta))
	case since != nil:
		return checkOrdered(*since, now)
	case until != nil && delta != nil:
		return checkOrdered(until.Add(-*delta), *until)
	case until != nil:
		if last == nil {
			return time.Time{}, time.Time{}, errors.NewInvalidRequest(
				"cannot resolve start time: no previous fact known")
		}
		return checkOrdered(last.Truncate(time.Minute), *until)
	case delta != nil:
		return checkOrdered(now.Add(-*delta), now)
	default:
		if last == nil {
			return time.Time{}, time.Time{}, errors.NewInvalidRequest(
				"cannot resolve start time: no previous fact known")
		}
		return checkOrdered(last.Truncate(time.Minute), now)
	}
}

func checkOrdered(start, end time.Time) (time.Time, time.Time, error) {
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.NewInvalidRange(
			"empty or inverted interval: " + start.Format("15:04") + " .. " + end.Format("15:04"))
	}
	return start, end, nil
}
