package timespec

import (
	"fmt"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/errors"
)

type boundKind int

const (
	boundAbsent boundKind = iota
	boundClock
	boundDelta
)

// Bound is one side of a since/until expression prior to resolution: absent,
// a clock time of day, or a signed duration offset.
type Bound struct {
	kind  boundKind
	clock TimeOfDay
	delta time.Duration
}

// Absent reports whether the bound carries no value.
func (b Bound) Absent() bool { return b.kind == boundAbsent }

// ClockBound wraps a time of day as a bound.
func ClockBound(t TimeOfDay) Bound {
	return Bound{kind: boundClock, clock: t}
}

// DeltaBound wraps a signed duration offset as a bound.
func DeltaBound(d time.Duration) Bound {
	return Bound{kind: boundDelta, delta: d}
}

// ParseComponent parses a raw since/until sub-token into a Bound. A leading
// "+" or "-" makes it a signed duration; anything else is a clock time of
// day. The empty string is the absent bound.
func ParseComponent(value string) (Bound, error) {
	if value == "" {
		return Bound{}, nil
	}

	if value[0] == '+' || value[0] == '-' {
		hours, minutes, err := SplitTime(value[1:])
		if err != nil {
			return Bound{}, err
		}
		if minutes > 60 {
			return Bound{}, errors.NewParse(value, "minutes out of range")
		}
		d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
		if value[0] == '-' {
			d = -d
		}
		return DeltaBound(d), nil
	}

	hours, minutes, err := SplitTime(value)
	if err != nil {
		return Bound{}, err
	}
	if hours > 23 || minutes > 59 {
		return Bound{}, errors.NewParse(value, "not a valid time of day")
	}
	return ClockBound(TimeOfDay{Hour: hours, Minute: minutes}), nil
}

// Normalize resolves raw since/until bounds into two absolute datetimes,
// anchored on the end time of the last known fact and the current instant.
//
// Resolution runs in dependency order: anchors first, directly resolvable
// bounds second, then bounds that need the other side's resolved value
// (a negative since offset means "this long before until"). The resolved
// interval must be non-empty and causally ordered.
func Normalize(last *time.Time, since, until Bound, now time.Time) (time.Time, time.Time, error) {
	if since.Absent() && last == nil {
		return time.Time{}, time.Time{}, errors.NewInvalidRequest(
			"cannot resolve start time: no previous fact known")
	}

	now = now.Truncate(time.Minute)
	nowClock := TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}

	var sinceT, untilT time.Time
	sinceNeedsUntil := false

	// First pass: since, from its anchors.
	switch since.kind {
	case boundAbsent:
		sinceT = last.Truncate(time.Minute)
	case boundClock:
		sinceT = anchorPast(since.clock, nowClock, now)
		// in any case this must be after the last known fact
		if last != nil && sinceT.Before(*last) {
			return time.Time{}, time.Time{}, errors.NewInvalidRange(fmt.Sprintf(
				"start %s is before the last known fact ended (%s)",
				sinceT.Format("15:04"), last.Format("15:04")))
		}
	case boundDelta:
		if since.delta < 0 {
			// "N before until": resolvable only once until is known.
			sinceNeedsUntil = true
		} else {
			if last == nil {
				return time.Time{}, time.Time{}, errors.NewInvalidRequest(
					"cannot resolve start time: no previous fact known")
			}
			sinceT = last.Add(since.delta).Truncate(time.Minute)
		}
	}

	// Second pass: until, which may lean on the resolved since.
	switch until.kind {
	case boundAbsent:
		untilT = now
	case boundClock:
		untilT = anchorPast(until.clock, nowClock, now)
	case boundDelta:
		if until.delta < 0 {
			untilT = now.Add(until.delta)
		} else {
			if sinceNeedsUntil {
				return time.Time{}, time.Time{}, errors.NewInvalidRange(
					"since and until are relative to each other and cannot be resolved")
			}
			untilT = sinceT.Add(until.delta)
		}
	}

	// Third pass: a deferred since now has its sibling value.
	if sinceNeedsUntil {
		sinceT = untilT.Add(since.delta)
	}

	if !sinceT.Before(untilT) {
		return time.Time{}, time.Time{}, errors.NewInvalidRange(fmt.Sprintf(
			"empty or inverted interval: %s .. %s",
			sinceT.Format("15:04"), untilT.Format("15:04")))
	}
	return sinceT, untilT, nil
}

// anchorPast places a time of day on today when it already passed, otherwise
// on yesterday: a time of day later than "now" cannot describe a still-future
// event for a past-logging operation.
func anchorPast(t, nowClock TimeOfDay, now time.Time) time.Time {
	if nowClock.Before(t) {
		return t.OnDay(now.AddDate(0, 0, -1))
	}
	return t.OnDay(now)
}

// ResolveSpec extracts bounds from a combined spec string ("14:00..15:30",
// "1230+5", "+5") and normalizes them against the last fact end and now.
func ResolveSpec(spec string, last *time.Time, now time.Time) (time.Time, time.Time, error) {
	sinceRaw, untilRaw, err := ExtractBounds(spec)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	since, err := ParseComponent(sinceRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	until, err := ParseComponent(untilRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return Normalize(last, since, until, now)
}
