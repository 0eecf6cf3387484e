// Package timespec turns terse, human-typed time expressions ("20", "-1:35",
// "now-5", "14:00..15:30", "+5") into concrete start/end datetimes.
package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hyiltiz/timetra.diary/internal/errors"
)

// TimeOfDay is a wall-clock hour/minute pair without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String formats the time of day as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// AsDuration returns the time of day read as a duration from midnight.
// Used when a clock-shaped token actually encodes an offset ("now-1:35").
func (t TimeOfDay) AsDuration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// OnDay anchors the time of day to the calendar day of ref.
func (t TimeOfDay) OnDay(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

// SplitTime decomposes a token into an (hours, minutes) pair:
//
//	"2:15" → (2, 15)
//	":15"  → (0, 15)
//	"15"   → (0, 15)
//	"205"  → (2, 5)
//
// If the token contains ":" it is split on it; otherwise a token of up to two
// characters is minutes-only, and a longer one has its last two characters
// read as minutes. Missing parts default to 0.
func SplitTime(token string) (int, int, error) {
	var hourPart, minutePart string
	if strings.Contains(token, ":") {
		hourPart, minutePart, _ = strings.Cut(token, ":")
	} else if len(token) <= 2 {
		minutePart = token
	} else {
		hourPart = token[:len(token)-2]
		minutePart = token[len(token)-2:]
	}

	hours, err := atoiDefault(hourPart)
	if err != nil {
		return 0, 0, errors.NewParse(token, "non-numeric hours")
	}
	minutes, err := atoiDefault(minutePart)
	if err != nil {
		return 0, 0, errors.NewParse(token, "non-numeric minutes")
	}
	return hours, minutes, nil
}

// atoiDefault parses an integer, treating the empty string as 0.
func atoiDefault(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ParseTime parses a single clock token and reports whether the value should
// be subtracted from a reference point rather than read as a time of day:
//
//	"20"    → (00:20, false)
//	"-1:35" → (01:35, true)
//	"now"   → current time of day, false
//	"now-5" → current time of day minus 5 minutes, false
//
// The subtraction encoded by "now-N" is resolved immediately; the leading "-"
// form defers the interpretation to the caller.
func ParseTime(token string, now time.Time) (TimeOfDay, bool, error) {
	if token == "now" {
		return TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}, false, nil
	}

	if rest, ok := strings.CutPrefix(token, "now-"); ok {
		if strings.Contains(rest, "-") {
			return TimeOfDay{}, false, errors.NewParse(token, "multiple '-' separators")
		}
		offset, _, err := ParseTime(rest, now)
		if err != nil {
			return TimeOfDay{}, false, err
		}
		start := now.Add(-offset.AsDuration())
		return TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}, false, nil
	}

	subtract := false
	if rest, ok := strings.CutPrefix(token, "-"); ok {
		subtract = true
		token = rest
	}

	hours, minutes, err := SplitTime(token)
	if err != nil {
		return TimeOfDay{}, false, err
	}
	if hours > 23 {
		return TimeOfDay{}, false, errors.NewParse(token, "hour out of range")
	}
	if minutes > 59 {
		return TimeOfDay{}, false, errors.NewParse(token, "minute out of range")
	}
	return TimeOfDay{Hour: hours, Minute: minutes}, subtract, nil
}

// ParseTimeToDatetime parses a clock token into an absolute datetime on the
// calendar day of relativeTo. A resolved time later than relativeTo is moved
// back one day: a time of day in the future cannot describe an event being
// logged in the past. Returns nil for empty input.
func ParseTimeToDatetime(token string, relativeTo time.Time) (*time.Time, error) {
	if token == "" {
		return nil, nil
	}
	parsed, _, err := ParseTime(token, relativeTo)
	if err != nil {
		return nil, err
	}

	base := relativeTo.Truncate(time.Minute)
	resolved := parsed.OnDay(base)
	if base.Before(resolved) {
		resolved = resolved.AddDate(0, 0, -1)
	}
	return &resolved, nil
}

// ParseDelta parses an "HH:MM"-shaped token into a duration. Returns nil for
// empty input (no duration, as opposed to a zero one).
func ParseDelta(token string) (*time.Duration, error) {
	if token == "" {
		return nil, nil
	}
	hours, minutes, err := SplitTime(token)
	if err != nil {
		return nil, err
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	return &d, nil
}
