package timespec

import (
	"testing"

	"github.com/hyiltiz/timetra.diary/internal/errors"
)

func TestExtractBounds(t *testing.T) {
	tests := []struct {
		spec  string
		since string
		until string
	}{
		// explicit since..until
		{"14:00..15:30", "14:00", "15:30"},
		{"1230..1300", "1230", "1300"},
		{"20..45", "20", "45"},
		{"+5..+30", "+5", "+30"},
		{"-30..14:00", "-30", "14:00"},
		{"14:00..+90", "14:00", "+90"},
		// shorthand "<time><+N>"
		{"1230+5", "1230", "+5"},
		{"14:00+45", "14:00", "+45"},
		// shorthand bare relative
		{"+5", "+5", ""},
		{"-15", "-15", ""},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			since, until, err := ExtractBounds(tt.spec)
			if err != nil {
				t.Fatalf("ExtractBounds(%q) failed: %v", tt.spec, err)
			}
			if since != tt.since || until != tt.until {
				t.Errorf("ExtractBounds(%q) = (%q, %q), want (%q, %q)",
					tt.spec, since, until, tt.since, tt.until)
			}
		})
	}
}

func TestExtractBounds_FirstMatchWins(t *testing.T) {
	// "1230+5" also looks like it could start a "..'" expression; the
	// shorthand shape must win once the explicit shape fails to match.
	since, until, err := ExtractBounds("1230+5")
	if err != nil {
		t.Fatalf("ExtractBounds failed: %v", err)
	}
	if since != "1230" || until != "+5" {
		t.Errorf("got (%q, %q), want (1230, +5)", since, until)
	}
}

func TestExtractBounds_NoMatch(t *testing.T) {
	for _, spec := range []string{"", "hello", "14:00..", "..15:00", "14:00--15:00", "5+"} {
		_, _, err := ExtractBounds(spec)
		if !errors.Is(err, errors.ErrParse) {
			t.Errorf("ExtractBounds(%q) should fail with ErrParse, got %v", spec, err)
		}
	}
}

func TestExtractBounds_NamesOffendingInput(t *testing.T) {
	_, _, err := ExtractBounds("garbage")
	tErr, ok := err.(*errors.TimetraError)
	if !ok {
		t.Fatalf("expected TimetraError, got %T", err)
	}
	if tErr.Details["input"] != "garbage" {
		t.Errorf("error should name the offending input, got %v", tErr.Details)
	}
}
