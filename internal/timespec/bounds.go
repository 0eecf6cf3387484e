package timespec

import (
	"regexp"

	"github.com/hyiltiz/timetra.diary/internal/errors"
)

// Accepted textual shapes for a combined since/until expression, in
// first-match-wins order.
const (
	rxTime      = `[0-9]{0,2}:?[0-9]{1,2}`
	rxRel       = `[+-]\d+`
	rxComponent = rxTime + `|` + rxRel
)

var boundShapes = []*regexp.Regexp{
	// explicit "since..until"
	regexp.MustCompile(`^(?P<since>` + rxComponent + `)\.\.(?P<until>` + rxComponent + `)$`),
	// shorthand "1230+5": since this time of day, for N minutes
	regexp.MustCompile(`^(?P<since>` + rxTime + `)(?P<until>\+\d+)$`),
	// shorthand "+5" / "-5": relative offset with no explicit clock time
	regexp.MustCompile(`^(?P<since>` + rxRel + `)$`),
}

// ExtractBounds splits a combined time spec into raw "since" and "until"
// sub-tokens. The until token may be empty depending on the matched shape.
func ExtractBounds(spec string) (since, until string, err error) {
	for _, rx := range boundShapes {
		match := rx.FindStringSubmatch(spec)
		if match == nil {
			continue
		}
		for i, name := range rx.SubexpNames() {
			switch name {
			case "since":
				since = match[i]
			case "until":
				until = match[i]
			}
		}
		return since, until, nil
	}
	return "", "", errors.NewParse(spec, "not a recognized time bounds expression")
}
