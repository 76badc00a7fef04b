package regulation

import (
	"regexp"
	"strings"
	"time"
)

// UnknownDate marks a record whose date is missing or unparseable.
const UnknownDate = "Unknown"

// DateLayout is the canonical stored date form.
const DateLayout = "2006-01-02"

var dateNoise = regexp.MustCompile(`[^\w\s,]`)

var phraseLayouts = []string{"January 2, 2006", "Jan 2, 2006"}

// NormalizeDate converts a "Month D, YYYY" phrase (full or abbreviated month)
// to YYYY-MM-DD. Anything else yields UnknownDate.
func NormalizeDate(phrase string) string {
	s := strings.TrimSpace(dateNoise.ReplaceAllString(phrase, ""))
	for _, layout := range phraseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return UnknownDate
}

// CanonicalDate returns s unchanged when it is already YYYY-MM-DD,
// otherwise the result of NormalizeDate.
func CanonicalDate(s string) string {
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s
	}
	return NormalizeDate(s)
}

// ParseDate parses a canonical date. Unknown dates return false.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// citationDate extracts the trailing date phrase of an eCFR citation, e.g.
// "[Doc. No. FAA-2022-0001, 89 FR 1234, Mar. 10, 2025]".
func citationDate(citation string) string {
	words := strings.Fields(citation)
	if len(words) > 3 {
		words = words[len(words)-3:]
	}
	return NormalizeDate(strings.Join(words, " "))
}
