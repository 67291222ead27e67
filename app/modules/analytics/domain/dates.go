package analyticsdomain

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// DateLayout is the canonical sortable representation of a calendar date.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// NormalizedDate is a raw date string paired with its parsed calendar day.
type NormalizedDate struct {
	Raw  string
	Time time.Time
	OK   bool
}

// Key returns the canonical YYYY-MM-DD form, or the trimmed raw text when the
// date could not be parsed.
func (d NormalizedDate) Key() string {
	if !d.OK {
		return strings.TrimSpace(d.Raw)
	}
	return d.Time.Format(DateLayout)
}

// Compare orders parsed dates chronologically; unparsed dates sort after all
// parsed ones, by raw text.
func (d NormalizedDate) Compare(o NormalizedDate) int {
	switch {
	case d.OK && !o.OK:
		return -1
	case !d.OK && o.OK:
		return 1
	case !d.OK && !o.OK:
		return strings.Compare(d.Raw, o.Raw)
	}
	return d.Time.Compare(o.Time)
}

// DateNormalizer turns stored date text into calendar days. Fixed layouts are
// tried first; free text ("next friday") falls back to natural-language parsing
// relative to Now.
type DateNormalizer struct {
	parser *when.Parser
	Now    func() time.Time
}

// NewDateNormalizer builds a normalizer with English and common rules.
func NewDateNormalizer() *DateNormalizer {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &DateNormalizer{parser: w, Now: time.Now}
}

// Normalize parses raw into a UTC calendar day.
func (n *DateNormalizer) Normalize(raw string) NormalizedDate {
	out := NormalizedDate{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return out
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out.Time = truncateDay(t)
			out.OK = true
			return out
		}
	}
	if n.parser == nil || numericOnly(s) {
		return out
	}
	r, err := n.parser.Parse(s, n.Now())
	if err != nil || r == nil {
		return out
	}
	// Partial matches ("Round 3 at 5pm") would re-date the row to Now.
	if r.Index != 0 || !strings.EqualFold(strings.TrimSpace(r.Text), s) {
		return out
	}
	out.Time = truncateDay(r.Time)
	out.OK = true
	return out
}

// numericOnly reports whether s holds only digits and date separators. Such
// text either matched a fixed layout or is not a valid date.
func numericOnly(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case strings.ContainsRune("-/.:T ", c):
		default:
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
