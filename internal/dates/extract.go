// Package dates pulls a resolution deadline out of free text such as a
// market slug, title or description.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/polycache/internal/normalize"
)

var (
	isoPattern    = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	beforePattern = regexp.MustCompile(`(?i)before-?(\d{4})`)
	slugPattern   = regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)-?(\d{1,2})`)
	textPattern   = regexp.MustCompile(`([A-Z][a-z]{2,8}[-.\s]+(?:\d{1,2}(?:st|nd|rd|th)?[-,\s]+)?\d{4})`)
	monthYear     = regexp.MustCompile(`(?i)^[a-z]{3,9}\s+\d{4}$`)
	ordinalSuffix = regexp.MustCompile(`(\d{1,2})(st|nd|rd|th)`)
	extraSpace    = regexp.MustCompile(`\s+`)
)

var monthLayouts = []string{"January 2006", "Jan 2006"}

// Extract returns the first deadline it can find in text.
//
// Cases are tried in order and the first valid date wins:
//  1. an ISO date (2025-12-31)
//  2. "before-2026" meaning the last day of the previous year
//  3. a slug month-day without year (december-31), in now's year
//  4. a capitalised natural-language date (December 31, 2025 or
//     December 2025); month-and-year alone means the last day of that month
func Extract(text string, now time.Time) (time.Time, bool) {
	for _, m := range isoPattern.FindAllStringSubmatch(text, -1) {
		if t, ok := civil(m[1], m[2], m[3]); ok {
			return t, true
		}
	}

	if m := beforePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year-1, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}

	if m := slugPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("January 2 2006", cases.Title(language.English).String(m[1])+" "+m[2]+" "+strconv.Itoa(now.Year())); err == nil {
			return t.UTC(), true
		}
	}

	for _, candidate := range textPattern.FindAllString(text, -1) {
		if t, ok := parseNatural(candidate); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

// SmartExtract tries description then name and formats the result for the
// store, or returns normalize.Unknown.
func SmartExtract(description, name string, now time.Time) string {
	if t, ok := Extract(description, now); ok {
		return t.Format(normalize.StoredLayout)
	}
	if t, ok := Extract(name, now); ok {
		return t.Format(normalize.StoredLayout)
	}
	return normalize.Unknown
}

func civil(y, m, d string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", y+"-"+m+"-"+d)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func parseNatural(candidate string) (time.Time, bool) {
	clean := strings.ReplaceAll(candidate, "-", " ")
	clean = strings.TrimSpace(extraSpace.ReplaceAllString(clean, " "))

	if monthYear.MatchString(clean) {
		for _, layout := range monthLayouts {
			if t, err := time.Parse(layout, clean); err == nil {
				// Month and year only: the deadline is the end of that month.
				return t.AddDate(0, 1, -1).UTC(), true
			}
		}
		return time.Time{}, false
	}

	clean = ordinalSuffix.ReplaceAllString(clean, "$1")
	t, err := dateparse.ParseIn(clean, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
