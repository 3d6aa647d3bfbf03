package papersources

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	tagPattern           = regexp.MustCompile(`<[^>]*>?`)
	abstractLabelPattern = regexp.MustCompile(`(?i)^abstract[:.]?\s*`)
)

// CleanAbstract strips markup, a leading "Abstract" label and redundant
// whitespace from an abstract. Applying it twice gives the same result as
// applying it once.
func CleanAbstract(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	for abstractLabelPattern.MatchString(text) {
		text = abstractLabelPattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// YearOrCurrent returns up to the first four characters of date, or the
// current year when date is blank.
func YearOrCurrent(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return strconv.Itoa(now.Year())
	}
	if len(date) > 4 {
		return date[:4]
	}
	return date
}

// FirstNonEmpty returns value when it is not blank, otherwise fallback.
func FirstNonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
