package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the canonical document date layout.
const ISODate = "2006-01-02"

var (
	dateNoise     = regexp.MustCompile(`[^\d/.\-]`)
	dateSeparator = regexp.MustCompile(`[./\-]`)
)

// Today returns the current date in ISO layout.
func Today() string {
	return time.Now().Format(ISODate)
}

// NormalizeDate turns a separator-delimited date triplet into YYYY-MM-DD.
// A four digit first component is taken as already year-first; anything
// else is read as day-month-year. Empty or unparseable input resolves to today.
func NormalizeDate(raw string) string {
	return NormalizeDateAt(raw, time.Now())
}

// NormalizeDateAt is NormalizeDate with an explicit reference time for the fallback.
func NormalizeDateAt(raw string, now time.Time) string {
	fallback := now.Format(ISODate)

	cleaned := dateNoise.ReplaceAllString(strings.TrimSpace(raw), "")
	if cleaned == "" {
		return fallback
	}

	parts := dateSeparator.Split(cleaned, -1)
	if len(parts) != 3 {
		return fallback
	}
	for _, p := range parts {
		if p == "" {
			return fallback
		}
		if _, err := strconv.Atoi(p); err != nil {
			return fallback
		}
	}

	if len(parts[0]) == 4 {
		return fmt.Sprintf("%s-%s-%s", parts[0], pad2(parts[1]), pad2(parts[2]))
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[1]), pad2(parts[0]))
}

// Year returns the year of an ISO date, or 0 when it cannot be read.
func Year(isoDate string) int {
	if len(isoDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(isoDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// ParseDate parses an ISO date, returning the zero time on failure.
func ParseDate(isoDate string) time.Time {
	t, err := time.Parse(ISODate, isoDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
