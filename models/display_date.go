package models

import (
	"regexp"
	"strconv"
	"time"
)

const (
	displayDateScanRunes = 50
	displayDateMinYear   = 2020
	displayDateMaxYear   = 2030
)

// Checked in order, first valid match wins
var displayDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})`),
	regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
	regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`),
	regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`),
}

// DisplayDate looks for a date near the start of content (e.g. "2024.3.15 공연 안내").
// A match yields the following day; anything else yields fallback.
// Best effort only: it never fails
func DisplayDate(content string, fallback time.Time) (result time.Time) {
	defer func() {
		if recover() != nil {
			result = fallback
		}
	}()
	prefix := []rune(content)
	if len(prefix) > displayDateScanRunes {
		prefix = prefix[:displayDateScanRunes]
	}
	text := string(prefix)
	for _, re := range displayDatePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if date, ok := parseDateParts(m[1], m[2], m[3], fallback.Location()); ok {
				return date.AddDate(0, 0, 1)
			}
		}
	}
	return fallback
}

func parseDateParts(y, m, d string, loc *time.Location) (time.Time, bool) {
	year, err1 := strconv.Atoi(y)
	month, err2 := strconv.Atoi(m)
	day, err3 := strconv.Atoi(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < displayDateMinYear || year > displayDateMaxYear {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes 2024.2.30 into March; treat that as no match
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}
