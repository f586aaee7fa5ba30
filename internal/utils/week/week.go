// Package week handles ISO year-week labels in the YYYY-Www format used
// to key weekly recommendation batches (e.g. "2025-W03").
package week

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var labelRe = regexp.MustCompile(`^\d{4}-W\d{2}$`)

// Label formats t's ISO calendar week as YYYY-Www.
func Label(t time.Time) string {
	year, wk := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, wk)
}

// Current returns the label for the current ISO week in loc.
func Current(loc *time.Location) string {
	return Label(time.Now().In(loc))
}

// Valid reports whether s is a well-formed week label. Week numbers run
// 01..53 per ISO 8601.
func Valid(s string) bool {
	if !labelRe.MatchString(s) {
		return false
	}
	wk, err := strconv.Atoi(s[6:])
	if err != nil {
		return false
	}
	return wk >= 1 && wk <= 53
}
