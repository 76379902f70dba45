package domain

import (
	"regexp"
	"time"
)

var calendarDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsCalendarDate reports whether s matches the YYYY-MM-DD shape the upstream
// uses for service dates.
func IsCalendarDate(s string) bool {
	return calendarDateRe.MatchString(s)
}

// DateForOffset returns today's date shifted by offsetDays, formatted as
// YYYY-MM-DD in local time.
func DateForOffset(offsetDays int) string {
	return time.Now().AddDate(0, 0, offsetDays).Format("2006-01-02")
}
