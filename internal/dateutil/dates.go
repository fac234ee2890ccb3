package dateutil

import "time"

// DateLayout is the calendar-date wire format used everywhere a
// booking date travels as text.
const DateLayout = "2006-01-02"

// MonthLayout is the target-month format of the summary views.
const MonthLayout = "2006-01"

// FormatDate renders a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsToday reports whether dateStr names the same calendar day as now.
// The reference date is always passed in, never read from the system
// clock.
func IsToday(dateStr string, now time.Time) bool {
	return dateStr != "" && dateStr == FormatDate(now)
}

// IsTomorrow reports whether dateStr names the day after now,
// rolling over month and year boundaries.
func IsTomorrow(dateStr string, now time.Time) bool {
	return dateStr != "" && dateStr == FormatDate(now.AddDate(0, 0, 1))
}

// IsThisMonth reports whether dateStr falls in the same year and month
// as now. Empty or malformed input never matches.
func IsThisMonth(dateStr string, now time.Time) bool {
	d, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return false
	}
	return d.Year() == now.Year() && d.Month() == now.Month()
}
