package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseClock turns "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AtClock places an "HH:MM" clock on the calendar day of date, in date's location.
func AtClock(date time.Time, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, minutes/60, minutes%60, 0, 0, date.Location()), nil
}

// StartOfDay truncates date to local midnight.
func StartOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// WeekdayIndex returns 0 for Sunday through 6 for Saturday. ISO weekday 7
// folds to 0.
func WeekdayIndex(date time.Time) int {
	return int(date.Weekday()) % 7
}

func ValidWeekday(w int) bool {
	return w >= 0 && w <= 6
}
