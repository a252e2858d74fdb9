package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the store.
const DateLayout = "2006-01-02"

// ISOWeek returns the ISO-8601 week number (1-53) of a YYYY-MM-DD date,
// or zero when the date does not parse. Weeks start on Monday and a date
// near year-end can belong to week 1 of the following ISO year.
func ISOWeek(date string) int {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0
	}
	_, week := t.ISOWeek()
	return week
}

// ISOYearWeek returns both the ISO year and week of a date, or zeros when
// the date does not parse.
func ISOYearWeek(date string) (int, int) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, 0
	}
	return t.ISOWeek()
}

// MonthOf returns the YYYY-MM prefix of a date, or "" when the date does
// not parse.
func MonthOf(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format("2006-01")
}

// WeeklyPeriod encodes a (year, week) pair as a period string, e.g.
// "2025-W03". Targets for the weekly variant use this form in the same
// period column as monthly targets.
func WeeklyPeriod(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}
