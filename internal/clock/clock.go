package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unset is the on-the-wire value of both fields of a time that has not been configured.
const Unset = -1

// NotConfiguredLabel is displayed for a notification time that has not been set.
const NotConfiguredLabel = "Not configured"

const minutesPerDay = 24 * 60

var twelveHourRe = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*(am|pm)\s*$`)

// Time is a wall-clock time of day on a 24-hour clock.
type Time struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Sentinel returns the wire encoding of "not configured".
func Sentinel() Time {
	return Time{Hour: Unset, Minute: Unset}
}

// Valid reports whether t is a real time of day.
func (t Time) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String renders t as "HH:MM".
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// FormatError is returned when a time string is not of the form "H:MM am|pm".
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time format: %q", e.Input)
}

// To24Hour converts "H:MM am|pm" into a 24-hour Time.
// 12 am becomes hour 0 and 12 pm stays hour 12.
func To24Hour(s string) (Time, error) {
	m := twelveHourRe.FindStringSubmatch(s)
	if m == nil {
		return Time{}, &FormatError{Input: s}
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return Time{}, &FormatError{Input: s}
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return Time{}, &FormatError{Input: s}
	}

	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return Time{Hour: hour, Minute: minute}, nil
}

// SubtractMinutes returns the time n minutes before hour:minute, wrapping
// around midnight as many times as needed.
func SubtractMinutes(hour, minute, n int) Time {
	total := (hour*60 + minute - n) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return Time{Hour: total / 60, Minute: total % 60}
}

// Format renders hour:minute on a 12-hour clock, e.g. "1:05 PM".
func Format(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	displayHour := hour
	switch {
	case hour > 12:
		displayHour = hour - 12
	case hour == 0:
		displayHour = 12
	}
	return fmt.Sprintf("%d:%02d %s", displayHour, minute, period)
}

// FormatPreference formats a notification time, or returns NotConfiguredLabel.
func FormatPreference(t *Time) string {
	if !IsConfigured(t) {
		return NotConfiguredLabel
	}
	return Format(t.Hour, t.Minute)
}

// IsConfigured reports whether t is present and not the sentinel.
func IsConfigured(t *Time) bool {
	return t != nil && t.Hour != Unset && t.Minute != Unset
}
