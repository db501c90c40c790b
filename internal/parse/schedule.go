package parse

import (
	"regexp"
)

// scheduleRe matches "H:MM am|pm <separator> H:MM am|pm" anywhere in the text.
// The separator is the Spanish "a", "to" or a dash. Hours are not range-checked
// here; clock.To24Hour rejects impossible values.
var scheduleRe = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(am|pm)\s*(?:a|to|-|–)\s*(\d{1,2}:\d{2})\s*(am|pm)`)

// ParsedSchedule holds the opening and closing times of an office in their
// original 12-hour form, e.g. "8:00 am".
type ParsedSchedule struct {
	OpenTime  string
	CloseTime string
}

// ParseSchedule extracts the open and close times from a free-text schedule
// description. The boolean is false when the text has no recognizable schedule.
func ParseSchedule(text string) (ParsedSchedule, bool) {
	m := scheduleRe.FindStringSubmatch(text)
	if m == nil {
		return ParsedSchedule{}, false
	}
	return ParsedSchedule{
		OpenTime:  m[1] + " " + m[2],
		CloseTime: m[3] + " " + m[4],
	}, true
}
