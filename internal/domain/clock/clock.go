// Package clock converts human time-of-day strings to minutes since midnight and back.
package clock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain"
)

// MinutesPerDay bounds every minute value: [0, MinutesPerDay).
const MinutesPerDay = 24 * 60

// Parse accepts "H", "H:MM" or "HH:MM" with an optional AM/PM suffix
// (case-insensitive, spacing optional). Without a suffix the hour is read on
// a 24-hour clock.
func Parse(text string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if s == "" {
		return 0, domain.NewValidation("time", "empty time string")
	}

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourText, minuteText, hasMinutes := strings.Cut(s, ":")
	hour, err := parseDigits(hourText)
	if err != nil {
		return 0, domain.NewValidation("time", "invalid hour in %q", text)
	}
	minute := 0
	if hasMinutes {
		if len(minuteText) != 2 {
			return 0, domain.NewValidation("time", "minutes must have two digits in %q", text)
		}
		if minute, err = parseDigits(minuteText); err != nil {
			return 0, domain.NewValidation("time", "invalid minutes in %q", text)
		}
	}
	if minute > 59 {
		return 0, domain.NewValidation("time", "minute out of range in %q", text)
	}

	switch meridiem {
	case "":
		if hour > 23 {
			return 0, domain.NewValidation("time", "hour out of range in %q", text)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, domain.NewValidation("time", "hour out of range in %q", text)
		}
		if meridiem == "PM" && hour < 12 {
			hour += 12
		}
		if meridiem == "AM" && hour == 12 {
			hour = 0
		}
	}
	return hour*60 + minute, nil
}

// parseDigits rejects signs and embedded spaces that strconv.Atoi would accept or misreport.
func parseDigits(s string) (int, error) {
	if s == "" || len(s) > 2 {
		return 0, fmt.Errorf("want 1-2 digits, got %q", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit in %q", s)
		}
	}
	return strconv.Atoi(s)
}

// Format renders minutes as "H:MM AM/PM". Values outside a day wrap around.
func Format(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	hour, minute := minutes/60, minutes%60
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	switch {
	case hour == 0:
		hour = 12
	case hour > 12:
		hour -= 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// FormatRange renders "10:00 AM-10:50 AM".
func FormatRange(start, end int) string {
	return Format(start) + "-" + Format(end)
}
