// Package schedule models weekly meeting patterns as day sets plus half-open minute intervals.
package schedule

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain/clock"
)

// Weekday is Monday-based, unlike time.Weekday.
type Weekday uint8

// Weekdays in calendar order.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// abbreviations seen in section data: "M", "Tu", "Th", "Sa", "Su", "W", "F" and three-letter forms.
var weekdayAliases = map[string]Weekday{
	"m": Monday, "mo": Monday, "mon": Monday,
	"tu": Tuesday, "tue": Tuesday, "tues": Tuesday,
	"w": Wednesday, "we": Wednesday, "wed": Wednesday,
	"th": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday,
	"f": Friday, "fr": Friday, "fri": Friday,
	"sa": Saturday, "sat": Saturday,
	"su": Sunday, "sun": Sunday,
}

func (d Weekday) String() string {
	if int(d) < len(weekdayNames) {
		return weekdayNames[d]
	}
	return fmt.Sprintf("Weekday(%d)", d)
}

// ParseWeekday accepts full names and the usual abbreviations, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if key == strings.ToLower(name) {
			return Weekday(i), nil
		}
	}
	if d, ok := weekdayAliases[key]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// DaySet is a bitmask of weekdays.
type DaySet uint8

// NewDaySet builds a set from days; duplicates collapse.
func NewDaySet(days ...Weekday) DaySet {
	var s DaySet
	for _, d := range days {
		s |= 1 << d
	}
	return s
}

// ParseDays parses every name, failing on the first unknown one.
func ParseDays(names []string) (DaySet, error) {
	var s DaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return 0, err
		}
		s |= 1 << d
	}
	return s, nil
}

// Has reports whether d is in the set.
func (s DaySet) Has(d Weekday) bool { return s&(1<<d) != 0 }

// Intersects reports whether the sets share a day.
func (s DaySet) Intersects(o DaySet) bool { return s&o != 0 }

// Empty reports whether the set has no days.
func (s DaySet) Empty() bool { return s == 0 }

// Days lists members in calendar order.
func (s DaySet) Days() []Weekday {
	var out []Weekday
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Names lists member names in calendar order.
func (s DaySet) Names() []string {
	days := s.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

func (s DaySet) String() string { return strings.Join(s.Names(), "/") }

// Block is a weekly time box: Days at [Start, End) minutes since midnight.
type Block struct {
	Days  DaySet
	Start int
	End   int
}

// NewBlock validates bounds: non-empty days, 0 <= start < end < 1440.
func NewBlock(days DaySet, start, end int) (Block, error) {
	if days.Empty() {
		return Block{}, fmt.Errorf("empty day set")
	}
	if start < 0 || start >= clock.MinutesPerDay {
		return Block{}, fmt.Errorf("start minute %d out of range", start)
	}
	if end < 0 || end >= clock.MinutesPerDay {
		return Block{}, fmt.Errorf("end minute %d out of range", end)
	}
	if start >= end {
		return Block{}, fmt.Errorf("start %s must be before end %s", clock.Format(start), clock.Format(end))
	}
	return Block{Days: days, Start: start, End: end}, nil
}

// Overlaps reports whether b and o share a day and their half-open intervals intersect.
func (b Block) Overlaps(o Block) bool {
	return b.Days.Intersects(o.Days) && b.Start < o.End && b.End > o.Start
}

// Widen pads the interval by pad minutes on both sides. The result may leave [0, 1440).
func (b Block) Widen(pad int) Block {
	return Block{Days: b.Days, Start: b.Start - pad, End: b.End + pad}
}

func (b Block) String() string {
	return b.Days.String() + " " + clock.FormatRange(b.Start, b.End)
}
