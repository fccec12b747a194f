package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain/schedule"
)

// DefaultCatalogNumberWidth is the zero-padded width of catalog numbers in the index.
const DefaultCatalogNumberWidth = 3

// Store field names of an indexed class section.
const (
	FieldClassNumber            = "class_number"
	FieldSubject                = "subject"
	FieldSubjectDescription     = "subject_description"
	FieldCatalogNumber          = "catalog_number"
	FieldTitle                  = "title"
	FieldDescription            = "description"
	FieldInstructors            = "instructors"
	FieldAcademicCareer         = "academic_career"
	FieldCampus                 = "campus"
	FieldInstructionMode        = "instruction_mode"
	FieldSessionCode            = "session_code"
	FieldComponent              = "component"
	FieldClassStatus            = "class_status"
	FieldFeeStructure           = "fee_structure"
	FieldRequirementDesignation = "requirement_designation"
	FieldCourseID               = "course_id"
	FieldMeetingDays            = "meeting_days"
	FieldCourseAttributes       = "course_attributes"
	FieldCreditsMin             = "credits_min"
	FieldCreditsMax             = "credits_max"
	FieldCreditsSpread          = "credits_spread"
	FieldStartMinute            = "start_minute"
	FieldEndMinute              = "end_minute"
	FieldAvailableSeats         = "available_seats"
	FieldWaitlistAvailable      = "waitlist_available"
	FieldEnrollmentTotal        = "enrollment_total"
)

// Meeting-time windows on a section's start minute.
var meetingWindows = map[string]Interval{
	"morning":   {Lo: 0, Hi: 12 * 60},
	"afternoon": {Lo: 12 * 60, Hi: 17 * 60},
	"evening":   {Lo: 17 * 60, Hi: 24 * 60},
}

// Sections is the filter table for class sections. width pads catalog numbers;
// non-positive width uses DefaultCatalogNumberWidth.
func Sections(width int) Table {
	if width <= 0 {
		width = DefaultCatalogNumberWidth
	}
	return MustTable(
		Spec{Name: "subject", Kind: Exact, StoreField: FieldSubject, Resolvable: true},
		Spec{Name: "catalog_number", Kind: Prefix, StoreField: FieldCatalogNumber, Width: width},
		Spec{Name: "level", Kind: Prefix, StoreField: FieldCatalogNumber, Normalize: levelPattern},
		Spec{
			Name: "academic_level", Kind: Exact, StoreField: FieldAcademicCareer, Resolvable: true,
			Aliases: map[string]string{
				"undergraduate": "UGRD", "undergrad": "UGRD",
				"graduate": "GRAD", "grad": "GRAD",
			},
		},
		Spec{Name: "campus", Kind: Exact, StoreField: FieldCampus, Resolvable: true},
		Spec{
			Name: "instruction_mode", Kind: Exact, StoreField: FieldInstructionMode, Resolvable: true,
			Aliases: map[string]string{
				"in person": "P", "in-person": "P",
				"online": "IN",
				"hybrid": "HY",
				"remote": "RM",
			},
		},
		Spec{Name: "session", Kind: Exact, StoreField: FieldSessionCode, Resolvable: true},
		Spec{
			Name: "class_type", Kind: Exact, StoreField: FieldComponent, Resolvable: true,
			Aliases: map[string]string{
				"lecture": "LEC", "lab": "LAB", "laboratory": "LAB",
				"seminar": "SEM", "discussion": "DIS", "recitation": "REC",
				"independent study": "IND",
			},
		},
		Spec{Name: "status", Kind: Exact, StoreField: FieldClassStatus},
		Spec{
			Name: "fee_structure", Kind: Exact, StoreField: FieldFeeStructure,
			Aliases: map[string]string{"standard": "std", "alternative": "alt"},
		},
		Spec{
			Name: "requirement_designation", Kind: Exact, StoreField: FieldRequirementDesignation, Resolvable: true,
			Aliases: map[string]string{"honors": "HON", "service learning": "SERV"},
		},
		Spec{Name: "course_id", Kind: Exact, StoreField: FieldCourseID},
		Spec{Name: "days", Kind: AllOf, StoreField: FieldMeetingDays, Normalize: weekdayName},
		Spec{Name: "any_days", Kind: AnyOf, StoreField: FieldMeetingDays, Normalize: weekdayName},
		Spec{Name: "foundations", Kind: AnyOf, StoreField: FieldCourseAttributes},
		Spec{Name: "credits", Kind: Range, StoreField: FieldCreditsMin, Bound: EQ},
		Spec{Name: "min_credits", Kind: Range, StoreField: FieldCreditsMin, Bound: GTE},
		Spec{Name: "max_credits", Kind: Range, StoreField: FieldCreditsMax, Bound: LTE},
		Spec{Name: "variable_credits", Kind: Flag, StoreField: FieldCreditsSpread},
		Spec{Name: "start_after", Kind: Range, StoreField: FieldStartMinute, Bound: GTE, Unit: TimeOfDay},
		Spec{Name: "end_before", Kind: Range, StoreField: FieldEndMinute, Bound: LTE, Unit: TimeOfDay},
		Spec{Name: "meeting_time", Kind: Window, StoreField: FieldStartMinute, Windows: meetingWindows},
		Spec{Name: "open_seats", Kind: Flag, StoreField: FieldAvailableSeats},
		Spec{Name: "waitlist_open", Kind: Flag, StoreField: FieldWaitlistAvailable},
		Spec{Name: "instructor", Kind: Text, Text: []Weighted{{Field: FieldInstructors, Weight: 1}}},
		Spec{Name: "query", Kind: Text, Text: []Weighted{
			{Field: FieldTitle, Weight: 3},
			{Field: FieldSubjectDescription, Weight: 2},
			{Field: FieldInstructors, Weight: 2},
			{Field: FieldDescription, Weight: 1},
		}},
	)
}

var levelRe = regexp.MustCompile(`^([1-9])(?:\d{2}|xx|00s)?(?:[- ]?level)?$`)

// levelPattern turns "300-level", "3xx", "300s" or "3" into the wildcard "3*".
func levelPattern(s string) (string, error) {
	m := levelRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return "", fmt.Errorf("unrecognized course level %q", s)
	}
	return m[1] + "*", nil
}

func weekdayName(s string) (string, error) {
	d, err := schedule.ParseWeekday(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// PadCatalogNumber left-pads purely numeric catalog numbers with zeros to width.
// Values with letters or wildcards, or already at width, are returned unchanged.
func PadCatalogNumber(s string, width int) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) >= width {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return strings.Repeat("0", width-len(s)) + s
}
