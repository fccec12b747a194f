package section

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain/schedule"
	"github.com/kailas-cloud/classdex/internal/domain/search/fields"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
)

// instructorSeparator joins instructor names; ';' is a token separator for TEXT fields.
const instructorSeparator = "; "

// Hash-only fields that are stored but never filtered on.
const (
	hashInstructionModeLabel = "instruction_mode_label"
	hashLocation             = "location"
	hashStartDate            = "start_date"
	hashEndDate              = "end_date"
	hashCapacity             = "capacity"
	hashWaitlistCapacity     = "waitlist_capacity"
	hashWaitlistTotal        = "waitlist_total"
)

// sectionToHash converts a section into HSET fields. Catalog numbers are padded
// the same way filter values are, so prefix and exact clauses line up.
func sectionToHash(s domsec.Section, width int) map[string]string {
	m := map[string]string{
		fields.FieldClassNumber:            s.ClassNumber,
		fields.FieldSubject:                s.Subject,
		fields.FieldSubjectDescription:     s.SubjectDescription,
		fields.FieldCatalogNumber:          fields.PadCatalogNumber(s.CatalogNumber, width),
		fields.FieldTitle:                  s.Title,
		fields.FieldDescription:            s.Description,
		fields.FieldInstructors:            strings.Join(s.Instructors, instructorSeparator),
		fields.FieldAcademicCareer:         s.AcademicCareer,
		fields.FieldCampus:                 s.Campus,
		fields.FieldInstructionMode:        s.InstructionMode,
		hashInstructionModeLabel:           s.InstructionModeLabel,
		fields.FieldSessionCode:            s.SessionCode,
		fields.FieldComponent:              s.Component,
		fields.FieldClassStatus:            s.ClassStatus,
		fields.FieldFeeStructure:           s.FeeStructure,
		fields.FieldRequirementDesignation: s.RequirementDesignation,
		fields.FieldCourseID:               s.CourseID,
		fields.FieldCourseAttributes:       strings.Join(s.Attributes, multiValueSeparator),
		hashLocation:                       s.Location,
		hashStartDate:                      s.StartDate,
		hashEndDate:                        s.EndDate,
		fields.FieldCreditsMin:             formatFloat(s.CreditsMin),
		fields.FieldCreditsMax:             formatFloat(s.CreditsMax),
		fields.FieldCreditsSpread:          formatFloat(max(s.CreditsMax-s.CreditsMin, 0)),
		hashCapacity:                       strconv.Itoa(s.Capacity),
		fields.FieldEnrollmentTotal:        strconv.Itoa(s.EnrollmentTotal),
		fields.FieldAvailableSeats:         strconv.Itoa(s.AvailableSeats),
		hashWaitlistCapacity:               strconv.Itoa(s.WaitlistCapacity),
		hashWaitlistTotal:                  strconv.Itoa(s.WaitlistTotal),
		fields.FieldWaitlistAvailable:      strconv.Itoa(s.WaitlistAvailable()),
	}

	// Asynchronous sections carry no day or minute fields, so they never
	// match day or time clauses.
	if s.Meeting != nil {
		m[fields.FieldMeetingDays] = strings.Join(s.Meeting.Days.Names(), multiValueSeparator)
		m[fields.FieldStartMinute] = strconv.Itoa(s.Meeting.Start)
		m[fields.FieldEndMinute] = strconv.Itoa(s.Meeting.End)
	}

	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}

// sectionFromHash hydrates a section from an HGETALL or FT.SEARCH field map.
func sectionFromHash(m map[string]string) (domsec.Section, error) {
	classNumber := m[fields.FieldClassNumber]
	if classNumber == "" {
		return domsec.Section{}, fmt.Errorf("missing %s", fields.FieldClassNumber)
	}

	s := domsec.Section{
		ClassNumber:            classNumber,
		Subject:                m[fields.FieldSubject],
		SubjectDescription:     m[fields.FieldSubjectDescription],
		CatalogNumber:          m[fields.FieldCatalogNumber],
		Title:                  m[fields.FieldTitle],
		Description:            m[fields.FieldDescription],
		Instructors:            splitList(m[fields.FieldInstructors], strings.TrimSpace(instructorSeparator)),
		AcademicCareer:         m[fields.FieldAcademicCareer],
		Campus:                 m[fields.FieldCampus],
		InstructionMode:        m[fields.FieldInstructionMode],
		InstructionModeLabel:   m[hashInstructionModeLabel],
		SessionCode:            m[fields.FieldSessionCode],
		Component:              m[fields.FieldComponent],
		ClassStatus:            m[fields.FieldClassStatus],
		FeeStructure:           m[fields.FieldFeeStructure],
		RequirementDesignation: m[fields.FieldRequirementDesignation],
		CourseID:               m[fields.FieldCourseID],
		Attributes:             splitList(m[fields.FieldCourseAttributes], multiValueSeparator),
		Location:               m[hashLocation],
		StartDate:              m[hashStartDate],
		EndDate:                m[hashEndDate],
		CreditsMin:             parseFloat(m[fields.FieldCreditsMin]),
		CreditsMax:             parseFloat(m[fields.FieldCreditsMax]),
		Capacity:               parseInt(m[hashCapacity]),
		EnrollmentTotal:        parseInt(m[fields.FieldEnrollmentTotal]),
		AvailableSeats:         parseInt(m[fields.FieldAvailableSeats]),
		WaitlistCapacity:       parseInt(m[hashWaitlistCapacity]),
		WaitlistTotal:          parseInt(m[hashWaitlistTotal]),
	}

	meeting, err := meetingFromHash(m)
	if err != nil {
		return domsec.Section{}, fmt.Errorf("class %s: %w", classNumber, err)
	}
	s.Meeting = meeting
	return s, nil
}

func meetingFromHash(m map[string]string) (*schedule.Block, error) {
	days, start, end := m[fields.FieldMeetingDays], m[fields.FieldStartMinute], m[fields.FieldEndMinute]
	if days == "" || start == "" || end == "" {
		return nil, nil
	}
	set, err := schedule.ParseDays(splitList(days, multiValueSeparator))
	if err != nil {
		return nil, err
	}
	lo, err := strconv.Atoi(start)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fields.FieldStartMinute, err)
	}
	hi, err := strconv.Atoi(end)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", fields.FieldEndMinute, err)
	}
	b, err := schedule.NewBlock(set, lo, hi)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
