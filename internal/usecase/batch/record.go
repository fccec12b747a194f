package batch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/clock"
	"github.com/kailas-cloud/classdex/internal/domain/schedule"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
)

// File is a section fixture: one term and its sections.
type File struct {
	Term     string   `yaml:"term"`
	Sections []Record `yaml:"sections"`
}

// Meeting is a weekly meeting as written in a fixture.
type Meeting struct {
	Days  []string `yaml:"days" json:"days"`
	Start string   `yaml:"start" json:"start"`
	End   string   `yaml:"end" json:"end"`
}

// Record is one section as written in a fixture. Times are strings such as
// "10:00 AM"; AvailableSeats defaults to capacity minus enrollment.
type Record struct {
	ClassNumber            string   `yaml:"class_number" json:"class_number"`
	Subject                string   `yaml:"subject" json:"subject"`
	SubjectDescription     string   `yaml:"subject_description" json:"subject_description"`
	CatalogNumber          string   `yaml:"catalog_number" json:"catalog_number"`
	Title                  string   `yaml:"title" json:"title"`
	Description            string   `yaml:"description" json:"description"`
	Instructors            []string `yaml:"instructors" json:"instructors"`
	AcademicCareer         string   `yaml:"academic_career" json:"academic_career"`
	Campus                 string   `yaml:"campus" json:"campus"`
	InstructionMode        string   `yaml:"instruction_mode" json:"instruction_mode"`
	InstructionModeLabel   string   `yaml:"instruction_mode_label" json:"instruction_mode_label"`
	SessionCode            string   `yaml:"session_code" json:"session_code"`
	Component              string   `yaml:"component" json:"component"`
	ClassStatus            string   `yaml:"class_status" json:"class_status"`
	FeeStructure           string   `yaml:"fee_structure" json:"fee_structure"`
	RequirementDesignation string   `yaml:"requirement_designation" json:"requirement_designation"`
	CourseID               string   `yaml:"course_id" json:"course_id"`
	Attributes             []string `yaml:"attributes" json:"attributes"`
	Location               string   `yaml:"location" json:"location"`
	StartDate              string   `yaml:"start_date" json:"start_date"`
	EndDate                string   `yaml:"end_date" json:"end_date"`
	CreditsMin             float64  `yaml:"credits_min" json:"credits_min"`
	CreditsMax             float64  `yaml:"credits_max" json:"credits_max"`
	Capacity               int      `yaml:"capacity" json:"capacity"`
	EnrollmentTotal        int      `yaml:"enrollment_total" json:"enrollment_total"`
	AvailableSeats         *int     `yaml:"available_seats" json:"available_seats"`
	WaitlistCapacity       int      `yaml:"waitlist_capacity" json:"waitlist_capacity"`
	WaitlistTotal          int      `yaml:"waitlist_total" json:"waitlist_total"`
	Meeting                *Meeting `yaml:"meeting" json:"meeting"`
}

// DecodeFile reads a YAML fixture. Unknown keys are rejected.
func DecodeFile(r io.Reader) (File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, domain.NewValidation("file", "empty fixture")
		}
		return File{}, domain.NewValidation("file", "%v", err)
	}
	return f, nil
}

// Section validates the record and converts it to a domain section.
func (r Record) Section() (domsec.Section, error) {
	num := strings.TrimSpace(r.ClassNumber)
	switch {
	case num == "":
		return domsec.Section{}, domain.NewValidation("class_number", "is required")
	case strings.Trim(num, "0123456789") != "":
		return domsec.Section{}, domain.NewValidation("class_number", "%q is not numeric", num)
	case strings.TrimSpace(r.Subject) == "":
		return domsec.Section{}, domain.NewValidation("subject", "is required")
	case strings.TrimSpace(r.CatalogNumber) == "":
		return domsec.Section{}, domain.NewValidation("catalog_number", "is required")
	case strings.TrimSpace(r.Title) == "":
		return domsec.Section{}, domain.NewValidation("title", "is required")
	case r.CreditsMin < 0 || r.CreditsMax < 0:
		return domsec.Section{}, domain.NewValidation("credits", "must not be negative")
	case r.Capacity < 0 || r.EnrollmentTotal < 0 || r.WaitlistCapacity < 0 || r.WaitlistTotal < 0:
		return domsec.Section{}, domain.NewValidation("enrollment", "counts must not be negative")
	}

	creditsMax := r.CreditsMax
	if creditsMax < r.CreditsMin {
		creditsMax = r.CreditsMin
	}
	available := max(r.Capacity-r.EnrollmentTotal, 0)
	if r.AvailableSeats != nil {
		available = max(*r.AvailableSeats, 0)
	}

	s := domsec.Section{
		ClassNumber:            num,
		Subject:                strings.ToUpper(strings.TrimSpace(r.Subject)),
		SubjectDescription:     r.SubjectDescription,
		CatalogNumber:          strings.TrimSpace(r.CatalogNumber),
		Title:                  strings.TrimSpace(r.Title),
		Description:            r.Description,
		Instructors:            r.Instructors,
		AcademicCareer:         r.AcademicCareer,
		Campus:                 r.Campus,
		InstructionMode:        r.InstructionMode,
		InstructionModeLabel:   r.InstructionModeLabel,
		SessionCode:            r.SessionCode,
		Component:              r.Component,
		ClassStatus:            r.ClassStatus,
		FeeStructure:           r.FeeStructure,
		RequirementDesignation: r.RequirementDesignation,
		CourseID:               r.CourseID,
		Attributes:             r.Attributes,
		Location:               r.Location,
		StartDate:              r.StartDate,
		EndDate:                r.EndDate,
		CreditsMin:             r.CreditsMin,
		CreditsMax:             creditsMax,
		Capacity:               r.Capacity,
		EnrollmentTotal:        r.EnrollmentTotal,
		AvailableSeats:         available,
		WaitlistCapacity:       r.WaitlistCapacity,
		WaitlistTotal:          r.WaitlistTotal,
	}

	if r.Meeting != nil {
		b, err := r.Meeting.block()
		if err != nil {
			return domsec.Section{}, err
		}
		s.Meeting = &b
	}
	return s, nil
}

func (m Meeting) block() (schedule.Block, error) {
	days, err := schedule.ParseDays(m.Days)
	if err != nil {
		return schedule.Block{}, domain.Relabel("meeting.days", err)
	}
	start, err := clock.Parse(m.Start)
	if err != nil {
		return schedule.Block{}, domain.Relabel("meeting.start", err)
	}
	end, err := clock.Parse(m.End)
	if err != nil {
		return schedule.Block{}, domain.Relabel("meeting.end", err)
	}
	b, err := schedule.NewBlock(days, start, end)
	if err != nil {
		return schedule.Block{}, domain.Relabel("meeting", err)
	}
	return b, nil
}

// String identifies the record in logs.
func (r Record) String() string {
	return fmt.Sprintf("%s %s #%s", r.Subject, r.CatalogNumber, r.ClassNumber)
}
