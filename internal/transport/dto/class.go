package dto

import (
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// ClassSummary is a section as listed in search results.
type ClassSummary struct {
	ClassNumber     string   `json:"class_number"`
	Subject         string   `json:"subject"`
	CatalogNumber   string   `json:"catalog_number"`
	Title           string   `json:"title"`
	Credits         string   `json:"credits"`
	Instructors     []string `json:"instructors"`
	Days            []string `json:"days,omitempty"`
	StartTime       string   `json:"start_time,omitempty"`
	EndTime         string   `json:"end_time,omitempty"`
	Location        string   `json:"location,omitempty"`
	InstructionMode string   `json:"instruction_mode,omitempty"`
	Capacity        int      `json:"capacity"`
	AvailableSeats  int      `json:"available_seats"`
	Summary         string   `json:"summary"`
}

// NewClassSummary converts a section.
func NewClassSummary(s *domsec.Section) ClassSummary {
	out := ClassSummary{
		ClassNumber:     s.ClassNumber,
		Subject:         s.Subject,
		CatalogNumber:   s.CatalogNumber,
		Title:           s.Title,
		Credits:         s.Credits(),
		Instructors:     nonNil(s.Instructors),
		Location:        s.Location,
		InstructionMode: s.InstructionMode,
		Capacity:        s.Capacity,
		AvailableSeats:  s.AvailableSeats,
		Summary:         s.Summary(),
	}
	if s.Meeting != nil {
		out.Days = s.Meeting.Days.Names()
		out.StartTime, out.EndTime = s.MeetingTimes()
	}
	return out
}

// ClassDetail is the full view of one section.
type ClassDetail struct {
	ClassSummary
	SubjectDescription     string              `json:"subject_description,omitempty"`
	Description            string              `json:"description,omitempty"`
	AcademicCareer         string              `json:"academic_career,omitempty"`
	Campus                 string              `json:"campus,omitempty"`
	SessionCode            string              `json:"session_code,omitempty"`
	Component              string              `json:"component,omitempty"`
	ClassStatus            string              `json:"class_status,omitempty"`
	RequirementDesignation string              `json:"requirement_designation,omitempty"`
	Attributes             []string            `json:"attributes,omitempty"`
	StartDate              string              `json:"start_date,omitempty"`
	EndDate                string              `json:"end_date,omitempty"`
	Availability           domsec.Availability `json:"availability"`
	Details                string              `json:"details"`
}

// NewClassDetail converts a section.
func NewClassDetail(s *domsec.Section) ClassDetail {
	return ClassDetail{
		ClassSummary:           NewClassSummary(s),
		SubjectDescription:     s.SubjectDescription,
		Description:            s.Description,
		AcademicCareer:         s.AcademicCareer,
		Campus:                 s.Campus,
		SessionCode:            s.SessionCode,
		Component:              s.Component,
		ClassStatus:            s.ClassStatus,
		RequirementDesignation: s.RequirementDesignation,
		Attributes:             s.Attributes,
		StartDate:              s.StartDate,
		EndDate:                s.EndDate,
		Availability:           s.Availability(),
		Details:                s.Details(),
	}
}

// ClassDetailsResponse lists found sections and the class numbers that were not.
type ClassDetailsResponse struct {
	Term     string        `json:"term"`
	Classes  []ClassDetail `json:"classes"`
	NotFound []string      `json:"not_found,omitempty"`
}

// NewClassDetailsResponse converts a details lookup.
func NewClassDetailsResponse(t term.Term, found []domsec.Section, missing []string) ClassDetailsResponse {
	out := ClassDetailsResponse{Term: t.String(), Classes: make([]ClassDetail, len(found)), NotFound: missing}
	for i := range found {
		out.Classes[i] = NewClassDetail(&found[i])
	}
	return out
}

// AvailabilityResponse lists seat availability per class.
type AvailabilityResponse struct {
	Term     string                `json:"term"`
	Classes  []domsec.Availability `json:"classes"`
	NotFound []string              `json:"not_found,omitempty"`
}

// OptionsResponse lists the values a filter takes.
type OptionsResponse struct {
	Term    string          `json:"term"`
	Field   string          `json:"field"`
	Options []catalog.Entry `json:"options"`
}

// NewOptionsResponse converts a catalog.
func NewOptionsResponse(t term.Term, field string, c catalog.Catalog) OptionsResponse {
	return OptionsResponse{Term: t.String(), Field: field, Options: nonNil(c)}
}

// ResolveResponse is the outcome of resolving one value.
type ResolveResponse struct {
	Field       string   `json:"field"`
	Input       string   `json:"input"`
	Matched     bool     `json:"matched"`
	Value       string   `json:"value,omitempty"`
	Strategy    string   `json:"strategy,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// NewResolveResponse converts a resolution.
func NewResolveResponse(field, input string, r resolve.Result) ResolveResponse {
	return ResolveResponse{
		Field:       field,
		Input:       input,
		Matched:     r.Matched,
		Value:       r.Value,
		Strategy:    string(r.Strategy),
		Suggestions: r.Suggestions,
	}
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
