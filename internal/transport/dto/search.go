package dto

import (
	"github.com/kailas-cloud/classdex/internal/domain/conflict"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/search/result"
	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// SearchArgs is a class search as sent over the wire. Filter fields are
// flat and named after the filter they set; empty fields are ignored.
//
//nolint:lll // jsonschema descriptions are read by agents
type SearchArgs struct {
	Term string `json:"term,omitempty" validate:"required,len=4,numeric" jsonschema:"Four-digit term code, e.g. 1263 for Spring 2026"`

	Query                  string   `json:"query,omitempty" validate:"omitempty,min=3,max=200" jsonschema:"Free text matched against title, department, instructors and description"`
	Subject                string   `json:"subject,omitempty" validate:"omitempty,max=64" jsonschema:"Subject code or department name, e.g. CS or computer science"`
	CatalogNumber          string   `json:"catalog_number,omitempty" validate:"omitempty,max=8" jsonschema:"Catalog number; short numbers are zero padded"`
	Level                  string   `json:"level,omitempty" validate:"omitempty,max=16" jsonschema:"Course level such as 300-level, 3xx or 300s"`
	AcademicLevel          string   `json:"academic_level,omitempty" validate:"omitempty,max=32" jsonschema:"undergraduate or graduate (or a career code)"`
	Campus                 string   `json:"campus,omitempty" validate:"omitempty,max=64"`
	InstructionMode        string   `json:"instruction_mode,omitempty" validate:"omitempty,max=32" jsonschema:"in person, online, hybrid or remote"`
	Session                string   `json:"session,omitempty" validate:"omitempty,max=32"`
	ClassType              string   `json:"class_type,omitempty" validate:"omitempty,max=32" jsonschema:"lecture, lab, seminar, discussion, recitation or independent study"`
	Status                 string   `json:"status,omitempty" validate:"omitempty,max=16"`
	FeeStructure           string   `json:"fee_structure,omitempty" validate:"omitempty,max=16"`
	RequirementDesignation string   `json:"requirement_designation,omitempty" validate:"omitempty,max=64" jsonschema:"Requirement designation such as honors"`
	CourseID               string   `json:"course_id,omitempty" validate:"omitempty,max=32"`
	Days                   []string `json:"days,omitempty" validate:"omitempty,max=7,dive,required" jsonschema:"Weekdays the class must meet on, all of them"`
	AnyDays                []string `json:"any_days,omitempty" validate:"omitempty,max=7,dive,required" jsonschema:"Weekdays the class meets on, at least one of them"`
	Foundations            []string `json:"foundations,omitempty" validate:"omitempty,max=16,dive,required" jsonschema:"Course attributes; any one matches"`
	Credits                *float64 `json:"credits,omitempty" validate:"omitempty,gt=0,lte=30" jsonschema:"Exact minimum credit value"`
	MinCredits             *float64 `json:"min_credits,omitempty" validate:"omitempty,gt=0,lte=30"`
	MaxCredits             *float64 `json:"max_credits,omitempty" validate:"omitempty,gt=0,lte=30"`
	VariableCredits        *bool    `json:"variable_credits,omitempty" jsonschema:"true for sections whose credit value is a range, e.g. 1-3"`
	StartAfter             string   `json:"start_after,omitempty" validate:"omitempty,max=16" jsonschema:"Earliest start time, e.g. 9:00 AM or 13:30"`
	EndBefore              string   `json:"end_before,omitempty" validate:"omitempty,max=16" jsonschema:"Latest end time, e.g. 5:00 PM"`
	MeetingTime            string   `json:"meeting_time,omitempty" validate:"omitempty,max=16" jsonschema:"morning, afternoon or evening"`
	OpenSeats              *bool    `json:"open_seats,omitempty" jsonschema:"true for sections with open seats"`
	WaitlistOpen           *bool    `json:"waitlist_open,omitempty" jsonschema:"true for sections with waitlist room"`
	Instructor             string   `json:"instructor,omitempty" validate:"omitempty,min=2,max=100" jsonschema:"Instructor name, fuzzy matched"`

	Avoid         []conflict.AvoidSpec `json:"avoid,omitempty" validate:"omitempty,max=32" jsonschema:"Weekly blocks to keep free; conflicting sections are dropped"`
	BufferMinutes int                  `json:"buffer_minutes,omitempty" validate:"omitempty,min=0,max=180" jsonschema:"Minutes of padding around each avoid block"`

	Page           int    `json:"page,omitempty" validate:"omitempty,min=1,max=10000" jsonschema:"1-based page number"`
	ResultsPerPage int    `json:"results_per_page,omitempty" validate:"omitempty,min=1" jsonschema:"Page size; capped by the server"`
	SortBy         string `json:"sort_by,omitempty" validate:"omitempty,max=32" jsonschema:"catalog_number, title or enrollment; relevance when empty"`
	SortOrder      string `json:"sort_order,omitempty" validate:"omitempty,max=8" jsonschema:"asc or desc"`
}

// Filters collects the set filter fields.
func (a *SearchArgs) Filters() filter.Set {
	set := filter.Set{}
	exact := func(name, v string) {
		if v != "" {
			set[name] = filter.Exact(v)
		}
	}
	values := func(name string, vs []string) {
		if len(vs) > 0 {
			set[name] = filter.Values(vs...)
		}
	}
	number := func(name string, v *float64) {
		if v != nil {
			set[name] = filter.Number(*v)
		}
	}
	flag := func(name string, v *bool) {
		if v != nil {
			set[name] = filter.Flag(*v)
		}
	}
	phrase := func(name, v string) {
		if v != "" {
			set[name] = filter.Phrase(v)
		}
	}

	phrase("query", a.Query)
	exact("subject", a.Subject)
	exact("catalog_number", a.CatalogNumber)
	exact("level", a.Level)
	exact("academic_level", a.AcademicLevel)
	exact("campus", a.Campus)
	exact("instruction_mode", a.InstructionMode)
	exact("session", a.Session)
	exact("class_type", a.ClassType)
	exact("status", a.Status)
	exact("fee_structure", a.FeeStructure)
	exact("requirement_designation", a.RequirementDesignation)
	exact("course_id", a.CourseID)
	values("days", a.Days)
	values("any_days", a.AnyDays)
	values("foundations", a.Foundations)
	number("credits", a.Credits)
	number("min_credits", a.MinCredits)
	number("max_credits", a.MaxCredits)
	flag("variable_credits", a.VariableCredits)
	exact("start_after", a.StartAfter)
	exact("end_before", a.EndBefore)
	exact("meeting_time", a.MeetingTime)
	flag("open_seats", a.OpenSeats)
	flag("waitlist_open", a.WaitlistOpen)
	phrase("instructor", a.Instructor)
	return set
}

// Request validates a and builds a search request within lim.
func (a *SearchArgs) Request(lim request.Limits) (request.Request, error) {
	if err := Validate(a); err != nil {
		return request.Request{}, err
	}
	return request.New(request.Params{
		Term:          a.Term,
		Filters:       a.Filters(),
		Avoid:         a.Avoid,
		BufferMinutes: a.BufferMinutes,
		Page:          a.Page,
		PerPage:       a.ResultsPerPage,
		SortBy:        a.SortBy,
		SortOrder:     a.SortOrder,
	}, lim)
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Term            string         `json:"term"`
	TermDescription string         `json:"term_description"`
	Showing         string         `json:"showing"`
	Page            int            `json:"page"`
	ResultsPerPage  int            `json:"results_per_page"`
	Total           int            `json:"total"`
	TotalPages      int            `json:"total_pages"`
	HasMore         bool           `json:"has_more"`
	ExcludedByAvoid int            `json:"excluded_by_avoid,omitempty"`
	Classes         []ClassSummary `json:"classes"`
}

// NewSearchResponse renders a result page.
func NewSearchResponse(t term.Term, p *result.Page) SearchResponse {
	secs := p.Sections()
	classes := make([]ClassSummary, len(secs))
	for i := range secs {
		classes[i] = NewClassSummary(&secs[i])
	}
	return SearchResponse{
		Term:            t.String(),
		TermDescription: t.Description(),
		Showing:         p.Showing(),
		Page:            p.Page(),
		ResultsPerPage:  p.PerPage(),
		Total:           p.Total(),
		TotalPages:      p.TotalPages(),
		HasMore:         p.HasMore(),
		ExcludedByAvoid: p.Excluded(),
		Classes:         classes,
	}
}
