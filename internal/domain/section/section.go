// Package section defines an indexed class section and its derived views.
package section

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/classdex/internal/domain/clock"
	"github.com/kailas-cloud/classdex/internal/domain/schedule"
)

// Section is one scheduled offering of a course in a term.
type Section struct {
	ClassNumber            string
	Subject                string
	SubjectDescription     string
	CatalogNumber          string
	Title                  string
	Description            string
	Instructors            []string
	AcademicCareer         string
	Campus                 string
	InstructionMode        string
	InstructionModeLabel   string
	SessionCode            string
	Component              string
	ClassStatus            string
	FeeStructure           string
	RequirementDesignation string
	CourseID               string
	Attributes             []string
	Location               string
	StartDate              string
	EndDate                string
	CreditsMin             float64
	CreditsMax             float64
	Capacity               int
	EnrollmentTotal        int
	AvailableSeats         int
	WaitlistCapacity       int
	WaitlistTotal          int
	// Meeting is nil for sections without a fixed weekly meeting time.
	Meeting *schedule.Block
}

// WaitlistAvailable returns the number of open waitlist spots.
func (s Section) WaitlistAvailable() int {
	if n := s.WaitlistCapacity - s.WaitlistTotal; n > 0 {
		return n
	}
	return 0
}

// Credits renders "3" or "1-3".
func (s Section) Credits() string {
	lo := strconv.FormatFloat(s.CreditsMin, 'f', -1, 64)
	if s.CreditsMax <= s.CreditsMin {
		return lo
	}
	return lo + "-" + strconv.FormatFloat(s.CreditsMax, 'f', -1, 64)
}

// Status is the enrollment state of a section.
type Status string

// Enrollment states.
const (
	StatusOpen     Status = "OPEN"
	StatusWaitlist Status = "WAITLIST AVAILABLE"
	StatusFull     Status = "FULL"
)

// Availability is a seat availability snapshot.
type Availability struct {
	ClassNumber      string `json:"class_number"`
	Status           Status `json:"status"`
	Message          string `json:"status_message"`
	Capacity         int    `json:"capacity"`
	Enrolled         int    `json:"enrolled"`
	AvailableSeats   int    `json:"available_seats"`
	WaitlistCapacity int    `json:"waitlist_capacity"`
	WaitlistEnrolled int    `json:"waitlist_enrolled"`
}

// Availability derives the seat status.
func (s Section) Availability() Availability {
	a := Availability{
		ClassNumber:      s.ClassNumber,
		Capacity:         s.Capacity,
		Enrolled:         s.EnrollmentTotal,
		AvailableSeats:   s.AvailableSeats,
		WaitlistCapacity: s.WaitlistCapacity,
		WaitlistEnrolled: s.WaitlistTotal,
	}
	switch {
	case s.AvailableSeats > 0:
		a.Status = StatusOpen
		a.Message = fmt.Sprintf("This class has %d seat(s) available.", s.AvailableSeats)
	case s.WaitlistAvailable() > 0:
		a.Status = StatusWaitlist
		a.Message = fmt.Sprintf("This class is full, but %d waitlist spot(s) are available.", s.WaitlistAvailable())
	default:
		a.Status = StatusFull
		a.Message = "This class is full with no waitlist availability."
	}
	return a
}

func orTBA(s string) string {
	if s == "" {
		return "TBA"
	}
	return s
}

func (s Section) instructorNames() string { return orTBA(strings.Join(s.Instructors, ", ")) }

func (s Section) when() string {
	if s.Meeting == nil {
		return "TBA"
	}
	return s.Meeting.String()
}

func (s Section) mode() string {
	if s.InstructionModeLabel != "" {
		return s.InstructionModeLabel
	}
	return s.InstructionMode
}

// Summary is a four-line description for result lists.
func (s Section) Summary() string {
	return fmt.Sprintf("**%s %s: %s** (Class #%s)\n"+
		"  Credits: %s | Instructor: %s\n"+
		"  Schedule: %s | Location: %s\n"+
		"  Seats: %d/%d available | Mode: %s",
		s.Subject, s.CatalogNumber, s.Title, s.ClassNumber,
		s.Credits(), s.instructorNames(),
		s.when(), orTBA(s.Location),
		s.AvailableSeats, s.Capacity, s.mode())
}

// Details is the full description of one section.
func (s Section) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s %s: %s\n", s.Subject, s.CatalogNumber, s.Title)
	fmt.Fprintf(&b, "**Class Number:** %s\n\n", s.ClassNumber)
	desc := s.Description
	if desc == "" {
		desc = "No description available."
	}
	fmt.Fprintf(&b, "**Description:** %s\n\n", desc)

	b.WriteString("### Schedule & Location\n")
	fmt.Fprintf(&b, "- **Days/Times:** %s\n", s.when())
	fmt.Fprintf(&b, "- **Location:** %s\n", orTBA(s.Location))
	fmt.Fprintf(&b, "- **Dates:** %s to %s\n", s.StartDate, s.EndDate)
	fmt.Fprintf(&b, "- **Session:** %s\n\n", s.SessionCode)

	b.WriteString("### Enrollment\n")
	fmt.Fprintf(&b, "- **Capacity:** %d\n", s.Capacity)
	fmt.Fprintf(&b, "- **Enrolled:** %d\n", s.EnrollmentTotal)
	fmt.Fprintf(&b, "- **Available Seats:** %d\n", s.AvailableSeats)
	fmt.Fprintf(&b, "- **Waitlist:** %d/%d\n\n", s.WaitlistTotal, s.WaitlistCapacity)

	b.WriteString("### Course Info\n")
	fmt.Fprintf(&b, "- **Credits:** %s\n", s.Credits())
	fmt.Fprintf(&b, "- **Instructor(s):** %s\n", s.instructorNames())
	fmt.Fprintf(&b, "- **Instruction Mode:** %s\n", s.mode())
	fmt.Fprintf(&b, "- **Academic Level:** %s\n", s.AcademicCareer)
	fmt.Fprintf(&b, "- **Status:** %s\n\n", s.ClassStatus)

	attrs := strings.Join(s.Attributes, ", ")
	if attrs == "" {
		attrs = "None"
	}
	designation := s.RequirementDesignation
	if designation == "" {
		designation = "None"
	}
	b.WriteString("### Requirements Fulfilled\n")
	fmt.Fprintf(&b, "- **Attributes:** %s\n", attrs)
	fmt.Fprintf(&b, "- **Designation:** %s", designation)
	return b.String()
}

// MeetingTimes renders the start and end as "H:MM AM/PM", or empty strings without a meeting.
func (s Section) MeetingTimes() (start, end string) {
	if s.Meeting == nil {
		return "", ""
	}
	return clock.Format(s.Meeting.Start), clock.Format(s.Meeting.End)
}
