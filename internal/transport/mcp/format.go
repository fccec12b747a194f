package mcp

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/classdex/internal/transport/dto"
)

func formatSearch(r *dto.SearchResponse) string {
	var b strings.Builder
	if r.Total == 0 {
		fmt.Fprintf(&b, "No classes found for %s matching these filters.", r.TermDescription)
		if r.ExcludedByAvoid > 0 {
			fmt.Fprintf(&b, " %d matching section(s) were dropped for schedule conflicts.", r.ExcludedByAvoid)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Found %d class(es) for %s (showing %s):\n\n", r.Total, r.TermDescription, r.Showing)
	for i := range r.Classes {
		b.WriteString(r.Classes[i].Summary)
		b.WriteString("\n\n")
	}
	if r.ExcludedByAvoid > 0 {
		fmt.Fprintf(&b, "%d section(s) were dropped for schedule conflicts.\n", r.ExcludedByAvoid)
	}
	if r.HasMore {
		fmt.Fprintf(&b, "Page %d of %d. Request page %d for more.", r.Page, r.TotalPages, r.Page+1)
	} else {
		fmt.Fprintf(&b, "Page %d of %d.", r.Page, r.TotalPages)
	}
	return b.String()
}

func formatDetails(r *dto.ClassDetailsResponse) string {
	parts := make([]string, 0, len(r.Classes)+1)
	for i := range r.Classes {
		parts = append(parts, r.Classes[i].Details)
	}
	if len(r.NotFound) > 0 {
		parts = append(parts, "Not found: "+strings.Join(r.NotFound, ", "))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func formatAvailability(r *dto.AvailabilityResponse) string {
	var b strings.Builder
	for _, a := range r.Classes {
		fmt.Fprintf(&b, "Class #%s: %s\n  %s\n  Seats: %d/%d enrolled, %d available | Waitlist: %d/%d\n",
			a.ClassNumber, a.Status, a.Message,
			a.Enrolled, a.Capacity, a.AvailableSeats,
			a.WaitlistEnrolled, a.WaitlistCapacity)
	}
	if len(r.NotFound) > 0 {
		fmt.Fprintf(&b, "Not found: %s\n", strings.Join(r.NotFound, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatOptions(r *dto.OptionsResponse) string {
	if len(r.Options) == 0 {
		return fmt.Sprintf("No values for %s in term %s.", r.Field, r.Term)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Values for %s in term %s:\n", r.Field, r.Term)
	for _, e := range r.Options {
		fmt.Fprintf(&b, "- %s (%d)\n", e.Value, e.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatResolve(r *dto.ResolveResponse) string {
	if r.Matched {
		return fmt.Sprintf("%s %q resolves to %q (%s match).", r.Field, r.Input, r.Value, r.Strategy)
	}
	if len(r.Suggestions) == 0 {
		return fmt.Sprintf("No %s matches %q.", r.Field, r.Input)
	}
	return fmt.Sprintf("No %s matches %q. Did you mean: %s?", r.Field, r.Input, strings.Join(r.Suggestions, ", "))
}

func formatTerms(r *ListTermsResult) string {
	if len(r.Terms) == 0 {
		return "No terms are loaded."
	}
	lines := make([]string, len(r.Terms))
	for i, t := range r.Terms {
		lines[i] = fmt.Sprintf("- %s: %s", t.Term, t.Description)
	}
	return "Available terms:\n" + strings.Join(lines, "\n")
}

func formatError(e dto.ErrorResponse) string {
	msg := e.Message
	if len(e.Suggestions) > 0 {
		msg += "\nSuggestions: " + strings.Join(e.Suggestions, ", ")
	}
	return msg
}
