package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kailas-cloud/classdex/internal/transport/dto"
)

func (s *Server) handleSearch(
	ctx context.Context, _ *mcp.CallToolRequest, args dto.SearchArgs,
) (*mcp.CallToolResult, any, error) {
	return s.runSearch(ctx, "search_classes", &args)
}

// InstructorArgs defines input for search_by_instructor.
type InstructorArgs struct {
	Term           string `json:"term,omitempty" jsonschema:"Four-digit term code; defaults to the current term"`
	InstructorName string `json:"instructor_name" jsonschema:"Instructor name or part of it (at least 2 characters)"`
	Page           int    `json:"page,omitempty" jsonschema:"1-based page number; bounded by the server"`
	ResultsPerPage int    `json:"results_per_page,omitempty" jsonschema:"Page size; capped by the server"`
}

func (s *Server) handleInstructor(
	ctx context.Context, _ *mcp.CallToolRequest, args InstructorArgs,
) (*mcp.CallToolResult, any, error) {
	return s.runSearch(ctx, "search_by_instructor", &dto.SearchArgs{
		Term:           args.Term,
		Instructor:     args.InstructorName,
		Page:           args.Page,
		ResultsPerPage: args.ResultsPerPage,
	})
}

func (s *Server) runSearch(ctx context.Context, tool string, args *dto.SearchArgs) (*mcp.CallToolResult, any, error) {
	args.Term = s.defaultTerm(args.Term)
	req, err := args.Request(s.limits)
	if err != nil {
		return s.toolError(tool, err)
	}

	page, err := s.search.Search(ctx, req)
	if err != nil {
		return s.toolError(tool, err)
	}

	out := dto.NewSearchResponse(req.Term(), &page)
	return textResult(formatSearch(&out)), out, nil
}

// ClassNumbersArgs defines input for get_class_details and check_seat_availability.
type ClassNumbersArgs struct {
	Term         string `json:"term,omitempty" jsonschema:"Four-digit term code; defaults to the current term"`
	ClassNumbers string `json:"class_numbers" jsonschema:"Comma-separated class numbers, e.g. 10234,10310"`
}

func (s *Server) handleClassDetails(
	ctx context.Context, _ *mcp.CallToolRequest, args ClassNumbersArgs,
) (*mcp.CallToolResult, any, error) {
	t, err := s.parseTerm(args.Term)
	if err != nil {
		return s.toolError("get_class_details", err)
	}

	found, missing, err := s.search.ClassDetails(ctx, t, args.ClassNumbers)
	if err != nil {
		return s.toolError("get_class_details", err)
	}

	out := dto.NewClassDetailsResponse(t, found, missing)
	return textResult(formatDetails(&out)), out, nil
}

func (s *Server) handleAvailability(
	ctx context.Context, _ *mcp.CallToolRequest, args ClassNumbersArgs,
) (*mcp.CallToolResult, any, error) {
	t, err := s.parseTerm(args.Term)
	if err != nil {
		return s.toolError("check_seat_availability", err)
	}

	avail, missing, err := s.search.SeatAvailability(ctx, t, args.ClassNumbers)
	if err != nil {
		return s.toolError("check_seat_availability", err)
	}

	out := dto.AvailabilityResponse{Term: t.String(), Classes: avail, NotFound: missing}
	return textResult(formatAvailability(&out)), out, nil
}

// FilterOptionsArgs defines input for get_filter_options.
type FilterOptionsArgs struct {
	Term        string `json:"term,omitempty" jsonschema:"Four-digit term code; defaults to the current term"`
	Field       string `json:"field" jsonschema:"Filter to list values for, e.g. subject, campus, instruction_mode, days"`
	NarrowField string `json:"narrow_field,omitempty" jsonschema:"Optional filter that restricts the counted sections"`
	NarrowValue string `json:"narrow_value,omitempty" jsonschema:"Value for narrow_field"`
}

func (s *Server) handleFilterOptions(
	ctx context.Context, _ *mcp.CallToolRequest, args FilterOptionsArgs,
) (*mcp.CallToolResult, any, error) {
	t, err := s.parseTerm(args.Term)
	if err != nil {
		return s.toolError("get_filter_options", err)
	}
	narrow, err := dto.NarrowSet(args.NarrowField, args.NarrowValue)
	if err != nil {
		return s.toolError("get_filter_options", err)
	}

	c, err := s.search.FilterOptions(ctx, t, args.Field, narrow)
	if err != nil {
		return s.toolError("get_filter_options", err)
	}

	out := dto.NewOptionsResponse(t, args.Field, c)
	return textResult(formatOptions(&out)), out, nil
}

// ResolveArgs defines input for resolve_filter_value.
type ResolveArgs struct {
	Term  string `json:"term,omitempty" jsonschema:"Four-digit term code; defaults to the current term"`
	Field string `json:"field" jsonschema:"Resolvable filter, e.g. subject, campus, academic_level, instruction_mode"`
	Value string `json:"value" jsonschema:"Loose value to resolve, e.g. comp sci"`
}

func (s *Server) handleResolve(
	ctx context.Context, _ *mcp.CallToolRequest, args ResolveArgs,
) (*mcp.CallToolResult, any, error) {
	t, err := s.parseTerm(args.Term)
	if err != nil {
		return s.toolError("resolve_filter_value", err)
	}

	r, err := s.search.ResolveValue(ctx, t, args.Field, args.Value)
	if err != nil {
		return s.toolError("resolve_filter_value", err)
	}

	out := dto.NewResolveResponse(args.Field, args.Value, r)
	return textResult(formatResolve(&out)), out, nil
}

// ListTermsArgs defines input for list_terms.
type ListTermsArgs struct{}

// TermInfo describes one served term.
type TermInfo struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}

// ListTermsResult is the output of list_terms.
type ListTermsResult struct {
	Terms []TermInfo `json:"terms"`
}

func (s *Server) handleListTerms(
	context.Context, *mcp.CallToolRequest, ListTermsArgs,
) (*mcp.CallToolResult, any, error) {
	out := ListTermsResult{Terms: make([]TermInfo, len(s.terms))}
	for i, t := range s.terms {
		out.Terms[i] = TermInfo{Term: t.String(), Description: t.Description()}
	}
	return textResult(formatTerms(&out)), out, nil
}
