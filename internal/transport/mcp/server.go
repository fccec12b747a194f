// Package mcp exposes class search as Model Context Protocol tools.
package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	"github.com/kailas-cloud/classdex/internal/transport/dto"
	searchuc "github.com/kailas-cloud/classdex/internal/usecase/search"
)

// Server wraps the MCP server with the class search service.
type Server struct {
	search *searchuc.Service
	limits request.Limits
	terms  []term.Term
	logger *zap.Logger
	server *mcp.Server
}

// NewServer creates the classdex MCP server. The first of terms is used
// when a tool call omits the term.
func NewServer(
	search *searchuc.Service,
	limits request.Limits,
	terms []term.Term,
	version string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{search: search, limits: limits, terms: terms, logger: logger}

	impl := &mcp.Implementation{
		Name:    "classdex",
		Version: version,
	}

	s.server = mcp.NewServer(impl, nil)
	s.registerTools()

	return s
}

// Run serves on stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler serves the tools over streamable HTTP.
func (s *Server) HTTPHandler(stateless, jsonResponse bool) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		Stateless:    stateless,
		JSONResponse: jsonResponse,
	})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_classes",
		Description: "Search class sections in a term. Every filter is optional and filters combine with AND. " +
			"Subject, campus, academic level and similar fields accept loose input such as 'computer science' " +
			"and are resolved against the values the term actually has; on a miss the error lists suggestions. " +
			"Use avoid to drop sections that overlap weekly blocks you need free. Results are paged.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_class_details",
		Description: "Get full details for one or more class sections by class number (comma separated).",
	}, s.handleClassDetails)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "check_seat_availability",
		Description: "Check open seats and waitlist room for one or more class sections by class number " +
			"(comma separated). Status is OPEN, WAITLIST AVAILABLE or FULL.",
	}, s.handleAvailability)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_by_instructor",
		Description: "Find the class sections an instructor teaches in a term. The name is fuzzy matched.",
	}, s.handleInstructor)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_filter_options",
		Description: "List the values a search filter takes in a term, with section counts. " +
			"Optionally narrow the counts by one other filter, e.g. campuses offering subject CS.",
	}, s.handleFilterOptions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "resolve_filter_value",
		Description: "Resolve a loose value for a filter (e.g. subject 'comp sci') to the code the term uses. " +
			"Returns the canonical value, or suggestions when nothing matches.",
	}, s.handleResolve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_terms",
		Description: "List the academic terms this server has loaded.",
	}, s.handleListTerms)
}

// defaultTerm fills a blank term from the first served term.
func (s *Server) defaultTerm(raw string) string {
	if strings.TrimSpace(raw) == "" && len(s.terms) > 0 {
		return s.terms[0].String()
	}
	return raw
}

func (s *Server) parseTerm(raw string) (term.Term, error) {
	t, err := term.Parse(s.defaultTerm(raw))
	if err != nil && strings.TrimSpace(raw) == "" {
		return "", domain.NewValidation("term", "is required")
	}
	return t, err
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// toolError reports err to the agent as a tool error, keeping suggestions
// so the agent can ask the user to clarify.
func (s *Server) toolError(tool string, err error) (*mcp.CallToolResult, any, error) {
	resp := dto.NewErrorResponse(err)
	if resp.Code == dto.CodeStoreUnavailable || resp.Code == dto.CodeInternalError {
		s.logger.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	} else {
		s.logger.Debug("tool call rejected", zap.String("tool", tool), zap.Error(err))
	}

	res := textResult(formatError(resp))
	res.IsError = true
	return res, nil, nil
}
