package classdex

import (
	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/conflict"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/transport/dto"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
)

// Wire types shared with the REST and MCP surfaces, so an embedded search
// returns exactly what the server would.
type (
	// Query is a class search. Only Term is required; every set filter narrows the result.
	Query = dto.SearchArgs
	// AvoidSpec is a weekly block whose conflicting sections are dropped.
	AvoidSpec = conflict.AvoidSpec
	// Page is one page of search results.
	Page = dto.SearchResponse
	// ClassSummary is one section in a result page.
	ClassSummary = dto.ClassSummary
	// ClassDetails holds full section records and the class numbers not found.
	ClassDetails = dto.ClassDetailsResponse
	// SeatAvailability holds per-section seat status and the class numbers not found.
	SeatAvailability = dto.AvailabilityResponse
	// Availability is the seat status of one section.
	Availability = domsec.Availability
	// Options lists the values a filter takes with section counts.
	Options = dto.OptionsResponse
	// OptionEntry is one filter value and its section count.
	OptionEntry = catalog.Entry
	// Resolution is the outcome of resolving one loose filter value.
	Resolution = dto.ResolveResponse
	// Record is one section as written in a fixture.
	Record = batchuc.Record
	// Meeting is a record's weekly meeting.
	Meeting = batchuc.Meeting
)

// LoadReport summarizes one Load.
type LoadReport struct {
	IndexCreated bool
	Loaded       int
	Failed       []LoadFailure
}

// LoadFailure is a record that was not stored.
type LoadFailure struct {
	Index       int // position in the input
	ClassNumber string
	Err         error
}
