package classdex

import (
	"context"

	"github.com/kailas-cloud/classdex/internal/domain/catalog"
	"github.com/kailas-cloud/classdex/internal/domain/resolve"
	"github.com/kailas-cloud/classdex/internal/domain/search/filter"
	"github.com/kailas-cloud/classdex/internal/domain/search/request"
	"github.com/kailas-cloud/classdex/internal/domain/search/result"
	domsec "github.com/kailas-cloud/classdex/internal/domain/section"
	"github.com/kailas-cloud/classdex/internal/domain/term"
	batchuc "github.com/kailas-cloud/classdex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/classdex/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn       func(ctx context.Context, req request.Request) (result.Page, error)
	detailsFn      func(ctx context.Context, t term.Term, classNumbers string) ([]domsec.Section, []string, error)
	availabilityFn func(ctx context.Context, t term.Term, classNumbers string) ([]domsec.Availability, []string, error)
	optionsFn      func(ctx context.Context, t term.Term, field string, narrow filter.Set) (catalog.Catalog, error)
	resolveFn      func(ctx context.Context, t term.Term, field, value string) (resolve.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req request.Request) (result.Page, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) ClassDetails(
	ctx context.Context, t term.Term, classNumbers string,
) ([]domsec.Section, []string, error) {
	return m.detailsFn(ctx, t, classNumbers)
}

func (m *mockSearchUC) SeatAvailability(
	ctx context.Context, t term.Term, classNumbers string,
) ([]domsec.Availability, []string, error) {
	return m.availabilityFn(ctx, t, classNumbers)
}

func (m *mockSearchUC) FilterOptions(
	ctx context.Context, t term.Term, field string, narrow filter.Set,
) (catalog.Catalog, error) {
	return m.optionsFn(ctx, t, field, narrow)
}

func (m *mockSearchUC) ResolveValue(ctx context.Context, t term.Term, field, value string) (resolve.Result, error) {
	return m.resolveFn(ctx, t, field, value)
}

// --- loadUseCase mock ---

type mockLoadUC struct {
	loadFn func(ctx context.Context, t term.Term, records []batchuc.Record, recreate bool) (batchuc.Report, error)
}

func (m *mockLoadUC) Load(
	ctx context.Context, t term.Term, records []batchuc.Record, recreate bool,
) (batchuc.Report, error) {
	return m.loadFn(ctx, t, records, recreate)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- conn mock ---

type mockConn struct {
	pingErr error
	closed  bool
}

func (m *mockConn) Ping(context.Context) error { return m.pingErr }
func (m *mockConn) Close()                     { m.closed = true }

// --- helpers ---

func testClient(searchSvc searchUseCase, loadSvc loadUseCase) *Client {
	return &Client{
		searchSvc: searchSvc,
		loadSvc:   loadSvc,
		limits:    request.Limits{DefaultPageSize: 10, MaxPageSize: 50},
	}
}
