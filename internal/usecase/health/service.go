package health

import (
	"context"

	"github.com/kailas-cloud/classdex/internal/domain/term"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckMissing indicates a term whose index has not been created.
	CheckMissing CheckResult = "missing"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexChecker
	terms []term.Term
}

// New creates a Service. index can be nil; terms lists the terms expected to be loaded.
func New(db DBPinger, index IndexChecker, terms []term.Term) *Service {
	return &Service{db: db, index: index, terms: terms}
}

// Check pings the store, then probes the index of every expected term.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	if s.index != nil {
		for _, t := range s.terms {
			key := "index:" + string(t)
			ok, err := s.index.Indexed(ctx, t)
			switch {
			case err != nil:
				checks[key] = CheckError
			case !ok:
				checks[key] = CheckMissing
			default:
				checks[key] = CheckOK
			}
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
