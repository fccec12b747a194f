package classdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/classdex/internal/domain/term"
	healthuc "github.com/kailas-cloud/classdex/internal/usecase/health"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // "database" and "index:<term>" -> "ok"/"missing"/"error"
}

// Health pings Redis and probes the index of each term in terms.
// It fails only when a term code is malformed.
func (c *Client) Health(ctx context.Context, terms ...string) (HealthStatus, error) {
	start := time.Now()
	parsed := make([]term.Term, len(terms))
	for i, raw := range terms {
		t, err := term.Parse(raw)
		if err != nil {
			c.obs.observe("health", start, err)
			return HealthStatus{}, fmt.Errorf("health: %w", err)
		}
		parsed[i] = t
	}

	report := c.healthFor(parsed).Check(ctx)
	c.obs.observe("health", start, nil, "status", string(report.Status))

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}, nil
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
