// Package conflict drops candidates whose weekly schedule collides with caller-supplied avoid blocks.
package conflict

import (
	"github.com/kailas-cloud/classdex/internal/domain"
	"github.com/kailas-cloud/classdex/internal/domain/clock"
	"github.com/kailas-cloud/classdex/internal/domain/schedule"
)

// MaxBlocks caps the number of avoid blocks in one query.
const MaxBlocks = 32

// AvoidSpec is an avoid block as received from a caller.
type AvoidSpec struct {
	Days  []string `json:"days" yaml:"days"`
	Start string   `json:"start" yaml:"start"`
	End   string   `json:"end" yaml:"end"`
}

// Query is a validated set of avoid blocks plus a symmetric buffer in minutes.
type Query struct {
	Blocks []schedule.Block
	Buffer int
}

// Empty reports whether the query excludes nothing.
func (q Query) Empty() bool { return len(q.Blocks) == 0 }

// ParseQuery validates specs and buffer. A malformed block fails the whole
// query with a validation error naming its position.
func ParseQuery(specs []AvoidSpec, buffer int) (Query, error) {
	if buffer < 0 {
		return Query{}, domain.NewValidation("buffer_minutes", "must be non-negative, got %d", buffer)
	}
	if len(specs) > MaxBlocks {
		return Query{}, domain.NewValidation("avoid", "too many blocks (max %d)", MaxBlocks)
	}
	blocks := make([]schedule.Block, 0, len(specs))
	for i, s := range specs {
		b, err := parseBlock(i, s)
		if err != nil {
			return Query{}, err
		}
		blocks = append(blocks, b)
	}
	return Query{Blocks: blocks, Buffer: buffer}, nil
}

func parseBlock(pos int, s AvoidSpec) (schedule.Block, error) {
	if len(s.Days) == 0 {
		return schedule.Block{}, domain.NewValidationAt("avoid", pos, "days are required")
	}
	days, err := schedule.ParseDays(s.Days)
	if err != nil {
		return schedule.Block{}, domain.RelabelAt("avoid", pos, err)
	}
	if s.Start == "" || s.End == "" {
		return schedule.Block{}, domain.NewValidationAt("avoid", pos, "start and end are required")
	}
	start, err := clock.Parse(s.Start)
	if err != nil {
		return schedule.Block{}, domain.NewValidationAt("avoid", pos, "invalid start %q", s.Start)
	}
	end, err := clock.Parse(s.End)
	if err != nil {
		return schedule.Block{}, domain.NewValidationAt("avoid", pos, "invalid end %q", s.End)
	}
	b, err := schedule.NewBlock(days, start, end)
	if err != nil {
		return schedule.Block{}, domain.RelabelAt("avoid", pos, err)
	}
	return b, nil
}

// Candidate pairs an opaque payload with its meeting schedule. A nil
// Schedule means the record has no fixed meeting time.
type Candidate[P any] struct {
	Schedule *schedule.Block
	Payload  P
}

// Conflicts reports whether c collides with any block of q after buffering.
func (q Query) Conflicts(c *schedule.Block) bool {
	if c == nil {
		return false
	}
	for _, b := range q.Blocks {
		if c.Overlaps(b.Widen(q.Buffer)) {
			return true
		}
	}
	return false
}

// Filter keeps the candidates that do not conflict with q, in input order.
// The count is len(kept), reported so callers can truncate afterwards.
func Filter[P any](cands []Candidate[P], q Query) ([]Candidate[P], int) {
	kept := make([]Candidate[P], 0, len(cands))
	for _, c := range cands {
		if !q.Conflicts(c.Schedule) {
			kept = append(kept, c)
		}
	}
	return kept, len(kept)
}
