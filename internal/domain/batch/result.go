// Package batch holds per-record outcomes of a bulk section load.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of loading one record, keyed by its position in the
// input and its class number (which may be empty for a malformed record).
type Result struct {
	index       int
	classNumber string
	status      ItemStatus
	err         error
}

// NewOK creates a successful batch result.
func NewOK(index int, classNumber string) Result {
	return Result{index: index, classNumber: classNumber, status: StatusOK}
}

// NewError creates a failed batch result.
func NewError(index int, classNumber string, err error) Result {
	return Result{index: index, classNumber: classNumber, status: StatusError, err: err}
}

// Index returns the zero-based input position.
func (r Result) Index() int { return r.index }

// ClassNumber returns the record's class number.
func (r Result) ClassNumber() string { return r.classNumber }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count tallies results by status.
func Count(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
