package errs

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// BatchReport collects per-item outcomes of a batch (one poll run, one
// discovery pass, one upload run) so that a failing item never hides the
// result of its siblings.
type BatchReport struct {
	Name string

	mu        sync.Mutex
	succeeded []string
	failed    []string
	errs      *multierror.Error
}

func NewBatchReport(name string) *BatchReport {
	return &BatchReport{Name: name}
}

// Succeed records a processed item.
func (r *BatchReport) Succeed(item string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, item)
}

// Fail records a failed item and its error.
func (r *BatchReport) Fail(item string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, item)
	r.errs = multierror.Append(r.errs, fmt.Errorf("%s: %w", item, err))
}

// Abort records a failure that stopped the whole batch (e.g. connect).
func (r *BatchReport) Abort(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = multierror.Append(r.errs, err)
}

// Merge folds the outcomes of a sub-batch into r.
func (r *BatchReport) Merge(o *BatchReport) {
	if o == nil || o == r {
		return
	}
	succeeded, failed, err := o.Succeeded(), o.Failed(), o.Err()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded = append(r.succeeded, succeeded...)
	r.failed = append(r.failed, failed...)
	if err != nil {
		r.errs = multierror.Append(r.errs, err)
	}
}

func (r *BatchReport) Succeeded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.succeeded...)
}

func (r *BatchReport) Failed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.failed...)
}

// Err returns the aggregated error, or nil when every item succeeded.
func (r *BatchReport) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs.ErrorOrNil()
}

func (r *BatchReport) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("%s: %d ok, %d failed", r.Name, len(r.succeeded), len(r.failed))
}
