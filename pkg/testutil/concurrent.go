package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "agedist/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Upstream  int32
	Timeouts  int32
	Errors    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Upstream + r.Timeouts + r.Errors
}

// RunConcurrent executes fn in parallel goroutines and buckets the results by
// domain error code: upstream failures (bad gateway or bad data), timeouts,
// and everything else.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, upstream, timeouts, errs atomic.Int32

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeBadGateway), dErrors.HasCode(err, dErrors.CodeBadData):
				upstream.Add(1)
			case dErrors.HasCode(err, dErrors.CodeTimeout):
				timeouts.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Upstream:  upstream.Load(),
		Timeouts:  timeouts.Load(),
		Errors:    errs.Load(),
	}
}
