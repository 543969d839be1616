// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of requests processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any request failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch runs reqs with at most jobs conversions in flight, printing
// one status line per request to w and a summary at the end. A failing
// request is counted and does not stop the others. Requests not yet
// started when ctx is cancelled are skipped.
func ConvertBatch(ctx context.Context, svc *Service, reqs []Request, jobs int, w io.Writer) BatchResult {
	if jobs <= 0 {
		jobs = 1
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	status := func(f func()) {
		mu.Lock()
		defer mu.Unlock()
		f()
	}

	var g errgroup.Group
	g.SetLimit(jobs)
	for _, req := range reqs {
		req := req // per-iteration copy; go.mod targets Go 1.21 loop semantics
		g.Go(func() error {
			if ctx.Err() != nil {
				status(func() {
					fmt.Fprintf(w, "skipped: %s (%v)\n", req.InputPath, ctx.Err())
					result.Skipped++
				})
				return nil
			}

			res, err := svc.Convert(ctx, req)
			status(func() {
				if err != nil {
					fmt.Fprintf(w, "failed:  %s (%v)\n", req.InputPath, err)
					result.Failed++
					return
				}
				fmt.Fprintf(w, "converted: %s -> %s\n", req.InputPath, res.OutputPath)
				result.Converted++
			})
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
