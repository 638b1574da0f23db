// batch.go - Render many records concurrently, keeping input order.
package template

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gurbanicard/gurbanicard/pkg/logging"
	"golang.org/x/sync/errgroup"
)

// RecordError is a failed record in a batch. Index is 0-based.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string { return fmt.Sprintf("record %d: %v", e.Index+1, e.Err) }

func (e RecordError) Unwrap() error { return e.Err }

// BatchResult holds the PNGs of every rendered record in input order.
// Empty verses are counted in Skipped; other failures are listed and do not
// stop the batch.
type BatchResult struct {
	Images   [][]byte
	Indices  []int // record index of each image
	Skipped  int
	Failures []RecordError
}

// RenderBatch renders records on up to workers goroutines (GOMAXPROCS when
// workers < 1). Only context cancellation aborts the batch.
func (r *Renderer) RenderBatch(ctx context.Context, records []LineRecord, cfg RenderConfig, workers int) (*BatchResult, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	outputs := make([][]byte, len(records))
	errs := make([]error, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i], errs[i] = r.RenderPNG(rec, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BatchResult{}
	for i, err := range errs {
		switch {
		case err == nil:
			res.Images = append(res.Images, outputs[i])
			res.Indices = append(res.Indices, i)
		case errors.Is(err, ErrEmptyVerse):
			res.Skipped++
		default:
			res.Failures = append(res.Failures, RecordError{Index: i, Err: err})
			logging.Logger().Warn("record failed", "index", i+1, "err", err)
		}
	}
	logging.Logger().Info("batch rendered",
		"records", len(records),
		"images", len(res.Images),
		"skipped", res.Skipped,
		"failed", len(res.Failures))
	return res, nil
}
