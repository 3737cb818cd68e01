package index

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// IndexAll runs Coordinator.IndexFile over files with a bounded worker
// set (SPEC_FULL.md §A8), grounded on the teacher/pack convention of
// golang.org/x/sync/errgroup for fan-out with a concurrency ceiling. A
// single file's error does not abort the others; it is attached to that
// file's report via SkipReason and the run continues.
func (c *Coordinator) IndexAll(ctx context.Context, files []File, concurrency int) ([]FileReport, error) {
	return c.IndexAllWithProgress(ctx, files, concurrency, nil)
}

// IndexAllWithProgress is IndexAll plus an optional callback invoked once
// per completed file, for CLI progress reporting (SPEC_FULL.md §A5).
func (c *Coordinator) IndexAllWithProgress(ctx context.Context, files []File, concurrency int, onFile func(File, FileReport)) ([]FileReport, error) {
	if concurrency <= 0 {
		concurrency = 8
	}

	reports := make([]FileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			report, err := c.IndexFile(gctx, f.AbsPath, f.IsCode)
			if err != nil {
				report = FileReport{Path: f.AbsPath, Skipped: true, SkipReason: err.Error()}
			}
			mu.Lock()
			reports[i] = report
			if onFile != nil {
				onFile(f, report)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-file errors are carried in reports, never aborts the batch

	return reports, nil
}
