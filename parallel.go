package superbounds

import (
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize = 64
)

// workerCount is how many goroutines a dispatch over n indices uses: one per batch, capped at
// maxWorkers.
func workerCount(n, batchSize, maxWorkers int) int {
	if n <= 0 {
		return 0
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batches := (n + batchSize - 1) / batchSize
	if maxWorkers > 0 && batches > maxWorkers {
		return maxWorkers
	}
	return batches
}

// parallelFor calls fn exactly once for every index in [0, n). The range is cut into batches of
// batchSize and at most maxWorkers batches run at the same time. No order between indices is
// guaranteed. It returns once every batch has finished.
func parallelFor(n, batchSize, maxWorkers int, fn func(i int)) {
	workers := workerCount(n, batchSize, maxWorkers)
	if workers == 0 {
		return
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += batchSize {
		end := min(start+batchSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	// fn never fails.
	_ = g.Wait()
}
