package superbounds

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerCount(t *testing.T) {
	var tests = []struct {
		bounds  int
		batch   int
		max     int
		workers int
	}{
		{0, 64, 8, 0},
		{1, 64, 8, 1},
		{64, 64, 8, 1},
		{65, 64, 8, 2},
		{1000, 64, 8, 8},
		{1000, 64, 0, 16},
		{10, 0, 8, 1},
		{10, 1, 4, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d bounds in batches of %d should be %d workers", tt.bounds, tt.batch, tt.workers), func(t *testing.T) {
			nw := workerCount(tt.bounds, tt.batch, tt.max)
			if nw != tt.workers {
				t.Errorf("got %d, want %d", nw, tt.workers)
			}
		})
	}
}

func TestParallelForVisitsEachIndexOnce(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, 65, 1000} {
		for _, batch := range []int{1, 7, 64} {
			t.Run(fmt.Sprintf("n=%d batch=%d", n, batch), func(t *testing.T) {
				visits := make([]int32, n)
				var total atomic.Int32
				parallelFor(n, batch, 4, func(i int) {
					atomic.AddInt32(&visits[i], 1)
					total.Add(1)
				})
				assert.Equal(t, int32(n), total.Load())
				for i, v := range visits {
					if v != 1 {
						t.Fatalf("index %d visited %d times", i, v)
					}
				}
			})
		}
	}
}

func TestParallelForRespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	block := make(chan struct{})
	go func() {
		// Let the first batches pile up before releasing them.
		for i := 0; i < 100; i++ {
			block <- struct{}{}
		}
	}()
	parallelFor(100, 1, 3, func(i int) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		<-block
		running.Add(-1)
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
