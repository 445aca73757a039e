package superbounds

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleWaitsForDependencies(t *testing.T) {
	var stage atomic.Int32
	release := make(chan struct{})

	first := Schedule(func() {
		<-release
		stage.Store(1)
	})
	var seen int32
	second := Schedule(func() {
		seen = stage.Load()
	}, first)

	select {
	case <-second.Done():
		t.Fatal("dependent job finished before its dependency")
	case <-time.After(20 * time.Millisecond):
	}
	assert.False(t, first.IsCompleted())

	close(release)
	second.Complete()
	assert.True(t, first.IsCompleted())
	assert.Equal(t, int32(1), seen)
}

func TestCombineDependencies(t *testing.T) {
	var count atomic.Int32
	jobs := make([]*Job, 5)
	for i := range jobs {
		jobs[i] = Schedule(func() { count.Add(1) })
	}
	CombineDependencies(jobs...).Complete()
	assert.Equal(t, int32(5), count.Load())

	// nil dependencies are skipped
	Schedule(func() {}, nil).Complete()
}
