package superbounds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunReportSummary(t *testing.T) {
	rr := &RunReport{}
	assert.Equal(t, Summary{}, rr.Summary())

	rr.Add(CycleResult{RayHitCount: 2, Elapsed: time.Millisecond, Point: MatchResult{Found: true}})
	one := rr.Summary()
	assert.Equal(t, 1, one.Cycles)
	assert.Equal(t, 2.0, one.MeanRayHits)
	assert.Equal(t, 0.0, one.StdDevRayHits)
	assert.Equal(t, 0.0, one.StdDevLatency)
	assert.Equal(t, 1.0, one.PointMatchRate)

	rr.Add(CycleResult{RayHitCount: 4, Elapsed: 3 * time.Millisecond, Box: MatchResult{Found: true}})
	rr.Add(CycleResult{RayHitCount: 25, RayHits: make([]BoundingBox, 20), Truncated: true, Elapsed: 2 * time.Millisecond})
	rr.Add(CycleResult{RayHitCount: 1, Elapsed: 2 * time.Millisecond, Point: MatchResult{Found: true}})

	s := rr.Summary()
	assert.Equal(t, 4, s.Cycles)
	assert.InDelta(t, 8, s.MeanRayHits, 1e-9)
	// Sample deviation of {2, 4, 25, 1}.
	assert.InDelta(t, 11.401754, s.StdDevRayHits, 1e-6)
	assert.Equal(t, 25.0, s.MaxRayHits)
	assert.Equal(t, 0.5, s.PointMatchRate)
	assert.Equal(t, 0.25, s.BoxMatchRate)
	assert.Equal(t, 1, s.Truncated)
	assert.InDelta(t, 0.002, s.MeanLatency, 1e-9)
}
