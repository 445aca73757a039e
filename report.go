package superbounds

import (
	"gonum.org/v1/gonum/stat"
)

// RunReport collects harvested cycles for a summary at the end of a run.
type RunReport struct {
	rayHits     []float64
	latency     []float64
	pointHits   int
	boxHits     int
	truncations int
}

func (rr *RunReport) Add(res CycleResult) {
	rr.rayHits = append(rr.rayHits, float64(res.RayHitCount))
	rr.latency = append(rr.latency, res.Elapsed.Seconds())
	if res.Point.Found {
		rr.pointHits++
	}
	if res.Box.Found {
		rr.boxHits++
	}
	if res.Truncated {
		rr.truncations++
	}
}

type Summary struct {
	Cycles         int
	MeanRayHits    float64
	StdDevRayHits  float64
	MaxRayHits     float64
	PointMatchRate float64
	BoxMatchRate   float64
	Truncated      int
	MeanLatency    float64
	StdDevLatency  float64
}

func (rr *RunReport) Summary() Summary {
	n := len(rr.rayHits)
	s := Summary{Cycles: n, Truncated: rr.truncations}
	if n == 0 {
		return s
	}
	s.MeanRayHits, s.StdDevRayHits = stat.MeanStdDev(rr.rayHits, nil)
	s.MeanLatency, s.StdDevLatency = stat.MeanStdDev(rr.latency, nil)
	if n == 1 {
		// Sample deviation is undefined for one cycle.
		s.StdDevRayHits, s.StdDevLatency = 0, 0
	}
	for _, h := range rr.rayHits {
		if h > s.MaxRayHits {
			s.MaxRayHits = h
		}
	}
	s.PointMatchRate = float64(rr.pointHits) / float64(n)
	s.BoxMatchRate = float64(rr.boxHits) / float64(n)
	return s
}
