package superbounds

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const DefaultHitCapacity = 20

var (
	ErrCycleInFlight  = errors.New("superbounds: previous cycle has not been harvested")
	ErrCycleHarvested = errors.New("superbounds: cycle already harvested")
	ErrForeignCycle   = errors.New("superbounds: cycle was not started by this driver")
	ErrLengthMismatch = errors.New("superbounds: collection length changed")
	ErrDriverClosed   = errors.New("superbounds: driver closed")
)

// CycleInputs are the queries of one cycle.
type CycleInputs struct {
	Point mgl32.Vec3
	Box   BoundingBox
	Ray   Ray
}

type MatchResult struct {
	Bounds BoundingBox
	Found  bool
}

// CycleResult is what a harvested cycle hands back. RayHits is a copy owned by the caller.
type CycleResult struct {
	Seq    uint64
	ID     uuid.UUID
	Inputs CycleInputs

	Point MatchResult
	Box   MatchResult

	RayHits     []BoundingBox
	RayHitCount int
	Truncated   bool

	Elapsed time.Duration
}

// Cycle is one in-flight round of queries. While it is in flight it owns the driver's hit
// flags and hit list.
type Cycle struct {
	Seq    uint64
	ID     uuid.UUID
	Inputs CycleInputs

	driver *CycleDriver
	flags  HitFlags
	hits   *HitList

	point MatchResult
	box   MatchResult

	pointJob   *Job
	boxJob     *Job
	rayJob     *Job
	compactJob *Job
	all        *Job

	started   time.Time
	finished  time.Time
	harvested bool
}

// Done is closed once every job of the cycle has finished.
func (c *Cycle) Done() <-chan struct{} { return c.all.Done() }

func (c *Cycle) IsCompleted() bool { return c.all.IsCompleted() }

// CycleDriver schedules a cycle's queries on an engine and collects them on a later call. It
// keeps one set of scratch buffers, so only one cycle is in flight at a time.
type CycleDriver struct {
	engine   *QueryEngine
	capacity int
	metrics  *Metrics
	log      *log.Entry

	mu       sync.Mutex
	flags    HitFlags
	hits     *HitList
	inFlight *Cycle
	seq      uint64
	closed   bool
}

type DriverOption func(*CycleDriver)

func WithHitCapacity(k int) DriverOption {
	return func(cd *CycleDriver) {
		if k >= 0 {
			cd.capacity = k
		}
	}
}

func WithMetrics(m *Metrics) DriverOption {
	return func(cd *CycleDriver) { cd.metrics = m }
}

func WithLogger(l *log.Entry) DriverOption {
	return func(cd *CycleDriver) {
		if l != nil {
			cd.log = l
		}
	}
}

func NewCycleDriver(engine *QueryEngine, opts ...DriverOption) *CycleDriver {
	cd := &CycleDriver{
		engine:   engine,
		capacity: DefaultHitCapacity,
		log:      log.WithField("system", "query_cycle"),
	}
	for _, opt := range opts {
		opt(cd)
	}
	cd.flags = engine.NewHitFlags()
	cd.hits = NewHitList(cd.capacity)
	if cd.metrics != nil {
		cd.metrics.BoundsGauge.Set(float64(engine.Len()))
	}
	return cd
}

func (cd *CycleDriver) Engine() *QueryEngine { return cd.engine }
func (cd *CycleDriver) HitCapacity() int     { return cd.capacity }

// InFlight returns the cycle waiting to be harvested, or nil.
func (cd *CycleDriver) InFlight() *Cycle {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.inFlight
}

// BeginCycle schedules the point, box and ray queries without waiting for them. Ray hits are
// compacted once the ray query has visited every box.
func (cd *CycleDriver) BeginCycle(in CycleInputs) (*Cycle, error) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	if cd.closed {
		return nil, ErrDriverClosed
	}
	if cd.inFlight != nil {
		return nil, ErrCycleInFlight
	}

	cd.seq++
	c := &Cycle{
		Seq:     cd.seq,
		ID:      uuid.New(),
		Inputs:  in,
		driver:  cd,
		flags:   cd.flags,
		hits:    cd.hits,
		started: time.Now(),
	}
	cd.flags, cd.hits = nil, nil
	c.flags.Clear()
	c.hits.Reset()

	eng := cd.engine
	c.rayJob = Schedule(func() {
		eng.TestRayInto(in.Ray, c.flags)
	})
	c.compactJob = Schedule(func() {
		CompactRayHits(eng.Bounds(), c.flags, c.hits)
	}, c.rayJob)
	c.pointJob = Schedule(func() {
		c.point.Bounds, c.point.Found = eng.TestPoint(in.Point)
	})
	c.boxJob = Schedule(func() {
		c.box.Bounds, c.box.Found = eng.TestBox(in.Box)
	})
	c.all = Schedule(func() {
		c.finished = time.Now()
	}, c.pointJob, c.boxJob, c.compactJob)

	cd.inFlight = c
	cd.log.WithFields(log.Fields{"seq": c.Seq, "cycle": c.ID}).Debug("Began cycle")
	return c, nil
}

// HarvestCycle waits for every job of c, copies its results out and takes the scratch buffers
// back.
func (cd *CycleDriver) HarvestCycle(c *Cycle) (CycleResult, error) {
	if c == nil || c.driver != cd {
		return CycleResult{}, ErrForeignCycle
	}
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.harvestLocked(c)
}

func (cd *CycleDriver) harvestLocked(c *Cycle) (CycleResult, error) {
	if c.harvested {
		return CycleResult{}, ErrCycleHarvested
	}
	c.all.Complete()

	hits := make([]BoundingBox, c.hits.Len())
	copy(hits, c.hits.Items())
	res := CycleResult{
		Seq:         c.Seq,
		ID:          c.ID,
		Inputs:      c.Inputs,
		Point:       c.point,
		Box:         c.box,
		RayHits:     hits,
		RayHitCount: c.flags.Count(),
		Elapsed:     c.finished.Sub(c.started),
	}
	res.Truncated = res.RayHitCount > len(res.RayHits)

	cd.flags, cd.hits = c.flags, c.hits
	c.flags, c.hits = nil, nil
	c.harvested = true
	cd.inFlight = nil
	cd.metrics.observe(res)

	l := cd.log.WithFields(log.Fields{
		"seq":      res.Seq,
		"cycle":    res.ID,
		"ray_hits": res.RayHitCount,
		"elapsed":  res.Elapsed,
	})
	if len(res.RayHits) > 0 {
		l = l.WithField("first_hit", res.RayHits[0].String())
	}
	if res.Truncated {
		l.Debugf("Harvested cycle, kept %d of %d ray hits", len(res.RayHits), res.RayHitCount)
	} else {
		l.Debug("Harvested cycle")
	}
	return res, nil
}

// Resync swaps in a new generation of the collection. It has to happen between cycles and
// keep the collection length.
func (cd *CycleDriver) Resync(boxes []BoundingBox) error {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	if cd.closed {
		return ErrDriverClosed
	}
	if cd.inFlight != nil {
		return ErrCycleInFlight
	}
	if len(boxes) != cd.engine.Len() {
		return fmt.Errorf("%w: got %d boxes, collection holds %d", ErrLengthMismatch, len(boxes), cd.engine.Len())
	}
	cd.engine.replace(boxes)
	if cd.metrics != nil {
		cd.metrics.ResyncsTotal.Inc()
	}
	return nil
}

// Close harvests the cycle still in flight, if any, and releases the engine. The harvested
// result is returned when there was one.
func (cd *CycleDriver) Close() (*CycleResult, error) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	if cd.closed {
		return nil, ErrDriverClosed
	}
	var last *CycleResult
	if cd.inFlight != nil {
		res, err := cd.harvestLocked(cd.inFlight)
		if err != nil {
			return nil, err
		}
		last = &res
	}
	cd.engine.Release()
	cd.flags, cd.hits = nil, nil
	cd.closed = true
	return last, nil
}
