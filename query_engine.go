package superbounds

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
)

// MatchPolicy decides which box TestPoint and TestBox report when several match.
type MatchPolicy int

const (
	// LastWriteWins reports whichever matching box a worker published last. Which one that is
	// depends on scheduling.
	LastWriteWins MatchPolicy = iota
	// LowestIndex reports the matching box with the smallest index.
	LowestIndex
)

func (mp MatchPolicy) String() string {
	switch mp {
	case LastWriteWins:
		return "last-write"
	case LowestIndex:
		return "lowest-index"
	}
	return fmt.Sprintf("MatchPolicy(%d)", int(mp))
}

func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch s {
	case "", "last-write":
		return LastWriteWins, nil
	case "lowest-index":
		return LowestIndex, nil
	}
	return LastWriteWins, fmt.Errorf("unknown match policy %q", s)
}

type QueryKind int

const (
	PointQuery QueryKind = iota
	BoxQuery
	RayQuery
)

func (qk QueryKind) String() string {
	switch qk {
	case PointQuery:
		return "point"
	case BoxQuery:
		return "box"
	case RayQuery:
		return "ray"
	}
	return "unknown"
}

type MatchEvent struct {
	Kind   QueryKind
	Index  int
	Bounds BoundingBox

	// Point is set for point queries, Query for box queries.
	Point mgl32.Vec3
	Query BoundingBox
}

// MatchObserver is told about every positive point and box match. It is called from worker
// goroutines and has to be safe for concurrent use.
type MatchObserver interface {
	OnMatch(MatchEvent)
}

type MatchObserverFunc func(MatchEvent)

func (f MatchObserverFunc) OnMatch(ev MatchEvent) { f(ev) }

// LogObserver writes a debug line per match.
type LogObserver struct {
	Log *log.Entry
}

func (lo LogObserver) OnMatch(ev MatchEvent) {
	l := lo.Log
	if l == nil {
		l = log.NewEntry(log.StandardLogger())
	}
	switch ev.Kind {
	case PointQuery:
		l.Debugf("point %s is in Bounds: %s", formatVec3(ev.Point), ev.Bounds)
	case BoxQuery:
		l.Debugf("%s intersects with: %s", ev.Query, ev.Bounds)
	}
}

// matchSlot is the shared result cell the point and box workers publish into.
type matchSlot struct {
	index atomic.Int64
}

func newMatchSlot() *matchSlot {
	ms := &matchSlot{}
	ms.index.Store(-1)
	return ms
}

func (ms *matchSlot) record(i int, policy MatchPolicy) {
	idx := int64(i)
	if policy != LowestIndex {
		ms.index.Store(idx)
		return
	}
	for {
		cur := ms.index.Load()
		if cur != -1 && cur <= idx {
			return
		}
		if ms.index.CompareAndSwap(cur, idx) {
			return
		}
	}
}

func (ms *matchSlot) load() int { return int(ms.index.Load()) }

// QueryEngine answers point, box and ray queries against a fixed collection of boxes with a
// brute force scan spread over a bounded set of goroutines. The collection is read only while a
// query runs.
type QueryEngine struct {
	bounds    []BoundingBox
	batchSize int
	workers   int
	policy    MatchPolicy
	observer  MatchObserver
	released  bool
}

type EngineOption func(*QueryEngine)

func WithBatchSize(n int) EngineOption {
	return func(qe *QueryEngine) {
		if n > 0 {
			qe.batchSize = n
		}
	}
}

func WithWorkers(n int) EngineOption {
	return func(qe *QueryEngine) {
		if n > 0 {
			qe.workers = n
		}
	}
}

func WithMatchPolicy(p MatchPolicy) EngineOption {
	return func(qe *QueryEngine) { qe.policy = p }
}

func WithObserver(o MatchObserver) EngineOption {
	return func(qe *QueryEngine) { qe.observer = o }
}

// NewQueryEngine copies boxes into the engine. Index i refers to boxes[i] for the engine's
// lifetime.
func NewQueryEngine(boxes []BoundingBox, opts ...EngineOption) *QueryEngine {
	qe := &QueryEngine{
		bounds:    append([]BoundingBox(nil), boxes...),
		batchSize: DefaultBatchSize,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(qe)
	}
	return qe
}

func (qe *QueryEngine) Len() int              { return len(qe.bounds) }
func (qe *QueryEngine) At(i int) BoundingBox  { return qe.bounds[i] }
func (qe *QueryEngine) Policy() MatchPolicy   { return qe.policy }
func (qe *QueryEngine) BatchSize() int        { return qe.batchSize }
func (qe *QueryEngine) Workers() int          { return qe.workers }
func (qe *QueryEngine) Bounds() []BoundingBox { return qe.bounds }
func (qe *QueryEngine) NewHitFlags() HitFlags { return make(HitFlags, len(qe.bounds)) }

func (qe *QueryEngine) dispatch(fn func(i int)) {
	parallelFor(len(qe.bounds), qe.batchSize, qe.workers, fn)
}

func (qe *QueryEngine) mustBeLive() {
	if qe.released {
		panic("superbounds: query engine used after Release")
	}
}

// TestPoint returns a box containing pt, if there is one. With LastWriteWins and several
// containing boxes, any one of them may come back.
func (qe *QueryEngine) TestPoint(pt mgl32.Vec3) (BoundingBox, bool) {
	qe.mustBeLive()
	slot := newMatchSlot()
	qe.dispatch(func(i int) {
		b := qe.bounds[i]
		if b.Contains(pt) {
			if qe.observer != nil {
				qe.observer.OnMatch(MatchEvent{Kind: PointQuery, Index: i, Bounds: b, Point: pt})
			}
			slot.record(i, qe.policy)
		}
	})
	return qe.resolve(slot)
}

// TestBox returns a box intersecting query, if there is one. It follows the same policy as
// TestPoint.
func (qe *QueryEngine) TestBox(query BoundingBox) (BoundingBox, bool) {
	qe.mustBeLive()
	slot := newMatchSlot()
	qe.dispatch(func(i int) {
		b := qe.bounds[i]
		if query.Intersects(b) {
			if qe.observer != nil {
				qe.observer.OnMatch(MatchEvent{Kind: BoxQuery, Index: i, Bounds: b, Query: query})
			}
			slot.record(i, qe.policy)
		}
	})
	return qe.resolve(slot)
}

func (qe *QueryEngine) resolve(slot *matchSlot) (BoundingBox, bool) {
	idx := slot.load()
	if idx < 0 {
		return BoundingBox{}, false
	}
	return qe.bounds[idx], true
}

// TestRay returns a fresh flag array with flags[i] set iff box i is hit by r.
func (qe *QueryEngine) TestRay(r Ray) HitFlags {
	flags := qe.NewHitFlags()
	qe.TestRayInto(r, flags)
	return flags
}

// TestRayInto sets flags[i] for every box hit by r. Flags are never cleared here, so the caller
// hands in a zeroed array. Each worker only writes its own indices.
func (qe *QueryEngine) TestRayInto(r Ray, flags HitFlags) {
	qe.mustBeLive()
	if len(flags) != len(qe.bounds) {
		panic(fmt.Sprintf("superbounds: %d hit flags for %d bounds", len(flags), len(qe.bounds)))
	}
	qe.dispatch(func(i int) {
		if qe.bounds[i].IntersectRay(r) {
			flags[i] = true
		}
	})
}

// CompactRayHits folds flags into a new list of at most capacity boxes.
func (qe *QueryEngine) CompactRayHits(flags HitFlags, capacity int) *HitList {
	qe.mustBeLive()
	out := NewHitList(capacity)
	CompactRayHits(qe.bounds, flags, out)
	return out
}

// CompactRayHits appends bounds[i] to out for every set flag, in ascending index order, and
// stops as soon as out is full. It runs on the calling goroutine.
func CompactRayHits(bounds []BoundingBox, flags HitFlags, out *HitList) {
	for i := 0; i < len(bounds) && i < len(flags); i++ {
		if out.Full() {
			return
		}
		if flags[i] {
			out.Append(bounds[i])
		}
	}
}

// replace swaps in a new generation of the same length. Callers make sure no query is running.
func (qe *QueryEngine) replace(boxes []BoundingBox) {
	qe.mustBeLive()
	copy(qe.bounds, boxes)
}

// Release drops the collection. Using the engine afterwards panics.
func (qe *QueryEngine) Release() {
	qe.mustBeLive()
	qe.bounds = nil
	qe.released = true
}
