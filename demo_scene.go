package superbounds

import (
	"context"
	"math/rand"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// DemoScene is a world of randomly placed cubes queried once per update.
type DemoScene struct {
	Config Config

	World   *ecs.World
	Bounds  *BoundsSystem
	Queries *QueryCycleSystem
	Driver  *CycleDriver
	Metrics *Metrics
	Report  *RunReport
}

// NewDemoScene places the cubes and wires the systems. reg may be nil to skip metrics.
func NewDemoScene(cfg Config, reg prometheus.Registerer) (*DemoScene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ds := &DemoScene{
		Config: cfg,
		World:  &ecs.World{},
		Bounds: &BoundsSystem{},
		Report: &RunReport{},
	}
	ds.Bounds.NewBoundsEntities(PlaceRandomCubes(rng, cfg.ObjectCount, cfg.PlacementRadius))

	sceneLog := log.WithFields(log.Fields{"scene": "demo", "seed": seed})
	engineOpts := append(cfg.EngineOptions(), WithObserver(LogObserver{Log: sceneLog}))
	engine := NewQueryEngine(ds.Bounds.Snapshot(), engineOpts...)

	driverOpts := []DriverOption{WithHitCapacity(cfg.HitCapacity), WithLogger(sceneLog)}
	if reg != nil {
		ds.Metrics = NewMetrics(reg)
		driverOpts = append(driverOpts, WithMetrics(ds.Metrics))
	}
	ds.Driver = NewCycleDriver(engine, driverOpts...)

	ds.Queries = &QueryCycleSystem{
		Driver: ds.Driver,
		Source: NewRandomInputs(rng, cfg.QueryRadius, cfg.BoxSize()),
		Bounds: ds.Bounds,
		OnHarvest: func(res CycleResult) {
			ds.Report.Add(res)
			if len(res.RayHits) > 0 {
				sceneLog.WithField("seq", res.Seq).Debugf("first ray hit: %s", res.RayHits[0])
			}
		},
	}

	ds.World.AddSystem(ds.Bounds)
	ds.World.AddSystem(ds.Queries)

	sceneLog.WithFields(log.Fields{
		"objects": cfg.ObjectCount,
		"batch":   engine.BatchSize(),
		"workers": engine.Workers(),
		"policy":  engine.Policy(),
	}).Info("Demo scene ready")
	return ds, nil
}

// Step advances the world by one update.
func (ds *DemoScene) Step(dt float32) {
	ds.World.Update(dt)
}

// Run steps the world Config.Cycles times, paced at Config.FPS (unpaced when FPS is 0), and
// harvests the last cycle. It stops early when ctx is done.
func (ds *DemoScene) Run(ctx context.Context) (Summary, error) {
	var tick <-chan time.Time
	dt := float32(0)
	if ds.Config.FPS > 0 {
		interval := time.Second / time.Duration(ds.Config.FPS)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
		dt = float32(interval.Seconds())
	}

	last := time.Now()
	for i := 0; i < ds.Config.Cycles; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ds.finish(ctx.Err())
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return ds.finish(ctx.Err())
		}
		if ds.Config.FPS == 0 {
			now := time.Now()
			dt = float32(now.Sub(last).Seconds())
			last = now
		}
		ds.Step(dt)
	}
	return ds.finish(nil)
}

func (ds *DemoScene) finish(cause error) (Summary, error) {
	if err := ds.Queries.Flush(); err != nil {
		return ds.Report.Summary(), err
	}
	return ds.Report.Summary(), cause
}

// Close harvests anything still in flight and releases the engine.
func (ds *DemoScene) Close() error {
	if err := ds.Queries.Flush(); err != nil {
		return err
	}
	_, err := ds.Driver.Close()
	return err
}
