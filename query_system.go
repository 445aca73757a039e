package superbounds

import (
	"errors"

	"github.com/EngoEngine/ecs"
	log "github.com/sirupsen/logrus"
)

// QueryCycleSystem runs one query cycle per world update. The cycle begun on one update is
// harvested at the start of the next, so the queries overlap with whatever else the world does
// in between.
type QueryCycleSystem struct {
	Driver *CycleDriver
	Source InputSource
	// Bounds, when set, is resynced into the driver between cycles whenever it is dirty.
	Bounds *BoundsSystem

	OnHarvest func(CycleResult)

	pending *Cycle
	ticks   uint64
}

// Priority keeps the query system after anything that moves bounds in the same update.
func (qs *QueryCycleSystem) Priority() int { return -10 }

func (qs *QueryCycleSystem) New(w *ecs.World) {
	log.WithField("bounds", qs.Driver.Engine().Len()).Debug("Query cycle system ready")
}

func (qs *QueryCycleSystem) Remove(ecs.BasicEntity) {}

func (qs *QueryCycleSystem) Update(dt float32) {
	qs.ticks++
	if err := qs.harvest(); err != nil {
		log.WithError(err).Error("Unable to harvest query cycle")
		return
	}

	if qs.Bounds != nil && qs.Bounds.Dirty() {
		err := qs.Driver.Resync(qs.Bounds.Snapshot())
		if err != nil {
			log.WithError(err).Warn("Skipping bounds resync")
		}
		qs.Bounds.ClearDirty()
	}

	c, err := qs.Driver.BeginCycle(qs.Source.Next())
	if err != nil {
		log.WithError(err).Error("Unable to begin query cycle")
		return
	}
	qs.pending = c
}

// Flush harvests the cycle begun by the last update.
func (qs *QueryCycleSystem) Flush() error {
	return qs.harvest()
}

func (qs *QueryCycleSystem) Pending() *Cycle { return qs.pending }
func (qs *QueryCycleSystem) Ticks() uint64   { return qs.ticks }

func (qs *QueryCycleSystem) harvest() error {
	if qs.pending == nil {
		return nil
	}
	res, err := qs.Driver.HarvestCycle(qs.pending)
	qs.pending = nil
	if err != nil && !errors.Is(err, ErrCycleHarvested) {
		return err
	}
	if err == nil && qs.OnHarvest != nil {
		qs.OnHarvest(res)
	}
	return nil
}
