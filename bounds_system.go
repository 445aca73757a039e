package superbounds

import (
	"github.com/EngoEngine/ecs"
)

type BoundsComponent struct {
	Bounds BoundingBox
}

type BoundsEntity struct {
	*ecs.BasicEntity
	*BoundsComponent
}

// BoundsSystem tracks the bounds of every entity taking part in queries. Insertion order is
// the collection order handed to the query engine.
type BoundsSystem struct {
	Entities []BoundsEntity

	dirty bool
}

func (bs *BoundsSystem) Add(ent *ecs.BasicEntity, bc *BoundsComponent) {
	bs.Entities = append(bs.Entities, BoundsEntity{ent, bc})
}

func (bs *BoundsSystem) Remove(ent ecs.BasicEntity) {
	idx := -1
	for i, e := range bs.Entities {
		if ent.ID() == e.ID() {
			idx = i
		}
	}
	if idx != -1 {
		bs.Entities = append(bs.Entities[:idx], bs.Entities[idx+1:]...)
	}
}

func (bs *BoundsSystem) Update(dt float32) {}

// SetBounds moves an entity's bounds. The change reaches the query engine as a new generation
// between cycles.
func (bs *BoundsSystem) SetBounds(id uint64, b BoundingBox) bool {
	for _, e := range bs.Entities {
		if e.ID() == id {
			e.Bounds = b
			bs.dirty = true
			return true
		}
	}
	return false
}

func (bs *BoundsSystem) Dirty() bool { return bs.dirty }
func (bs *BoundsSystem) ClearDirty() { bs.dirty = false }

func (bs *BoundsSystem) Snapshot() []BoundingBox {
	boxes := make([]BoundingBox, len(bs.Entities))
	for i, e := range bs.Entities {
		boxes[i] = e.Bounds
	}
	return boxes
}

// NewBoundsEntities wraps each box in a fresh entity and adds it to bs.
func (bs *BoundsSystem) NewBoundsEntities(boxes []BoundingBox) []ecs.BasicEntity {
	basics := ecs.NewBasics(len(boxes))
	for i := range boxes {
		bs.Add(&basics[i], &BoundsComponent{Bounds: boxes[i]})
	}
	return basics
}
