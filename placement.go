package superbounds

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// InsideUnitSphere returns a point drawn uniformly from the unit ball.
func InsideUnitSphere(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		if v.Dot(v) <= 1 {
			return v
		}
	}
}

// PlaceRandomCubes spreads count unit cubes over a ball of the given radius.
func PlaceRandomCubes(rng *rand.Rand, count int, radius float32) []BoundingBox {
	boxes := make([]BoundingBox, count)
	for i := range boxes {
		boxes[i] = NewBoundingBox(InsideUnitSphere(rng).Mul(radius), mgl32.Vec3{1, 1, 1})
	}
	return boxes
}

// InputSource produces the queries for the next cycle.
type InputSource interface {
	Next() CycleInputs
}

type InputSourceFunc func() CycleInputs

func (f InputSourceFunc) Next() CycleInputs { return f() }

// RandomInputs draws a point inside a ball of Radius, a box of BoxSize around that point and a
// ray starting near the origin heading roughly along (1, 1, 0).
type RandomInputs struct {
	Rng     *rand.Rand
	Radius  float32
	BoxSize mgl32.Vec3
}

func NewRandomInputs(rng *rand.Rand, radius float32, boxSize mgl32.Vec3) *RandomInputs {
	return &RandomInputs{Rng: rng, Radius: radius, BoxSize: boxSize}
}

func (ri *RandomInputs) Next() CycleInputs {
	point := InsideUnitSphere(ri.Rng).Mul(ri.Radius)
	jitter := InsideUnitSphere(ri.Rng)
	return CycleInputs{
		Point: point,
		Box:   NewBoundingBox(point, ri.BoxSize),
		Ray:   NewRay(jitter.Mul(-1), mgl32.Vec3{1, 1, 0}.Add(jitter)),
	}
}
