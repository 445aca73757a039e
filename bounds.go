package superbounds

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundingBox is an axis aligned box stored the way renderers report bounds: a center and the
// half extent along each axis.
type BoundingBox struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// NewBoundingBox builds a box around center with the given full size.
func NewBoundingBox(center, size mgl32.Vec3) BoundingBox {
	return BoundingBox{Center: center, Extents: size.Mul(0.5)}
}

func BoundsFromMinMax(min, max mgl32.Vec3) BoundingBox {
	return BoundingBox{
		Center:  min.Add(max).Mul(0.5),
		Extents: max.Sub(min).Mul(0.5),
	}
}

func (b BoundingBox) Min() mgl32.Vec3  { return b.Center.Sub(b.Extents) }
func (b BoundingBox) Max() mgl32.Vec3  { return b.Center.Add(b.Extents) }
func (b BoundingBox) Size() mgl32.Vec3 { return b.Extents.Mul(2) }

// Contains is inclusive on every face. Comparisons are written so a NaN coordinate never passes.
func (b BoundingBox) Contains(pt mgl32.Vec3) bool {
	min, max := b.Min(), b.Max()
	for axis := 0; axis < 3; axis++ {
		if !(pt[axis] >= min[axis] && pt[axis] <= max[axis]) {
			return false
		}
	}
	return true
}

// Intersects reports whether the two boxes overlap or touch on all three axes.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	min, max := b.Min(), b.Max()
	omin, omax := other.Min(), other.Max()
	for axis := 0; axis < 3; axis++ {
		if !(min[axis] <= omax[axis] && max[axis] >= omin[axis]) {
			return false
		}
	}
	return true
}

// IntersectRay runs the slab test against the half line origin + t*dir, t >= 0. A ray starting
// inside the box hits it.
func (b BoundingBox) IntersectRay(r Ray) bool {
	min, max := b.Min(), b.Max()
	tMin := float32(0)
	tMax := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin[axis]
		dir := r.Direction[axis]

		if dir == 0 {
			// Parallel to this slab, the origin must already be between the planes.
			if !(origin >= min[axis] && origin <= max[axis]) {
				return false
			}
			continue
		}

		inv := 1 / dir
		t1 := (min[axis] - origin) * inv
		t2 := (max[axis] - origin) * inv
		if t1 != t1 || t2 != t2 {
			return false
		}
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if !(tMin <= tMax) {
			return false
		}
	}

	return true
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("Center: %s, Extents: %s", formatVec3(b.Center), formatVec3(b.Extents))
}

// Ray is a half line. Direction is unit length unless it was built from a zero vector.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func NewRay(origin, direction mgl32.Vec3) Ray {
	if l := direction.Len(); l > 0 {
		direction = direction.Mul(1 / l)
	}
	return Ray{Origin: origin, Direction: direction}
}

func (r Ray) String() string {
	return fmt.Sprintf("Origin: %s, Dir: %s", formatVec3(r.Origin), formatVec3(r.Direction))
}

func formatVec3(v mgl32.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v[0], v[1], v[2])
}
