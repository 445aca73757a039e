package superbounds

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

var nan32 = float32(math.NaN())

func unitCube(x, y, z float32) BoundingBox {
	return NewBoundingBox(mgl32.Vec3{x, y, z}, mgl32.Vec3{1, 1, 1})
}

func TestBoundsMinMax(t *testing.T) {
	b := BoundsFromMinMax(mgl32.Vec3{-1, 0, 2}, mgl32.Vec3{3, 4, 4})
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Center)
	assert.Equal(t, mgl32.Vec3{2, 2, 1}, b.Extents)
	assert.Equal(t, mgl32.Vec3{-1, 0, 2}, b.Min())
	assert.Equal(t, mgl32.Vec3{3, 4, 4}, b.Max())
	assert.Equal(t, mgl32.Vec3{4, 4, 2}, b.Size())
	assert.Equal(t, "Center: (1.0, 2.0, 3.0), Extents: (2.0, 2.0, 1.0)", b.String())
}

func TestBoundsContains(t *testing.T) {
	b := unitCube(0, 0, 0)
	var tests = []struct {
		pt   mgl32.Vec3
		want bool
	}{
		{mgl32.Vec3{0, 0, 0}, true},
		{mgl32.Vec3{0.5, 0.5, 0.5}, true},
		{mgl32.Vec3{-0.5, -0.5, -0.5}, true},
		{mgl32.Vec3{0.51, 0, 0}, false},
		{mgl32.Vec3{0, -0.51, 0}, false},
		{mgl32.Vec3{0, 0, 2}, false},
		{mgl32.Vec3{nan32, 0, 0}, false},
		{mgl32.Vec3{0, 0, nan32}, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v should be %v", tt.pt, tt.want), func(t *testing.T) {
			if got := b.Contains(tt.pt); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundsIntersects(t *testing.T) {
	b := unitCube(0, 0, 0)
	var tests = []struct {
		name  string
		other BoundingBox
		want  bool
	}{
		{"same box", unitCube(0, 0, 0), true},
		{"overlapping", unitCube(0.5, 0.5, 0), true},
		{"touching face", unitCube(1, 0, 0), true},
		{"separated on x", unitCube(1.1, 0, 0), false},
		{"separated on y", unitCube(0, -2, 0), false},
		{"separated on z", unitCube(0, 0, 5), false},
		{"inside", NewBoundingBox(mgl32.Vec3{}, mgl32.Vec3{0.1, 0.1, 0.1}), true},
		{"enclosing", NewBoundingBox(mgl32.Vec3{}, mgl32.Vec3{10, 10, 10}), true},
		{"nan center", unitCube(nan32, 0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Intersects(tt.other))
			assert.Equal(t, tt.want, tt.other.Intersects(b), "symmetry")
		})
	}
}

func TestBoundsIntersectRay(t *testing.T) {
	b := unitCube(5, 0, 0)
	var tests = []struct {
		name string
		ray  Ray
		want bool
	}{
		{"along +x", NewRay(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}), true},
		{"along -x points away", NewRay(mgl32.Vec3{}, mgl32.Vec3{-1, 0, 0}), false},
		{"origin inside", NewRay(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, 1, 0}), true},
		{"origin past the box", NewRay(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{1, 0, 0}), false},
		{"parallel outside slab", NewRay(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 0, 0}), false},
		{"parallel on face", NewRay(mgl32.Vec3{0, 0.5, 0}, mgl32.Vec3{1, 0, 0}), true},
		{"diagonal hit", NewRay(mgl32.Vec3{0, -5, 0}, mgl32.Vec3{1, 1, 0}), true},
		{"diagonal miss", NewRay(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{1, 1, 0}), false},
		{"unnormalized", Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{7, 0, 0}}, true},
		{"zero direction outside", NewRay(mgl32.Vec3{}, mgl32.Vec3{}), false},
		{"zero direction inside", NewRay(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{}), true},
		{"nan origin", NewRay(mgl32.Vec3{nan32, 0, 0}, mgl32.Vec3{1, 0, 0}), false},
		{"nan origin on parallel axis", NewRay(mgl32.Vec3{0, nan32, 0}, mgl32.Vec3{1, 0, 0}), false},
		{"nan direction", Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{nan32, 0, 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.IntersectRay(tt.ray))
		})
	}
}

func TestNewRayNormalizes(t *testing.T) {
	r := NewRay(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 3, 4})
	assert.InDelta(t, 1, float64(r.Direction.Len()), 1e-6)
	assert.InDelta(t, 0.6, float64(r.Direction[1]), 1e-6)
	assert.InDelta(t, 0.8, float64(r.Direction[2]), 1e-6)

	zero := NewRay(mgl32.Vec3{}, mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, zero.Direction)
}
