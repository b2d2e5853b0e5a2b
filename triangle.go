package mmseg

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

// ErrInvalidFootprint is returned for degenerate (zero area) triangles,
// before any child coordinates are computed.
var ErrInvalidFootprint = errors.New("mmseg: degenerate triangle footprint")

const footprintEpsilon = 1e-10

// Triangle2 is a UV-space footprint in fixed winding order [v0, v1, v2].
// Subdivision is order dependent, so the winding must match the one used
// when the triangle's segmentation string was produced.
type Triangle2 [3]vec2.T

// Triangle3 is an object-space footprint with the same ordering rules.
type Triangle3 [3]vec3.T

func mid2(a, b vec2.T) vec2.T {
	return vec2.T{(a[0] + b[0]) * 0.5, (a[1] + b[1]) * 0.5}
}

func mid3(a, b vec3.T) vec3.T {
	return vec3.T{(a[0] + b[0]) * 0.5, (a[1] + b[1]) * 0.5, (a[2] + b[2]) * 0.5}
}

// Area returns the unsigned area of the footprint.
func (t Triangle2) Area() float32 {
	return math32.Abs(t.signedArea())
}

func (t Triangle2) signedArea() float32 {
	return ((t[1][0]-t[0][0])*(t[2][1]-t[0][1]) - (t[1][1]-t[0][1])*(t[2][0]-t[0][0])) * 0.5
}

func (t Triangle2) Centroid() vec2.T {
	const third = float32(1.0 / 3.0)
	return vec2.T{(t[0][0] + t[1][0] + t[2][0]) * third, (t[0][1] + t[1][1] + t[2][1]) * third}
}

// Bounds returns the axis aligned min and max corners of the footprint.
func (t Triangle2) Bounds() (min, max vec2.T) {
	min = t[0]
	max = t[0]
	for i := 1; i < 3; i++ {
		min[0] = math32.Min(min[0], t[i][0])
		min[1] = math32.Min(min[1], t[i][1])
		max[0] = math32.Max(max[0], t[i][0])
		max[1] = math32.Max(max[1], t[i][1])
	}
	return min, max
}

// Contains reports whether p lies inside the footprint, inclusive of edges.
func (t Triangle2) Contains(p vec2.T) bool {
	e0 := edgeFunction(t[0], t[1], p)
	e1 := edgeFunction(t[1], t[2], p)
	e2 := edgeFunction(t[2], t[0], p)
	if t.signedArea() < 0 {
		return e0 <= 0 && e1 <= 0 && e2 <= 0
	}
	return e0 >= 0 && e1 >= 0 && e2 >= 0
}

// edgeFunction is the cross product (b-a)x(p-a): positive when p lies to
// the left of the directed edge a->b.
func edgeFunction(a, b, p vec2.T) float32 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// Subdivide splits the footprint into its four children at the edge
// midpoints, in the order the segmentation codec stores them:
//
//	child 0 (corner0): [v0, m01, m20]
//	child 1 (corner1): [v1, m12, m01]
//	child 2 (corner2): [v2, m20, m12]
//	child 3 (center):  [m01, m12, m20]
//
// A degenerate footprint fails with ErrInvalidFootprint.
func (t Triangle2) Subdivide() ([NumChildren]Triangle2, error) {
	if t.Area() < footprintEpsilon {
		return [NumChildren]Triangle2{}, ErrInvalidFootprint
	}
	return t.children(), nil
}

// children computes the four sub-footprints without the degeneracy check.
// The renderer and extractor validate once at the root and then walk this
// in lockstep with the tree, one call per internal node.
func (t Triangle2) children() [NumChildren]Triangle2 {
	m01 := mid2(t[0], t[1])
	m12 := mid2(t[1], t[2])
	m20 := mid2(t[2], t[0])
	return [NumChildren]Triangle2{
		{t[0], m01, m20},
		{t[1], m12, m01},
		{t[2], m20, m12},
		{m01, m12, m20},
	}
}

// Area returns the unsigned area of the object-space footprint.
func (t Triangle3) Area() float32 {
	s1 := vec3.Sub(&t[1], &t[0])
	s2 := vec3.Sub(&t[2], &t[0])
	cr := vec3.Cross(&s1, &s2)
	return cr.Length() * 0.5
}

// Subdivide splits an object-space footprint with the same child ordering
// as Triangle2.Subdivide.
func (t Triangle3) Subdivide() ([NumChildren]Triangle3, error) {
	if t.Area() < footprintEpsilon {
		return [NumChildren]Triangle3{}, ErrInvalidFootprint
	}
	m01 := mid3(t[0], t[1])
	m12 := mid3(t[1], t[2])
	m20 := mid3(t[2], t[0])
	return [NumChildren]Triangle3{
		{t[0], m01, m20},
		{t[1], m12, m01},
		{t[2], m20, m12},
		{m01, m12, m20},
	}, nil
}
