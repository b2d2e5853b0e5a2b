package mmseg

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
)

func vec2Near(a, b vec2.T, eps float32) bool {
	return math32.Abs(a[0]-b[0]) <= eps && math32.Abs(a[1]-b[1]) <= eps
}

func TestSubdivideOrder(t *testing.T) {
	tri := Triangle2{{0, 0}, {1, 0}, {0, 1}}
	children, err := tri.Subdivide()
	if err != nil {
		t.Fatal(err)
	}

	m01 := vec2.T{0.5, 0}
	m12 := vec2.T{0.5, 0.5}
	m20 := vec2.T{0, 0.5}

	want := [NumChildren]Triangle2{
		{tri[0], m01, m20},
		{tri[1], m12, m01},
		{tri[2], m20, m12},
		{m01, m12, m20},
	}
	for i := range want {
		for j := 0; j < 3; j++ {
			if !vec2Near(children[i][j], want[i][j], 1e-6) {
				t.Errorf("child %d vertex %d = %v, want %v", i, j, children[i][j], want[i][j])
			}
		}
	}
}

func TestSubdividePartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		tri := Triangle2{
			{rng.Float32(), rng.Float32()},
			{rng.Float32(), rng.Float32()},
			{rng.Float32(), rng.Float32()},
		}
		if tri.Area() < 1e-4 {
			continue
		}
		children, err := tri.Subdivide()
		if err != nil {
			t.Fatalf("subdivide failed for %v: %v", tri, err)
		}
		var sum float32
		for _, c := range children {
			// Midpoint subdivision splits into four congruent triangles.
			if math32.Abs(c.Area()-tri.Area()/4) > 1e-5 {
				t.Errorf("child area %g, want quarter of %g", c.Area(), tri.Area())
			}
			sum += c.Area()
		}
		if math32.Abs(sum-tri.Area()) > 1e-4 {
			t.Errorf("children areas sum to %g, parent is %g", sum, tri.Area())
		}
	}
}

func TestSubdivideDegenerate(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle2
	}{
		{"all equal", Triangle2{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}},
		{"collinear", Triangle2{{0, 0}, {0.5, 0.5}, {1, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tri.Subdivide(); err != ErrInvalidFootprint {
				t.Errorf("expected ErrInvalidFootprint, got %v", err)
			}
		})
	}
}

func TestSubdivide3(t *testing.T) {
	tri := Triangle3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	children, err := tri.Subdivide()
	if err != nil {
		t.Fatal(err)
	}
	if got := children[3][0]; got != (vec3.T{1, 0, 0}) {
		t.Errorf("center child first vertex = %v, want {1,0,0}", got)
	}
	var sum float32
	for _, c := range children {
		sum += c.Area()
	}
	if math32.Abs(sum-tri.Area()) > 1e-4 {
		t.Errorf("children areas sum to %g, parent is %g", sum, tri.Area())
	}

	degenerate := Triangle3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}
	if _, err := degenerate.Subdivide(); err != ErrInvalidFootprint {
		t.Errorf("expected ErrInvalidFootprint, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	tri := Triangle2{{0.3, 0.1}, {0.9, 0.5}, {0.2, 0.8}}
	min, max := tri.Bounds()
	if !vec2Near(min, vec2.T{0.2, 0.1}, 1e-6) || !vec2Near(max, vec2.T{0.9, 0.8}, 1e-6) {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}

func TestContains(t *testing.T) {
	tri := Triangle2{{0, 0}, {1, 0}, {0, 1}}
	tests := []struct {
		name string
		p    vec2.T
		want bool
	}{
		{"centroid", tri.Centroid(), true},
		{"corner", vec2.T{0, 0}, true},
		{"edge midpoint", vec2.T{0.5, 0}, true},
		{"hypotenuse", vec2.T{0.5, 0.5}, true},
		{"outside", vec2.T{0.7, 0.7}, false},
		{"far outside", vec2.T{-1, -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tri.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}

	// Winding must not change the verdict.
	flipped := Triangle2{tri[0], tri[2], tri[1]}
	if !flipped.Contains(tri.Centroid()) {
		t.Errorf("flipped winding rejects centroid")
	}
}
