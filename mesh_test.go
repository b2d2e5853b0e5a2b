package mmseg

import (
	"testing"

	"github.com/flywave/go3d/vec3"
)

func TestSubdivideTriangleFlat(t *testing.T) {
	verts := []vec3.T{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}}
	tree, err := DecodeSegmentation("80123")
	if err != nil {
		t.Fatal(err)
	}

	outVerts, subs, err := SubdivideTriangle(verts, 0, 1, 2, tree, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(outVerts) != 6 {
		t.Errorf("expected 3 corners + 3 midpoints, got %d vertices", len(outVerts))
	}
	if len(subs) != 4 {
		t.Fatalf("expected 4 leaf triangles, got %d", len(subs))
	}
	for i, want := range []uint8{0, 1, 2, 3} {
		if subs[i].Material != want {
			t.Errorf("leaf %d material = %d, want %d", i, subs[i].Material, want)
		}
		if subs[i].Source != 7 {
			t.Errorf("leaf %d lost its source index", i)
		}
	}
	if outVerts[3] != (vec3.T{1, 0, 0}) {
		t.Errorf("first midpoint = %v, want {1,0,0}", outVerts[3])
	}
}

func TestSubdivideTriangleDedupsMidpoints(t *testing.T) {
	verts := []vec3.T{{0, 0, 0}, {4, 0, 0}, {0, 4, 0}}
	tree := Split(
		Split(Leaf(1), Leaf(2), Leaf(1), Leaf(2)),
		Leaf(3),
		Leaf(3),
		Leaf(1),
	)

	outVerts, subs, err := SubdivideTriangle(verts, 0, 1, 2, tree, -1)
	if err != nil {
		t.Fatal(err)
	}
	// 3 corners, 3 root midpoints, 3 nested midpoints: shared edges must
	// not duplicate vertices.
	if len(outVerts) != 9 {
		t.Errorf("expected 9 vertices, got %d", len(outVerts))
	}
	if len(subs) != 7 {
		t.Errorf("expected 7 leaf triangles, got %d", len(subs))
	}
}

func TestSubdivideTriangleNilTree(t *testing.T) {
	verts := []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	outVerts, subs, err := SubdivideTriangle(verts, 0, 1, 2, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(outVerts) != 3 || len(subs) != 1 {
		t.Fatalf("expected the intact triangle back")
	}
	if subs[0].Material != MATERIAL_UNPAINTED {
		t.Errorf("nil tree should mean unpainted")
	}
}

func TestSubdivideTriangleDegenerate(t *testing.T) {
	verts := []vec3.T{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}
	if _, _, err := SubdivideTriangle(verts, 0, 1, 2, Split(Leaf(0), Leaf(1), Leaf(2), Leaf(3)), -1); err != ErrInvalidFootprint {
		t.Errorf("expected ErrInvalidFootprint, got %v", err)
	}
}

func TestBuildPaintedMesh(t *testing.T) {
	verts := []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	faces := [][3]uint32{{0, 1, 2}, {1, 3, 2}, {0, 2, 3}}
	segs := map[int]string{
		0: "80123",
		1: "ZZ", // malformed, must fall back to unpainted
	}

	pm, warnings := BuildPaintedMesh(verts, faces, segs, DefaultPalette())
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	// 4 leaves from face 0, 1 fallback leaf, 1 unannotated face.
	if len(pm.Faces) != 6 {
		t.Errorf("expected 6 faces, got %d", len(pm.Faces))
	}

	groups := pm.MaterialGroups()
	if len(groups[MATERIAL_UNPAINTED]) != 3 {
		t.Errorf("expected 3 unpainted leaves, got %d", len(groups[MATERIAL_UNPAINTED]))
	}
	for _, m := range []uint8{1, 2, 3} {
		if len(groups[m]) != 1 {
			t.Errorf("expected 1 leaf of material %d, got %d", m, len(groups[m]))
		}
	}
}
