package mmseg

import (
	"fmt"

	"github.com/flywave/go3d/vec3"
)

// SubTriangle is one leaf of a subdivided triangle: vertex indices into
// the expanded vertex list plus the material painted over it. Source keeps
// the index of the original document triangle, -1 when untracked.
type SubTriangle struct {
	Vertex   [3]uint32 `json:"vertex"`
	Material uint8     `json:"material"`
	Source   int32     `json:"source"`
}

type triangleSubdivider struct {
	vertices  []vec3.T
	midpoints map[[2]uint32]uint32
	out       []SubTriangle
	source    int32
}

func (s *triangleSubdivider) midpoint(i0, i1 uint32) uint32 {
	key := [2]uint32{i0, i1}
	if i1 < i0 {
		key = [2]uint32{i1, i0}
	}
	if idx, ok := s.midpoints[key]; ok {
		return idx
	}
	m := mid3(s.vertices[i0], s.vertices[i1])
	idx := uint32(len(s.vertices))
	s.vertices = append(s.vertices, m)
	s.midpoints[key] = idx
	return idx
}

func (s *triangleSubdivider) walk(node *SegmentationNode, i0, i1, i2 uint32) {
	if node.IsLeaf() {
		s.out = append(s.out, SubTriangle{
			Vertex:   [3]uint32{i0, i1, i2},
			Material: node.Material,
			Source:   s.source,
		})
		return
	}
	m01 := s.midpoint(i0, i1)
	m12 := s.midpoint(i1, i2)
	m20 := s.midpoint(i2, i0)
	s.walk(node.Children[0], i0, m01, m20)
	s.walk(node.Children[1], i1, m12, m01)
	s.walk(node.Children[2], i2, m20, m12)
	s.walk(node.Children[3], m01, m12, m20)
}

// SubdivideTriangle expands one painted triangle into concrete leaf
// triangles, appending edge midpoint vertices to the shared vertex list.
// Midpoints are deduplicated within the call so neighboring leaves share
// vertices. A nil tree yields the intact triangle with the base material.
func SubdivideTriangle(vertices []vec3.T, i0, i1, i2 uint32, tree *SegmentationNode, source int32) ([]vec3.T, []SubTriangle, error) {
	if tree == nil || tree.IsLeaf() {
		material := uint8(MATERIAL_UNPAINTED)
		if tree != nil {
			material = tree.Material
		}
		return vertices, []SubTriangle{{
			Vertex:   [3]uint32{i0, i1, i2},
			Material: material,
			Source:   source,
		}}, nil
	}
	ft := Triangle3{vertices[i0], vertices[i1], vertices[i2]}
	if ft.Area() < footprintEpsilon {
		return vertices, nil, ErrInvalidFootprint
	}
	s := triangleSubdivider{
		vertices:  vertices,
		midpoints: make(map[[2]uint32]uint32),
		source:    source,
	}
	s.walk(tree, i0, i1, i2)
	return s.vertices, s.out, nil
}

// PaintedMesh is a mesh whose triangles have been expanded according to
// their segmentation attributes, ready for preview export.
type PaintedMesh struct {
	Vertices []vec3.T      `json:"vertices"`
	Faces    []SubTriangle `json:"faces"`
	Palette  Palette       `json:"palette"`
}

// BuildPaintedMesh applies per-triangle segmentation strings to a triangle
// soup. Attributes are keyed by face index; a missing attribute means the
// face is fully unpainted. A malformed attribute never aborts the build:
// the face falls back to unpainted and the failure is reported in the
// returned warnings.
func BuildPaintedMesh(vertices []vec3.T, faces [][3]uint32, segs map[int]string, pal Palette) (*PaintedMesh, []error) {
	pm := &PaintedMesh{Vertices: vertices, Palette: pal}
	var warnings []error
	for fi, face := range faces {
		var tree *SegmentationNode
		if s, ok := segs[fi]; ok {
			var err error
			tree, err = DecodeSegmentation(s)
			if err != nil {
				warnings = append(warnings, fmt.Errorf("face %d: %w", fi, err))
				tree = Leaf(MATERIAL_UNPAINTED)
			}
		}
		verts, subs, err := SubdivideTriangle(pm.Vertices, face[0], face[1], face[2], tree, int32(fi))
		if err != nil {
			warnings = append(warnings, fmt.Errorf("face %d: %w", fi, err))
			continue
		}
		pm.Vertices = verts
		pm.Faces = append(pm.Faces, subs...)
	}
	return pm, warnings
}

// MaterialGroups buckets the faces by material, preserving face order
// inside each bucket.
func (pm *PaintedMesh) MaterialGroups() map[uint8][]SubTriangle {
	groups := make(map[uint8][]SubTriangle)
	for _, f := range pm.Faces {
		groups[f.Material] = append(groups[f.Material], f)
	}
	return groups
}
