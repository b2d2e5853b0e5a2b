package mmseg

const PAINT_SIGNATURE string = "fwsg"
const SEGEXT string = ".seg"
const V1 uint32 = 1

// MaxSegmentationDepth bounds the subdivision recursion. The root sits at
// depth 0, so a maximal tree has 9 levels and at most 4^8 leaves.
const MaxSegmentationDepth = 8

// NumChildren is the fan-out of a split node: the three corner
// sub-triangles plus the center one.
const NumChildren = 4

const (
	MATERIAL_UNPAINTED = 0
	MATERIAL_MAX_INDEX = 3
)

// SegmentationNode is one node of a triangle's multi-material subdivision
// tree. A leaf carries the material index for its whole sub-triangle; a
// split carries exactly NumChildren children in the fixed order
// [corner0, corner1, corner2, center] matching Triangle2.Subdivide.
type SegmentationNode struct {
	Material uint8               `json:"material"`
	Children []*SegmentationNode `json:"children,omitempty"`
}

// Leaf builds a leaf node. Material 0 means unpainted base material.
func Leaf(material uint8) *SegmentationNode {
	return &SegmentationNode{Material: material}
}

// Split builds an internal node from its four children in subdivision order.
func Split(corner0, corner1, corner2, center *SegmentationNode) *SegmentationNode {
	return &SegmentationNode{Children: []*SegmentationNode{corner0, corner1, corner2, center}}
}

func (n *SegmentationNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Depth reports the height of the tree rooted at n, with a lone leaf at 0.
func (n *SegmentationNode) Depth() int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	d := 0
	for _, c := range n.Children {
		if cd := c.Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

func (n *SegmentationNode) NodeCount() int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.Children {
		count += c.NodeCount()
	}
	return count
}

func (n *SegmentationNode) LeafCount() int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	count := 0
	for _, c := range n.Children {
		count += c.LeafCount()
	}
	return count
}

// Equal reports structural equality of two trees.
func (n *SegmentationNode) Equal(o *SegmentationNode) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.IsLeaf() != o.IsLeaf() {
		return false
	}
	if n.IsLeaf() {
		return n.Material == o.Material
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}
