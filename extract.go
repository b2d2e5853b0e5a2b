package mmseg

import "github.com/flywave/go3d/vec2"

// PrecisionLoss reports a leaf that was forced at the depth bound while
// its samples still disagreed. The detail below representable resolution
// is discarded; callers aggregate and deduplicate these as warnings.
type PrecisionLoss struct {
	Footprint Triangle2
	Material  uint8
}

// extractSamples is the number of probe points per footprint: corners,
// centroid, edge midpoints and corner quarter points. Corner stripes that
// miss all three corners still trip the interior probes.
const extractSamples = 10

// probeInset pulls boundary probes toward the centroid. Samples exactly on
// a shared edge land on pixels the seam overpaint makes ambiguous; probing
// slightly inside keeps every probe on this footprint's own samples.
const probeInset = 0.1

// Extractor rebuilds segmentation trees from a painted raster snapshot.
// Construction classifies every sample into a material index once; the
// recursion then only does state map lookups, so extracting tens of
// thousands of triangles stays cheap. The raster must not change while an
// extractor built from it is in use. Extractors are read-only after
// construction and safe for concurrent Extract calls.
type Extractor struct {
	MaxDepth int

	states []uint8
	width  int
	height int
}

// NewExtractor snapshots the raster into a state map using the palette
// and tolerance. A tolerance <= 0 selects DefaultColorTolerance.
func NewExtractor(r *Raster, pal Palette, tolerance int) *Extractor {
	if tolerance <= 0 {
		tolerance = DefaultColorTolerance
	}
	return &Extractor{
		MaxDepth: MaxSegmentationDepth,
		states:   pal.ClassifyRaster(r, tolerance),
		width:    r.Width,
		height:   r.Height,
	}
}

func (e *Extractor) stateAt(p vec2.T) uint8 {
	x := int(clamp01(p[0]) * float32(e.width))
	if x >= e.width {
		x = e.width - 1
	}
	y := int(clamp01(p[1]) * float32(e.height))
	if y >= e.height {
		y = e.height - 1
	}
	return e.states[y*e.width+x]
}

// subPixel reports whether the footprint has shrunk below raster
// resolution, where all ten probes collapse onto one or two samples and
// a uniform reading no longer vouches for a uniform region.
func (e *Extractor) subPixel(t Triangle2) bool {
	min, max := t.Bounds()
	return (max[0]-min[0])*float32(e.width) <= 1.5 &&
		(max[1]-min[1])*float32(e.height) <= 1.5
}

// Extract reconstructs the segmentation tree for one UV footprint. The
// result never exceeds MaxDepth; regions finer than the raster or the
// depth bound collapse into majority-vote leaves reported as PrecisionLoss.
func (e *Extractor) Extract(footprint Triangle2) (*SegmentationNode, []PrecisionLoss, error) {
	if footprint.Area() < footprintEpsilon {
		return nil, nil, ErrInvalidFootprint
	}
	maxDepth := e.MaxDepth
	if maxDepth <= 0 || maxDepth > MaxSegmentationDepth {
		maxDepth = MaxSegmentationDepth
	}
	var losses []PrecisionLoss
	node := e.extractNode(footprint, 0, maxDepth, &losses)
	return node, losses, nil
}

func inset(p, c vec2.T) vec2.T {
	return vec2.T{p[0] + (c[0]-p[0])*probeInset, p[1] + (c[1]-p[1])*probeInset}
}

func (e *Extractor) sample(t Triangle2, out *[extractSamples]uint8) {
	c := t.Centroid()
	out[0] = e.stateAt(inset(t[0], c))
	out[1] = e.stateAt(inset(t[1], c))
	out[2] = e.stateAt(inset(t[2], c))
	out[3] = e.stateAt(c)
	out[4] = e.stateAt(inset(mid2(t[0], t[1]), c))
	out[5] = e.stateAt(inset(mid2(t[1], t[2]), c))
	out[6] = e.stateAt(inset(mid2(t[2], t[0]), c))
	out[7] = e.stateAt(mid2(t[0], c))
	out[8] = e.stateAt(mid2(t[1], c))
	out[9] = e.stateAt(mid2(t[2], c))
}

func (e *Extractor) extractNode(t Triangle2, depth, maxDepth int, losses *[]PrecisionLoss) *SegmentationNode {
	var samples [extractSamples]uint8
	e.sample(t, &samples)

	uniform := true
	for i := 1; i < extractSamples; i++ {
		if samples[i] != samples[0] {
			uniform = false
			break
		}
	}
	if uniform && (depth < maxDepth || !e.subPixel(t)) {
		return Leaf(samples[0])
	}

	// A node at the depth bound only exists because its parent's probes
	// disagreed. If the footprint is also sub-pixel the probes cannot
	// resolve the disagreement, so the forced leaf is still lossy.
	if depth >= maxDepth {
		m := majorityState(samples[:])
		*losses = append(*losses, PrecisionLoss{Footprint: t, Material: m})
		return Leaf(m)
	}

	children := t.children()
	node := &SegmentationNode{Children: make([]*SegmentationNode, NumChildren)}
	for i := 0; i < NumChildren; i++ {
		node.Children[i] = e.extractNode(children[i], depth+1, maxDepth, losses)
	}

	// Boundary probes can disagree across a child edge even when every
	// child settles on the same material; merge those back into one leaf.
	merged := node.Children[0]
	if merged.IsLeaf() {
		same := true
		for i := 1; i < NumChildren; i++ {
			c := node.Children[i]
			if !c.IsLeaf() || c.Material != merged.Material {
				same = false
				break
			}
		}
		if same {
			return Leaf(merged.Material)
		}
	}
	return node
}

// majorityState picks the most frequent material among the probes,
// breaking exact ties toward the lowest index.
func majorityState(samples []uint8) uint8 {
	var counts [MATERIAL_MAX_INDEX + 1]int
	for _, s := range samples {
		if int(s) < len(counts) {
			counts[s]++
		}
	}
	best := uint8(0)
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = uint8(i)
		}
	}
	return best
}
