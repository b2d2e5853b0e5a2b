package mmseg

import (
	"image/color"

	"github.com/chewxy/math32"
)

// pinholeThreshold lets the edge test accept samples a hair outside the
// triangle so adjacent leaf fills overlap instead of leaving seams.
const pinholeThreshold = -1.5

// gapFillIterations is the default number of dilation passes closing the
// rounding gaps left between leaf fills.
const gapFillIterations = 3

// Renderer paints segmentation trees into a raster. One renderer writes
// one raster; Paint calls for disjoint footprints may be issued from
// separate goroutines, but FillGaps must only run once all of them have
// returned.
type Renderer struct {
	Raster  *Raster
	Palette Palette

	// unpainted marks samples covered by material 0 leaves. They carry no
	// color but they are not seams either: gap filling must leave them
	// alone instead of growing neighbor paint over them.
	unpainted []bool
}

func NewRenderer(r *Raster, pal Palette) *Renderer {
	return &Renderer{
		Raster:    r,
		Palette:   pal,
		unpainted: make([]bool, r.Width*r.Height),
	}
}

// Paint fills every leaf of the tree into the raster over the UV
// footprint. Unpainted leaves (material 0) leave the raster untouched so
// existing content shows through. Painting is deterministic and
// idempotent: repainting the same tree changes nothing.
func (rd *Renderer) Paint(tree *SegmentationNode, footprint Triangle2) error {
	if tree == nil {
		return nil
	}
	if footprint.Area() < footprintEpsilon {
		return ErrInvalidFootprint
	}
	if rd.unpainted == nil {
		rd.unpainted = make([]bool, rd.Raster.Width*rd.Raster.Height)
	}
	rd.paintNode(tree, footprint)
	return nil
}

func (rd *Renderer) paintNode(node *SegmentationNode, t Triangle2) {
	if node.IsLeaf() {
		cl, ok := rd.Palette.ColorOf(node.Material)
		if !ok {
			rd.fillTriangle(t, func(x, y int) {
				rd.unpainted[y*rd.Raster.Width+x] = true
			})
			return
		}
		rd.fillTriangle(t, func(x, y int) {
			rd.Raster.SetNRGBA(x, y, cl)
		})
		return
	}
	for i, child := range t.children() {
		rd.paintNode(node.Children[i], child)
	}
}

// fillTriangle rasterizes one leaf with a bounding box scan and an
// inclusive edge-function test against sample centers, applying set to
// every covered sample.
func (rd *Renderer) fillTriangle(t Triangle2, set func(x, y int)) {
	w := float32(rd.Raster.Width)
	h := float32(rd.Raster.Height)

	x0, y0 := t[0][0]*w, t[0][1]*h
	x1, y1 := t[1][0]*w, t[1][1]*h
	x2, y2 := t[2][0]*w, t[2][1]*h

	area := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if math32.Abs(area) < 1e-4 {
		return
	}
	if area < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	minX := maxInt(0, int(math32.Min(math32.Min(x0, x1), x2))-1)
	maxX := minInt(rd.Raster.Width-1, int(math32.Max(math32.Max(x0, x1), x2))+2)
	minY := maxInt(0, int(math32.Min(math32.Min(y0, y1), y2))-1)
	maxY := minInt(rd.Raster.Height-1, int(math32.Max(math32.Max(y0, y1), y2))+2)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			e0 := (x1-x0)*(py-y0) - (y1-y0)*(px-x0)
			e1 := (x2-x1)*(py-y1) - (y2-y1)*(px-x1)
			e2 := (x0-x2)*(py-y2) - (y0-y2)*(px-x2)

			if e0 >= pinholeThreshold && e1 >= pinholeThreshold && e2 >= pinholeThreshold {
				set(x, y)
			}
		}
	}
}

// FillGaps closes samples that no leaf fill reached, which happens along
// shared edges when floating point rounding puts a sample center just
// outside both neighbors. Each pass assigns an unwritten sample the most
// common color among its written 4-neighbors; lone neighbors are ignored,
// and samples inside material 0 leaves are off limits, so the fill never
// smears into genuinely unpainted regions.
func (rd *Renderer) FillGaps(iterations int) {
	if iterations <= 0 {
		iterations = gapFillIterations
	}
	r := rd.Raster
	for it := 0; it < iterations; it++ {
		changed := false
		next := make([]byte, len(r.Pix))
		copy(next, r.Pix)
		for y := 0; y < r.Height; y++ {
			for x := 0; x < r.Width; x++ {
				if r.Written(x, y) {
					continue
				}
				if rd.unpainted != nil && rd.unpainted[y*r.Width+x] {
					continue
				}
				var neighbors []color.NRGBA
				if r.Written(x-1, y) {
					neighbors = append(neighbors, r.NRGBAAt(x-1, y))
				}
				if r.Written(x+1, y) {
					neighbors = append(neighbors, r.NRGBAAt(x+1, y))
				}
				if r.Written(x, y-1) {
					neighbors = append(neighbors, r.NRGBAAt(x, y-1))
				}
				if r.Written(x, y+1) {
					neighbors = append(neighbors, r.NRGBAAt(x, y+1))
				}
				if len(neighbors) < 2 {
					continue
				}
				cl := majorityColor(neighbors)
				p := r.offset(x, y)
				next[p] = cl.R
				next[p+1] = cl.G
				next[p+2] = cl.B
				next[p+3] = cl.A
				changed = true
			}
		}
		r.Pix = next
		if !changed {
			break
		}
	}
}

// majorityColor picks the most frequent of up to four neighbor colors,
// keeping the first seen on ties.
func majorityColor(colors []color.NRGBA) color.NRGBA {
	best := colors[0]
	bestCount := 0
	for i, c := range colors {
		count := 0
		for _, o := range colors {
			if c == o {
				count++
			}
		}
		if count > bestCount {
			best = colors[i]
			bestCount = count
		}
	}
	return best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
