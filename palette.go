package mmseg

import "image/color"

// DefaultColorTolerance is the maximum per-pixel L1 RGB distance for a
// sample to classify as a palette material during extraction. Painted
// textures are flat-shaded so anything farther is treated as unpainted.
const DefaultColorTolerance = 96

// Palette maps material indices to paint colors. Index 0 is the unpainted
// base material and has no color of its own: the renderer leaves the
// raster untouched for it. A palette for the tree codec holds at most
// MATERIAL_MAX_INDEX+1 entries; longer palettes still work for the flat
// vendor scheme.
type Palette [][3]byte

// DefaultPalette mirrors the extruder colors most slicers ship with.
func DefaultPalette() Palette {
	return Palette{
		{128, 128, 128},
		{255, 64, 64},
		{64, 255, 64},
		{64, 64, 255},
	}
}

// ColorOf resolves a material index to an opaque paint color. The second
// result is false for the unpainted material and for indices outside the
// palette.
func (p Palette) ColorOf(material uint8) (color.NRGBA, bool) {
	if material == MATERIAL_UNPAINTED || int(material) >= len(p) {
		return color.NRGBA{}, false
	}
	e := p[material]
	return color.NRGBA{R: e[0], G: e[1], B: e[2], A: alphaOpaque}, true
}

// MaterialOf classifies a sample color into a material index: the nearest
// painted palette entry within tolerance, or 0 for transparent samples and
// colors no entry matches.
func (p Palette) MaterialOf(c color.NRGBA, tolerance int) uint8 {
	if c.A < alphaThreshold {
		return MATERIAL_UNPAINTED
	}
	best := MATERIAL_UNPAINTED
	bestDist := tolerance + 1
	for i := 1; i < len(p); i++ {
		d := absDiff(c.R, p[i][0]) + absDiff(c.G, p[i][1]) + absDiff(c.B, p[i][2])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return uint8(best)
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a) - int(b)
	}
	return int(b) - int(a)
}

// ClassifyRaster maps every raster sample to a material index in one bulk
// pass. The extractor samples this state map instead of re-deriving color
// distances inside the recursion.
func (p Palette) ClassifyRaster(r *Raster, tolerance int) []uint8 {
	states := make([]uint8, r.Width*r.Height)
	for i := 0; i < len(states); i++ {
		px := r.Pix[i*4 : i*4+4]
		if px[3] < alphaThreshold {
			continue
		}
		c := color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
		states[i] = p.MaterialOf(c, tolerance)
	}
	return states
}

// filamentCodes is the flat per-triangle paint scheme one vendor uses: a
// single code per triangle selected from a fixed table, not a tree. Index
// 0 (no paint) has no attribute at all.
var filamentCodes = []string{
	"",
	"4", "8", "0C", "1C", "2C", "3C", "4C", "5C", "6C",
	"7C", "8C", "9C", "AC", "BC", "CC", "DC", "EC",
	"0FC", "1FC", "2FC", "3FC", "4FC", "5FC", "6FC",
	"7FC", "8FC", "9FC", "AFC", "BFC", "CFC", "DFC", "EFC",
}

// FilamentCode returns the flat vendor code for a 0-based filament index.
func FilamentCode(index int) (string, bool) {
	if index < 0 || index >= len(filamentCodes) {
		return "", false
	}
	return filamentCodes[index], true
}

// FilamentIndex resolves a flat vendor code back to its filament index.
func FilamentIndex(code string) (int, bool) {
	for i, c := range filamentCodes {
		if c == code {
			return i, true
		}
	}
	return 0, false
}
