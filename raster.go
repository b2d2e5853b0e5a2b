package mmseg

import (
	"image"
	"image/color"
)

// alpha value marking a sample as written by a leaf fill; samples below
// the threshold count as untouched background for gap filling.
const (
	alphaOpaque    = 255
	alphaThreshold = 128
)

// Raster is the painted texture: an RGBA byte grid with a UV to pixel
// mapping. The codec never owns the raster, it is passed in by the host
// and written in place. The alpha channel doubles as the written mask so
// unpainted regions keep whatever content the host put there.
type Raster struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pix    []byte `json:"-"`
}

func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

func (r *Raster) offset(x, y int) int {
	return (y*r.Width + x) * 4
}

func (r *Raster) SetNRGBA(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	p := r.offset(x, y)
	r.Pix[p] = c.R
	r.Pix[p+1] = c.G
	r.Pix[p+2] = c.B
	r.Pix[p+3] = c.A
}

func (r *Raster) NRGBAAt(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.NRGBA{}
	}
	p := r.offset(x, y)
	return color.NRGBA{R: r.Pix[p], G: r.Pix[p+1], B: r.Pix[p+2], A: r.Pix[p+3]}
}

// Written reports whether a leaf fill has touched the sample.
func (r *Raster) Written(x, y int) bool {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return false
	}
	return r.Pix[r.offset(x, y)+3] >= alphaThreshold
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PixelAt maps a UV coordinate to the sample containing it, clamping to
// the raster bounds. Sample x covers [x/W, (x+1)/W), matching the sample
// center convention the renderer scans with.
func (r *Raster) PixelAt(u, v float32) (int, int) {
	x := int(clamp01(u) * float32(r.Width))
	if x >= r.Width {
		x = r.Width - 1
	}
	y := int(clamp01(v) * float32(r.Height))
	if y >= r.Height {
		y = r.Height - 1
	}
	return x, y
}

// Image copies the raster into a stdlib NRGBA image.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	copy(img.Pix, r.Pix)
	return img
}

// RasterFromImage converts any image into a raster. Opaque pixels come
// through as written samples.
func RasterFromImage(img image.Image) *Raster {
	bd := img.Bounds()
	r := NewRaster(bd.Dx(), bd.Dy())
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == r.Width*4 {
		copy(r.Pix, nrgba.Pix)
		return r
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bd.Min.X+x, bd.Min.Y+y)).(color.NRGBA)
			r.SetNRGBA(x, y, c)
		}
	}
	return r
}
