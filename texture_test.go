package mmseg

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestRasterTextureRoundTrip(t *testing.T) {
	r := NewRaster(16, 8)
	pal := DefaultPalette()
	for x := 0; x < r.Width; x++ {
		c, _ := pal.ColorOf(uint8(1 + x%3))
		r.SetNRGBA(x, x%r.Height, c)
	}

	tex := r.ToTexture("paint")
	if tex.Compressed != TEXTURE_COMPRESSED_ZLIB {
		t.Errorf("texture not compressed")
	}
	if tex.Size[0] != 16 || tex.Size[1] != 8 {
		t.Errorf("texture size = %v", tex.Size)
	}

	back, err := RasterFromTexture(tex)
	if err != nil {
		t.Fatal(err)
	}
	if back.Width != r.Width || back.Height != r.Height {
		t.Fatalf("raster size %dx%d, want %dx%d", back.Width, back.Height, r.Width, r.Height)
	}
	if !bytes.Equal(back.Pix, r.Pix) {
		t.Errorf("pixels did not round trip")
	}
}

func TestRasterFromTextureRGB(t *testing.T) {
	tex := &Texture{
		Size:       [2]uint64{2, 1},
		Format:     TEXTURE_FORMAT_RGB,
		Compressed: TEXTURE_COMPRESSED_NONE,
		Data:       []byte{10, 20, 30, 40, 50, 60},
	}
	r, err := RasterFromTexture(tex)
	if err != nil {
		t.Fatal(err)
	}
	want := color.NRGBA{R: 40, G: 50, B: 60, A: alphaOpaque}
	if got := r.NRGBAAt(1, 0); got != want {
		t.Errorf("pixel (1,0) = %v, want %v", got, want)
	}
}

func TestRasterFromTextureShortData(t *testing.T) {
	tex := &Texture{
		Size:       [2]uint64{4, 4},
		Format:     TEXTURE_FORMAT_RGBA,
		Compressed: TEXTURE_COMPRESSED_NONE,
		Data:       []byte{1, 2, 3},
	}
	if _, err := RasterFromTexture(tex); err == nil {
		t.Errorf("expected error for truncated texture data")
	}
}

func TestPixelAtClamps(t *testing.T) {
	r := NewRaster(10, 10)
	tests := []struct {
		u, v float32
		x, y int
	}{
		{0, 0, 0, 0},
		{1, 1, 9, 9},
		{-0.5, 0.5, 0, 5},
		{0.5, 2, 5, 9},
		// Sample x covers [x/W, (x+1)/W): the leading edge belongs to it.
		{0.7, 0.7, 7, 7},
		{0.75, 0.05, 7, 0},
	}
	for _, tt := range tests {
		if x, y := r.PixelAt(tt.u, tt.v); x != tt.x || y != tt.y {
			t.Errorf("PixelAt(%v,%v) = (%d,%d), want (%d,%d)", tt.u, tt.v, x, y, tt.x, tt.y)
		}
	}
}

func TestRasterFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(2, 1, color.NRGBA{R: 7, G: 8, B: 9, A: 255})
	r := RasterFromImage(img)
	if r.Width != 3 || r.Height != 2 {
		t.Fatalf("raster size %dx%d", r.Width, r.Height)
	}
	if got := r.NRGBAAt(2, 1); got != (color.NRGBA{R: 7, G: 8, B: 9, A: 255}) {
		t.Errorf("pixel (2,1) = %v", got)
	}

	// Non-NRGBA images go through the per-pixel conversion path.
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(0, 0, color.Gray{Y: 100})
	rg := RasterFromImage(gray)
	if got := rg.NRGBAAt(0, 0); got.R != 100 || got.A != 255 {
		t.Errorf("gray pixel = %v", got)
	}
}
