package mmseg

import (
	"bytes"
	"compress/zlib"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	TEXTURE_FORMAT_R    = 0
	TEXTURE_FORMAT_RGB  = 4
	TEXTURE_FORMAT_RGBA = 6
)

const (
	TEXTURE_COMPRESSED_NONE = 0
	TEXTURE_COMPRESSED_ZLIB = 1
)

// Texture is the persistable form of a painted raster: raw channel bytes,
// optionally zlib compressed, plus enough layout info to rebuild a Raster.
type Texture struct {
	Id         int32     `json:"id"`
	Name       string    `json:"name"`
	Size       [2]uint64 `json:"size"`
	Format     uint16    `json:"format"`
	Compressed uint16    `json:"compressed"`
	Data       []byte    `json:"-"`
	Repeated   bool      `json:"repeated"`
}

func CompressImage(buf []byte) []byte {
	bf := &bytes.Buffer{}
	w := zlib.NewWriter(bf)
	w.Write(buf)
	w.Close()
	return bf.Bytes()
}

func DecompressImage(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (t *Texture) pixelSize() (int, error) {
	switch t.Format {
	case TEXTURE_FORMAT_RGBA:
		return 4, nil
	case TEXTURE_FORMAT_RGB:
		return 3, nil
	case TEXTURE_FORMAT_R:
		return 1, nil
	}
	return 0, errors.New("mmseg: unsupported texture format")
}

// ToTexture wraps the raster pixels into a zlib compressed RGBA texture.
func (r *Raster) ToTexture(name string) *Texture {
	return &Texture{
		Name:       name,
		Size:       [2]uint64{uint64(r.Width), uint64(r.Height)},
		Format:     TEXTURE_FORMAT_RGBA,
		Compressed: TEXTURE_COMPRESSED_ZLIB,
		Data:       CompressImage(r.Pix),
	}
}

// RasterFromTexture unpacks a texture back into a writable raster.
func RasterFromTexture(tex *Texture) (*Raster, error) {
	sz, err := tex.pixelSize()
	if err != nil {
		return nil, err
	}
	data := tex.Data
	if tex.Compressed == TEXTURE_COMPRESSED_ZLIB {
		data, err = DecompressImage(tex.Data)
		if err != nil {
			return nil, err
		}
	}
	w := int(tex.Size[0])
	h := int(tex.Size[1])
	if len(data) < w*h*sz {
		return nil, errors.New("mmseg: texture data shorter than declared size")
	}
	r := NewRaster(w, h)
	if sz == 4 {
		copy(r.Pix, data[:w*h*4])
		return r, nil
	}
	for i := 0; i < w*h; i++ {
		p := i * sz
		switch sz {
		case 3:
			r.Pix[i*4] = data[p]
			r.Pix[i*4+1] = data[p+1]
			r.Pix[i*4+2] = data[p+2]
			r.Pix[i*4+3] = alphaOpaque
		case 1:
			r.Pix[i*4] = data[p]
			r.Pix[i*4+1] = data[p]
			r.Pix[i*4+2] = data[p]
			r.Pix[i*4+3] = alphaOpaque
		}
	}
	return r, nil
}

// LoadRasterFile reads a texture image from disk. The format is sniffed
// from the content, not the extension.
func LoadRasterFile(path string) (*Raster, error) {
	reader, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	_, format, err := image.DecodeConfig(reader)
	if err != nil {
		return nil, err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var img image.Image
	switch format {
	case "jpeg", "jpg":
		img, err = jpeg.Decode(reader)
	case "png":
		img, err = png.Decode(reader)
	case "gif":
		img, err = gif.Decode(reader)
	case "bmp":
		img, err = bmp.Decode(reader)
	case "tif", "tiff":
		img, err = tiff.Decode(reader)
	default:
		return nil, errors.New("mmseg: unknown image format " + format)
	}
	if err != nil {
		return nil, err
	}
	return RasterFromImage(img), nil
}

// SaveRasterFile writes the raster as a PNG next to the document.
func SaveRasterFile(r *Raster, path string) error {
	fl, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fl.Close()
	if filepath.Ext(path) == ".jpg" {
		return jpeg.Encode(fl, r.Image(), &jpeg.Options{Quality: 95})
	}
	return png.Encode(fl, r.Image())
}
