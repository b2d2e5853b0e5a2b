package mmseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

func toLittleByteOrder(v interface{}) []byte {
	b := &bytes.Buffer{}
	if err := binary.Write(b, binary.LittleEndian, v); err != nil {
		return nil
	}
	return b.Bytes()
}

func writeLittleByte(wt io.Writer, v interface{}) {
	buf := toLittleByteOrder(v)
	if buf != nil {
		wt.Write(buf)
	}
}

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

func writeLittleUint8(wt io.Writer, v uint8) error {
	return binary.Write(wt, binary.LittleEndian, v)
}

func writeLittleUint32(wt io.Writer, v uint32) error {
	return binary.Write(wt, binary.LittleEndian, v)
}

func writeLittleInt64(wt io.Writer, v int64) error {
	return binary.Write(wt, binary.LittleEndian, v)
}

func writeLittleFloat64(wt io.Writer, v float64) error {
	return binary.Write(wt, binary.LittleEndian, v)
}

func writeString(wt io.Writer, s string) error {
	if err := writeLittleUint32(wt, uint32(len(s))); err != nil {
		return err
	}
	_, err := wt.Write([]byte(s))
	return err
}

func readString(rd io.Reader) (string, error) {
	var n uint32
	if err := readLittleByte(rd, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func TextureMarshal(wt io.Writer, tex *Texture) {
	writeLittleByte(wt, tex.Id)
	writeString(wt, tex.Name)
	writeLittleByte(wt, &tex.Size)
	writeLittleByte(wt, tex.Format)
	writeLittleByte(wt, tex.Compressed)
	writeLittleByte(wt, uint32(len(tex.Data)))
	wt.Write(tex.Data)
	writeLittleByte(wt, tex.Repeated)
}

func TextureUnMarshal(rd io.Reader) (*Texture, error) {
	tex := &Texture{}
	if err := readLittleByte(rd, &tex.Id); err != nil {
		return nil, err
	}
	var err error
	if tex.Name, err = readString(rd); err != nil {
		return nil, err
	}
	if err := readLittleByte(rd, &tex.Size); err != nil {
		return nil, err
	}
	if err := readLittleByte(rd, &tex.Format); err != nil {
		return nil, err
	}
	if err := readLittleByte(rd, &tex.Compressed); err != nil {
		return nil, err
	}
	var dataSize uint32
	if err := readLittleByte(rd, &dataSize); err != nil {
		return nil, err
	}
	tex.Data = make([]byte, dataSize)
	if _, err := io.ReadFull(rd, tex.Data); err != nil {
		return nil, err
	}
	if err := readLittleByte(rd, &tex.Repeated); err != nil {
		return nil, err
	}
	return tex, nil
}

func PaletteMarshal(wt io.Writer, pal Palette) {
	writeLittleByte(wt, uint32(len(pal)))
	for _, e := range pal {
		writeLittleByte(wt, &e)
	}
}

func PaletteUnMarshal(rd io.Reader) (Palette, error) {
	var n uint32
	if err := readLittleByte(rd, &n); err != nil {
		return nil, err
	}
	pal := make(Palette, n)
	for i := range pal {
		if err := readLittleByte(rd, &pal[i]); err != nil {
			return nil, err
		}
	}
	return pal, nil
}

// PaintDocument bundles one painting session: the palette, the painted
// texture and the per-triangle segmentation strings, plus free-form
// metadata. It round-trips through a little-endian binary layout.
type PaintDocument struct {
	Version       uint32            `json:"version"`
	Palette       Palette           `json:"palette"`
	Texture       *Texture          `json:"texture,omitempty"`
	Segmentations map[uint32]string `json:"segmentations"`
	Metadata      Metadata          `json:"metadata,omitempty"`
}

func NewPaintDocument() *PaintDocument {
	return &PaintDocument{
		Version:       V1,
		Palette:       DefaultPalette(),
		Segmentations: make(map[uint32]string),
		Metadata:      Metadata{},
	}
}

func PaintDocumentMarshal(wt io.Writer, doc *PaintDocument) error {
	if _, err := wt.Write([]byte(PAINT_SIGNATURE)); err != nil {
		return err
	}
	if err := writeLittleUint32(wt, doc.Version); err != nil {
		return err
	}
	PaletteMarshal(wt, doc.Palette)
	if doc.Texture != nil {
		writeLittleByte(wt, uint16(1))
		TextureMarshal(wt, doc.Texture)
	} else {
		writeLittleByte(wt, uint16(0))
	}
	if err := writeLittleUint32(wt, uint32(len(doc.Segmentations))); err != nil {
		return err
	}
	for idx, seg := range doc.Segmentations {
		if err := writeLittleUint32(wt, idx); err != nil {
			return err
		}
		if err := writeString(wt, seg); err != nil {
			return err
		}
	}
	return MetadataMarshal(wt, doc.Metadata)
}

func PaintDocumentUnMarshal(rd io.Reader) (*PaintDocument, error) {
	sig := make([]byte, len(PAINT_SIGNATURE))
	if _, err := io.ReadFull(rd, sig); err != nil {
		return nil, err
	}
	if string(sig) != PAINT_SIGNATURE {
		return nil, errors.New("mmseg: bad paint document signature")
	}
	doc := &PaintDocument{Segmentations: make(map[uint32]string)}
	if err := readLittleByte(rd, &doc.Version); err != nil {
		return nil, err
	}
	if doc.Version > V1 {
		return nil, fmt.Errorf("mmseg: unsupported paint document version %d", doc.Version)
	}
	var err error
	if doc.Palette, err = PaletteUnMarshal(rd); err != nil {
		return nil, err
	}
	var hasTex uint16
	if err := readLittleByte(rd, &hasTex); err != nil {
		return nil, err
	}
	if hasTex == 1 {
		if doc.Texture, err = TextureUnMarshal(rd); err != nil {
			return nil, err
		}
	}
	var segCount uint32
	if err := readLittleByte(rd, &segCount); err != nil {
		return nil, err
	}
	for i := uint32(0); i < segCount; i++ {
		var idx uint32
		if err := readLittleByte(rd, &idx); err != nil {
			return nil, err
		}
		seg, err := readString(rd)
		if err != nil {
			return nil, err
		}
		doc.Segmentations[idx] = seg
	}
	if doc.Metadata, err = MetadataUnMarshal(rd); err != nil {
		return nil, err
	}
	return doc, nil
}

func PaintDocumentReadFrom(path string) (*PaintDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return PaintDocumentUnMarshal(f)
}

func PaintDocumentWriteTo(path string, doc *PaintDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return PaintDocumentMarshal(f, doc)
}
