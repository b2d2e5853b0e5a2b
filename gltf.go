package mmseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/qmuntal/gltf"
)

const GLTF_VERSION = "2.0"

// CreateDoc starts an empty single-scene glTF document with one shared
// binary buffer.
func CreateDoc() *gltf.Document {
	doc := &gltf.Document{}
	doc.Asset.Version = GLTF_VERSION
	srcIndex := uint32(0)
	doc.Scene = &srcIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	return doc
}

type calcSizeWriter struct {
	writer io.Writer
	Size   int
}

func (w *calcSizeWriter) Write(p []byte) (n int, err error) {
	si := len(p)
	w.writer.Write(p)
	w.Size += si
	return si, nil
}

func (w *calcSizeWriter) Bytes() []byte {
	return w.writer.(*bytes.Buffer).Bytes()
}

func newSizeWriter() calcSizeWriter {
	return calcSizeWriter{writer: bytes.NewBuffer(nil)}
}

func calcPadding(offset, paddingUnit int) int {
	padding := offset % paddingUnit
	if padding != 0 {
		padding = paddingUnit - padding
	}
	return padding
}

// GetGltfBinary encodes the document as GLB, space padded to the unit.
func GetGltfBinary(doc *gltf.Document, paddingUnit int) ([]byte, error) {
	w := newSizeWriter()
	enc := gltf.NewEncoder(&w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	padding := calcPadding(w.Size, paddingUnit)
	if padding == 0 {
		return w.Bytes(), nil
	}
	pad := make([]byte, padding)
	for i := range pad {
		pad[i] = 0x20
	}
	w.Write(pad)
	return w.Bytes(), nil
}

// PaintedMeshToGltf builds a preview document for a painted mesh: one
// primitive per material, flat colored through the palette.
func PaintedMeshToGltf(pm *PaintedMesh) (*gltf.Document, error) {
	doc := CreateDoc()
	if err := BuildPaintedGltf(doc, pm); err != nil {
		return nil, err
	}
	return doc, nil
}

// BuildPaintedGltf appends the painted mesh to an existing document.
func BuildPaintedGltf(doc *gltf.Document, pm *PaintedMesh) error {
	if len(pm.Vertices) == 0 || len(pm.Faces) == 0 {
		return errors.New("mmseg: empty painted mesh")
	}
	buffer := doc.Buffers[0]

	// Stable material order: unpainted first, then palette order.
	var order []uint8
	groups := pm.MaterialGroups()
	for m := 0; m <= MATERIAL_MAX_INDEX; m++ {
		if _, ok := groups[uint8(m)]; ok {
			order = append(order, uint8(m))
		}
	}

	buf := bytes.NewBuffer(nil)
	startLen := buffer.ByteLength

	indices := &gltf.BufferView{Buffer: 0, ByteOffset: startLen}
	for _, m := range order {
		for _, f := range groups[m] {
			binary.Write(buf, binary.LittleEndian, f.Vertex)
		}
	}
	indices.ByteLength = uint32(buf.Len())
	bvIndex := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, indices)

	positions := &gltf.BufferView{Buffer: 0, ByteOffset: startLen + uint32(buf.Len())}
	binary.Write(buf, binary.LittleEndian, pm.Vertices)
	positions.ByteLength = startLen + uint32(buf.Len()) - positions.ByteOffset
	bvPos := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, positions)

	buffer.ByteLength += uint32(buf.Len())
	buffer.Data = append(buffer.Data, buf.Bytes()...)

	mesh := &gltf.Mesh{}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	meshId := uint32(len(doc.Meshes))
	doc.Nodes = append(doc.Nodes, &gltf.Node{Mesh: &meshId})

	posAccessor := uint32(len(doc.Accessors)) + uint32(len(order))
	var start uint32
	for _, m := range order {
		faces := groups[m]

		mtlId := uint32(len(doc.Materials))
		doc.Materials = append(doc.Materials, paintMaterial(pm.Palette, m))

		ps := &gltf.Primitive{Mode: gltf.PrimitiveTriangles, Material: &mtlId}
		ps.Attributes = gltf.Attribute{"POSITION": posAccessor}
		index := uint32(len(doc.Accessors))
		ps.Indices = &index
		mesh.Primitives = append(mesh.Primitives, ps)

		indexacc := &gltf.Accessor{
			ComponentType: gltf.ComponentUint,
			Type:          gltf.AccessorScalar,
			ByteOffset:    start * 12,
			Count:         uint32(len(faces)) * 3,
			BufferView:    &bvIndex,
		}
		start += uint32(len(faces))
		doc.Accessors = append(doc.Accessors, indexacc)
	}

	posacc := &gltf.Accessor{
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         uint32(len(pm.Vertices)),
		BufferView:    &bvPos,
	}
	min, max := pm.Vertices[0], pm.Vertices[0]
	for _, v := range pm.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	posacc.Min = []float32{min[0], min[1], min[2]}
	posacc.Max = []float32{max[0], max[1], max[2]}
	doc.Accessors = append(doc.Accessors, posacc)

	doc.Meshes = append(doc.Meshes, mesh)
	return nil
}

func paintMaterial(pal Palette, material uint8) *gltf.Material {
	gm := &gltf.Material{DoubleSided: true}
	cl := &[4]float32{0.5, 0.5, 0.5, 1}
	if c, ok := pal.ColorOf(material); ok {
		cl = &[4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
	}
	gm.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{BaseColorFactor: cl}
	return gm
}
