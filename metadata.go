package mmseg

import (
	"fmt"
	"io"
)

type MetaType uint32

const (
	META_TYPE_STRING = iota
	META_TYPE_INT
	META_TYPE_FLOAT
	META_TYPE_BOOL
)

type MetaValue struct {
	Type  MetaType
	Value interface{}
}

// Metadata carries free-form document attributes (tool name, source unit,
// default extruder and the like) through the paint document.
type Metadata map[string]MetaValue

func (m Metadata) SetString(key, v string) { m[key] = MetaValue{Type: META_TYPE_STRING, Value: v} }
func (m Metadata) SetInt(key string, v int64) {
	m[key] = MetaValue{Type: META_TYPE_INT, Value: v}
}
func (m Metadata) SetFloat(key string, v float64) {
	m[key] = MetaValue{Type: META_TYPE_FLOAT, Value: v}
}
func (m Metadata) SetBool(key string, v bool) { m[key] = MetaValue{Type: META_TYPE_BOOL, Value: v} }

func MetadataMarshal(wt io.Writer, meta Metadata) error {
	if err := writeLittleUint32(wt, uint32(len(meta))); err != nil {
		return err
	}
	for key, value := range meta {
		if err := writeString(wt, key); err != nil {
			return fmt.Errorf("write metadata key failed: %w", err)
		}
		if err := writeLittleUint32(wt, uint32(value.Type)); err != nil {
			return fmt.Errorf("write metadata type failed: %w", err)
		}
		switch value.Type {
		case META_TYPE_STRING:
			if err := writeString(wt, value.Value.(string)); err != nil {
				return fmt.Errorf("write string metadata failed: %w", err)
			}
		case META_TYPE_INT:
			if err := writeLittleInt64(wt, value.Value.(int64)); err != nil {
				return fmt.Errorf("write int metadata failed: %w", err)
			}
		case META_TYPE_FLOAT:
			if err := writeLittleFloat64(wt, value.Value.(float64)); err != nil {
				return fmt.Errorf("write float metadata failed: %w", err)
			}
		case META_TYPE_BOOL:
			b := uint8(0)
			if value.Value.(bool) {
				b = 1
			}
			if err := writeLittleUint8(wt, b); err != nil {
				return fmt.Errorf("write bool metadata failed: %w", err)
			}
		default:
			return fmt.Errorf("unknown metadata type %d", value.Type)
		}
	}
	return nil
}

func MetadataUnMarshal(rd io.Reader) (Metadata, error) {
	var count uint32
	if err := readLittleByte(rd, &count); err != nil {
		return nil, err
	}
	meta := make(Metadata, count)
	for i := uint32(0); i < count; i++ {
		key, err := readString(rd)
		if err != nil {
			return nil, fmt.Errorf("read metadata key failed: %w", err)
		}
		var mt uint32
		if err := readLittleByte(rd, &mt); err != nil {
			return nil, fmt.Errorf("read metadata type failed: %w", err)
		}
		value := MetaValue{Type: MetaType(mt)}
		switch MetaType(mt) {
		case META_TYPE_STRING:
			s, err := readString(rd)
			if err != nil {
				return nil, err
			}
			value.Value = s
		case META_TYPE_INT:
			var v int64
			if err := readLittleByte(rd, &v); err != nil {
				return nil, err
			}
			value.Value = v
		case META_TYPE_FLOAT:
			var v float64
			if err := readLittleByte(rd, &v); err != nil {
				return nil, err
			}
			value.Value = v
		case META_TYPE_BOOL:
			var v uint8
			if err := readLittleByte(rd, &v); err != nil {
				return nil, err
			}
			value.Value = v == 1
		default:
			return nil, fmt.Errorf("unknown metadata type %d", mt)
		}
		meta[key] = value
	}
	return meta, nil
}
