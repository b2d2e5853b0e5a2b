package mmseg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSegmentation covers every decode failure: bad characters,
// reserved nibbles, truncation, trailing data and depth overflow. Wrapped
// errors carry the detail; match with errors.Is.
var ErrMalformedSegmentation = errors.New("mmseg: malformed segmentation string")

// Each nibble encodes typeBits<<2 | valueBits. Type 00 and 01 are leaves
// with the material index in the value bits (01 marks an explicitly painted
// leaf; the encoder emits the plain form so material 1 round-trips as "1").
// Type 10 is a split and must carry zero value bits, so the only valid
// split nibble is 8. Type 11 is reserved.
const (
	nibbleTypeLeaf        = 0x0
	nibbleTypeLeafPainted = 0x1
	nibbleTypeSplit       = 0x2
	nibbleTypeReserved    = 0x3

	nibbleTypeShift = 2
	nibbleValueMask = 0x3
)

type segCursor struct {
	src string
	pos int
}

func (c *segCursor) readNibble() (uint8, error) {
	if c.pos >= len(c.src) {
		return 0, fmt.Errorf("%w: truncated at nibble %d of %d", ErrMalformedSegmentation, c.pos, len(c.src))
	}
	ch := c.src[c.pos]
	var nb uint8
	switch {
	case ch >= '0' && ch <= '9':
		nb = ch - '0'
	case ch >= 'A' && ch <= 'F':
		nb = ch - 'A' + 10
	case ch >= 'a' && ch <= 'f':
		nb = ch - 'a' + 10
	default:
		return 0, fmt.Errorf("%w: invalid hex character %q at position %d", ErrMalformedSegmentation, ch, c.pos)
	}
	c.pos++
	return nb, nil
}

func (c *segCursor) decodeNode(depth int) (*SegmentationNode, error) {
	nb, err := c.readNibble()
	if err != nil {
		return nil, err
	}
	typeBits := nb >> nibbleTypeShift
	valueBits := nb & nibbleValueMask
	switch typeBits {
	case nibbleTypeLeaf, nibbleTypeLeafPainted:
		return Leaf(valueBits), nil
	case nibbleTypeSplit:
		if valueBits != 0 {
			return nil, fmt.Errorf("%w: split nibble %X carries value bits at position %d",
				ErrMalformedSegmentation, nb, c.pos-1)
		}
		if depth >= MaxSegmentationDepth {
			return nil, fmt.Errorf("%w: tree deeper than %d levels",
				ErrMalformedSegmentation, MaxSegmentationDepth)
		}
		node := &SegmentationNode{Children: make([]*SegmentationNode, NumChildren)}
		for i := 0; i < NumChildren; i++ {
			child, err := c.decodeNode(depth + 1)
			if err != nil {
				return nil, err
			}
			node.Children[i] = child
		}
		return node, nil
	default:
		return nil, fmt.Errorf("%w: reserved nibble %X at position %d",
			ErrMalformedSegmentation, nb, c.pos-1)
	}
}

// DecodeSegmentation parses a per-triangle segmentation attribute into its
// subdivision tree. The string is a pre-order depth-first nibble sequence
// with no length prefix; the tree shape determines exactly how many nibbles
// are consumed and anything left over is an error.
func DecodeSegmentation(s string) (*SegmentationNode, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty string", ErrMalformedSegmentation)
	}
	c := segCursor{src: s}
	node, err := c.decodeNode(0)
	if err != nil {
		return nil, err
	}
	if c.pos != len(s) {
		return nil, fmt.Errorf("%w: %d trailing nibbles after position %d",
			ErrMalformedSegmentation, len(s)-c.pos, c.pos)
	}
	return node, nil
}

// EncodeSegmentation serializes a tree to its wire form. The encoding is
// canonical: leaves emit their material index directly (nibbles 0-3) and
// splits emit 8, so DecodeSegmentation(EncodeSegmentation(t)) reproduces t.
func EncodeSegmentation(n *SegmentationNode) (string, error) {
	if n == nil {
		return "", errors.New("mmseg: cannot encode nil segmentation tree")
	}
	var sb strings.Builder
	if err := encodeNode(&sb, n, 0); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func encodeNode(sb *strings.Builder, n *SegmentationNode, depth int) error {
	if n.IsLeaf() {
		if n.Material > MATERIAL_MAX_INDEX {
			return fmt.Errorf("mmseg: material index %d out of range", n.Material)
		}
		sb.WriteByte(hexDigit(n.Material))
		return nil
	}
	if len(n.Children) != NumChildren {
		return fmt.Errorf("mmseg: split node with %d children", len(n.Children))
	}
	if depth >= MaxSegmentationDepth {
		return fmt.Errorf("mmseg: tree deeper than %d levels", MaxSegmentationDepth)
	}
	sb.WriteByte(hexDigit(nibbleTypeSplit << nibbleTypeShift))
	for _, c := range n.Children {
		if c == nil {
			return errors.New("mmseg: split node with nil child")
		}
		if err := encodeNode(sb, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func hexDigit(v uint8) byte {
	if v < 10 {
		return '0' + v
	}
	return 'A' + v - 10
}
