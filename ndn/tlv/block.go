package tlv

import (
	"bytes"
	"math"
)

// Block is a nestable encoded TLV element. It either holds a flat
// value or a list of subelements; Encode() flattens subelements into
// the value so the block can be wire-encoded.
type Block struct {
	tlvType     uint32
	value       []byte
	subelements []*Block

	wire    []byte
	hasWire bool
}

// NewEmptyBlock creates a block with no value and no subelements.
func NewEmptyBlock(tlvType uint32) *Block {
	return &Block{tlvType: tlvType}
}

// NewBlock creates a block with the given flat value.
func NewBlock(tlvType uint32, value []byte) *Block {
	b := &Block{tlvType: tlvType}
	b.value = make([]byte, len(value))
	copy(b.value, value)
	return b
}

func (b *Block) Type() uint32          { return b.tlvType }
func (b *Block) Value() []byte         { return b.value }
func (b *Block) Subelements() []*Block { return b.subelements }

// Append adds a (deep-copied) subelement to the end of the block.
func (b *Block) Append(block *Block) {
	b.subelements = append(b.subelements, block.deepCopy())
	b.hasWire = false
}

// deepCopy returns a fully independent copy of the block, so a caller
// reusing the same *Block value for several Append calls can't leave
// later mutations bleeding into an already-appended subelement.
func (b *Block) deepCopy() *Block {
	c := *b
	c.value = append([]byte(nil), b.value...)
	c.subelements = make([]*Block, 0, len(b.subelements))
	for _, sub := range b.subelements {
		c.subelements = append(c.subelements, sub.deepCopy())
	}
	c.wire = append([]byte(nil), b.wire...)
	return &c
}

// Encode flattens all subelements into the block's value.
func (b *Block) Encode() error {
	if len(b.subelements) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, elem := range b.subelements {
		wire, err := elem.Wire()
		if err != nil {
			return err
		}
		buf.Write(wire)
	}
	b.value = buf.Bytes()
	b.subelements = nil
	return nil
}

// Parse splits the block's flat value into subelements.
func (b *Block) Parse() bool {
	pos := uint64(0)
	b.subelements = nil
	for pos < uint64(len(b.value)) {
		block, n, err := DecodeBlock(b.value[pos:])
		if err != nil {
			return false
		}
		b.subelements = append(b.subelements, block)
		pos += n
	}
	b.value = nil
	return true
}

// Wire returns the wire encoding of the block, computing and caching
// it if necessary.
func (b *Block) Wire() ([]byte, error) {
	if b.hasWire {
		return b.wire, nil
	}
	encodedType := EncodeVarNum(uint64(b.tlvType))
	var buf bytes.Buffer
	if len(b.subelements) > 0 {
		var size uint64
		wires := make([][]byte, len(b.subelements))
		for i, elem := range b.subelements {
			w, err := elem.Wire()
			if err != nil {
				return nil, err
			}
			wires[i] = w
			size += uint64(len(w))
		}
		buf.Write(encodedType)
		buf.Write(EncodeVarNum(size))
		for _, w := range wires {
			buf.Write(w)
		}
	} else {
		buf.Write(encodedType)
		buf.Write(EncodeVarNum(uint64(len(b.value))))
		buf.Write(b.value)
	}
	b.wire = buf.Bytes()
	b.hasWire = true
	return b.wire, nil
}

// DecodeBlock decodes one block from the head of wire, returning the
// block and the number of bytes it occupied.
func DecodeBlock(wire []byte) (*Block, uint64, error) {
	tlvType, typeLen, err := DecodeVarNum(wire)
	if err != nil {
		return nil, 0, err
	}
	if tlvType > math.MaxUint32 {
		return nil, 0, ErrOutOfRange
	}
	if typeLen == len(wire) {
		return nil, 0, ErrMissingLength
	}
	length, lengthLen, err := DecodeVarNum(wire[typeLen:])
	if err != nil {
		return nil, 0, err
	}
	total := uint64(typeLen) + uint64(lengthLen) + length
	if uint64(len(wire)) < total {
		return nil, 0, ErrBufferTooShort
	}
	b := &Block{tlvType: uint32(tlvType)}
	b.value = make([]byte, length)
	copy(b.value, wire[uint64(typeLen)+uint64(lengthLen):total])
	b.wire = make([]byte, total)
	copy(b.wire, wire[:total])
	b.hasWire = true
	return b, total, nil
}
