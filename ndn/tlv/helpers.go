// Package tlv implements the generic NDN TLV (Type-Length-Value) wire
// primitives: variable-length numbers and a nestable Block. The LVS
// binary codec (package lvs) builds its own TLV type numbers on top of
// this package; it knows nothing about NDN Data/Interest packets.
package tlv

import (
	"encoding/binary"
	"math"
)

// EncodeVarNum encodes a non-negative integer using the NDN TLV
// variable-size number encoding (1, 3, 5, or 9 bytes).
func EncodeVarNum(in uint64) []byte {
	if in <= 0xFC {
		return []byte{byte(in)}
	} else if in <= 0xFFFF {
		b := make([]byte, 3)
		b[0] = 0xFD
		binary.BigEndian.PutUint16(b[1:], uint16(in))
		return b
	} else if in <= 0xFFFFFFFF {
		b := make([]byte, 5)
		b[0] = 0xFE
		binary.BigEndian.PutUint32(b[1:], uint32(in))
		return b
	}
	b := make([]byte, 9)
	b[0] = 0xFF
	binary.BigEndian.PutUint64(b[1:], in)
	return b
}

// DecodeVarNum decodes a variable-size number, returning the value and
// the number of bytes consumed.
func DecodeVarNum(in []byte) (uint64, int, error) {
	if len(in) < 1 {
		return 0, 0, ErrTooShort
	}
	switch {
	case in[0] <= 0xFC:
		return uint64(in[0]), 1, nil
	case in[0] == 0xFD:
		if len(in) < 3 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint16(in[1:3])), 3, nil
	case in[0] == 0xFE:
		if len(in) < 5 {
			return 0, 0, ErrTooShort
		}
		return uint64(binary.BigEndian.Uint32(in[1:5])), 5, nil
	default:
		if len(in) < 9 {
			return 0, 0, ErrTooShort
		}
		return binary.BigEndian.Uint64(in[1:9]), 9, nil
	}
}

// EncodeNNI encodes a non-negative integer into the shortest TLV value
// slice (1, 2, 4, or 8 bytes) that can hold it.
func EncodeNNI(v uint64) []byte {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, v)
	switch {
	case v <= math.MaxUint8:
		return value[7:]
	case v <= math.MaxUint16:
		return value[6:]
	case v <= math.MaxUint32:
		return value[4:]
	default:
		return value
	}
}

// DecodeNNI decodes a non-negative integer from a TLV value slice.
func DecodeNNI(value []byte) (uint64, error) {
	if len(value) > 8 {
		return 0, ErrTooLong
	} else if len(value) == 0 {
		return 0, ErrTooShort
	}
	buf := make([]byte, 8)
	copy(buf[8-len(value):], value)
	return binary.BigEndian.Uint64(buf), nil
}
