package tlv

import "errors"

// TLV errors.
var (
	ErrBufferTooShort = errors.New("TLV length exceeds buffer size")
	ErrMissingLength  = errors.New("missing TLV length")
	ErrTooLong        = errors.New("value too long")
	ErrTooShort       = errors.New("value too short")
	ErrOutOfRange     = errors.New("value outside of allowed range")
)
