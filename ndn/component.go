// Package ndn is a minimal NDN name/component adapter. The LVS
// toolchain (package lvs) does not depend on this package directly:
// per its specification it consumes only three small interfaces (a
// name's ordered component sequence, component byte-equality, and a
// component's type tag). This package is one concrete implementation
// of those interfaces, good enough to parse, print, and compare names
// the way schemas and test fixtures are usually written (NDN URI
// syntax), without pulling in a full Interest/Data/signing codec —
// that remains out of scope per the specification.
package ndn

import (
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// Standard NDN name component TLV types that the LVS test corpus and
// tutorial schemas exercise. Unrecognized types round-trip through
// Component as opaque generic-looking components keyed by their type
// number.
const (
	TypeGenericNameComponent    uint16 = 8
	TypeImplicitSha256Digest    uint16 = 1
	TypeParametersSha256Digest  uint16 = 2
	TypeKeywordNameComponent    uint16 = 32
)

// Component is a single NDN name component: a type tag plus an opaque
// byte value. Equality is byte-equality including the type tag, as
// required by the LVS specification's Component data model.
type Component struct {
	Typ uint16
	Val []byte
}

// NewComponent creates a generic-name-component-typed Component.
func NewComponent(value []byte) Component {
	return Component{Typ: TypeGenericNameComponent, Val: value}
}

// NewTypedComponent creates a Component of an explicit TLV type.
func NewTypedComponent(typ uint16, value []byte) Component {
	return Component{Typ: typ, Val: value}
}

// Type returns the component's TLV type tag.
func (c Component) Type() uint16 { return c.Typ }

// Bytes returns the component's raw value.
func (c Component) Bytes() []byte { return c.Val }

// Equal reports whether two components have the same type and value.
func (c Component) Equal(other Component) bool {
	return c.Typ == other.Typ && string(c.Val) == string(other.Val)
}

func (c Component) String() string {
	switch c.Typ {
	case TypeGenericNameComponent:
		return escapeComponent(c.Val)
	case TypeImplicitSha256Digest:
		return "sha256digest=" + hex.EncodeToString(c.Val)
	case TypeParametersSha256Digest:
		return "params-sha256=" + hex.EncodeToString(c.Val)
	case TypeKeywordNameComponent:
		return "32=" + escapeComponent(c.Val)
	default:
		return strconv.FormatUint(uint64(c.Typ), 10) + "=" + escapeComponent(c.Val)
	}
}

// ComponentFromString parses one NDN URI-style name segment, either
// "value" (generic component) or "type=value".
func ComponentFromString(s string) (Component, error) {
	if !strings.Contains(s, "=") {
		unescaped, err := unescapeComponent(s)
		if err != nil {
			return Component{}, err
		}
		return NewComponent([]byte(unescaped)), nil
	}
	parts := strings.SplitN(s, "=", 2)
	unescaped, err := unescapeComponent(parts[1])
	if err != nil {
		return Component{}, err
	}
	switch parts[0] {
	case "sha256digest":
		digest, err := hex.DecodeString(unescaped)
		if err != nil {
			return Component{}, errors.New("ndn: sha256digest component is not hex")
		}
		return NewTypedComponent(TypeImplicitSha256Digest, digest), nil
	case "params-sha256":
		digest, err := hex.DecodeString(unescaped)
		if err != nil {
			return Component{}, errors.New("ndn: params-sha256 component is not hex")
		}
		return NewTypedComponent(TypeParametersSha256Digest, digest), nil
	default:
		typ, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			return Component{}, errors.New("ndn: unrecognized component type " + parts[0])
		}
		return NewTypedComponent(uint16(typ), []byte(unescaped)), nil
	}
}

func escapeComponent(in []byte) string {
	var out strings.Builder
	periods := 0
	for _, b := range in {
		switch {
		case b == '.':
			periods++
			out.WriteByte(b)
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') ||
			b == '-' || b == '_' || b == '~':
			out.WriteByte(b)
		default:
			out.WriteByte('%')
			out.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
		}
	}
	if periods == len(in) && len(in) > 0 {
		out.WriteString("...")
	}
	return out.String()
}

func unescapeComponent(in string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(in); i++ {
		if in[i] == '%' {
			if len(in) <= i+2 {
				return "", errors.New("ndn: incomplete percent-escape")
			}
			b, err := hex.DecodeString(in[i+1 : i+3])
			if err != nil {
				return "", errors.New("ndn: invalid percent-escape")
			}
			out.Write(b)
			i += 2
		} else {
			out.WriteByte(in[i])
		}
	}
	return out.String(), nil
}
