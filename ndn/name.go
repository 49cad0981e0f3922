package ndn

import (
	"strings"

	"github.com/named-data/lvs/lvs"
)

// Name is an ordered sequence of NDN name components. It satisfies the
// minimal interface the LVS core expects of a name: length and
// positional access to components.
type Name []Component

// ParseName decodes an NDN URI-style name such as "/ndn/blog/KEY/1".
// A leading slash is optional; an empty string is the empty name.
func ParseName(s string) (Name, error) {
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return Name{}, nil
	}
	segs := strings.Split(s, "/")
	name := make(Name, 0, len(segs))
	for _, seg := range segs {
		c, err := ComponentFromString(seg)
		if err != nil {
			return nil, err
		}
		name = append(name, c)
	}
	return name, nil
}

// MustParseName is ParseName but panics on error; handy for literal
// names in tests and fixtures.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Len implements the lvs.Name contract.
func (n Name) Len() int { return len(n) }

// At implements the lvs.Name contract.
func (n Name) At(i int) lvs.Component { return n[i] }

// Equal reports whether two names have the same components in order.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Append returns a new name with components appended.
func (n Name) Append(comps ...Component) Name {
	out := make(Name, 0, len(n)+len(comps))
	out = append(out, n...)
	out = append(out, comps...)
	return out
}

func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, c := range n {
		b.WriteByte('/')
		b.WriteString(c.String())
	}
	return b.String()
}
