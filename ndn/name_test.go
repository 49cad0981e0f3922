package ndn_test

import (
	"testing"

	"github.com/named-data/lvs/ndn"
	"github.com/stretchr/testify/assert"
)

func TestParseNameRoundTrip(t *testing.T) {
	n, err := ndn.ParseName("/ndn/blog/admin/000001/KEY/1/root/1")
	assert.NoError(t, err)
	assert.Equal(t, 8, n.Len())
	assert.Equal(t, "/ndn/blog/admin/000001/KEY/1/root/1", n.String())
}

func TestParseNameEmpty(t *testing.T) {
	n, err := ndn.ParseName("/")
	assert.NoError(t, err)
	assert.Equal(t, 0, n.Len())
	assert.Equal(t, "/", n.String())
}

func TestParseNameTypedComponent(t *testing.T) {
	n, err := ndn.ParseName("/sha256digest=" + hex32)
	assert.NoError(t, err)
	assert.Equal(t, ndn.TypeImplicitSha256Digest, n.At(0).Type())
}

func TestComponentEqualityIncludesType(t *testing.T) {
	a := ndn.NewComponent([]byte("KEY"))
	b := ndn.NewTypedComponent(32, []byte("KEY"))
	assert.False(t, a.Equal(b))
}

const hex32 = "0000000000000000000000000000000000000000000000000000000000000000"
