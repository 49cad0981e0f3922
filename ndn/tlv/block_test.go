package tlv_test

import (
	"testing"

	"github.com/named-data/lvs/ndn/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockWireFlatValue(t *testing.T) {
	block := tlv.NewBlock(0x28, []byte{0x01, 0x02, 0x03, 0x04})
	assert.Equal(t, uint32(0x28), block.Type())
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, block.Value())

	wire, err := block.Wire()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0x04, 0x01, 0x02, 0x03, 0x04}, wire)

	empty := tlv.NewEmptyBlock(0x28)
	wire, err = empty.Wire()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0x00}, wire)
}

func TestBlockDecode(t *testing.T) {
	block, n, err := tlv.DecodeBlock([]byte{0x28, 0x04, 0x01, 0x02, 0x03, 0x04, 0xff})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)
	assert.Equal(t, uint32(0x28), block.Type())
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, block.Value())

	wire, err := block.Wire()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0x04, 0x01, 0x02, 0x03, 0x04}, wire)
}

func TestBlockAppendEncodesSubelements(t *testing.T) {
	block := tlv.NewEmptyBlock(0xAA)
	block.Append(tlv.NewBlock(0xBB, []byte{0x01}))
	block.Append(tlv.NewBlock(0xCC, []byte{0x02}))
	inner := tlv.NewEmptyBlock(0xDD)
	inner.Append(tlv.NewBlock(0xEE, []byte{0x03}))
	block.Append(inner)

	require.NoError(t, block.Encode())
	assert.Empty(t, block.Subelements())
	assert.Equal(t, []byte{
		0xBB, 0x01, 0x01,
		0xCC, 0x01, 0x02,
		0xDD, 0x03, 0xEE, 0x01, 0x03,
	}, block.Value())

	wire, err := block.Wire()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xAA, 0x0B,
		0xBB, 0x01, 0x01,
		0xCC, 0x01, 0x02,
		0xDD, 0x03, 0xEE, 0x01, 0x03,
	}, wire)
}

func TestBlockAppendDoesNotAliasCaller(t *testing.T) {
	sub := tlv.NewBlock(0xA0, []byte{0x20})
	block := tlv.NewEmptyBlock(0x77)
	block.Append(sub)

	// Mutating the caller's value after Append must not affect the
	// block already appended: Append deep-copies its argument.
	sub.Append(tlv.NewBlock(0xB0, []byte{0xff}))
	wire, err := block.Wire()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x77, 0x03, 0xA0, 0x01, 0x20}, wire)
	_ = sub
}

func TestBlockParseSplitsSubelements(t *testing.T) {
	wire := []byte{0xAA, 0x0B, 0xBB, 0x01, 0x01, 0xCC, 0x01, 0x02, 0xDD, 0x03, 0xEE, 0x01, 0x03}
	block, _, err := tlv.DecodeBlock(wire)
	require.NoError(t, err)

	require.True(t, block.Parse())
	subs := block.Subelements()
	require.Len(t, subs, 3)
	assert.Equal(t, uint32(0xBB), subs[0].Type())
	assert.Equal(t, []byte{0x01}, subs[0].Value())
	assert.Equal(t, uint32(0xCC), subs[1].Type())
	assert.Equal(t, []byte{0x02}, subs[1].Value())
	assert.Equal(t, uint32(0xDD), subs[2].Type())
	assert.Equal(t, []byte{0xEE, 0x01, 0x03}, subs[2].Value())
}

func TestDecodeBlockRejectsTruncatedInput(t *testing.T) {
	_, _, err := tlv.DecodeBlock([]byte{0x28, 0x04, 0x01, 0x02})
	assert.Error(t, err)
}
