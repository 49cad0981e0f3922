package lvs_test

import (
	"testing"

	"github.com/named-data/lvs/lvs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeDecodeRoundTrip covers P1/P2 from the specification:
// decoding a freshly encoded model must reproduce its node structure
// and pass the I1-I4 invariant checks Decode runs internally.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	m1, err := lvs.Compile(blogSchema)
	require.NoError(t, err)

	wire, err := lvs.Encode(m1)
	require.NoError(t, err)

	m2, err := lvs.Decode(wire)
	require.NoError(t, err)

	assert.Equal(t, m1.StartID, m2.StartID)
	assert.Equal(t, m1.NamedPatternCnt, m2.NamedPatternCnt)
	require.Len(t, m2.Nodes, len(m1.Nodes))
	for i := range m1.Nodes {
		assert.Equal(t, m1.Nodes[i].ID, m2.Nodes[i].ID)
		assert.ElementsMatch(t, m1.Nodes[i].RuleNames, m2.Nodes[i].RuleNames)
		assert.ElementsMatch(t, m1.Nodes[i].SigningRefs, m2.Nodes[i].SigningRefs)
		assert.Len(t, m2.Nodes[i].ValueEdges, len(m1.Nodes[i].ValueEdges))
		assert.Len(t, m2.Nodes[i].PatternEdges, len(m1.Nodes[i].PatternEdges))
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	m, err := lvs.Compile(`#root: "a"`)
	require.NoError(t, err)
	wire, err := lvs.Encode(m)
	require.NoError(t, err)

	// Truncated input is rejected outright.
	_, err = lvs.Decode(wire[:len(wire)-1])
	require.Error(t, err)
	var modelErr *lvs.ModelError
	assert.ErrorAs(t, err, &modelErr)

	// A structurally valid model carrying a different version number
	// is rejected as well.
	m.Version = 0x00022000
	wire, err = lvs.Encode(m)
	require.NoError(t, err)
	_, err = lvs.Decode(wire)
	require.Error(t, err)
	assert.ErrorAs(t, err, &modelErr)
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, err := lvs.Decode(nil)
	require.Error(t, err)
	var modelErr *lvs.ModelError
	assert.ErrorAs(t, err, &modelErr)
}

func TestDecodeToleratesUnknownTopLevelType(t *testing.T) {
	m, err := lvs.Compile(`#root: "a"`)
	require.NoError(t, err)
	wire, err := lvs.Encode(m)
	require.NoError(t, err)

	// Prepending a well-formed but unrecognized TLV element at the top
	// level must not break decoding: unknown top-level elements are
	// tolerated for forward compatibility.
	extra := append([]byte{0x9f, 0x02, 0xaa, 0xbb}, wire...)
	_, err = lvs.Decode(extra)
	require.NoError(t, err)
}

func TestModelRootOfTrustAndValidateUserFns(t *testing.T) {
	m, err := lvs.Compile(blogSchema)
	require.NoError(t, err)
	c := lvs.NewChecker(m, lvs.DefaultUserFns())

	// "root" is the only node ever named by a "<=" signing reference
	// (from #admin) that itself carries no signing reference; "platform"
	// and "KEY" are unsigned too but nothing points at them, so they are
	// merely unconstrained, not trust anchors.
	assert.ElementsMatch(t, []string{"root"}, c.RootOfTrust())

	missing := c.ValidateUserFns()
	assert.ElementsMatch(t, []string{"$isValidID", "$isValidYear"}, missing)
}

func TestModelRootOfTrustEmptyWhenAllSigned(t *testing.T) {
	m, err := lvs.Compile(`
#a: "a" <= #b
#b: "b" <= #a
`)
	require.NoError(t, err)
	c := lvs.NewChecker(m, nil)
	assert.Empty(t, c.RootOfTrust())
}
