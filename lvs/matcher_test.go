package lvs_test

import (
	"testing"

	"github.com/named-data/lvs/lvs"
	"github.com/named-data/lvs/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNamedPatternShadowingRequiresEquality covers the binding
// carry-over rule: once a named pattern is bound along a path, a
// later occurrence of the same name must see the identical value, or
// that branch of the match fails outright rather than rebinding.
func TestNamedPatternShadowingRequiresEquality(t *testing.T) {
	m, err := lvs.Compile(`#root: "a"/x/"b"/x`)
	require.NoError(t, err)

	ok, err := lvs.Match(m, ndn.MustParseName("/a/1/b/1"), nil)
	require.NoError(t, err)
	assert.Len(t, ok, 1)

	none, err := lvs.Match(m, ndn.MustParseName("/a/1/b/2"), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestTemporaryPatternsDoNotShadow covers the companion case: every
// textual occurrence of "_" allocates a fresh pattern id, so the same
// path can bind two different values at two "_" positions.
func TestTemporaryPatternsDoNotShadow(t *testing.T) {
	m, err := lvs.Compile(`#root: "a"/_/"b"/_`)
	require.NoError(t, err)

	results, err := lvs.Match(m, ndn.MustParseName("/a/1/b/2"), nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

// TestMatchOrderIsValueThenPatternFileOrder covers P4: when a node has
// both a value edge and a pattern edge that could both consume the
// next component, value edges are tried first, and multiple pattern
// edges are tried in the order the compiler created them, which follows
// its name-sorted rule order.
func TestMatchOrderIsValueThenPatternFileOrder(t *testing.T) {
	m, err := lvs.Compile(`
#lit: "a"
#first: x & {x: "a"}
#second: x
`)
	require.NoError(t, err)

	results, err := lvs.Match(m, ndn.MustParseName("/a"), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var order []string
	for _, r := range results {
		order = append(order, m.Nodes[r.NodeID].RuleNames...)
	}
	// "lit" is reached via a value edge, which is always tried before
	// any pattern edge out of the same node; "first" and "second" are
	// both pattern edges and so come after, "first" before "second" as
	// in the compiler's rule order.
	assert.Equal(t, []string{"lit", "first", "second"}, order)
}

func TestCheckIsNotTransitive(t *testing.T) {
	m, err := lvs.Compile(`
#a: "a" <= #b
#b: "b" <= #c
#c: "c"
`)
	require.NoError(t, err)
	c := lvs.NewChecker(m, nil)

	abOK, err := c.Check(ndn.MustParseName("/a"), ndn.MustParseName("/b"))
	require.NoError(t, err)
	assert.True(t, abOK)

	bcOK, err := c.Check(ndn.MustParseName("/b"), ndn.MustParseName("/c"))
	require.NoError(t, err)
	assert.True(t, bcOK)

	acOK, err := c.Check(ndn.MustParseName("/a"), ndn.MustParseName("/c"))
	require.NoError(t, err)
	assert.False(t, acOK)
}

func TestMatchMissingUserFnIsHardError(t *testing.T) {
	m, err := lvs.Compile(`#root: x & {x: $notRegistered()}`)
	require.NoError(t, err)

	_, err = lvs.Match(m, ndn.MustParseName("/a"), nil)
	require.Error(t, err)
	var missing *lvs.MissingUserFnError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "$notRegistered", missing.FnName)
}
