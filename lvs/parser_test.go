package lvs_test

import (
	"testing"

	"github.com/named-data/lvs/lvs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleSchema(t *testing.T) {
	m, err := lvs.Compile(`#root: "a"/"b"`)
	require.NoError(t, err)
	assert.Equal(t, 0, m.StartID)
	assert.Len(t, m.Nodes, 3)
}

func TestCompileSyntaxErrorHasPosition(t *testing.T) {
	_, err := lvs.Compile(`#root "a"/"b"`) // missing ':'
	require.Error(t, err)
	var synErr *lvs.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Pos.Line)
}

func TestCompileUnterminatedString(t *testing.T) {
	_, err := lvs.Compile("#root: \"a")
	require.Error(t, err)
	var synErr *lvs.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestCompileCyclicRuleReference(t *testing.T) {
	_, err := lvs.Compile(`
#a: #b/"x"
#b: #a/"y"
`)
	require.Error(t, err)
	var semErr *lvs.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestCompileUnknownRuleReference(t *testing.T) {
	_, err := lvs.Compile(`#root: #missing/"x"`)
	require.Error(t, err)
	var semErr *lvs.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestCompileConstraintOnUnboundTagIsSemanticError(t *testing.T) {
	_, err := lvs.Compile(`#root: "a"/x & {nope: "y"}`)
	require.Error(t, err)
	var semErr *lvs.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestCompileDuplicateRuleDefinition(t *testing.T) {
	_, err := lvs.Compile(`
#root: "a"
#root: "b"
`)
	require.Error(t, err)
}

func TestCompileLineComment(t *testing.T) {
	m, err := lvs.Compile(`
// a comment
#root: "a" // trailing comment too
`)
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 2)
}
