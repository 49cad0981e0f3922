package lvs

import "fmt"

// Pos is a source position: 1-based line and column.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// SyntaxError is raised by the parser (C1); it always carries the
// source position of the offending token.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("lvs: syntax error at %s: %s", e.Pos, e.Msg)
}

// SemanticError is raised by the resolver, chain expander, or tree
// builder (C2-C4): cyclic rule reference, unknown identifier, a
// signing reference naming an unknown rule, or a constraint-set
// referring to a pattern not yet bound along any path.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string {
	return "lvs: semantic error: " + e.Msg
}

// ModelError is raised by the binary codec (C5) on load: unrecognized
// version, structural breakage, or an invariant violation.
type ModelError struct {
	Msg string
}

func (e *ModelError) Error() string {
	return "lvs: model error: " + e.Msg
}

// MissingUserFnError is returned by matching when it reaches a
// constraint calling a predicate name that is not present in the
// checker's supplied function map. (*Checker).ValidateUserFns reports
// the same missing names up front, as a list rather than an error.
type MissingUserFnError struct {
	FnName string
}

func (e *MissingUserFnError) Error() string {
	return "lvs: undefined user function " + e.FnName
}
