package lvs

// PatternId identifies a pattern variable in a compiled Model. Values
// in [1, Model.NamedPatternCnt] are named patterns (stable across
// recompiles of the same source); values greater than that are
// temporary patterns, one per textual "_..." occurrence.
type PatternId uint32

// Value is a literal name component: a type tag plus its byte value.
// Equality is byte-equality including the type tag.
type Value struct {
	Type uint16
	Comp []byte
}

func (v Value) equal(other Value) bool {
	return v.Type == other.Type && string(v.Comp) == string(other.Comp)
}

// Name is the minimal contract the LVS core requires of a caller's
// name representation: an ordered, indexable sequence of components.
// Component is the minimal contract for one component: its type tag
// and byte value. The ndn package ships one concrete implementation;
// callers may supply their own.
type Name interface {
	Len() int
	At(i int) Component
}

type Component interface {
	Type() uint16
	Bytes() []byte
}

func valueOfComponent(c Component) Value {
	return Value{Type: c.Type(), Comp: c.Bytes()}
}

func (v Value) equalComponent(c Component) bool {
	return v.Type == c.Type() && string(v.Comp) == string(c.Bytes())
}

// ConstraintOptionKind distinguishes the three kinds of option inside
// an AND-term of a CNF.
type ConstraintOptionKind int

const (
	OptValue ConstraintOptionKind = iota
	OptVar
	OptFn
)

// ConstraintOption is one disjunct ("option") of an AND-term.
type ConstraintOption struct {
	Kind  ConstraintOptionKind
	Value Value     // valid when Kind == OptValue
	Var   PatternId // valid when Kind == OptVar
	Fn    *FnCall   // valid when Kind == OptFn
}

// FnArg is one argument to a user-function call: either a literal
// value or a reference to a previously bound pattern.
type FnArg struct {
	IsVar bool
	Value Value
	Var   PatternId
}

// FnCall is a call to a host-supplied predicate.
type FnCall struct {
	Name string
	Args []FnArg
}

// AndTerm is a non-empty set of options, interpreted disjunctively.
type AndTerm []ConstraintOption

// CNF is an ordered list of AND-terms, interpreted conjunctively. An
// empty CNF is trivially satisfied.
type CNF []AndTerm

// ValueEdge consumes exactly one component equal to Value.
type ValueEdge struct {
	Dest  int
	Value Value
}

// PatternEdge consumes one component satisfying CNF, and binds it to
// Tag on success.
type PatternEdge struct {
	Dest int
	Tag  PatternId
	Cons CNF
}

// Node is one vertex of the compiled name-pattern tree.
type Node struct {
	ID           int
	Parent       int // -1 for the root
	RuleNames    []string
	SigningRefs  []int
	ValueEdges   []ValueEdge
	PatternEdges []PatternEdge
}

// Model is the immutable, compiled form of an LVS schema. It is
// produced by Compile and consumed by Encode, Decode, and NewChecker.
type Model struct {
	Version         uint32
	StartID         int
	NamedPatternCnt uint32
	Nodes           []*Node
	// Symbols maps a named PatternId back to its source identifier.
	// Diagnostic only; absence never affects matching.
	Symbols map[PatternId]string
}

func (m *Model) node(id int) *Node {
	if id < 0 || id >= len(m.Nodes) {
		return nil
	}
	return m.Nodes[id]
}
