package lvs

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash"
)

// buildTree runs the tree builder (C4): merges every rule's chain set
// into a single rooted tree, attaches signing references to chain
// terminals, then resolves those references to node ids.
//
// Structural-identity lookup (is there already an edge out of this
// node equal to the one this chain wants to take) is the hot path of
// compilation on any schema with real rule fan-out, so children are
// indexed by an xxhash of their canonical edge key rather than scanned
// linearly.
type treeBuilder struct {
	nodes   []*Node
	index   map[int]map[uint64][]int // nodeID -> hash bucket -> child edge indices (by dest node id)
	order   []string
	chains  map[string][]*chain
}

func buildTree(r *resolveResult, chains map[string][]*chain) (*Model, error) {
	tb := &treeBuilder{
		nodes:  []*Node{{ID: 0, Parent: -1}},
		index:  map[int]map[uint64][]int{},
		order:  r.Order,
		chains: chains,
	}

	terminals := make(map[string][]int, len(r.Order)) // rule name -> terminal node ids of its chains
	for _, name := range r.Order {
		for _, c := range chains[name] {
			leaf := tb.insertChain(c.Edges)
			tb.nodes[leaf].RuleNames = append(tb.nodes[leaf].RuleNames, name)
			terminals[name] = append(terminals[name], leaf)
		}
	}

	for _, name := range r.Order {
		d := r.Defs[name]
		if len(d.Expr.Signing) == 0 {
			continue
		}
		var refNodes []int
		for _, sref := range d.Expr.Signing {
			targets, ok := terminals[sref.Name]
			if !ok {
				return nil, &SemanticError{Msg: "rule #" + name + ": signing reference to unknown rule #" + sref.Name}
			}
			refNodes = append(refNodes, targets...)
		}
		for _, leaf := range terminals[name] {
			tb.nodes[leaf].SigningRefs = append(tb.nodes[leaf].SigningRefs, refNodes...)
		}
	}

	return &Model{
		Version:         lvsVersion,
		StartID:         0,
		NamedPatternCnt: r.NamedPatternCnt,
		Nodes:           tb.nodes,
		Symbols:         r.Symbols,
	}, nil
}

const lvsVersion = 0x00011000

// insertChain walks the tree from the root following or creating edges
// for each edgeSpec in turn, and returns the id of the node reached
// after the last one.
func (tb *treeBuilder) insertChain(edges []edgeSpec) int {
	cur := 0
	for _, e := range edges {
		cur = tb.step(cur, e)
	}
	return cur
}

func (tb *treeBuilder) step(cur int, e edgeSpec) int {
	key := canonicalEdgeKey(e)
	h := xxhash.Sum64String(key)
	bucket := tb.index[cur][h]
	for _, dest := range bucket {
		if tb.edgeKeyAt(cur, dest) == key {
			return dest
		}
	}

	dest := len(tb.nodes)
	tb.nodes = append(tb.nodes, &Node{ID: dest, Parent: cur})
	node := tb.nodes[cur]
	if e.IsValue {
		node.ValueEdges = append(node.ValueEdges, ValueEdge{Dest: dest, Value: e.Value})
	} else {
		node.PatternEdges = append(node.PatternEdges, PatternEdge{Dest: dest, Tag: e.Pattern, Cons: e.Cons})
	}
	if tb.index[cur] == nil {
		tb.index[cur] = make(map[uint64][]int)
	}
	tb.index[cur][h] = append(tb.index[cur][h], dest)
	return dest
}

// edgeKeyAt recomputes the canonical key of the edge from node cur to
// node dest, used to disambiguate a hash-bucket collision.
func (tb *treeBuilder) edgeKeyAt(cur, dest int) string {
	node := tb.nodes[cur]
	for _, ve := range node.ValueEdges {
		if ve.Dest == dest {
			return canonicalEdgeKey(edgeSpec{IsValue: true, Value: ve.Value})
		}
	}
	for _, pe := range node.PatternEdges {
		if pe.Dest == dest {
			return canonicalEdgeKey(edgeSpec{IsValue: false, Pattern: pe.Tag, Cons: pe.Cons})
		}
	}
	return ""
}

func canonicalEdgeKey(e edgeSpec) string {
	if e.IsValue {
		return "V:" + strconv.Itoa(int(e.Value.Type)) + ":" + string(e.Value.Comp)
	}
	return "P:" + strconv.Itoa(int(e.Pattern)) + ":" + canonicalCNF(e.Cons)
}

// canonicalCNF produces a deterministic string for a CNF: AND-terms
// are sorted by their own canonical form, and options within each
// AND-term are sorted by a stable key, so two syntactically different
// but semantically identical constraint sets compare equal.
func canonicalCNF(c CNF) string {
	terms := make([]string, len(c))
	for i, t := range c {
		terms[i] = canonicalAndTerm(t)
	}
	sort.Strings(terms)
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += "&"
		}
		out += t
	}
	return out
}

func canonicalAndTerm(t AndTerm) string {
	opts := make([]string, len(t))
	for i, o := range t {
		opts[i] = canonicalOption(o)
	}
	sort.Strings(opts)
	out := ""
	for i, o := range opts {
		if i > 0 {
			out += "|"
		}
		out += o
	}
	return out
}

func canonicalOption(o ConstraintOption) string {
	switch o.Kind {
	case OptValue:
		return "val:" + strconv.Itoa(int(o.Value.Type)) + ":" + string(o.Value.Comp)
	case OptVar:
		return "var:" + strconv.Itoa(int(o.Var))
	case OptFn:
		s := "fn:" + o.Fn.Name + "("
		for i, a := range o.Fn.Args {
			if i > 0 {
				s += ","
			}
			if a.IsVar {
				s += "var:" + strconv.Itoa(int(a.Var))
			} else {
				s += "val:" + strconv.Itoa(int(a.Value.Type)) + ":" + string(a.Value.Comp)
			}
		}
		return s + ")"
	default:
		return "?"
	}
}
