package lvs

// genericComponentType is the NDN generic-name-component TLV type
// (8), used for every literal "..." in LVS source. The core stays
// decoupled from the ndn package's own copy of this constant.
const genericComponentType = 8

// edgeSpec is one step of a chain: either a literal value or a pattern
// binding with its CNF.
type edgeSpec struct {
	IsValue bool
	Value   Value     // IsValue == true
	Pattern PatternId // IsValue == false
	Cons    CNF       // IsValue == false; may be empty
}

// chain is a rule fully inlined: a flat sequence of edge specs plus
// the signing-reference rule names that apply to its terminal node.
type chain struct {
	Edges   []edgeSpec
	Signing []string
}

// expandRules runs the chain expander (C3) over every rule in
// dependency order, returning each rule's chain set. Because rules are
// processed in the resolver's topological order, a referenced rule's
// chains are always already available for inlining.
func expandRules(r *resolveResult) (map[string][]*chain, error) {
	chains := make(map[string][]*chain, len(r.Order))
	for _, name := range r.Order {
		d := r.Defs[name]
		cs, err := expandRule(r, d, chains)
		if err != nil {
			return nil, err
		}
		chains[name] = cs
	}
	return chains, nil
}

// expandRule expands one rule into its chain set: first the name
// pattern is expanded into one or more "prefix" sequences via rule
// inlining (cartesian across any inlined rule's own alternatives), then
// each prefix is replicated once per constraint-set alternative ("&" of
// cons_set or | cons_set), with that alternative's CNF attached to the
// matching pattern edges.
func expandRule(r *resolveResult, d *astDef, known map[string][]*chain) ([]*chain, error) {
	prefixes, err := expandName(r, d, known)
	if err != nil {
		return nil, err
	}

	consAlts, err := expandConsAlternatives(r, d)
	if err != nil {
		return nil, err
	}

	signing := make([]string, 0, len(d.Expr.Signing))
	for _, s := range d.Expr.Signing {
		signing = append(signing, s.Name)
	}

	var out []*chain
	for _, prefix := range prefixes {
		for _, cons := range consAlts {
			edges := applyConsToPrefix(prefix, cons)
			out = append(out, &chain{Edges: edges, Signing: signing})
		}
	}
	return out, nil
}

// expandName inlines rule references inside the name pattern. Each
// #rule component is replaced by the cartesian product of that rule's
// own chains' edge sequences.
func expandName(r *resolveResult, d *astDef, known map[string][]*chain) ([][]edgeSpec, error) {
	prefixes := [][]edgeSpec{{}}
	for idx, c := range d.Expr.Name {
		switch c.Kind {
		case compStr:
			lit := Value{Type: genericComponentType, Comp: []byte(c.Text)}
			prefixes = appendEdgeToAll(prefixes, edgeSpec{IsValue: true, Value: lit})
		case compTag:
			id := r.OccIDs[occKey{Rule: d.Name, Idx: idx}]
			prefixes = appendEdgeToAll(prefixes, edgeSpec{IsValue: false, Pattern: id})
		case compRule:
			refChains, ok := known[c.Text]
			if !ok {
				return nil, &SemanticError{Msg: "rule #" + d.Name + ": reference to unknown rule #" + c.Text}
			}
			prefixes = cartesianAppend(prefixes, refChains)
		}
	}
	return prefixes, nil
}

func appendEdgeToAll(prefixes [][]edgeSpec, e edgeSpec) [][]edgeSpec {
	out := make([][]edgeSpec, len(prefixes))
	for i, p := range prefixes {
		np := make([]edgeSpec, len(p)+1)
		copy(np, p)
		np[len(p)] = e
		out[i] = np
	}
	return out
}

func cartesianAppend(prefixes [][]edgeSpec, refChains []*chain) [][]edgeSpec {
	out := make([][]edgeSpec, 0, len(prefixes)*len(refChains))
	for _, p := range prefixes {
		for _, rc := range refChains {
			np := make([]edgeSpec, len(p)+len(rc.Edges))
			copy(np, p)
			copy(np[len(p):], rc.Edges)
			out = append(out, np)
		}
	}
	return out
}

// expandConsAlternatives turns a rule's "&" constraint-set disjunction
// into one CNF per alternative, each mapping pattern id to the AND-term
// list that applies to edges binding that id. A rule with no "&" clause
// has exactly one, empty, alternative.
func expandConsAlternatives(r *resolveResult, d *astDef) ([]map[PatternId]CNF, error) {
	if len(d.Expr.Cons) == 0 {
		return []map[PatternId]CNF{{}}, nil
	}
	out := make([]map[PatternId]CNF, 0, len(d.Expr.Cons))
	for _, set := range d.Expr.Cons {
		byTag := make(map[PatternId]CNF)
		for _, term := range set.Terms {
			tagID, ok := r.NamedIDs[term.Tag]
			if !ok {
				return nil, &SemanticError{Msg: "rule #" + d.Name + ": constraint refers to unbound pattern " + term.Tag}
			}
			andTerm, err := buildAndTerm(r, d, term)
			if err != nil {
				return nil, err
			}
			byTag[tagID] = append(byTag[tagID], andTerm)
		}
		out = append(out, byTag)
	}
	return out, nil
}

func buildAndTerm(r *resolveResult, d *astDef, term astConsTerm) (AndTerm, error) {
	opts := make(AndTerm, 0, len(term.Opts))
	for _, o := range term.Opts {
		switch o.Kind {
		case optStr:
			opts = append(opts, ConstraintOption{Kind: OptValue, Value: Value{Type: genericComponentType, Comp: []byte(o.Text)}})
		case optTag:
			id, ok := r.NamedIDs[o.Text]
			if !ok {
				return nil, &SemanticError{Msg: "rule #" + d.Name + ": reference to unbound pattern " + o.Text}
			}
			opts = append(opts, ConstraintOption{Kind: OptVar, Var: id})
		case optFn:
			args := make([]FnArg, 0, len(o.FnArgs))
			for _, a := range o.FnArgs {
				if a.IsTag {
					id, ok := r.NamedIDs[a.Text]
					if !ok {
						return nil, &SemanticError{Msg: "rule #" + d.Name + ": reference to unbound pattern " + a.Text}
					}
					args = append(args, FnArg{IsVar: true, Var: id})
				} else {
					args = append(args, FnArg{IsVar: false, Value: Value{Type: genericComponentType, Comp: []byte(a.Text)}})
				}
			}
			opts = append(opts, ConstraintOption{Kind: OptFn, Fn: &FnCall{Name: "$" + o.FnName, Args: args}})
		}
	}
	return opts, nil
}

// applyConsToPrefix attaches each pattern id's CNF to the first edge of
// the prefix that binds that id. A pattern id may occur more than once
// along a prefix (a tag name repeated in the rule, or reused by an
// inlined rule); later occurrences keep only the constraints they
// already carry.
func applyConsToPrefix(prefix []edgeSpec, cons map[PatternId]CNF) []edgeSpec {
	out := make([]edgeSpec, len(prefix))
	copy(out, prefix)
	seen := make(map[PatternId]bool)
	for i, e := range out {
		if e.IsValue || seen[e.Pattern] {
			continue
		}
		seen[e.Pattern] = true
		if cnf, ok := cons[e.Pattern]; ok {
			merged := make(CNF, 0, len(e.Cons)+len(cnf))
			merged = append(merged, e.Cons...)
			merged = append(merged, cnf...)
			out[i].Cons = merged
		}
	}
	return out
}
