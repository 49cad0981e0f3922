package lvs

import "golang.org/x/exp/slices"

// occKey identifies one textual occurrence of a name-pattern component
// within a rule, used to look up the PatternId assigned to it.
type occKey struct {
	Rule string
	Idx  int
}

// resolveResult is C2's output: rules in dependency order plus the
// global pattern-id symbol table. It is consumed only by C3.
type resolveResult struct {
	Order           []string
	Defs            map[string]*astDef
	NamedPatternCnt uint32
	NamedIDs        map[string]PatternId
	OccIDs          map[occKey]PatternId
	Symbols         map[PatternId]string

	tempCounter PatternId
}

// resolve runs the rule resolver (C2): builds the rule-reference graph,
// topologically sorts it (failing on a cycle), then allocates pattern
// ids in a single left-to-right pass over rules in that order.
func resolve(f *astFile) (*resolveResult, error) {
	defs := make(map[string]*astDef, len(f.Defs))
	for _, d := range f.Defs {
		if _, dup := defs[d.Name]; dup {
			return nil, &SemanticError{Msg: "rule #" + d.Name + " redefined"}
		}
		defs[d.Name] = d
	}

	graph := make(map[string][]string, len(defs))
	for name, d := range defs {
		graph[name] = ruleReferences(d)
	}

	order, err := topOrder(defs, graph)
	if err != nil {
		return nil, err
	}

	r := &resolveResult{
		Order:    order,
		Defs:     defs,
		NamedIDs: make(map[string]PatternId),
		OccIDs:   make(map[occKey]PatternId),
		Symbols:  make(map[PatternId]string),
	}
	var nextNamed PatternId = 1
	// boundByRule tracks, per rule in the order already computed above,
	// which named patterns are bound along that rule's own expansion:
	// its own direct name-pattern components plus whatever any #rule it
	// references in that name pattern binds in turn. A constraint can
	// only refer to a name bound along the rule it appears in, not to
	// an identifier that merely happens to be named the same in some
	// unrelated rule processed earlier.
	boundByRule := make(map[string]map[string]bool, len(order))
	for _, ruleName := range order {
		d := defs[ruleName]
		bound := make(map[string]bool)
		for _, c := range d.Expr.Name {
			if c.Kind == compRule {
				for name := range boundByRule[c.Text] {
					bound[name] = true
				}
			}
		}
		for idx, c := range d.Expr.Name {
			if c.Kind != compTag {
				continue
			}
			var id PatternId
			if c.Text == "_" {
				id = r.allocTemp()
			} else {
				id, _ = r.namedID(c.Text, &nextNamed)
				bound[c.Text] = true
			}
			r.OccIDs[occKey{Rule: ruleName, Idx: idx}] = id
		}
		for _, set := range d.Expr.Cons {
			for _, term := range set.Terms {
				if term.Tag == "_" {
					return nil, &SemanticError{Msg: "rule #" + ruleName + ": cannot constrain the anonymous pattern _"}
				}
				if !bound[term.Tag] {
					return nil, &SemanticError{Msg: "rule #" + ruleName + ": constraint refers to unbound pattern " + term.Tag}
				}
				for _, opt := range term.Opts {
					if opt.Kind == optTag {
						if err := r.checkVarRef(ruleName, opt.Text, bound); err != nil {
							return nil, err
						}
					}
					if opt.Kind == optFn {
						for _, arg := range opt.FnArgs {
							if arg.IsTag {
								if err := r.checkVarRef(ruleName, arg.Text, bound); err != nil {
									return nil, err
								}
							}
						}
					}
				}
			}
		}
		boundByRule[ruleName] = bound
	}
	r.NamedPatternCnt = uint32(nextNamed - 1)
	var tempBase PatternId = PatternId(r.NamedPatternCnt)
	for k, id := range r.OccIDs {
		if id > tempBase { // placeholder temp marker, see allocTemp
			r.OccIDs[k] = tempBase + PatternId(-id)
		}
	}
	return r, nil
}

// allocTemp returns a negative placeholder; temporary ids are only
// finalized once NamedPatternCnt is known, since they must lie above
// the named range.
func (r *resolveResult) allocTemp() PatternId {
	r.tempCounter++
	return -r.tempCounter
}

func (r *resolveResult) namedID(text string, next *PatternId) (PatternId, bool) {
	if id, ok := r.NamedIDs[text]; ok {
		return id, true
	}
	id := *next
	*next++
	r.NamedIDs[text] = id
	r.Symbols[id] = text
	return id, false
}

func (r *resolveResult) checkVarRef(ruleName, text string, bound map[string]bool) error {
	if text == "_" {
		return &SemanticError{Msg: "rule #" + ruleName + ": cannot reference the anonymous pattern _"}
	}
	if !bound[text] {
		return &SemanticError{Msg: "rule #" + ruleName + ": reference to unbound pattern " + text}
	}
	return nil
}

func ruleReferences(d *astDef) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, c := range d.Expr.Name {
		if c.Kind == compRule && !seen[c.Text] {
			seen[c.Text] = true
			refs = append(refs, c.Text)
		}
	}
	return refs
}

// topOrder performs a depth-first topological sort of the rule
// reference graph, in deterministic (name-sorted) order, failing with
// a SemanticError listing the cycle if one exists.
func topOrder(defs map[string]*astDef, graph map[string][]string) ([]string, error) {
	names := make([]string, 0, len(defs))
	for n := range defs {
		names = append(names, n)
	}
	slices.Sort(names)

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(defs))
	var order []string
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			cycle := append(append([]string{}, stack...), name)
			return &SemanticError{Msg: "cyclic rule reference: " + joinRuleCycle(cycle)}
		}
		if _, ok := defs[name]; !ok {
			return &SemanticError{Msg: "reference to unknown rule #" + name}
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, ref := range graph[name] {
			if err := visit(ref); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func joinRuleCycle(cycle []string) string {
	out := ""
	for i, n := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += "#" + n
	}
	return out
}
