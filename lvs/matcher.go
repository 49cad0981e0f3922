package lvs

// Binding is the pattern-variable environment accumulated along one
// root-to-node path. It is never shared between independent matcher
// branches.
type Binding map[PatternId]Value

// Clone returns an independent copy, used when a match is yielded to
// the caller so later backtracking cannot mutate it underneath them.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ResolvedArg is a user-function argument after binding resolution: a
// literal value, a bound pattern's value, or an unresolved (unbound)
// variable reference that the predicate itself must decide about.
type ResolvedArg struct {
	Bound bool
	Value Value
}

// UserFn is a host-supplied predicate: given the component an edge is
// being matched against and its resolved call arguments, report
// whether the constraint holds. A panic raised by the predicate is not
// recovered; it propagates out of Match, Check and Suggest.
type UserFn func(comp Value, args []ResolvedArg) bool

// MatchResult is one (terminal node, binding) pair yielded by a match.
type MatchResult struct {
	NodeID  int
	Binding Binding
}

// matchVisitor walks a Model depth-first against a Name, calling yield
// once per successful terminal match. yield returning false stops the
// traversal early (used by Checker.Check to short-circuit).
type matchVisitor struct {
	model   *Model
	name    Name
	userFns map[string]UserFn
	yield   func(MatchResult) bool
}

// matchFrom runs the matcher (C6) starting at the model's root with
// the given initial binding (empty for an ordinary match(name); the
// packet's binding, for the key half of a signing check). It returns
// early with an error only if a predicate referenced by the model is
// missing from userFns.
func matchFrom(m *Model, name Name, userFns map[string]UserFn, initial Binding, yield func(MatchResult) bool) error {
	v := &matchVisitor{model: m, name: name, userFns: userFns, yield: yield}
	b := initial
	if b == nil {
		b = Binding{}
	} else {
		b = b.Clone()
	}
	_, err := v.visit(m.StartID, 0, b)
	return err
}

// visit returns (stop, err): stop is true once yield has asked to stop
// or matching should unwind no further.
func (v *matchVisitor) visit(nodeID, depth int, binding Binding) (bool, error) {
	if depth == v.name.Len() {
		return !v.yield(MatchResult{NodeID: nodeID, Binding: binding.Clone()}), nil
	}
	node := v.model.node(nodeID)
	if node == nil {
		return false, nil
	}
	comp := v.name.At(depth)

	for _, ve := range node.ValueEdges {
		if ve.Value.equalComponent(comp) {
			stop, err := v.visit(ve.Dest, depth+1, binding)
			if err != nil || stop {
				return stop, err
			}
		}
	}

	for _, pe := range node.PatternEdges {
		stop, err := v.tryPatternEdge(pe, depth, binding, comp)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}

func (v *matchVisitor) tryPatternEdge(pe PatternEdge, depth int, binding Binding, comp Component) (bool, error) {
	val := valueOfComponent(comp)
	existing, wasBound := binding[pe.Tag]
	// A temporary id can recur along a path (a "_" inside an inlined
	// rule) or arrive in the packet's binding carried into a key match;
	// it never has to equal an earlier binding of the same id.
	isTemp := uint32(pe.Tag) > v.model.NamedPatternCnt
	if wasBound && !isTemp {
		if !existing.equal(val) {
			return false, nil
		}
		holds, err := evalCNF(pe.Cons, comp, binding, v.userFns)
		if err != nil {
			return false, err
		}
		if !holds {
			return false, nil
		}
		return v.visit(pe.Dest, depth+1, binding)
	}

	binding[pe.Tag] = val
	undo := func() {
		if wasBound {
			binding[pe.Tag] = existing
		} else {
			delete(binding, pe.Tag)
		}
	}
	holds, err := evalCNF(pe.Cons, comp, binding, v.userFns)
	if err != nil {
		undo()
		return false, err
	}
	if !holds {
		undo()
		return false, nil
	}
	stop, err := v.visit(pe.Dest, depth+1, binding)
	undo()
	return stop, err
}

// evalCNF reports whether every AND-term of cons has at least one
// holding option, under binding (which already tentatively contains
// the current pattern edge's own binding, if any).
func evalCNF(cons CNF, comp Component, binding Binding, userFns map[string]UserFn) (bool, error) {
	for _, term := range cons {
		holds := false
		for _, opt := range term {
			ok, err := evalOption(opt, comp, binding, userFns)
			if err != nil {
				return false, err
			}
			if ok {
				holds = true
				break
			}
		}
		if !holds {
			return false, nil
		}
	}
	return true, nil
}

func evalOption(opt ConstraintOption, comp Component, binding Binding, userFns map[string]UserFn) (bool, error) {
	switch opt.Kind {
	case OptValue:
		return opt.Value.equalComponent(comp), nil
	case OptVar:
		bv, ok := binding[opt.Var]
		if !ok {
			return false, nil
		}
		return bv.equalComponent(comp), nil
	case OptFn:
		fn, ok := userFns[opt.Fn.Name]
		if !ok {
			return false, &MissingUserFnError{FnName: opt.Fn.Name}
		}
		return fn(valueOfComponent(comp), resolveArgs(opt.Fn.Args, binding)), nil
	default:
		return false, nil
	}
}

func resolveArgs(args []FnArg, binding Binding) []ResolvedArg {
	out := make([]ResolvedArg, len(args))
	for i, a := range args {
		if a.IsVar {
			if v, ok := binding[a.Var]; ok {
				out[i] = ResolvedArg{Bound: true, Value: v}
			}
		} else {
			out[i] = ResolvedArg{Bound: true, Value: a.Value}
		}
	}
	return out
}

// Match returns every (node, binding) pair produced by matching name
// against the model, in the deterministic value-then-pattern,
// file-order, depth-first order described by the specification.
func Match(m *Model, name Name, userFns map[string]UserFn) ([]MatchResult, error) {
	var results []MatchResult
	err := matchFrom(m, name, userFns, nil, func(r MatchResult) bool {
		results = append(results, r)
		return true
	})
	return results, err
}
