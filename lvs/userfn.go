package lvs

// DefaultUserFns returns the small predicate table every LVS schema
// can rely on without the host supplying anything: component equality
// and type equality against an argument. Applications extend (or
// override) this map before constructing a Checker.
func DefaultUserFns() map[string]UserFn {
	return map[string]UserFn{
		"$eq":      fnEq,
		"$eq_type": fnEqType,
	}
}

// fnEq holds iff the matched component byte-equals every one of its
// arguments (vacuously true if called with none).
func fnEq(comp Value, args []ResolvedArg) bool {
	for _, a := range args {
		if !a.Bound || !comp.equal(a.Value) {
			return false
		}
	}
	return true
}

// fnEqType holds iff the matched component's TLV type equals the type
// of every one of its arguments (vacuously true if called with none).
func fnEqType(comp Value, args []ResolvedArg) bool {
	for _, a := range args {
		if !a.Bound || comp.Type != a.Value.Type {
			return false
		}
	}
	return true
}
