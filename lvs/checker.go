package lvs

// Checker implements C7 on top of the matcher (C6): check, suggest,
// and the root-of-trust/user-function sanity checks an application
// typically runs once after loading a model.
type Checker struct {
	model   *Model
	userFns map[string]UserFn
}

// NewChecker builds a Checker over an immutable, already-compiled (or
// decoded) model and a host-supplied predicate table. The table may be
// extended after construction; the checker only reads it at match time.
func NewChecker(m *Model, userFns map[string]UserFn) *Checker {
	if userFns == nil {
		userFns = map[string]UserFn{}
	}
	return &Checker{model: m, userFns: userFns}
}

// Model returns the checker's underlying compiled model.
func (c *Checker) Model() *Model { return c.model }

// Match runs match(name) against the checker's model.
func (c *Checker) Match(name Name) ([]MatchResult, error) {
	return Match(c.model, name, c.userFns)
}

// Check implements check(pktName, keyName): true iff some match of
// pktName has a signing reference reachable by matching keyName with
// the packet's binding carried in as the key match's starting point.
func (c *Checker) Check(pktName, keyName Name) (bool, error) {
	pktMatches, err := Match(c.model, pktName, c.userFns)
	if err != nil {
		return false, err
	}
	for _, pm := range pktMatches {
		node := c.model.node(pm.NodeID)
		if node == nil || len(node.SigningRefs) == 0 {
			continue
		}
		ok, err := c.keyMatchesAnyRef(keyName, pm.Binding, node.SigningRefs)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c *Checker) keyMatchesAnyRef(keyName Name, pktBinding Binding, refs []int) (bool, error) {
	want := make(map[int]bool, len(refs))
	for _, r := range refs {
		want[r] = true
	}
	found := false
	err := matchFrom(c.model, keyName, c.userFns, pktBinding, func(r MatchResult) bool {
		if want[r.NodeID] {
			found = true
			return false // stop: first success is enough
		}
		return true
	})
	return found, err
}

// Suggest implements suggest(pktName, keyInventory): the first
// inventory candidate, in caller-provided order, for which
// Check(pktName, candidate) succeeds. ok is false if none does.
func (c *Checker) Suggest(pktName Name, keyInventory []Name) (name Name, ok bool, err error) {
	for _, candidate := range keyInventory {
		good, err := c.Check(pktName, candidate)
		if err != nil {
			return nil, false, err
		}
		if good {
			return candidate, true, nil
		}
	}
	return nil, false, nil
}

// ValidateUserFns reports every user-function name referenced anywhere
// in the model that is absent from the checker's function table. It is
// meant to be run once, eagerly, right after loading a model that will
// be used online, rather than discovering a missing predicate lazily
// mid-match.
func (c *Checker) ValidateUserFns() []string {
	missing := map[string]bool{}
	for _, n := range c.model.Nodes {
		for _, pe := range n.PatternEdges {
			for _, term := range pe.Cons {
				for _, opt := range term {
					if opt.Kind != OptFn {
						continue
					}
					if _, ok := c.userFns[opt.Fn.Name]; !ok {
						missing[opt.Fn.Name] = true
					}
				}
			}
		}
	}
	out := make([]string, 0, len(missing))
	for name := range missing {
		out = append(out, name)
	}
	return out
}

// RootOfTrust returns the rule names of every node that appears as
// some other node's signing reference but itself carries no signing
// reference: the starting points of the signing DAG, not merely any
// rule nobody happened to constrain.
func (c *Checker) RootOfTrust() []string {
	referenced := map[int]bool{}
	for _, n := range c.model.Nodes {
		for _, ref := range n.SigningRefs {
			referenced[ref] = true
		}
	}

	terminalsByRule := map[string][]*Node{}
	for _, n := range c.model.Nodes {
		for _, rule := range n.RuleNames {
			terminalsByRule[rule] = append(terminalsByRule[rule], n)
		}
	}
	var roots []string
	for rule, nodes := range terminalsByRule {
		isRoot := false
		for _, n := range nodes {
			if referenced[n.ID] && len(n.SigningRefs) == 0 {
				isRoot = true
				break
			}
		}
		if isRoot {
			roots = append(roots, rule)
		}
	}
	return roots
}
