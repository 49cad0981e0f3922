package main

import (
	"fmt"

	"github.com/named-data/lvs/lvs"
)

// dumpModel pretty-prints a compiled model's node tree for diagnostic
// use, substituting TagSymbol names for pattern ids where available.
func dumpModel(m *lvs.Model) {
	fmt.Printf("version=0x%08x startId=%d namedPatternCnt=%d nodes=%d\n",
		m.Version, m.StartID, m.NamedPatternCnt, len(m.Nodes))
	for _, n := range m.Nodes {
		fmt.Printf("node %d", n.ID)
		if n.Parent >= 0 {
			fmt.Printf(" (parent %d)", n.Parent)
		}
		if len(n.RuleNames) > 0 {
			fmt.Printf(" rules=%v", n.RuleNames)
		}
		if len(n.SigningRefs) > 0 {
			fmt.Printf(" signingRefs=%v", n.SigningRefs)
		}
		fmt.Println()
		for _, ve := range n.ValueEdges {
			fmt.Printf("  -> %d  value %q (type %d)\n", ve.Dest, ve.Value.Comp, ve.Value.Type)
		}
		for _, pe := range n.PatternEdges {
			fmt.Printf("  -> %d  pattern %s%s\n", pe.Dest, patternLabel(m, pe.Tag), consSummary(pe.Cons))
		}
	}
}

func patternLabel(m *lvs.Model, id lvs.PatternId) string {
	if name, ok := m.Symbols[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func consSummary(c lvs.CNF) string {
	if len(c) == 0 {
		return ""
	}
	return fmt.Sprintf(" & %d constraint(s)", len(c))
}
