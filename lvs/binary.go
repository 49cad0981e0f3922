package lvs

import (
	"github.com/pkg/errors"

	"github.com/named-data/lvs/ndn/tlv"
)

// TLV type numbers for the LVS binary format.
const (
	tlvVersion         uint32 = 0x61
	tlvStartID         uint32 = 0x25 // shares T with NodeId/Parent
	tlvNamedPatternCnt uint32 = 0x69
	tlvNode            uint32 = 0x63
	tlvNodeID          uint32 = 0x25
	tlvParent          uint32 = 0x25
	tlvRuleName        uint32 = 0x29
	tlvSignRef         uint32 = 0x55
	tlvValueEdge       uint32 = 0x51
	tlvComponentValue  uint32 = 0x21
	tlvPatternEdge     uint32 = 0x53
	tlvPatternTag      uint32 = 0x23
	tlvConstraint      uint32 = 0x43
	tlvConsOption      uint32 = 0x41
	tlvUserFnCall      uint32 = 0x31
	tlvUserFnID        uint32 = 0x27
	tlvUserFnArg       uint32 = 0x33
	tlvTagSymbol       uint32 = 0x67
	tlvIdentifier      uint32 = 0x29
)

// Encode serializes a Model to its TLV binary representation.
func Encode(m *Model) ([]byte, error) {
	root := tlv.NewEmptyBlock(0) // synthetic container; not itself on the wire

	root.Append(tlv.NewBlock(tlvVersion, tlv.EncodeNNI(uint64(m.Version))))
	root.Append(tlv.NewBlock(tlvStartID, tlv.EncodeNNI(uint64(m.StartID))))
	root.Append(tlv.NewBlock(tlvNamedPatternCnt, tlv.EncodeNNI(uint64(m.NamedPatternCnt))))

	for _, n := range m.Nodes {
		root.Append(encodeNode(n))
	}
	for id, name := range m.Symbols {
		sym := tlv.NewEmptyBlock(tlvTagSymbol)
		sym.Append(tlv.NewBlock(tlvPatternTag, tlv.EncodeNNI(uint64(id))))
		sym.Append(tlv.NewBlock(tlvIdentifier, []byte(name)))
		root.Append(sym)
	}

	if err := root.Encode(); err != nil {
		return nil, errors.Wrap(err, "lvs: encode")
	}
	return root.Value(), nil
}

func encodeNode(n *Node) *tlv.Block {
	node := tlv.NewEmptyBlock(tlvNode)
	node.Append(tlv.NewBlock(tlvNodeID, tlv.EncodeNNI(uint64(n.ID))))
	if n.Parent >= 0 {
		node.Append(tlv.NewBlock(tlvParent, tlv.EncodeNNI(uint64(n.Parent))))
	}
	for _, name := range n.RuleNames {
		node.Append(tlv.NewBlock(tlvRuleName, []byte(name)))
	}
	for _, ve := range n.ValueEdges {
		node.Append(encodeValueEdge(ve))
	}
	for _, pe := range n.PatternEdges {
		node.Append(encodePatternEdge(pe))
	}
	for _, ref := range n.SigningRefs {
		node.Append(tlv.NewBlock(tlvSignRef, tlv.EncodeNNI(uint64(ref))))
	}
	return node
}

func encodeValueEdge(ve ValueEdge) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvValueEdge)
	b.Append(tlv.NewBlock(tlvNodeID, tlv.EncodeNNI(uint64(ve.Dest))))
	b.Append(tlv.NewBlock(tlvComponentValue, encodeValue(ve.Value)))
	return b
}

// encodeValue renders a Value as the raw NameComponent TLV bytes it
// represents: type, length, bytes.
func encodeValue(v Value) []byte {
	inner := tlv.NewBlock(uint32(v.Type), v.Comp)
	wire, _ := inner.Wire()
	return wire
}

func decodeValue(raw []byte) (Value, error) {
	b, n, err := tlv.DecodeBlock(raw)
	if err != nil {
		return Value{}, &ModelError{Msg: "malformed component value: " + err.Error()}
	}
	if int(n) != len(raw) {
		return Value{}, &ModelError{Msg: "trailing bytes in component value"}
	}
	if b.Type() > 0xFFFF {
		return Value{}, &ModelError{Msg: "component type out of range"}
	}
	return Value{Type: uint16(b.Type()), Comp: b.Value()}, nil
}

func encodePatternEdge(pe PatternEdge) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvPatternEdge)
	b.Append(tlv.NewBlock(tlvNodeID, tlv.EncodeNNI(uint64(pe.Dest))))
	b.Append(tlv.NewBlock(tlvPatternTag, tlv.EncodeNNI(uint64(pe.Tag))))
	for _, term := range pe.Cons {
		b.Append(encodeConstraint(term))
	}
	return b
}

func encodeConstraint(term AndTerm) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvConstraint)
	for _, opt := range term {
		b.Append(encodeConsOption(opt))
	}
	return b
}

func encodeConsOption(opt ConstraintOption) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvConsOption)
	switch opt.Kind {
	case OptValue:
		b.Append(tlv.NewBlock(tlvComponentValue, encodeValue(opt.Value)))
	case OptVar:
		b.Append(tlv.NewBlock(tlvPatternTag, tlv.EncodeNNI(uint64(opt.Var))))
	case OptFn:
		b.Append(encodeFnCall(opt.Fn))
	}
	return b
}

func encodeFnCall(fn *FnCall) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvUserFnCall)
	b.Append(tlv.NewBlock(tlvUserFnID, []byte(fn.Name)))
	for _, arg := range fn.Args {
		b.Append(encodeFnArg(arg))
	}
	return b
}

func encodeFnArg(arg FnArg) *tlv.Block {
	b := tlv.NewEmptyBlock(tlvUserFnArg)
	if arg.IsVar {
		b.Append(tlv.NewBlock(tlvPatternTag, tlv.EncodeNNI(uint64(arg.Var))))
	} else {
		b.Append(tlv.NewBlock(tlvComponentValue, encodeValue(arg.Value)))
	}
	return b
}

// Decode parses a Model from its TLV binary representation, then
// validates invariants I1-I4.
func Decode(wire []byte) (*Model, error) {
	container := tlv.NewBlock(0, wire)
	if !container.Parse() {
		return nil, &ModelError{Msg: "malformed TLV structure"}
	}

	m := &Model{Symbols: map[PatternId]string{}}
	var haveVersion, haveStart, haveCnt bool

	for _, el := range container.Subelements() {
		switch el.Type() {
		case tlvVersion:
			v, err := tlv.DecodeNNI(el.Value())
			if err != nil {
				return nil, &ModelError{Msg: "malformed version field"}
			}
			m.Version = uint32(v)
			haveVersion = true
		case tlvStartID:
			v, err := tlv.DecodeNNI(el.Value())
			if err != nil {
				return nil, &ModelError{Msg: "malformed startId field"}
			}
			m.StartID = int(v)
			haveStart = true
		case tlvNamedPatternCnt:
			v, err := tlv.DecodeNNI(el.Value())
			if err != nil {
				return nil, &ModelError{Msg: "malformed namedPatternCnt field"}
			}
			m.NamedPatternCnt = uint32(v)
			haveCnt = true
		case tlvNode:
			n, err := decodeNode(el)
			if err != nil {
				return nil, errors.Wrap(err, "lvs: decode node")
			}
			m.Nodes = append(m.Nodes, n)
		case tlvTagSymbol:
			id, name, err := decodeTagSymbol(el)
			if err != nil {
				return nil, errors.Wrap(err, "lvs: decode tag symbol")
			}
			m.Symbols[id] = name
		default:
			// unrecognized top-level element: ignored whatever its type
			// number (critical and non-critical types alike are
			// skipped), so that an older decoder can still read a model
			// produced by a newer encoder that adds fields.
		}
	}

	if !haveVersion || !haveStart || !haveCnt {
		return nil, &ModelError{Msg: "truncated model: missing header field"}
	}
	if m.Version != lvsVersion {
		return nil, &ModelError{Msg: "unrecognized model version"}
	}
	if err := validateModel(m); err != nil {
		return nil, errors.Wrap(err, "lvs: validate model")
	}
	return m, nil
}

// subelementsOf parses el's value into its nested elements; a value
// that is not a well-formed TLV sequence yields none.
func subelementsOf(el *tlv.Block) []*tlv.Block {
	if !el.Parse() {
		return nil
	}
	return el.Subelements()
}

func decodeNode(el *tlv.Block) (*Node, error) {
	n := &Node{Parent: -1, ID: -1}
	sawID := false
	for _, f := range subelementsOf(el) {
		switch f.Type() {
		case tlvNodeID:
			if !sawID {
				v, err := tlv.DecodeNNI(f.Value())
				if err != nil {
					return nil, &ModelError{Msg: "malformed node id"}
				}
				n.ID = int(v)
				sawID = true
			} else {
				v, err := tlv.DecodeNNI(f.Value())
				if err != nil {
					return nil, &ModelError{Msg: "malformed parent id"}
				}
				n.Parent = int(v)
			}
		case tlvRuleName:
			n.RuleNames = append(n.RuleNames, string(f.Value()))
		case tlvValueEdge:
			ve, err := decodeValueEdge(f)
			if err != nil {
				return nil, err
			}
			n.ValueEdges = append(n.ValueEdges, ve)
		case tlvPatternEdge:
			pe, err := decodePatternEdge(f)
			if err != nil {
				return nil, err
			}
			n.PatternEdges = append(n.PatternEdges, pe)
		case tlvSignRef:
			v, err := tlv.DecodeNNI(f.Value())
			if err != nil {
				return nil, &ModelError{Msg: "malformed signing reference"}
			}
			n.SigningRefs = append(n.SigningRefs, int(v))
		}
	}
	if !sawID {
		return nil, &ModelError{Msg: "node missing id"}
	}
	return n, nil
}

func decodeValueEdge(el *tlv.Block) (ValueEdge, error) {
	var ve ValueEdge
	var sawDest, sawVal bool
	for _, f := range subelementsOf(el) {
		switch f.Type() {
		case tlvNodeID:
			v, err := tlv.DecodeNNI(f.Value())
			if err != nil {
				return ve, &ModelError{Msg: "malformed value edge destination"}
			}
			ve.Dest = int(v)
			sawDest = true
		case tlvComponentValue:
			val, err := decodeValue(f.Value())
			if err != nil {
				return ve, err
			}
			ve.Value = val
			sawVal = true
		}
	}
	if !sawDest || !sawVal {
		return ve, &ModelError{Msg: "incomplete value edge"}
	}
	return ve, nil
}

func decodePatternEdge(el *tlv.Block) (PatternEdge, error) {
	var pe PatternEdge
	var sawDest, sawTag bool
	for _, f := range subelementsOf(el) {
		switch f.Type() {
		case tlvNodeID:
			v, err := tlv.DecodeNNI(f.Value())
			if err != nil {
				return pe, &ModelError{Msg: "malformed pattern edge destination"}
			}
			pe.Dest = int(v)
			sawDest = true
		case tlvPatternTag:
			v, err := tlv.DecodeNNI(f.Value())
			if err != nil {
				return pe, &ModelError{Msg: "malformed pattern edge tag"}
			}
			pe.Tag = PatternId(v)
			sawTag = true
		case tlvConstraint:
			term, err := decodeConstraint(f)
			if err != nil {
				return pe, err
			}
			pe.Cons = append(pe.Cons, term)
		}
	}
	if !sawDest || !sawTag {
		return pe, &ModelError{Msg: "incomplete pattern edge"}
	}
	return pe, nil
}

func decodeConstraint(el *tlv.Block) (AndTerm, error) {
	var term AndTerm
	for _, f := range subelementsOf(el) {
		if f.Type() != tlvConsOption {
			continue
		}
		opt, err := decodeConsOption(f)
		if err != nil {
			return nil, err
		}
		term = append(term, opt)
	}
	if len(term) == 0 {
		return nil, &ModelError{Msg: "empty constraint AND-term"}
	}
	return term, nil
}

func decodeConsOption(el *tlv.Block) (ConstraintOption, error) {
	subs := subelementsOf(el)
	if len(subs) != 1 {
		return ConstraintOption{}, &ModelError{Msg: "constraint option must carry exactly one of value/tag/fn-call"}
	}
	f := subs[0]
	switch f.Type() {
	case tlvComponentValue:
		v, err := decodeValue(f.Value())
		if err != nil {
			return ConstraintOption{}, err
		}
		return ConstraintOption{Kind: OptValue, Value: v}, nil
	case tlvPatternTag:
		v, err := tlv.DecodeNNI(f.Value())
		if err != nil {
			return ConstraintOption{}, &ModelError{Msg: "malformed constraint option tag"}
		}
		return ConstraintOption{Kind: OptVar, Var: PatternId(v)}, nil
	case tlvUserFnCall:
		fn, err := decodeFnCall(f)
		if err != nil {
			return ConstraintOption{}, err
		}
		return ConstraintOption{Kind: OptFn, Fn: fn}, nil
	default:
		return ConstraintOption{}, &ModelError{Msg: "unrecognized constraint option content"}
	}
}

func decodeFnCall(el *tlv.Block) (*FnCall, error) {
	fn := &FnCall{}
	var sawName bool
	for _, f := range subelementsOf(el) {
		switch f.Type() {
		case tlvUserFnID:
			fn.Name = string(f.Value())
			sawName = true
		case tlvUserFnArg:
			arg, err := decodeFnArg(f)
			if err != nil {
				return nil, err
			}
			fn.Args = append(fn.Args, arg)
		}
	}
	if !sawName {
		return nil, &ModelError{Msg: "function call missing name"}
	}
	return fn, nil
}

func decodeFnArg(el *tlv.Block) (FnArg, error) {
	subs := subelementsOf(el)
	if len(subs) != 1 {
		return FnArg{}, &ModelError{Msg: "function argument must carry exactly one of value/tag"}
	}
	f := subs[0]
	switch f.Type() {
	case tlvComponentValue:
		v, err := decodeValue(f.Value())
		if err != nil {
			return FnArg{}, err
		}
		return FnArg{IsVar: false, Value: v}, nil
	case tlvPatternTag:
		v, err := tlv.DecodeNNI(f.Value())
		if err != nil {
			return FnArg{}, &ModelError{Msg: "malformed function argument tag"}
		}
		return FnArg{IsVar: true, Var: PatternId(v)}, nil
	default:
		return FnArg{}, &ModelError{Msg: "unrecognized function argument content"}
	}
}

func decodeTagSymbol(el *tlv.Block) (PatternId, string, error) {
	var id PatternId
	var name string
	var sawID bool
	for _, f := range subelementsOf(el) {
		switch f.Type() {
		case tlvPatternTag:
			v, err := tlv.DecodeNNI(f.Value())
			if err != nil {
				return 0, "", &ModelError{Msg: "malformed tag symbol id"}
			}
			id = PatternId(v)
			sawID = true
		case tlvIdentifier:
			name = string(f.Value())
		}
	}
	if !sawID {
		return 0, "", &ModelError{Msg: "tag symbol missing id"}
	}
	return id, name, nil
}

// validateModel checks invariants I1-I4 and the tree/parent structure
// (I3) after a decode.
func validateModel(m *Model) error {
	for i, n := range m.Nodes {
		if n.ID != i {
			return &ModelError{Msg: "invariant I1 violated: node id does not match array position"}
		}
	}
	n := len(m.Nodes)
	valid := func(id int) bool { return id >= 0 && id < n }

	if !valid(m.StartID) {
		return &ModelError{Msg: "invariant I2 violated: startId out of range"}
	}
	parentOf := make([]int, n)
	for i := range parentOf {
		parentOf[i] = -2 // unset sentinel
	}
	for _, node := range m.Nodes {
		for _, ve := range node.ValueEdges {
			if !valid(ve.Dest) {
				return &ModelError{Msg: "invariant I2 violated: value edge destination out of range"}
			}
			if err := claimParent(parentOf, ve.Dest, node.ID); err != nil {
				return err
			}
		}
		for _, pe := range node.PatternEdges {
			if !valid(pe.Dest) {
				return &ModelError{Msg: "invariant I2 violated: pattern edge destination out of range"}
			}
			if pe.Tag == 0 {
				return &ModelError{Msg: "invariant I4 violated: pattern edge missing tag"}
			}
			if err := claimParent(parentOf, pe.Dest, node.ID); err != nil {
				return err
			}
			for _, term := range pe.Cons {
				for _, opt := range term {
					switch opt.Kind {
					case OptValue, OptVar, OptFn:
					default:
						return &ModelError{Msg: "invariant violated: constraint option has no recognized content"}
					}
				}
			}
		}
		for _, ref := range node.SigningRefs {
			if !valid(ref) {
				return &ModelError{Msg: "invariant I2 violated: signing reference out of range"}
			}
		}
		if node.Parent != -1 && node.ID != m.StartID {
			if !valid(node.Parent) {
				return &ModelError{Msg: "invariant I3 violated: parent out of range"}
			}
		}
	}
	for id, p := range parentOf {
		if id == m.StartID {
			continue
		}
		if p == -2 {
			return &ModelError{Msg: "invariant I3 violated: node has no incoming edge"}
		}
		if m.Nodes[id].Parent != -1 && m.Nodes[id].Parent != p {
			return &ModelError{Msg: "invariant I3 violated: parent back-reference does not match incoming edge source"}
		}
	}
	return nil
}

func claimParent(parentOf []int, dest, src int) error {
	if parentOf[dest] != -2 {
		return &ModelError{Msg: "invariant I3 violated: node has more than one incoming edge"}
	}
	parentOf[dest] = src
	return nil
}
