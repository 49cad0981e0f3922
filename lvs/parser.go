package lvs

// parseSource parses LVS source text into an AST. It is the sole
// entrypoint to C1; C2 (resolver) consumes only the returned astFile.
func parseSource(src string) (*astFile, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseFile()
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k tokKind, what string) (token, error) {
	if p.tok.Kind != k {
		return token{}, &SyntaxError{Pos: p.tok.Pos, Msg: "expected " + what}
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return t, nil
}

func (p *parser) parseFile() (*astFile, error) {
	f := &astFile{}
	for p.tok.Kind != tokEOF {
		def, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		f.Defs = append(f.Defs, def)
	}
	return f, nil
}

func (p *parser) parseDef() (*astDef, error) {
	ruleTok, err := p.expect(tokRuleID, "rule identifier (#name)")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}
	expr, err := p.parseDefExpr()
	if err != nil {
		return nil, err
	}
	return &astDef{Pos: ruleTok.Pos, Name: ruleTok.Text, Expr: expr}, nil
}

func (p *parser) parseDefExpr() (astDefExpr, error) {
	var expr astDefExpr
	name, err := p.parseName()
	if err != nil {
		return expr, err
	}
	expr.Name = name
	if p.tok.Kind == tokAmp {
		if err := p.advance(); err != nil {
			return expr, err
		}
		cnf, err := p.parseConsCNF()
		if err != nil {
			return expr, err
		}
		expr.Cons = cnf
	}
	if p.tok.Kind == tokSignArrow {
		if err := p.advance(); err != nil {
			return expr, err
		}
		refs, err := p.parseSignList()
		if err != nil {
			return expr, err
		}
		expr.Signing = refs
	}
	return expr, nil
}

func (p *parser) parseName() ([]astComp, error) {
	if p.tok.Kind == tokSlash {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	var comps []astComp
	c, err := p.parseComp()
	if err != nil {
		return nil, err
	}
	comps = append(comps, c)
	for p.tok.Kind == tokSlash {
		if err := p.advance(); err != nil {
			return nil, err
		}
		c, err := p.parseComp()
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, nil
}

func (p *parser) parseComp() (astComp, error) {
	switch p.tok.Kind {
	case tokStr:
		t := p.tok
		if err := p.advance(); err != nil {
			return astComp{}, err
		}
		return astComp{Pos: t.Pos, Kind: compStr, Text: t.Text}, nil
	case tokTagID:
		t := p.tok
		if err := p.advance(); err != nil {
			return astComp{}, err
		}
		return astComp{Pos: t.Pos, Kind: compTag, Text: t.Text}, nil
	case tokRuleID:
		t := p.tok
		if err := p.advance(); err != nil {
			return astComp{}, err
		}
		return astComp{Pos: t.Pos, Kind: compRule, Text: t.Text}, nil
	default:
		return astComp{}, &SyntaxError{Pos: p.tok.Pos, Msg: "expected name component (string, tag, or #rule)"}
	}
}

func (p *parser) parseSignList() ([]astRuleRef, error) {
	var refs []astRuleRef
	t, err := p.expect(tokRuleID, "rule identifier")
	if err != nil {
		return nil, err
	}
	refs = append(refs, astRuleRef{Pos: t.Pos, Name: t.Text})
	for p.tok.Kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		t, err := p.expect(tokRuleID, "rule identifier")
		if err != nil {
			return nil, err
		}
		refs = append(refs, astRuleRef{Pos: t.Pos, Name: t.Text})
	}
	return refs, nil
}

func (p *parser) parseConsCNF() ([]astConsSet, error) {
	var sets []astConsSet
	s, err := p.parseConsSet()
	if err != nil {
		return nil, err
	}
	sets = append(sets, s)
	for p.tok.Kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		s, err := p.parseConsSet()
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func (p *parser) parseConsSet() (astConsSet, error) {
	lb, err := p.expect(tokLBrace, "'{'")
	if err != nil {
		return astConsSet{}, err
	}
	set := astConsSet{Pos: lb.Pos}
	term, err := p.parseConsTerm()
	if err != nil {
		return astConsSet{}, err
	}
	set.Terms = append(set.Terms, term)
	for p.tok.Kind == tokComma {
		if err := p.advance(); err != nil {
			return astConsSet{}, err
		}
		term, err := p.parseConsTerm()
		if err != nil {
			return astConsSet{}, err
		}
		set.Terms = append(set.Terms, term)
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return astConsSet{}, err
	}
	return set, nil
}

func (p *parser) parseConsTerm() (astConsTerm, error) {
	tagTok, err := p.expect(tokTagID, "constrained tag identifier")
	if err != nil {
		return astConsTerm{}, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return astConsTerm{}, err
	}
	opts, err := p.parseConsDisj()
	if err != nil {
		return astConsTerm{}, err
	}
	return astConsTerm{Pos: tagTok.Pos, Tag: tagTok.Text, Opts: opts}, nil
}

func (p *parser) parseConsDisj() ([]astConsOpt, error) {
	var opts []astConsOpt
	o, err := p.parseConsOpt()
	if err != nil {
		return nil, err
	}
	opts = append(opts, o)
	for p.tok.Kind == tokPipe {
		if err := p.advance(); err != nil {
			return nil, err
		}
		o, err := p.parseConsOpt()
		if err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, nil
}

func (p *parser) parseConsOpt() (astConsOpt, error) {
	switch p.tok.Kind {
	case tokStr:
		t := p.tok
		if err := p.advance(); err != nil {
			return astConsOpt{}, err
		}
		return astConsOpt{Pos: t.Pos, Kind: optStr, Text: t.Text}, nil
	case tokTagID:
		t := p.tok
		if err := p.advance(); err != nil {
			return astConsOpt{}, err
		}
		return astConsOpt{Pos: t.Pos, Kind: optTag, Text: t.Text}, nil
	case tokFnID:
		t := p.tok
		if err := p.advance(); err != nil {
			return astConsOpt{}, err
		}
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return astConsOpt{}, err
		}
		args, err := p.parseFnArgs()
		if err != nil {
			return astConsOpt{}, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return astConsOpt{}, err
		}
		return astConsOpt{Pos: t.Pos, Kind: optFn, FnName: t.Text, FnArgs: args}, nil
	default:
		return astConsOpt{}, &SyntaxError{Pos: p.tok.Pos, Msg: "expected constraint option (string, tag, or $fn(...))"}
	}
}

func (p *parser) parseFnArgs() ([]astFnArg, error) {
	// fn_args is allowed to be empty in practice ($isValidID() takes none);
	// the grammar's fn_args production is non-empty, so we accept a
	// following ')' as zero arguments to match the tutorial schemas.
	if p.tok.Kind == tokRParen {
		return nil, nil
	}
	var args []astFnArg
	a, err := p.parseFnArg()
	if err != nil {
		return nil, err
	}
	args = append(args, a)
	for p.tok.Kind == tokComma {
		if err := p.advance(); err != nil {
			return nil, err
		}
		a, err := p.parseFnArg()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

func (p *parser) parseFnArg() (astFnArg, error) {
	switch p.tok.Kind {
	case tokStr:
		t := p.tok
		if err := p.advance(); err != nil {
			return astFnArg{}, err
		}
		return astFnArg{Pos: t.Pos, IsTag: false, Text: t.Text}, nil
	case tokTagID:
		t := p.tok
		if err := p.advance(); err != nil {
			return astFnArg{}, err
		}
		return astFnArg{Pos: t.Pos, IsTag: true, Text: t.Text}, nil
	default:
		return astFnArg{}, &SyntaxError{Pos: p.tok.Pos, Msg: "expected function argument (string or tag)"}
	}
}
