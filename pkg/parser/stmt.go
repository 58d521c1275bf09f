package parser

import (
	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/lexer"
)

// stmt = decl
//      | labeled
//      | compound
//      | select
//      | iter
//      | jump
//      | expr? ";"
//
// An empty statement yields a nil Stmt.
func (p *Parser) parseStatement() (cabs.Stmt, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.s.Peek()
	switch tok.Class() {
	case lexer.ClassType, lexer.ClassTypeQualifier, lexer.ClassStorage:
		return p.parseDeclaration(false)
	}

	switch tok.Type {
	case lexer.TokenCase, lexer.TokenDefault:
		return p.parseLabeled()
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenSwitch:
		return p.parseSwitch()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenDo:
		return p.parseDoWhile()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenBreak, lexer.TokenContinue, lexer.TokenReturn:
		return p.parseJump()
	case lexer.TokenSemicolon:
		p.s.Consume(";")
		return nil, nil
	}

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(";"); err != nil {
		return nil, err
	}
	return &cabs.ExprStmt{Expr: e}, nil
}

// labeled = "case" case_value ":" stmt
//         | "default" ":" stmt
// case_value = "-"? number | enum-constant
func (p *Parser) parseLabeled() (cabs.Stmt, error) {
	if p.s.Consume("default") {
		if err := p.s.Expect(":"); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &cabs.Default{Body: body}, nil
	}

	p.s.Consume("case")
	val, err := p.parseCaseValue()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(":"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &cabs.Case{Value: val, Body: body}, nil
}

func (p *Parser) parseCaseValue() (int64, error) {
	tok := p.s.Peek()
	if name, ok := p.s.ConsumeIdent(); ok {
		ec, found := p.env.FindConst(name)
		if !found {
			return 0, errorAt(tok, diag.Undefined, "case label %q is not an enumeration constant", name)
		}
		return int64(ec.Value), nil
	}
	neg := p.s.Consume("-")
	n, err := p.s.ExpectNumber()
	if neg {
		n = -n
	}
	return n, err
}

// compound = "{" stmt* "}"
func (p *Parser) parseBlock() (*cabs.Block, error) {
	if err := p.s.Expect("{"); err != nil {
		return nil, err
	}
	block := &cabs.Block{}
	p.env.AddScope()
	p.log.Debug("scope push", "depth", p.env.Depth())
	for !p.s.Consume("}") {
		if p.s.AtEOF() {
			return nil, p.s.Expect("}")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Items = append(block.Items, stmt)
		}
	}
	snap := p.env.RemoveScope()
	p.log.Debug("scope pop", "depth", p.env.Depth()+1, "vars", len(snap.Vars))
	return block, nil
}

// parseCond parses "(" expr ")"
func (p *Parser) parseCond() (cabs.Expr, error) {
	if err := p.s.Expect("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return e, p.s.Expect(")")
}

// "if" "(" expr ")" stmt ("else" stmt)?
func (p *Parser) parseIf() (cabs.Stmt, error) {
	p.s.Consume("if")
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	node := &cabs.If{Cond: cond, Then: then}
	if p.s.Consume("else") {
		node.Else, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return node, nil
}

// "switch" "(" expr ")" stmt
func (p *Parser) parseSwitch() (cabs.Stmt, error) {
	tok := p.s.Peek()
	p.s.Consume("switch")
	ctrl, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	node := &cabs.Switch{Ctrl: ctrl, Body: body}
	if err := cabs.PopulateSwitch(node); err != nil {
		return nil, locate(err, tok)
	}
	return node, nil
}

// "while" "(" expr ")" stmt
func (p *Parser) parseWhile() (cabs.Stmt, error) {
	p.s.Consume("while")
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &cabs.While{Cond: cond, Body: body}, nil
}

// "do" stmt "while" "(" expr ")" ";"
func (p *Parser) parseDoWhile() (cabs.Stmt, error) {
	p.s.Consume("do")
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseCond()
	if err != nil {
		return nil, err
	}
	if err := p.s.Expect(";"); err != nil {
		return nil, err
	}
	return &cabs.DoWhile{Body: body, Cond: cond}, nil
}

// "for" "(" expr? ";" expr? ";" expr? ")" stmt
func (p *Parser) parseFor() (cabs.Stmt, error) {
	p.s.Consume("for")
	if err := p.s.Expect("("); err != nil {
		return nil, err
	}
	node := &cabs.For{}
	clauses := []struct {
		dst  *cabs.Expr
		term string
	}{
		{&node.Init, ";"},
		{&node.Cond, ";"},
		{&node.Step, ")"},
	}
	for _, c := range clauses {
		if p.s.Consume(c.term) {
			continue
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		*c.dst = e
		if err := p.s.Expect(c.term); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

// jump = "break" ";"
//      | "continue" ";"
//      | "return" expr? ";"
func (p *Parser) parseJump() (cabs.Stmt, error) {
	var node cabs.Stmt
	switch {
	case p.s.Consume("break"):
		node = &cabs.Break{}
	case p.s.Consume("continue"):
		node = &cabs.Continue{}
	default:
		p.s.Consume("return")
		ret := &cabs.Return{}
		if p.s.Peek().Type != lexer.TokenSemicolon {
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			ret.Expr = e
		}
		node = ret
	}
	if err := p.s.Expect(";"); err != nil {
		return nil, err
	}
	return node, nil
}
