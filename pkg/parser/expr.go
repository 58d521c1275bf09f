package parser

import (
	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/lexer"
)

// binaryLevel is one left-associative precedence level. A swapped
// operator builds its node with the operands exchanged.
type binaryLevel []struct {
	lit  string
	op   cabs.BinaryOp
	swap bool
}

var (
	levelMul        = binaryLevel{{"*", cabs.OpMul, false}, {"/", cabs.OpDiv, false}, {"%", cabs.OpMod, false}}
	levelAdd        = binaryLevel{{"+", cabs.OpAdd, false}, {"-", cabs.OpSub, false}}
	levelShift      = binaryLevel{{"<<", cabs.OpShl, false}, {">>", cabs.OpShr, false}}
	levelRelational = binaryLevel{{"<", cabs.OpLt, false}, {"<=", cabs.OpLe, false}, {">", cabs.OpLt, true}, {">=", cabs.OpLe, true}}
	levelEquality   = binaryLevel{{"==", cabs.OpEq, false}, {"!=", cabs.OpNe, false}}
	levelBitAnd     = binaryLevel{{"&", cabs.OpBitAnd, false}}
	levelBitXor     = binaryLevel{{"^", cabs.OpBitXor, false}}
	levelBitOr      = binaryLevel{{"|", cabs.OpBitOr, false}}
	levelLogAnd     = binaryLevel{{"&&", cabs.OpAnd, false}}
	levelLogOr      = binaryLevel{{"||", cabs.OpOr, false}}
)

// precedence lists the binary levels from loosest to tightest
var precedence = []binaryLevel{
	levelLogOr,
	levelLogAnd,
	levelBitOr,
	levelBitXor,
	levelBitAnd,
	levelEquality,
	levelRelational,
	levelShift,
	levelAdd,
	levelMul,
}

// expr = assign
func (p *Parser) parseExpression() (cabs.Expr, error) {
	return p.parseAssign()
}

// assign = conditional (assign_op assign)?
func (p *Parser) parseAssign() (cabs.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	lhs, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	tok := p.s.Peek()
	op, ok := p.s.ConsumeAssignOp()
	if !ok {
		return lhs, nil
	}
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	mode, _ := cabs.AssignModeFromString(op)
	return p.newAssign(tok, mode, lhs, rhs, false)
}

// newAssign builds an assignment, desugaring compound modes so that the
// right-hand side computes the stored value from a copy of lhs
func (p *Parser) newAssign(tok lexer.Token, mode cabs.AssignMode, lhs, rhs cabs.Expr, post bool) (cabs.Expr, error) {
	switch l := lhs.(type) {
	case *cabs.LocalVar, *cabs.GlobalVar, *cabs.Member:
	case *cabs.Unary:
		if l.Op != cabs.OpDeref {
			return nil, errorAt(tok, diag.Syntax, "expression is not assignable")
		}
	default:
		return nil, errorAt(tok, diag.Syntax, "expression is not assignable")
	}
	if lhs.Type().IsArray() {
		return nil, errorAt(tok, diag.Syntax, "array type %s is not assignable", lhs.Type())
	}

	if op, ok := mode.BinaryOp(); ok {
		rhs = &cabs.Binary{Op: op, Left: cabs.Clone(lhs), Right: rhs}
	}
	node := &cabs.Assign{Mode: mode, Left: lhs, Right: rhs, Post: post}
	if err := cabs.PopulateType(node); err != nil {
		return nil, locate(err, tok)
	}
	return node, nil
}

// conditional = logical_or ("?" expr ":" conditional)?
func (p *Parser) parseConditional() (cabs.Expr, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	tok := p.s.Peek()
	if !p.s.Consume("?") {
		return cond, nil
	}
	if _, err := p.parseExpression(); err != nil {
		return nil, err
	}
	if err := p.s.Expect(":"); err != nil {
		return nil, err
	}
	if _, err := p.parseConditional(); err != nil {
		return nil, err
	}
	return nil, errorAt(tok, diag.NotImplemented, "conditional expressions are not supported")
}

// parseBinary parses precedence level i and everything binding tighter
//
// logical_or  = logical_and ("||" logical_and)*
// logical_and = bitwise_or ("&&" bitwise_or)*
// bitwise_or  = bitwise_xor ("|" bitwise_xor)*
// bitwise_xor = bitwise_and ("^" bitwise_and)*
// bitwise_and = equality ("&" equality)*
// equality    = relational ("==" relational | "!=" relational)*
// relational  = shift ("<" shift | "<=" shift | ">" shift | ">=" shift)*
// shift       = add ("<<" add | ">>" add)*
// add         = mul ("+" mul | "-" mul)*
// mul         = unary ("*" unary | "/" unary | "%" unary)*
func (p *Parser) parseBinary(i int) (cabs.Expr, error) {
	next := func() (cabs.Expr, error) {
		if i+1 < len(precedence) {
			return p.parseBinary(i + 1)
		}
		return p.parseUnary()
	}

	node, err := next()
	if err != nil {
		return nil, err
	}
loop:
	for {
		tok := p.s.Peek()
		for _, o := range precedence[i] {
			if !p.s.Consume(o.lit) {
				continue
			}
			rhs, err := next()
			if err != nil {
				return nil, err
			}
			b := &cabs.Binary{Op: o.op, Left: node, Right: rhs}
			if o.swap {
				// a > b is b < a; b is now evaluated first
				b.Left, b.Right = rhs, node
			}
			if err := cabs.PopulateType(b); err != nil {
				return nil, locate(err, tok)
			}
			node = b
			continue loop
		}
		return node, nil
	}
}

// unary = "sizeof" unary
//       | "sizeof" "(" type_name ")"
//       | ("++" | "--") unary
//       | ("+" | "-" | "*" | "&" | "~" | "!") unary
//       | postfix
func (p *Parser) parseUnary() (cabs.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.s.Peek()
	switch tok.Type {
	case lexer.TokenSizeof:
		p.s.Consume("sizeof")
		return p.parseSizeof(tok)
	case lexer.TokenIncrement, lexer.TokenDecrement:
		p.s.Consume(tok.Literal)
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		mode := cabs.AssignAdd
		if tok.Type == lexer.TokenDecrement {
			mode = cabs.AssignSub
		}
		return p.newAssign(tok, mode, operand, &cabs.IntLit{Value: 1}, false)
	case lexer.TokenPlus:
		p.s.Consume("+")
		return p.parseUnary()
	}

	var build func(cabs.Expr) cabs.Expr
	switch tok.Type {
	case lexer.TokenMinus:
		build = func(x cabs.Expr) cabs.Expr {
			return &cabs.Binary{Op: cabs.OpSub, Left: &cabs.IntLit{Value: 0}, Right: x}
		}
	case lexer.TokenNot:
		build = func(x cabs.Expr) cabs.Expr {
			return &cabs.Binary{Op: cabs.OpEq, Left: x, Right: &cabs.IntLit{Value: 0}}
		}
	case lexer.TokenStar:
		build = func(x cabs.Expr) cabs.Expr { return &cabs.Unary{Op: cabs.OpDeref, Operand: x} }
	case lexer.TokenAmpersand:
		build = func(x cabs.Expr) cabs.Expr { return &cabs.Unary{Op: cabs.OpAddr, Operand: x} }
	case lexer.TokenTilde:
		build = func(x cabs.Expr) cabs.Expr { return &cabs.Unary{Op: cabs.OpBitNot, Operand: x} }
	default:
		return p.parsePostfix()
	}
	p.s.Consume(tok.Literal)
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	node := build(operand)
	if err := cabs.PopulateType(node); err != nil {
		return nil, locate(err, tok)
	}
	return node, nil
}

// parseSizeof folds sizeof into an integer literal; the "sizeof" keyword
// has been read
func (p *Parser) parseSizeof(tok lexer.Token) (cabs.Expr, error) {
	var ty *ctypes.Type
	if p.s.Peek().Type == lexer.TokenLParen && isTypeStart(p.s.PeekAt(1)) {
		p.s.Consume("(")
		spec, _, err := p.parseDeclSpec(false)
		if err != nil {
			return nil, err
		}
		ty, err = p.parseAbstractDeclarator(spec.ty)
		if err != nil {
			return nil, err
		}
		if err := p.s.Expect(")"); err != nil {
			return nil, err
		}
	} else {
		// the operand is never evaluated, so its string literals leave
		// nothing behind in the pool
		mark := p.env.LiteralMark()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		p.env.ResetLiterals(mark)
		if err := cabs.PopulateType(operand); err != nil {
			return nil, locate(err, tok)
		}
		ty = operand.Type()
		if ty == nil {
			return nil, errorAt(tok, diag.TypeSpec, "sizeof operand has no type")
		}
	}
	if ty.IsIncomplete() || ty.IsFunc() {
		return nil, errorAt(tok, diag.Undefined, "sizeof applied to incomplete type %s", ty)
	}
	return &cabs.IntLit{Value: int64(ty.TotalSize())}, nil
}

func isTypeStart(tok lexer.Token) bool {
	c := tok.Class()
	return c == lexer.ClassType || c == lexer.ClassTypeQualifier
}

// abstract_declarator = "*"* ("[" number "]")?
func (p *Parser) parseAbstractDeclarator(base *ctypes.Type) (*ctypes.Type, error) {
	refs := 0
	for p.s.Consume("*") {
		refs++
	}
	if !p.s.Consume("[") {
		return ctypes.NewFromType(base, refs), nil
	}
	tok := p.s.Peek()
	n, err := p.s.ExpectNumber()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, errorAt(tok, diag.Syntax, "array type must have a positive size")
	}
	if err := p.s.Expect("]"); err != nil {
		return nil, err
	}
	return ctypes.NewArray(base, refs, int(n)), nil
}

// postfix = primary ("[" expr "]" | "." ident | "->" ident | "++" | "--")*
func (p *Parser) parsePostfix() (cabs.Expr, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.s.Peek()
		switch {
		case p.s.Consume("["):
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.s.Expect("]"); err != nil {
				return nil, err
			}
			node = &cabs.Unary{Op: cabs.OpDeref, Operand: &cabs.Binary{Op: cabs.OpAdd, Left: node, Right: idx}}
		case p.s.Consume("."), p.s.Consume("->"):
			nameTok := p.s.Peek()
			name, err := p.s.ExpectIdent()
			if err != nil {
				return nil, err
			}
			if tok.Type == lexer.TokenArrow {
				node = &cabs.Unary{Op: cabs.OpDeref, Operand: node}
			}
			node = &cabs.Member{Expr: node, Name: name}
			tok = nameTok
		case p.s.Consume("++"), p.s.Consume("--"):
			mode := cabs.AssignAdd
			if tok.Type == lexer.TokenDecrement {
				mode = cabs.AssignSub
			}
			node, err = p.newAssign(tok, mode, node, &cabs.IntLit{Value: 1}, true)
			if err != nil {
				return nil, err
			}
			continue
		default:
			return node, nil
		}
		if err := cabs.PopulateType(node); err != nil {
			return nil, locate(err, tok)
		}
	}
}

// primary = "(" expr ")"
//         | ident ("(" (assign ("," assign)*)? ")")?
//         | string
//         | number
func (p *Parser) parsePrimary() (cabs.Expr, error) {
	tok := p.s.Peek()
	if p.s.Consume("(") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return e, p.s.Expect(")")
	}

	if name, ok := p.s.ConsumeIdent(); ok {
		if p.s.Consume("(") {
			return p.parseCall(tok, name)
		}
		if v, ok := p.env.FindVar(name); ok {
			return varRef(v), nil
		}
		if ec, ok := p.env.FindConst(name); ok {
			return &cabs.IntLit{Value: int64(ec.Value)}, nil
		}
		return nil, errorAt(tok, diag.Undefined, "undefined identifier %q", name)
	}

	if text, ok := p.s.ConsumeStr(); ok {
		return &cabs.StrLit{Index: p.env.AddLiteral(text)}, nil
	}

	n, err := p.s.ExpectNumber()
	if err != nil {
		return nil, err
	}
	return &cabs.IntLit{Value: n}, nil
}

// parseCall parses the argument list of a call; the callee name and
// "(" have been read
func (p *Parser) parseCall(tok lexer.Token, name string) (cabs.Expr, error) {
	call := &cabs.Call{Name: name}
	if fn, ok := p.funcs[name]; ok {
		call.Ty = fn.Return
	}
	if !p.s.Consume(")") {
		for {
			argTok := p.s.Peek()
			if len(call.Args) == p.opts.MaxCallArgs {
				return nil, errorAt(argTok, diag.Limit, "call to %q passes more than %d arguments", name, p.opts.MaxCallArgs)
			}
			arg, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.s.Consume(",") {
				break
			}
		}
		if err := p.s.Expect(")"); err != nil {
			return nil, err
		}
	}
	if err := cabs.PopulateType(call); err != nil {
		return nil, locate(err, tok)
	}
	return call, nil
}
