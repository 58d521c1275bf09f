package parser

import (
	"errors"
	"math"

	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/lexer"
	"github.com/raymyers/subcc/pkg/symtab"
)

// declSpec is the result of a decl_spec: the base type and the storage
// class, if any
type declSpec struct {
	ty      *ctypes.Type
	storage string
	tok     lexer.Token
}

type declarator struct {
	name string
	ty   *ctypes.Type
	tok  lexer.Token
}

// decl = decl_spec (init_decl ("," init_decl)*)? ";"
// init_decl = declarator ("=" initializer)?
//
// The Decl holds the initializing assignments; globals never have any.
func (p *Parser) parseDeclaration(global bool) (*cabs.Decl, error) {
	spec, ok, err := p.parseDeclSpec(true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorAt(p.s.Peek(), diag.Syntax, "expected a type specifier, got %q", p.s.Peek().Literal)
	}

	decl := &cabs.Decl{}
	if p.s.Consume(";") {
		if !spec.ty.IsStruct() && !spec.ty.IsEnum() {
			p.warn(spec.tok, "useless empty declaration")
		}
		return decl, nil
	}

	for {
		d, err := p.parseDeclarator(spec.ty)
		if err != nil {
			return nil, err
		}
		if d.ty.IsFunc() {
			if err := p.declareFunc(d); err != nil {
				return nil, err
			}
			if p.s.Peek().Type == lexer.TokenAssign {
				return nil, errorAt(p.s.Peek(), diag.Syntax, "function %q is initialized like a variable", d.name)
			}
		} else {
			v, err := p.declareVar(d, spec.storage)
			if err != nil {
				return nil, err
			}
			if tok := p.s.Peek(); p.s.Consume("=") {
				if global {
					return nil, errorAt(tok, diag.NotImplemented, "initializer for global variable %q", d.name)
				}
				inits, err := p.parseInitializer(v)
				if err != nil {
					return nil, err
				}
				decl.Inits = append(decl.Inits, inits...)
			}
		}
		if !p.s.Consume(",") {
			break
		}
	}
	if err := p.s.Expect(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) declareVar(d declarator, storage string) (*symtab.Var, error) {
	if d.ty.IsVoid() {
		return nil, errorAt(d.tok, diag.TypeSpec, "variable %q declared void", d.name)
	}
	elem := d.ty
	if elem.IsArray() {
		elem = elem.Elem
	}
	if elem.IsIncomplete() {
		return nil, errorAt(d.tok, diag.Undefined, "variable %q has incomplete type %s", d.name, d.ty)
	}
	v, err := p.env.AddVar(d.name, d.ty, storage)
	if err != nil {
		return nil, errorAt(d.tok, diag.Syntax, "redefinition of %q", d.name)
	}
	p.log.Debug("declaration", "name", d.name, "type", d.ty.String(), "local", v.Local, "offset", v.Offset)
	return v, nil
}

// decl_spec = (storage-class | type-spec | type-qual)*
// spec_qual = (type-spec | type-qual)*
//
// ok is false when no keyword was read.
func (p *Parser) parseDeclSpec(allowStorage bool) (declSpec, bool, error) {
	spec := declSpec{tok: p.s.Peek()}
	var (
		cfg    ctypes.Config
		tagged *ctypes.Type
		read   bool
	)
	for {
		tok := p.s.Peek()
		if kw, ok := p.s.ConsumeType(); ok {
			read = true
			switch kw {
			case "struct", "enum":
				if tagged != nil || !cfg.Empty() {
					return spec, false, errorAt(tok, diag.TypeSpec, "cannot combine %q with previous type specifiers", kw)
				}
				var err error
				if kw == "struct" {
					tagged, err = p.parseStructSpec()
				} else {
					tagged, err = p.parseEnumSpec()
				}
				if err != nil {
					return spec, false, err
				}
			default:
				if tagged != nil {
					return spec, false, errorAt(tok, diag.TypeSpec, "cannot combine %q with a %s type", kw, tagged.Kind)
				}
				if err := cfg.Add(kw); err != nil {
					return spec, false, errorAt(tok, diag.TypeSpec, "%v", err)
				}
			}
			continue
		}
		if _, ok := p.s.ConsumeTypeQual(); ok {
			read = true
			continue
		}
		if allowStorage && tok.Class() == lexer.ClassStorage {
			kw, _ := p.s.ConsumeStorage()
			read = true
			if kw == "typedef" {
				return spec, false, errorAt(tok, diag.NotImplemented, "typedef")
			}
			if spec.storage != "" {
				return spec, false, errorAt(tok, diag.TypeSpec, "multiple storage classes in declaration")
			}
			spec.storage = kw
			continue
		}
		break
	}
	if !read {
		return spec, false, nil
	}

	if tagged != nil {
		spec.ty = tagged
		return spec, true, nil
	}
	ty, err := ctypes.NewFromConfig(cfg)
	if err != nil {
		if errors.Is(err, ctypes.ErrNoSpecifier) {
			return spec, false, errorAt(spec.tok, diag.TypeSpec, "declaration has no type specifier")
		}
		return spec, false, errorAt(spec.tok, diag.TypeSpec, "%v", err)
	}
	spec.ty = ty
	return spec, true, nil
}

// struct_spec = "struct" ident? ("{" struct_decl+ "}")?
//
// The "struct" keyword has already been read.
func (p *Parser) parseStructSpec() (*ctypes.Type, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	nameTok := p.s.Peek()
	name, named := p.s.ConsumeIdent()

	if !p.s.Consume("{") {
		if !named {
			return nil, errorAt(nameTok, diag.Syntax, "expected identifier or '{' after struct")
		}
		return p.lookupTag(nameTok, name, ctypes.TStruct)
	}

	var ty *ctypes.Type
	if named {
		// A tag of this frame that is still incomplete gets its body now;
		// anything else is replaced for future lookups.
		prev, ok := p.env.FindTagInScope(name)
		switch {
		case ok && !prev.IsStruct():
			return nil, errorAt(nameTok, diag.Undefined, "tag %q is not defined as struct", name)
		case ok && prev.IsIncomplete():
			ty = prev
		case ok:
			ty = p.env.Arena.NewIncomplete(ctypes.TStruct, name)
			p.env.UpdateTag(name, ty)
		default:
			ty = p.env.Arena.NewIncomplete(ctypes.TStruct, name)
			p.env.AddTag(name, ty)
		}
	} else {
		ty = p.env.Arena.NewIncomplete(ctypes.TStruct, "")
	}

	if tok := p.s.Peek(); p.s.Consume("}") {
		return nil, errorAt(tok, diag.Syntax, "struct has no members")
	}
	var fields []ctypes.Param
	seen := make(map[string]bool)
	for {
		decls, err := p.parseStructDeclaration()
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			if seen[d.name] {
				return nil, errorAt(d.tok, diag.Syntax, "duplicate member %q", d.name)
			}
			seen[d.name] = true
			elem := d.ty
			if elem.IsArray() {
				elem = elem.Elem
			}
			if elem.IsIncomplete() || d.ty.IsFunc() || d.ty.IsVoid() {
				return nil, errorAt(d.tok, diag.Undefined, "member %q has incomplete type %s", d.name, d.ty)
			}
			fields = append(fields, ctypes.Param{Name: d.name, Type: d.ty})
		}
		if p.s.Consume("}") {
			break
		}
		if p.s.AtEOF() {
			return nil, p.s.Expect("}")
		}
	}

	members, size := ctypes.Layout(fields)
	ctypes.CompleteStruct(ty, size, members)
	p.log.Debug("struct", "type", ty.String(), "size", size)
	return ty, nil
}

// struct_decl = spec_qual declarator ("," declarator)* ";"
func (p *Parser) parseStructDeclaration() ([]declarator, error) {
	spec, ok, err := p.parseDeclSpec(false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorAt(p.s.Peek(), diag.Syntax, "expected a member declaration, got %q", p.s.Peek().Literal)
	}
	var decls []declarator
	for {
		d, err := p.parseDeclarator(spec.ty)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
		if !p.s.Consume(",") {
			break
		}
	}
	return decls, p.s.Expect(";")
}

// enum_spec = "enum" ident? ("{" enumerator ("," enumerator)* ","? "}")?
// enumerator = ident ("=" "-"? number)?
//
// The "enum" keyword has already been read.
func (p *Parser) parseEnumSpec() (*ctypes.Type, error) {
	nameTok := p.s.Peek()
	name, named := p.s.ConsumeIdent()

	if !p.s.Consume("{") {
		if !named {
			return nil, errorAt(nameTok, diag.Syntax, "expected identifier or '{' after enum")
		}
		return p.lookupTag(nameTok, name, ctypes.TEnum)
	}

	var members []ctypes.EnumMember
	var val int64
	for {
		tok := p.s.Peek()
		member, err := p.s.ExpectIdent()
		if err != nil {
			return nil, err
		}
		if p.s.Consume("=") {
			neg := p.s.Consume("-")
			n, err := p.s.ExpectNumber()
			if err != nil {
				return nil, err
			}
			if neg {
				n = -n
			}
			val = n
		}
		if val < math.MinInt32 || val > math.MaxInt32 {
			return nil, errorAt(tok, diag.Limit, "value of enumerator %q does not fit in int", member)
		}
		ec := ctypes.EnumMember{Name: member, Value: int32(val)}
		if err := p.env.AddConst(ec); err != nil {
			return nil, errorAt(tok, diag.Syntax, "redefinition of enumerator %q", member)
		}
		members = append(members, ec)
		val++
		if p.s.Consume("}") {
			break
		}
		if err := p.s.Expect(","); err != nil {
			return nil, err
		}
		if p.s.Consume("}") {
			break
		}
	}

	if !named {
		return p.env.Arena.NewEnum("", members), nil
	}
	prev, ok := p.env.FindTagInScope(name)
	switch {
	case ok && !prev.IsEnum():
		return nil, errorAt(nameTok, diag.Undefined, "tag %q is not defined as enum", name)
	case ok && prev.IsIncomplete():
		ctypes.CompleteEnum(prev, members)
		return prev, nil
	case ok:
		ty := p.env.Arena.NewEnum(name, members)
		p.env.UpdateTag(name, ty)
		return ty, nil
	}
	ty := p.env.Arena.NewEnum(name, members)
	p.env.AddTag(name, ty)
	return ty, nil
}

// lookupTag resolves a tag reference without a body, binding a new
// incomplete tag when the name is unknown
func (p *Parser) lookupTag(tok lexer.Token, name string, kind ctypes.Kind) (*ctypes.Type, error) {
	if found, ok := p.env.FindTag(name); ok {
		if found.Kind != kind {
			return nil, errorAt(tok, diag.Undefined, "tag %q is not defined as %s", name, kind)
		}
		return found, nil
	}
	ty := p.env.Arena.NewIncomplete(kind, name)
	p.env.AddTag(name, ty)
	return ty, nil
}

// declarator = "*"* ident ("[" number "]" | "(" param_list? ")")?
func (p *Parser) parseDeclarator(base *ctypes.Type) (declarator, error) {
	refs := 0
	for p.s.Consume("*") {
		refs++
		for {
			if _, ok := p.s.ConsumeTypeQual(); !ok {
				break
			}
		}
	}

	d := declarator{tok: p.s.Peek()}
	name, err := p.s.ExpectIdent()
	if err != nil {
		return d, err
	}
	d.name = name

	switch {
	case p.s.Consume("["):
		tok := p.s.Peek()
		n, err := p.s.ExpectNumber()
		if err != nil {
			return d, err
		}
		if n <= 0 {
			return d, errorAt(tok, diag.Syntax, "array %q must have a positive size", name)
		}
		if err := p.s.Expect("]"); err != nil {
			return d, err
		}
		d.ty = ctypes.NewArray(base, refs, int(n))
	case p.s.Consume("("):
		var params []ctypes.Param
		if !p.s.Consume(")") {
			params, err = p.parseParamList()
			if err != nil {
				return d, err
			}
			if err := p.s.Expect(")"); err != nil {
				return d, err
			}
		}
		d.ty = ctypes.NewFunction(ctypes.NewFromType(base, refs), params)
	default:
		d.ty = ctypes.NewFromType(base, refs)
	}
	return d, nil
}

// param_list = param ("," param)*
// param = decl_spec declarator | "void"
func (p *Parser) parseParamList() ([]ctypes.Param, error) {
	var params []ctypes.Param
	for {
		spec, ok, err := p.parseDeclSpec(true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errorAt(p.s.Peek(), diag.Syntax, "expected a parameter declaration, got %q", p.s.Peek().Literal)
		}
		if spec.ty.IsVoid() && p.s.Peek().Type == lexer.TokenRParen {
			params = append(params, ctypes.Param{Type: spec.ty})
			return params, nil
		}
		d, err := p.parseDeclarator(spec.ty)
		if err != nil {
			return nil, err
		}
		if d.ty.IsVoid() {
			return nil, errorAt(d.tok, diag.TypeSpec, "parameter %q declared void", d.name)
		}
		// array parameters are passed as pointers
		params = append(params, ctypes.Param{Name: d.name, Type: d.ty.Decay()})
		if !p.s.Consume(",") {
			return params, nil
		}
	}
}

// initializer = assign | "{" assign ("," assign)* ","? "}"
//
// Each value is bound to the next slot of v: array elements, struct
// members, or v itself for scalars. Values past the last slot are parsed
// and dropped with a single warning.
func (p *Parser) parseInitializer(v *symtab.Var) ([]*cabs.Assign, error) {
	list := p.s.Consume("{")
	var (
		inits  []*cabs.Assign
		warned bool
	)
	for pos := 0; ; {
		tok := p.s.Peek()
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		lhs, ok, err := p.initTarget(v, pos, list)
		if err != nil {
			return nil, locate(err, tok)
		}
		if ok {
			init := &cabs.Assign{Mode: cabs.AssignPlain, Left: lhs, Right: rhs}
			if err := cabs.PopulateType(init); err != nil {
				return nil, locate(err, tok)
			}
			inits = append(inits, init)
			pos++
		} else if !warned {
			p.warn(tok, "excess elements in initializer of %q are ignored", v.Name)
			warned = true
		}

		if !list {
			return inits, nil
		}
		if !p.s.Consume(",") || p.s.Peek().Type == lexer.TokenRBrace {
			break
		}
	}
	if err := p.s.Expect("}"); err != nil {
		return nil, err
	}
	return inits, nil
}

// initTarget returns the lvalue for slot pos of v, or false once v has
// no slot left. Without braces a struct is assigned as a whole.
func (p *Parser) initTarget(v *symtab.Var, pos int, list bool) (cabs.Expr, bool, error) {
	ref := varRef(v)
	switch {
	case v.Type.IsStruct() && !list:
		return ref, true, nil
	case v.Type.IsArray():
		if pos >= v.Type.Len {
			return nil, false, nil
		}
		elem := &cabs.Unary{
			Op:      cabs.OpDeref,
			Operand: &cabs.Binary{Op: cabs.OpAdd, Left: ref, Right: &cabs.IntLit{Value: int64(pos)}},
		}
		return elem, true, cabs.PopulateType(elem)
	case v.Type.IsStruct():
		if pos >= len(v.Type.Tag.Members) {
			return nil, false, nil
		}
		m := &cabs.Member{Expr: ref, Name: v.Type.Tag.Members[pos].Name}
		return m, true, cabs.PopulateType(m)
	}
	if pos > 0 {
		return nil, false, nil
	}
	return ref, true, nil
}

func varRef(v *symtab.Var) cabs.Expr {
	if v.Local {
		return &cabs.LocalVar{Name: v.Name, Offset: v.Offset, Ty: v.Type}
	}
	return &cabs.GlobalVar{Name: v.Name, Ty: v.Type}
}
