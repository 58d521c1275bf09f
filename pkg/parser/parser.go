// Package parser implements a recursive descent parser for the C subset,
// building a typed AST while it resolves names and types
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/lexer"
	"github.com/raymyers/subcc/pkg/symtab"
)

const (
	// DefaultMaxDepth bounds statement and expression nesting
	DefaultMaxDepth = 1024
	// DefaultMaxCallArgs is the most arguments a call may pass
	DefaultMaxCallArgs = 6
)

// ErrReused is returned when Parse is called a second time
var ErrReused = errors.New("parser: Parse already called")

// Options tunes a Parser. The zero value uses the defaults.
type Options struct {
	MaxDepth    int
	MaxCallArgs int // values above DefaultMaxCallArgs are clamped
	Logger      *slog.Logger
}

// Parser parses one translation unit. It owns its token stream and its
// scope environment, so independent parsers never interfere.
type Parser struct {
	s        *lexer.Stream
	env      *symtab.Env
	opts     Options
	log      *slog.Logger
	depth    int
	warnings []diag.Diagnostic
	funcs    map[string]*ctypes.Type // declared and defined functions
	defined  map[string]bool
	used     bool
}

// New creates a new Parser reading from s
func New(s *lexer.Stream, opts Options) *Parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxCallArgs <= 0 || opts.MaxCallArgs > DefaultMaxCallArgs {
		opts.MaxCallArgs = DefaultMaxCallArgs
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{
		s:       s,
		env:     symtab.New(),
		opts:    opts,
		log:     log,
		funcs:   make(map[string]*ctypes.Type),
		defined: make(map[string]bool),
	}
}

// ParseString tokenizes and parses src
func ParseString(src string, opts Options) (*cabs.Program, error) {
	s, err := lexer.NewStream(src)
	if err != nil {
		return nil, err
	}
	return New(s, opts).Parse()
}

// Parse parses the whole translation unit. On error no Program is
// returned.
func (p *Parser) Parse() (*cabs.Program, error) {
	if p.used {
		return nil, ErrReused
	}
	p.used = true

	nodes, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	globals, literals, err := p.env.Symbols()
	if err != nil {
		return nil, err
	}
	return &cabs.Program{
		Nodes:    nodes,
		Globals:  globals,
		Literals: literals,
		Warnings: p.warnings,
	}, nil
}

// Warnings returns the warnings reported so far
func (p *Parser) Warnings() []diag.Diagnostic {
	return p.warnings
}

func (p *Parser) warn(tok lexer.Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.warnings = append(p.warnings, diag.Diagnostic{
		Level:   diag.LevelWarning,
		Line:    tok.Line,
		Column:  tok.Column,
		Message: msg,
	})
	p.log.Warn(msg, "line", tok.Line, "col", tok.Column)
}

func errorAt(tok lexer.Token, kind diag.Kind, format string, args ...any) error {
	return diag.Errorf(kind, tok.Line, tok.Column, format, args...)
}

// locate attaches the position of tok to an error raised without one
func locate(err error, tok lexer.Token) error {
	var de *diag.Error
	if errors.As(err, &de) && de.Line == 0 {
		de.Line = tok.Line
		de.Column = tok.Column
	}
	return err
}

// enter guards recursion; every successful call must be paired with leave
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return errorAt(p.s.Peek(), diag.Limit, "nesting deeper than %d levels", p.opts.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// program = external_decl*
func (p *Parser) parseProgram() ([]cabs.Node, error) {
	var nodes []cabs.Node
	for !p.s.AtEOF() {
		if p.s.IsFunc() {
			fn, err := p.parseFuncDef()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, fn)
			continue
		}
		if _, err := p.parseDeclaration(true); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// funcdef = decl_spec declarator "{" stmt* "}"
func (p *Parser) parseFuncDef() (*cabs.FuncDef, error) {
	spec, ok, err := p.parseDeclSpec(true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorAt(p.s.Peek(), diag.Syntax, "expected a declaration specifier")
	}

	p.env.AddScope()
	d, err := p.parseDeclarator(spec.ty)
	if err != nil {
		return nil, err
	}
	if !d.ty.IsFunc() {
		return nil, errorAt(d.tok, diag.Syntax, "expected a function declarator for %q", d.name)
	}
	if err := p.declareFunc(d); err != nil {
		return nil, err
	}
	if p.defined[d.name] {
		return nil, errorAt(d.tok, diag.Syntax, "redefinition of function %q", d.name)
	}
	p.defined[d.name] = true

	var params []*symtab.Var
	for name, ty := range d.ty.FuncParams() {
		if ty.IsVoid() {
			break
		}
		if name == "" {
			return nil, errorAt(d.tok, diag.Syntax, "parameter name omitted in definition of %q", d.name)
		}
		if ty.IsIncomplete() {
			return nil, errorAt(d.tok, diag.Undefined, "parameter %q has incomplete type %s", name, ty)
		}
		v, err := p.env.AddVar(name, ty, "")
		if err != nil {
			return nil, errorAt(d.tok, diag.Syntax, "redefinition of parameter %q", name)
		}
		params = append(params, v)
	}

	if err := p.s.Expect("{"); err != nil {
		return nil, err
	}
	var body []cabs.Stmt
	for !p.s.Consume("}") {
		if p.s.AtEOF() {
			return nil, p.s.Expect("}")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			body = append(body, stmt)
		}
	}

	snap := p.env.RemoveScope()
	p.log.Debug("function", "name", d.name, "type", d.ty.String(), "stack", snap.StackSize)
	return &cabs.FuncDef{
		Name:      d.name,
		Type:      d.ty,
		Params:    params,
		Body:      body,
		Locals:    snap.Vars,
		Nested:    snap.Nested,
		StackSize: snap.StackSize,
	}, nil
}

// declareFunc records a function declarator so calls get its return type
func (p *Parser) declareFunc(d declarator) error {
	if prev, ok := p.funcs[d.name]; ok && !ctypes.Equal(prev, d.ty) {
		return errorAt(d.tok, diag.TypeSpec, "conflicting types for %q: %s and %s", d.name, prev, d.ty)
	}
	p.funcs[d.name] = d.ty
	return nil
}
