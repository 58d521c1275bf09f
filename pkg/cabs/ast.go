// Package cabs defines the typed abstract syntax tree produced by the parser
package cabs

import (
	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/symtab"
)

// Node is the base interface for all AST nodes
type Node interface {
	implCabsNode()
}

// Expr is the interface for all expression nodes. Type returns the
// resolved type, nil until PopulateType has run on nodes that need it.
type Expr interface {
	Node
	implCabsExpr()
	Type() *ctypes.Type
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implCabsStmt()
}

// BinaryOp represents binary operators. There is no greater-than: the
// parser swaps the operands of > and >= onto < and <=.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl // <<
	OpShr // >>
	OpLt
	OpLe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpAnd // &&
	OpOr  // ||
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<<", ">>", "<", "<=", "==", "!=", "&", "^", "|", "&&", "||"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents unary operators
type UnaryOp int

const (
	OpDeref  UnaryOp = iota // *
	OpAddr                  // &
	OpBitNot                // ~
)

func (op UnaryOp) String() string {
	names := []string{"*", "&", "~"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// AssignMode distinguishes plain from compound assignment
type AssignMode int

const (
	AssignPlain AssignMode = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignShl
	AssignShr
	AssignAnd
	AssignXor
	AssignOr
)

var assignOps = []string{"=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "^=", "|="}

func (m AssignMode) String() string {
	if int(m) < len(assignOps) {
		return assignOps[m]
	}
	return "?"
}

// AssignModeFromString maps an assignment operator to its mode
func AssignModeFromString(op string) (AssignMode, bool) {
	for i, s := range assignOps {
		if s == op {
			return AssignMode(i), true
		}
	}
	return 0, false
}

// BinaryOp returns the arithmetic operator of a compound mode
func (m AssignMode) BinaryOp() (BinaryOp, bool) {
	switch m {
	case AssignAdd:
		return OpAdd, true
	case AssignSub:
		return OpSub, true
	case AssignMul:
		return OpMul, true
	case AssignDiv:
		return OpDiv, true
	case AssignMod:
		return OpMod, true
	case AssignShl:
		return OpShl, true
	case AssignShr:
		return OpShr, true
	case AssignAnd:
		return OpBitAnd, true
	case AssignXor:
		return OpBitXor, true
	case AssignOr:
		return OpBitOr, true
	}
	return 0, false
}

// Expressions

// IntLit is an integer constant
type IntLit struct {
	Value int64
}

// StrLit refers to a string in the literal pool by position
type StrLit struct {
	Index int
}

// LocalVar references a local variable by stack offset
type LocalVar struct {
	Name   string
	Offset int
	Ty     *ctypes.Type
}

// GlobalVar references a global variable by name
type GlobalVar struct {
	Name string
	Ty   *ctypes.Type
}

// Binary is a binary operation
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	Ty    *ctypes.Type
}

// Unary is a unary operation
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Ty      *ctypes.Type
}

// Assign stores Right into Left. Compound forms keep their Mode for
// reference but are already desugared: Right is the binary operation
// between a copy of Left and the delta. Post marks x++ and x--, whose
// value is the one before the store.
type Assign struct {
	Mode  AssignMode
	Left  Expr
	Right Expr
	Post  bool
	Ty    *ctypes.Type
}

// Member is a struct member access; p->x is parsed as (*p).x
type Member struct {
	Expr   Expr
	Name   string
	Offset int
	Ty     *ctypes.Type
}

// Call is a direct function call
type Call struct {
	Name string
	Args []Expr
	Ty   *ctypes.Type
}

// Statements

// ExprStmt is an expression evaluated for its side effects
type ExprStmt struct {
	Expr Expr
}

// Decl is a local declaration; Inits holds one assignment per
// initialized object or element
type Decl struct {
	Inits []*Assign
}

// Case is a case label and the statement it marks
type Case struct {
	Value int64
	Body  Stmt // nil for "case 1: ;"
}

// Default is the default label and the statement it marks
type Default struct {
	Body Stmt
}

// Block is a compound statement
type Block struct {
	Items []Stmt
}

// If is an if statement with an optional else branch
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

// Switch holds the controlling expression, the body and the dispatch
// table of labels found in the body
type Switch struct {
	Ctrl    Expr
	Body    Stmt
	Cases   []*Case
	Default *Default
}

// While is a while loop
type While struct {
	Cond Expr
	Body Stmt
}

// DoWhile is a do-while loop
type DoWhile struct {
	Body Stmt
	Cond Expr
}

// For is a three-clause for loop; every clause is optional
type For struct {
	Init Expr
	Cond Expr
	Step Expr
	Body Stmt
}

// Break exits the innermost loop or switch
type Break struct{}

// Continue jumps to the next iteration of the innermost loop
type Continue struct{}

// Return returns from the function; Expr is nil for a bare return
type Return struct {
	Expr Expr
}

// FuncDef is a function definition together with the locals snapshot
// of its scope
type FuncDef struct {
	Name      string
	Type      *ctypes.Type // Func kind
	Params    []*symtab.Var
	Body      []Stmt
	Locals    []*symtab.Var // parameters and top-level locals
	Nested    []*symtab.Var // locals of nested blocks
	StackSize int
}

// Program is the parse result handed to code generation
type Program struct {
	Nodes    []Node
	Globals  []*symtab.Var
	Literals []string
	Warnings []diag.Diagnostic
}

// Funcs returns the function definitions of the program in order
func (p *Program) Funcs() []*FuncDef {
	var fns []*FuncDef
	for _, n := range p.Nodes {
		if fn, ok := n.(*FuncDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Func returns the function definition called name
func (p *Program) Func(name string) (*FuncDef, bool) {
	for _, fn := range p.Funcs() {
		if fn.Name == name {
			return fn, true
		}
	}
	return nil, false
}

// Global returns the global variable called name
func (p *Program) Global(name string) (*symtab.Var, bool) {
	for _, v := range p.Globals {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Type methods

func (*IntLit) Type() *ctypes.Type      { return ctypes.Int() }
func (*StrLit) Type() *ctypes.Type      { return ctypes.Pointer(ctypes.Char()) }
func (n *LocalVar) Type() *ctypes.Type  { return n.Ty }
func (n *GlobalVar) Type() *ctypes.Type { return n.Ty }
func (n *Binary) Type() *ctypes.Type    { return n.Ty }
func (n *Unary) Type() *ctypes.Type     { return n.Ty }
func (n *Assign) Type() *ctypes.Type    { return n.Ty }
func (n *Member) Type() *ctypes.Type    { return n.Ty }
func (n *Call) Type() *ctypes.Type      { return n.Ty }

// Marker methods for interface implementation
func (*IntLit) implCabsNode() {}
func (*IntLit) implCabsExpr() {}

func (*StrLit) implCabsNode() {}
func (*StrLit) implCabsExpr() {}

func (*LocalVar) implCabsNode() {}
func (*LocalVar) implCabsExpr() {}

func (*GlobalVar) implCabsNode() {}
func (*GlobalVar) implCabsExpr() {}

func (*Binary) implCabsNode() {}
func (*Binary) implCabsExpr() {}

func (*Unary) implCabsNode() {}
func (*Unary) implCabsExpr() {}

func (*Assign) implCabsNode() {}
func (*Assign) implCabsExpr() {}

func (*Member) implCabsNode() {}
func (*Member) implCabsExpr() {}

func (*Call) implCabsNode() {}
func (*Call) implCabsExpr() {}

func (*ExprStmt) implCabsNode() {}
func (*ExprStmt) implCabsStmt() {}

func (*Decl) implCabsNode() {}
func (*Decl) implCabsStmt() {}

func (*Case) implCabsNode() {}
func (*Case) implCabsStmt() {}

func (*Default) implCabsNode() {}
func (*Default) implCabsStmt() {}

func (*Block) implCabsNode() {}
func (*Block) implCabsStmt() {}

func (*If) implCabsNode() {}
func (*If) implCabsStmt() {}

func (*Switch) implCabsNode() {}
func (*Switch) implCabsStmt() {}

func (*While) implCabsNode() {}
func (*While) implCabsStmt() {}

func (*DoWhile) implCabsNode() {}
func (*DoWhile) implCabsStmt() {}

func (*For) implCabsNode() {}
func (*For) implCabsStmt() {}

func (*Break) implCabsNode() {}
func (*Break) implCabsStmt() {}

func (*Continue) implCabsNode() {}
func (*Continue) implCabsStmt() {}

func (*Return) implCabsNode() {}
func (*Return) implCabsStmt() {}

func (*FuncDef) implCabsNode() {}
