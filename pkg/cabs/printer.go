package cabs

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs the typed AST in a C-like, human-readable format
type Printer struct {
	w      io.Writer
	indent int

	// Types appends the resolved type of each typed expression as a comment
	Types bool
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintProgram prints the global table, the literal pool and then every
// top-level node
func (p *Printer) PrintProgram(prog *Program) {
	p.PrintSymbols(prog)
	if len(prog.Globals) > 0 || len(prog.Literals) > 0 {
		fmt.Fprintln(p.w)
	}
	for _, n := range prog.Nodes {
		p.PrintNode(n)
		fmt.Fprintln(p.w)
	}
}

// PrintSymbols prints the global variable table and the literal pool
func (p *Printer) PrintSymbols(prog *Program) {
	for _, v := range prog.Globals {
		if v.Storage != "" {
			fmt.Fprintf(p.w, "%s ", v.Storage)
		}
		fmt.Fprintf(p.w, "%s %s;\n", v.Type, v.Name)
	}
	for i, lit := range prog.Literals {
		fmt.Fprintf(p.w, "str[%d] = \"%s\";\n", i, lit)
	}
}

// PrintNode prints a single node
func (p *Printer) PrintNode(n Node) {
	switch n := n.(type) {
	case *FuncDef:
		p.printFuncDef(n)
	case Stmt:
		p.printStmt(n)
	case Expr:
		p.printExpr(n)
		fmt.Fprintln(p.w)
	default:
		fmt.Fprintf(p.w, "/* unknown node %T */\n", n)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printFuncDef(f *FuncDef) {
	ret := "int"
	if f.Type != nil && f.Type.Return != nil {
		ret = f.Type.Return.String()
	}
	fmt.Fprintf(p.w, "%s %s(", ret, f.Name)
	for i, param := range f.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s %s", param.Type, param.Name)
	}
	fmt.Fprintf(p.w, ") /* stack %d */\n", f.StackSize)
	p.printBlock(&Block{Items: f.Body})
}

func (p *Printer) printBlock(b *Block) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	for _, stmt := range b.Items {
		p.printStmt(stmt)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

// printBody prints the statement governed by a control header one level
// deeper; blocks keep the header's level
func (p *Printer) printBody(s Stmt) {
	if b, ok := s.(*Block); ok {
		p.printBlock(b)
		return
	}
	p.indent++
	p.printStmt(s)
	p.indent--
}

func (p *Printer) printStmt(stmt Stmt) {
	if b, ok := stmt.(*Block); ok {
		p.printBlock(b)
		return
	}
	p.writeIndent()
	switch s := stmt.(type) {
	case nil:
		fmt.Fprintln(p.w, ";")
	case *Return:
		fmt.Fprint(p.w, "return")
		if s.Expr != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Expr)
		}
		fmt.Fprintln(p.w, ";")
	case *ExprStmt:
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ";")
	case *Decl:
		fmt.Fprint(p.w, "decl")
		for i, init := range s.Inits {
			if i == 0 {
				fmt.Fprint(p.w, " ")
			} else {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(init)
		}
		fmt.Fprintln(p.w, ";")
	case *If:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Then)
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printBody(s.Else)
		}
	case *While:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case *DoWhile:
		fmt.Fprintln(p.w, "do")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ");")
	case *For:
		fmt.Fprint(p.w, "for (")
		if s.Init != nil {
			p.printExpr(s.Init)
		}
		fmt.Fprint(p.w, "; ")
		if s.Cond != nil {
			p.printExpr(s.Cond)
		}
		fmt.Fprint(p.w, "; ")
		if s.Step != nil {
			p.printExpr(s.Step)
		}
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case *Break:
		fmt.Fprintln(p.w, "break;")
	case *Continue:
		fmt.Fprintln(p.w, "continue;")
	case *Switch:
		fmt.Fprint(p.w, "switch (")
		p.printExpr(s.Ctrl)
		fmt.Fprint(p.w, ") /* cases")
		for _, c := range s.Cases {
			fmt.Fprintf(p.w, " %d", c.Value)
		}
		if s.Default != nil {
			fmt.Fprint(p.w, " default")
		}
		fmt.Fprintln(p.w, " */")
		p.printBody(s.Body)
	case *Case:
		fmt.Fprintf(p.w, "case %d:\n", s.Value)
		p.printLabeled(s.Body)
	case *Default:
		fmt.Fprintln(p.w, "default:")
		p.printLabeled(s.Body)
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */;\n", stmt)
	}
}

func (p *Printer) printLabeled(s Stmt) {
	p.indent++
	p.printStmt(s)
	p.indent--
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case *IntLit:
		fmt.Fprintf(p.w, "%d", e.Value)
	case *StrLit:
		fmt.Fprintf(p.w, "str[%d]", e.Index)
	case *LocalVar:
		fmt.Fprint(p.w, e.Name)
	case *GlobalVar:
		fmt.Fprint(p.w, e.Name)
	case *Binary:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Left)
		fmt.Fprintf(p.w, " %s ", e.Op)
		p.printExpr(e.Right)
		fmt.Fprint(p.w, ")")
	case *Unary:
		fmt.Fprint(p.w, e.Op.String())
		p.printExpr(e.Operand)
	case *Assign:
		if e.Post {
			fmt.Fprint(p.w, "post")
		}
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Left)
		fmt.Fprint(p.w, " = ")
		p.printExpr(e.Right)
		fmt.Fprint(p.w, ")")
	case *Member:
		if _, ok := e.Expr.(*Unary); ok {
			fmt.Fprint(p.w, "(")
			p.printExpr(e.Expr)
			fmt.Fprint(p.w, ")")
		} else {
			p.printExpr(e.Expr)
		}
		fmt.Fprintf(p.w, ".%s", e.Name)
	case *Call:
		fmt.Fprintf(p.w, "%s(", e.Name)
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg)
		}
		fmt.Fprint(p.w, ")")
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
		return
	}
	if p.Types {
		if t := expr.Type(); t != nil {
			fmt.Fprintf(p.w, " /* %s */", t)
		}
	}
}
