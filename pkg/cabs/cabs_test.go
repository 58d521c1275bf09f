package cabs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/symtab"
)

func local(name string, offset int, ty *ctypes.Type) *LocalVar {
	return &LocalVar{Name: name, Offset: offset, Ty: ty}
}

func TestPointerArithmeticScales(t *testing.T) {
	tests := []struct {
		name   string
		expr   *Binary
		want   string
		wantTy string
	}{
		{
			name:   "pointer plus literal folds",
			expr:   &Binary{Op: OpAdd, Left: local("p", 0, ctypes.Pointer(ctypes.Int())), Right: &IntLit{Value: 3}},
			want:   "(p + 12)",
			wantTy: "int *",
		},
		{
			name:   "literal plus pointer",
			expr:   &Binary{Op: OpAdd, Left: &IntLit{Value: 2}, Right: local("p", 0, ctypes.Pointer(ctypes.Long()))},
			want:   "(16 + p)",
			wantTy: "long *",
		},
		{
			name:   "array minus variable",
			expr:   &Binary{Op: OpSub, Left: local("a", 0, ctypes.NewArray(ctypes.Short(), 0, 4)), Right: local("i", 8, ctypes.Int())},
			want:   "(a - (i * 2))",
			wantTy: "short *",
		},
		{
			name:   "char pointer is not scaled",
			expr:   &Binary{Op: OpAdd, Left: local("s", 0, ctypes.Pointer(ctypes.Char())), Right: local("i", 8, ctypes.Int())},
			want:   "(s + i)",
			wantTy: "char *",
		},
		{
			name:   "pointer minus pointer",
			expr:   &Binary{Op: OpSub, Left: local("p", 0, ctypes.Pointer(ctypes.Int())), Right: local("q", 8, ctypes.Pointer(ctypes.Int()))},
			want:   "(p - q)",
			wantTy: "int *",
		},
		{
			name:   "int plus long widens",
			expr:   &Binary{Op: OpAdd, Left: local("i", 0, ctypes.Int()), Right: local("l", 4, ctypes.Long())},
			want:   "(i + l)",
			wantTy: "long",
		},
		{
			name:   "comparison is int",
			expr:   &Binary{Op: OpLt, Left: local("l", 0, ctypes.Long()), Right: &IntLit{Value: 1}},
			want:   "(l < 1)",
			wantTy: "int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := PopulateType(tt.expr); err != nil {
				t.Fatalf("PopulateType: %v", err)
			}
			var buf bytes.Buffer
			NewPrinter(&buf).printExpr(tt.expr)
			if buf.String() != tt.want {
				t.Errorf("printed %q, want %q", buf.String(), tt.want)
			}
			if got := tt.expr.Type().String(); got != tt.wantTy {
				t.Errorf("type %q, want %q", got, tt.wantTy)
			}
		})
	}
}

func TestPopulateTypeIsIdempotent(t *testing.T) {
	b := &Binary{Op: OpAdd, Left: local("p", 0, ctypes.Pointer(ctypes.Int())), Right: local("i", 8, ctypes.Int())}
	for range 3 {
		if err := PopulateType(b); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	NewPrinter(&buf).printExpr(b)
	if buf.String() != "(p + (i * 4))" {
		t.Errorf("repeated population rescaled: %s", buf.String())
	}
}

func TestMemberAccess(t *testing.T) {
	arena := ctypes.NewArena()
	members, size := ctypes.Layout([]ctypes.Param{{Name: "x", Type: ctypes.Int()}, {Name: "y", Type: ctypes.Long()}})
	point := arena.NewStruct("P", size, members)

	m := &Member{Expr: local("p", 0, point), Name: "y"}
	if err := PopulateType(m); err != nil {
		t.Fatal(err)
	}
	if m.Offset != 4 || m.Type().Kind != ctypes.TLong {
		t.Errorf("member y = offset %d type %s", m.Offset, m.Type())
	}

	// p->x is (*p).x
	arrow := &Member{Expr: &Unary{Op: OpDeref, Operand: local("pp", 0, ctypes.Pointer(point))}, Name: "x"}
	if err := PopulateType(arrow); err != nil {
		t.Fatal(err)
	}
	if arrow.Offset != 0 || arrow.Type().Kind != ctypes.TInt {
		t.Errorf("member x = offset %d type %s", arrow.Offset, arrow.Type())
	}

	errCases := []*Member{
		{Expr: local("p", 0, point), Name: "z"},
		{Expr: local("i", 0, ctypes.Int()), Name: "x"},
		{Expr: local("f", 0, arena.NewIncomplete(ctypes.TStruct, "F")), Name: "x"},
	}
	for _, e := range errCases {
		err := PopulateType(e)
		if !errors.Is(err, diag.ErrUndefined) {
			t.Errorf("PopulateType(%s.%s) error = %v, want undefined", e.Expr.(*LocalVar).Name, e.Name, err)
		}
	}
}

func TestUnaryTypes(t *testing.T) {
	p := local("p", 0, ctypes.Pointer(ctypes.Char()))
	deref := &Unary{Op: OpDeref, Operand: p}
	addr := &Unary{Op: OpAddr, Operand: local("i", 8, ctypes.Int())}
	bad := &Unary{Op: OpDeref, Operand: local("i", 8, ctypes.Int())}
	for _, u := range []*Unary{deref, addr, bad} {
		if err := PopulateType(u); err != nil {
			t.Fatal(err)
		}
	}
	if deref.Type().Kind != ctypes.TChar {
		t.Errorf("*p type = %s", deref.Type())
	}
	if addr.Type().String() != "int *" {
		t.Errorf("&i type = %s", addr.Type())
	}
	if bad.Type() != nil {
		t.Errorf("*i should stay untyped, got %s", bad.Type())
	}
}

func TestArithmeticOnIncompletePointer(t *testing.T) {
	fwd := ctypes.NewArena().NewIncomplete(ctypes.TStruct, "S")
	b := &Binary{Op: OpAdd, Left: local("p", 0, ctypes.Pointer(fwd)), Right: &IntLit{Value: 1}}
	if err := PopulateType(b); !errors.Is(err, diag.ErrUndefined) {
		t.Errorf("error = %v, want undefined", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Member{Expr: &Unary{Op: OpDeref, Operand: local("p", 0, nil)}, Name: "x"}
	c := Clone(orig).(*Member)
	c.Expr.(*Unary).Operand.(*LocalVar).Name = "q"
	if orig.Expr.(*Unary).Operand.(*LocalVar).Name != "p" {
		t.Error("Clone shared a child node")
	}
}

func TestPopulateSwitch(t *testing.T) {
	inner := &Switch{
		Ctrl: local("y", 4, ctypes.Int()),
		Body: &Block{Items: []Stmt{&Case{Value: 1, Body: &Break{}}}},
	}
	sw := &Switch{
		Ctrl: local("x", 0, ctypes.Int()),
		Body: &Block{Items: []Stmt{
			&Case{Value: 1, Body: &ExprStmt{Expr: &IntLit{Value: 0}}},
			&If{Cond: &IntLit{Value: 1}, Then: &Case{Value: 2, Body: &Break{}}},
			inner,
			&Default{Body: &Case{Value: 3}},
		}},
	}
	if err := PopulateSwitch(sw); err != nil {
		t.Fatal(err)
	}
	var vals []int64
	for _, c := range sw.Cases {
		vals = append(vals, c.Value)
	}
	if len(vals) != 3 || vals[0] != 1 || vals[1] != 2 || vals[2] != 3 {
		t.Errorf("case values = %v, want [1 2 3]", vals)
	}
	if sw.Default == nil {
		t.Error("default label not collected")
	}

	dup := &Switch{Ctrl: &IntLit{}, Body: &Block{Items: []Stmt{&Case{Value: 1}, &Case{Value: 1}}}}
	if err := PopulateSwitch(dup); !errors.Is(err, diag.ErrSyntax) {
		t.Errorf("duplicate case error = %v", err)
	}
	twoDefaults := &Switch{Ctrl: &IntLit{}, Body: &Block{Items: []Stmt{&Default{}, &Default{}}}}
	if err := PopulateSwitch(twoDefaults); !errors.Is(err, diag.ErrSyntax) {
		t.Errorf("two defaults error = %v", err)
	}
}

func TestAssignModes(t *testing.T) {
	for _, op := range []string{"=", "+=", "<<=", "|="} {
		m, ok := AssignModeFromString(op)
		if !ok || m.String() != op {
			t.Errorf("AssignModeFromString(%q) = %v, %v", op, m, ok)
		}
	}
	if _, ok := AssignModeFromString("=="); ok {
		t.Error("== is not an assignment")
	}
	if op, ok := AssignShr.BinaryOp(); !ok || op != OpShr {
		t.Errorf("AssignShr.BinaryOp() = %v, %v", op, ok)
	}
	if _, ok := AssignPlain.BinaryOp(); ok {
		t.Error("plain assignment has no operator")
	}
}

func TestPrintProgram(t *testing.T) {
	x := &symtab.Var{Name: "x", Type: ctypes.Int(), Local: true}
	fn := &FuncDef{
		Name:   "f",
		Type:   ctypes.NewFunction(ctypes.Int(), []ctypes.Param{{Name: "x", Type: ctypes.Int()}}),
		Params: []*symtab.Var{x},
		Body: []Stmt{
			&Decl{Inits: []*Assign{{Left: local("y", 4, ctypes.Int()), Right: &IntLit{Value: 1}}}},
			&While{
				Cond: &Binary{Op: OpLt, Left: local("x", 0, ctypes.Int()), Right: &IntLit{Value: 10}},
				Body: &ExprStmt{Expr: &Assign{Mode: AssignAdd, Post: true, Left: local("x", 0, ctypes.Int()), Right: &Binary{Op: OpAdd, Left: local("x", 0, ctypes.Int()), Right: &IntLit{Value: 1}}}},
			},
			&Return{Expr: &Call{Name: "g", Args: []Expr{&StrLit{Index: 0}, local("y", 4, ctypes.Int())}}},
		},
		StackSize: 8,
	}
	prog := &Program{
		Nodes:    []Node{fn},
		Globals:  []*symtab.Var{{Name: "g", Type: ctypes.Pointer(ctypes.Char()), Storage: "static"}},
		Literals: []string{"hi\\n"},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintProgram(prog)
	out := buf.String()
	for _, want := range []string{
		"static char * g;",
		`str[0] = "hi\n";`,
		"int f(int x) /* stack 8 */",
		"  decl (y = 1);",
		"  while ((x < 10))",
		"    post(x = (x + 1));",
		"  return g(str[0], y);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterTypes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Types = true
	p.printExpr(local("c", 0, ctypes.Char()))
	if buf.String() != "c /* char */" {
		t.Errorf("got %q", buf.String())
	}
}

func TestProgramLookups(t *testing.T) {
	prog := &Program{
		Nodes:   []Node{&FuncDef{Name: "main"}, &FuncDef{Name: "g"}},
		Globals: []*symtab.Var{{Name: "n", Type: ctypes.Int()}},
	}
	if len(prog.Funcs()) != 2 {
		t.Errorf("Funcs() = %d", len(prog.Funcs()))
	}
	if fn, ok := prog.Func("g"); !ok || fn.Name != "g" {
		t.Error("Func(g) not found")
	}
	if _, ok := prog.Global("n"); !ok {
		t.Error("Global(n) not found")
	}
	if _, ok := prog.Global("m"); ok {
		t.Error("Global(m) should not exist")
	}
}
