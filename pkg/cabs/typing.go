package cabs

import (
	"github.com/raymyers/subcc/pkg/ctypes"
	"github.com/raymyers/subcc/pkg/diag"
)

// PopulateType resolves the type of e, populating untyped operands first.
// It is idempotent: a node whose type is already set is left alone.
// Errors carry no position; the caller attaches one.
func PopulateType(e Expr) error {
	switch n := e.(type) {
	case *Binary:
		if n.Ty != nil {
			return nil
		}
		if err := PopulateType(n.Left); err != nil {
			return err
		}
		if err := PopulateType(n.Right); err != nil {
			return err
		}
		return populateBinary(n)

	case *Unary:
		if n.Ty != nil {
			return nil
		}
		if err := PopulateType(n.Operand); err != nil {
			return err
		}
		t := n.Operand.Type()
		switch n.Op {
		case OpDeref:
			// dereferencing a non-pointer is left untyped for codegen to reject
			if t.IsPointer() {
				n.Ty = t.Elem
			}
		case OpAddr:
			if t != nil {
				n.Ty = ctypes.Pointer(t)
			}
		case OpBitNot:
			n.Ty = arithType(t, ctypes.Int())
		}
		return nil

	case *Assign:
		if n.Ty != nil {
			return nil
		}
		if err := PopulateType(n.Left); err != nil {
			return err
		}
		if err := PopulateType(n.Right); err != nil {
			return err
		}
		n.Ty = n.Left.Type()
		return nil

	case *Member:
		if n.Ty != nil {
			return nil
		}
		if err := PopulateType(n.Expr); err != nil {
			return err
		}
		st := n.Expr.Type()
		if !st.IsStruct() {
			return diag.Errorf(diag.Undefined, 0, 0, "member %q of non-struct type %s", n.Name, st)
		}
		if st.IsIncomplete() {
			return diag.Errorf(diag.Undefined, 0, 0, "member %q of incomplete type %s", n.Name, st)
		}
		m, ok := st.Member(n.Name)
		if !ok {
			return diag.Errorf(diag.Undefined, 0, 0, "no member named %q in %s", n.Name, st)
		}
		n.Offset = m.Offset
		n.Ty = m.Type
		return nil

	case *Call:
		for _, arg := range n.Args {
			if err := PopulateType(arg); err != nil {
				return err
			}
		}
		if n.Ty == nil {
			n.Ty = ctypes.Int()
		}
		return nil
	}
	return nil
}

func populateBinary(n *Binary) error {
	lt, rt := n.Left.Type(), n.Right.Type()
	switch n.Op {
	case OpLt, OpLe, OpEq, OpNe, OpAnd, OpOr:
		n.Ty = ctypes.Int()
		return nil
	case OpAdd, OpSub:
		switch {
		case lt.IsPointer() && rt.IsPointer():
			n.Ty = lt.Decay()
			return nil
		case lt.IsPointer():
			scaled, err := scale(n.Right, lt)
			if err != nil {
				return err
			}
			n.Right = scaled
			n.Ty = lt.Decay()
			return nil
		case rt.IsPointer():
			scaled, err := scale(n.Left, rt)
			if err != nil {
				return err
			}
			n.Left = scaled
			n.Ty = rt.Decay()
			return nil
		}
	}
	n.Ty = arithType(lt, rt)
	return nil
}

// scale multiplies the integer operand of pointer arithmetic by the size
// of the pointee. Literal operands are folded.
func scale(e Expr, ptr *ctypes.Type) (Expr, error) {
	size := ptr.BaseSize()
	if size == 0 {
		return nil, diag.Errorf(diag.Undefined, 0, 0, "arithmetic on pointer to incomplete type %s", ptr.Elem)
	}
	if size == 1 {
		return e, nil
	}
	if lit, ok := e.(*IntLit); ok {
		return &IntLit{Value: lit.Value * int64(size)}, nil
	}
	return &Binary{Op: OpMul, Left: e, Right: &IntLit{Value: int64(size)}, Ty: arithType(e.Type(), ctypes.Int())}, nil
}

// arithType is the result type of an integer operation: long when either
// operand is 8 bytes wide, int otherwise
func arithType(a, b *ctypes.Type) *ctypes.Type {
	unsigned := isUnsigned(a) || isUnsigned(b)
	if a.TotalSize() == 8 || b.TotalSize() == 8 {
		return &ctypes.Type{Kind: ctypes.TLong, Unsigned: unsigned}
	}
	return &ctypes.Type{Kind: ctypes.TInt, Unsigned: unsigned}
}

func isUnsigned(t *ctypes.Type) bool {
	return t != nil && t.Unsigned
}

// Clone returns a deep copy of an expression tree. Compound assignment
// uses it to re-evaluate the left-hand side inside the desugared operand.
func Clone(e Expr) Expr {
	switch n := e.(type) {
	case *IntLit:
		c := *n
		return &c
	case *StrLit:
		c := *n
		return &c
	case *LocalVar:
		c := *n
		return &c
	case *GlobalVar:
		c := *n
		return &c
	case *Binary:
		return &Binary{Op: n.Op, Left: Clone(n.Left), Right: Clone(n.Right), Ty: n.Ty}
	case *Unary:
		return &Unary{Op: n.Op, Operand: Clone(n.Operand), Ty: n.Ty}
	case *Assign:
		return &Assign{Mode: n.Mode, Left: Clone(n.Left), Right: Clone(n.Right), Post: n.Post, Ty: n.Ty}
	case *Member:
		return &Member{Expr: Clone(n.Expr), Name: n.Name, Offset: n.Offset, Ty: n.Ty}
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Clone(a)
		}
		return &Call{Name: n.Name, Args: args, Ty: n.Ty}
	}
	return e
}

// PopulateSwitch collects the case and default labels of the switch body
// into its dispatch table. Labels inside a nested switch belong to that
// switch and are skipped.
func PopulateSwitch(s *Switch) error {
	s.Cases = nil
	s.Default = nil
	seen := make(map[int64]bool)
	var walk func(Stmt) error
	walk = func(st Stmt) error {
		switch n := st.(type) {
		case *Case:
			if seen[n.Value] {
				return diag.Errorf(diag.Syntax, 0, 0, "duplicate case value %d", n.Value)
			}
			seen[n.Value] = true
			s.Cases = append(s.Cases, n)
			return walk(n.Body)
		case *Default:
			if s.Default != nil {
				return diag.Errorf(diag.Syntax, 0, 0, "multiple default labels in one switch")
			}
			s.Default = n
			return walk(n.Body)
		case *Block:
			for _, item := range n.Items {
				if err := walk(item); err != nil {
					return err
				}
			}
		case *If:
			if err := walk(n.Then); err != nil {
				return err
			}
			return walk(n.Else)
		case *While:
			return walk(n.Body)
		case *DoWhile:
			return walk(n.Body)
		case *For:
			return walk(n.Body)
		}
		return nil
	}
	return walk(s.Body)
}
