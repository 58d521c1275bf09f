// Package ctypes defines the C type descriptors built by the parser and
// the size and offset queries the rest of the front end relies on.
package ctypes

import (
	"iter"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Type
type Kind int

const (
	TVoid Kind = iota
	TChar
	TShort
	TInt
	TLong
	TPtr
	TArray
	TStruct
	TEnum
	TFunc
)

func (k Kind) String() string {
	names := []string{"void", "char", "short", "int", "long", "ptr", "array", "struct", "enum", "func"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// PointerSize is the size of every pointer type
const PointerSize = 8

// Type is a C type. Pointers and arrays have an Elem, struct and enum
// types refer to a Tag record owned by an Arena.
type Type struct {
	Kind     Kind
	Unsigned bool
	Elem     *Type
	Len      int
	Tag      *Tag
	Params   []Param
	Return   *Type
}

// Param is a named function parameter
type Param struct {
	Name string
	Type *Type
}

// Member is a struct member at a fixed byte offset
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// EnumMember is an enumeration constant
type EnumMember struct {
	Name  string
	Value int32
}

// Scalar constructors

func Int() *Type   { return &Type{Kind: TInt} }
func UInt() *Type  { return &Type{Kind: TInt, Unsigned: true} }
func Char() *Type  { return &Type{Kind: TChar} }
func Short() *Type { return &Type{Kind: TShort} }
func Long() *Type  { return &Type{Kind: TLong} }
func Void() *Type  { return &Type{Kind: TVoid} }

// Pointer returns a pointer to elem
func Pointer(elem *Type) *Type {
	return &Type{Kind: TPtr, Elem: elem}
}

// NewFromType wraps base in refs pointer layers
func NewFromType(base *Type, refs int) *Type {
	t := base
	for i := 0; i < refs; i++ {
		t = Pointer(t)
	}
	return t
}

// NewArray returns an array of count elements of base wrapped in refs
// pointer layers
func NewArray(base *Type, refs, count int) *Type {
	return &Type{Kind: TArray, Elem: NewFromType(base, refs), Len: count}
}

// NewFunction returns a function type
func NewFunction(ret *Type, params []Param) *Type {
	return &Type{Kind: TFunc, Return: ret, Params: params}
}

// IsStruct reports whether t is a struct type, complete or not
func (t *Type) IsStruct() bool { return t != nil && t.Kind == TStruct }

// IsEnum reports whether t is an enum type, complete or not
func (t *Type) IsEnum() bool { return t != nil && t.Kind == TEnum }

// IsArray reports whether t is an array type
func (t *Type) IsArray() bool { return t != nil && t.Kind == TArray }

// IsVoid reports whether t is void
func (t *Type) IsVoid() bool { return t != nil && t.Kind == TVoid }

// IsFunc reports whether t is a function type
func (t *Type) IsFunc() bool { return t != nil && t.Kind == TFunc }

// IsPointer reports whether t is a pointer or an array, the types that
// take part in pointer arithmetic and dereference
func (t *Type) IsPointer() bool {
	return t != nil && (t.Kind == TPtr || t.Kind == TArray)
}

// IsIncomplete reports whether t is a struct or enum tag whose body has
// not been seen
func (t *Type) IsIncomplete() bool {
	return t != nil && t.Tag != nil && !t.Tag.Complete
}

// TotalSize returns the size in bytes of an object of type t. Incomplete
// tags and functions have no size and report 0.
func (t *Type) TotalSize() int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case TVoid, TChar:
		return 1
	case TShort:
		return 2
	case TInt:
		return 4
	case TLong, TPtr:
		return 8
	case TArray:
		return t.Len * t.Elem.TotalSize()
	case TStruct:
		if !t.Tag.Complete {
			return 0
		}
		return t.Tag.Size
	case TEnum:
		if !t.Tag.Complete {
			return 0
		}
		return 4
	}
	return 0
}

// BaseSize returns the size of the pointee for pointers and arrays, the
// scale factor of pointer arithmetic, and the size of t otherwise
func (t *Type) BaseSize() int {
	if t.IsPointer() {
		return t.Elem.TotalSize()
	}
	return t.TotalSize()
}

// FuncParams iterates over the parameters of a function type in order
func (t *Type) FuncParams() iter.Seq2[string, *Type] {
	return func(yield func(string, *Type) bool) {
		if !t.IsFunc() {
			return
		}
		for _, p := range t.Params {
			if !yield(p.Name, p.Type) {
				return
			}
		}
	}
}

// Member returns the struct member called name
func (t *Type) Member(name string) (Member, bool) {
	if !t.IsStruct() {
		return Member{}, false
	}
	for _, m := range t.Tag.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Decay returns the pointer type an array converts to, t otherwise
func (t *Type) Decay() *Type {
	if t.IsArray() {
		return Pointer(t.Elem)
	}
	return t
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	switch t.Kind {
	case TPtr:
		return t.Elem.String() + " *"
	case TArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.Len) + "]"
	case TStruct, TEnum:
		s := t.Kind.String() + " " + t.Tag.displayName()
		if !t.Tag.Complete {
			s += " (incomplete)"
		}
		return s
	case TFunc:
		params := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			params = append(params, p.Type.String())
		}
		ret := "int"
		if t.Return != nil {
			ret = t.Return.String()
		}
		return ret + " (" + strings.Join(params, ", ") + ")"
	}
	if t.Unsigned {
		return "unsigned " + t.Kind.String()
	}
	return t.Kind.String()
}

// Equal checks if two types are equal. Tagged types are equal when they
// share the same tag record.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TPtr:
		return Equal(a.Elem, b.Elem)
	case TArray:
		return a.Len == b.Len && Equal(a.Elem, b.Elem)
	case TStruct, TEnum:
		return a.Tag == b.Tag
	case TFunc:
		if len(a.Params) != len(b.Params) || !Equal(a.Return, b.Return) {
			return false
		}
		for i, p := range a.Params {
			if !Equal(p.Type, b.Params[i].Type) {
				return false
			}
		}
		return true
	}
	return a.Unsigned == b.Unsigned
}
