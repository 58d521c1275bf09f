// Package symtab implements the lexical scope environment of the parser:
// variables, struct and enum tags and enumeration constants, plus the
// global variable table and the string literal pool.
package symtab

import (
	"errors"
	"fmt"

	"github.com/raymyers/subcc/pkg/ctypes"
)

var (
	// ErrRedefined is returned when a name is declared twice in one frame
	ErrRedefined = errors.New("redefinition")
	// ErrDrained is returned by Symbols after the first call
	ErrDrained = errors.New("symbols already drained")
)

// Var is a declared variable. Locals carry a stack offset; globals are
// identified by name.
type Var struct {
	Name    string
	Type    *ctypes.Type
	Offset  int
	Local   bool
	Storage string // static, extern, auto, register or empty
}

func (v *Var) String() string {
	if v.Local {
		return fmt.Sprintf("%s %s @%d", v.Type, v.Name, v.Offset)
	}
	return fmt.Sprintf("%s %s", v.Type, v.Name)
}

// Frame is one lexical nesting level
type Frame struct {
	vars   map[string]*Var
	order  []*Var
	inner  []*Var // variables of already popped child frames
	tags   map[string]*ctypes.Type
	consts map[string]ctypes.EnumMember
	next   int // next free stack offset
	high   int // largest offset reached by this frame or its children
}

func newFrame(base int) *Frame {
	return &Frame{
		vars:   make(map[string]*Var),
		tags:   make(map[string]*ctypes.Type),
		consts: make(map[string]ctypes.EnumMember),
		next:   base,
		high:   base,
	}
}

// Snapshot is what a popped frame leaves behind: its variables in
// declaration order, those of its nested blocks, and the stack size its
// subtree needs
type Snapshot struct {
	Vars      []*Var
	Nested    []*Var
	StackSize int
}

// Env is a stack of frames, innermost last. The first frame is the
// global frame and is never popped.
type Env struct {
	frames   []*Frame
	literals []string
	drained  bool

	// Arena owns every struct and enum tag record of the translation unit
	Arena *ctypes.Arena
}

// New creates an Env holding only the global frame
func New() *Env {
	return &Env{
		frames: []*Frame{newFrame(0)},
		Arena:  ctypes.NewArena(),
	}
}

func (e *Env) current() *Frame {
	return e.frames[len(e.frames)-1]
}

// Depth returns the number of frames, 1 at global scope
func (e *Env) Depth() int {
	return len(e.frames)
}

// IsGlobal reports whether the innermost frame is the global frame
func (e *Env) IsGlobal() bool {
	return len(e.frames) == 1
}

// AddScope pushes a frame. Local frames continue the stack layout of
// their parent so that live variables never share offsets.
func (e *Env) AddScope() {
	base := 0
	if !e.IsGlobal() {
		base = e.current().next
	}
	e.frames = append(e.frames, newFrame(base))
}

// RemoveScope pops the innermost frame and returns its variables
func (e *Env) RemoveScope() Snapshot {
	if e.IsGlobal() {
		panic("symtab: RemoveScope on the global frame")
	}
	f := e.current()
	e.frames = e.frames[:len(e.frames)-1]
	if parent := e.current(); !e.IsGlobal() {
		parent.inner = append(parent.inner, f.order...)
		parent.inner = append(parent.inner, f.inner...)
		if f.high > parent.high {
			parent.high = f.high
		}
	}
	return Snapshot{Vars: f.order, Nested: f.inner, StackSize: f.high}
}

// AddVar declares name in the innermost frame. Locals get the next stack
// offset. Redeclaring a global with an identical type returns the
// existing Var.
func (e *Env) AddVar(name string, ty *ctypes.Type, storage string) (*Var, error) {
	f := e.current()
	if prev, ok := f.vars[name]; ok {
		if e.IsGlobal() && ctypes.Equal(prev.Type, ty) {
			return prev, nil
		}
		return nil, fmt.Errorf("%w of %q", ErrRedefined, name)
	}
	v := &Var{Name: name, Type: ty, Storage: storage}
	if !e.IsGlobal() {
		v.Local = true
		v.Offset = f.next
		f.next += ty.TotalSize()
		if f.next > f.high {
			f.high = f.next
		}
	}
	f.vars[name] = v
	f.order = append(f.order, v)
	return v, nil
}

// FindVar resolves name from the innermost frame outwards
func (e *Env) FindVar(name string) (*Var, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// FindTag resolves a struct or enum tag from the innermost frame outwards
func (e *Env) FindTag(name string) (*ctypes.Type, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if t, ok := e.frames[i].tags[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// FindTagInScope looks name up in the innermost frame only
func (e *Env) FindTagInScope(name string) (*ctypes.Type, bool) {
	t, ok := e.current().tags[name]
	return t, ok
}

// FindConst resolves an enumeration constant from the innermost frame
// outwards
func (e *Env) FindConst(name string) (ctypes.EnumMember, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if c, ok := e.frames[i].consts[name]; ok {
			return c, true
		}
	}
	return ctypes.EnumMember{}, false
}

// AddTag binds a tag in the innermost frame
func (e *Env) AddTag(name string, ty *ctypes.Type) {
	e.current().tags[name] = ty
}

// UpdateTag rebinds a tag in the innermost frame. Later lookups see ty;
// types already handed out keep the record they were built with.
func (e *Env) UpdateTag(name string, ty *ctypes.Type) {
	e.AddTag(name, ty)
}

// AddConst binds an enumeration constant in the innermost frame
func (e *Env) AddConst(member ctypes.EnumMember) error {
	f := e.current()
	if _, ok := f.consts[member.Name]; ok {
		return fmt.Errorf("%w of enumerator %q", ErrRedefined, member.Name)
	}
	f.consts[member.Name] = member
	return nil
}

// AddLiteral appends a string literal to the pool and returns its index
func (e *Env) AddLiteral(text string) int {
	e.literals = append(e.literals, text)
	return len(e.literals) - 1
}

// LiteralMark returns the current size of the literal pool
func (e *Env) LiteralMark() int {
	return len(e.literals)
}

// ResetLiterals drops every literal added since mark was taken. The
// dropped indices are handed out again.
func (e *Env) ResetLiterals(mark int) {
	if mark >= 0 && mark < len(e.literals) {
		e.literals = e.literals[:mark]
	}
}

// Symbols drains the global variable table and the literal pool. It can
// be called once, when parsing is complete.
func (e *Env) Symbols() ([]*Var, []string, error) {
	if e.drained {
		return nil, nil, ErrDrained
	}
	e.drained = true
	globals := e.frames[0].order
	literals := e.literals
	e.frames[0].order = nil
	e.literals = nil
	return globals, literals, nil
}
