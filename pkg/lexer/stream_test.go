package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/raymyers/subcc/pkg/diag"
)

func mustStream(t *testing.T, input string) *Stream {
	t.Helper()
	s, err := NewStream(input)
	if err != nil {
		t.Fatalf("NewStream(%q): %v", input, err)
	}
	return s
}

func TestStreamConsume(t *testing.T) {
	s := mustStream(t, "return x ;")
	if s.Consume("x") {
		t.Error("Consume matched before reaching the token")
	}
	if !s.Consume("return") {
		t.Fatal("Consume(return) = false")
	}
	if s.Consume("x") {
		t.Error("Consume must not match identifiers")
	}
	name, ok := s.ConsumeIdent()
	if !ok || name != "x" {
		t.Fatalf("ConsumeIdent = %q, %v", name, ok)
	}
	if err := s.Expect(";"); err != nil {
		t.Fatalf("Expect(;): %v", err)
	}
	if !s.AtEOF() {
		t.Error("expected EOF")
	}
	// EOF is sticky
	if s.Consume(";") || !s.AtEOF() {
		t.Error("EOF must stay current")
	}
}

func TestStreamExpectFailure(t *testing.T) {
	s := mustStream(t, "int x")
	s.ConsumeType()
	s.ConsumeIdent()
	err := s.Expect(";")
	if !errors.Is(err, diag.ErrSyntax) {
		t.Fatalf("Expect error = %v, want syntax", err)
	}
	if !strings.Contains(err.Error(), `expected ";"`) || !strings.Contains(err.Error(), "end of file") {
		t.Errorf("message %q should name the expected token and EOF", err.Error())
	}
}

func TestStreamNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"42", 42},
		{"0x2a", 42},
		{"052", 42},
		{"42L", 42},
		{"'*'", 42},
		{`'\n'`, 10},
		{`'\0'`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := mustStream(t, tt.input)
			got, err := s.ExpectNumber()
			if err != nil {
				t.Fatalf("ExpectNumber: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpectNumber = %d, want %d", got, tt.want)
			}
		})
	}

	s := mustStream(t, "0xZZ")
	if _, err := s.ExpectNumber(); !errors.Is(err, diag.ErrSyntax) {
		t.Errorf("ExpectNumber(0xZZ) error = %v", err)
	}
	s = mustStream(t, "x")
	if _, err := s.ExpectNumber(); !errors.Is(err, diag.ErrSyntax) {
		t.Errorf("ExpectNumber(x) error = %v", err)
	}
}

func TestStreamClasses(t *testing.T) {
	s := mustStream(t, `static const unsigned long *p += "s"`)
	if kw, ok := s.ConsumeStorage(); !ok || kw != "static" {
		t.Errorf("ConsumeStorage = %q, %v", kw, ok)
	}
	if _, ok := s.ConsumeType(); ok {
		t.Error("ConsumeType matched a qualifier")
	}
	if kw, ok := s.ConsumeTypeQual(); !ok || kw != "const" {
		t.Errorf("ConsumeTypeQual = %q, %v", kw, ok)
	}
	for _, want := range []string{"unsigned", "long"} {
		if kw, ok := s.ConsumeType(); !ok || kw != want {
			t.Errorf("ConsumeType = %q, %v; want %q", kw, ok, want)
		}
	}
	if !s.Consume("*") {
		t.Fatal("Consume(*) = false")
	}
	s.ConsumeIdent()
	if op, ok := s.ConsumeAssignOp(); !ok || op != "+=" {
		t.Errorf("ConsumeAssignOp = %q, %v", op, ok)
	}
	if str, ok := s.ConsumeStr(); !ok || str != "s" {
		t.Errorf("ConsumeStr = %q, %v", str, ok)
	}
}

func TestStreamIsFunc(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"int main() { return 0; }", true},
		{"int *f(int a, char *b) {}", true},
		{"struct P f(struct P p) { return p; }", true},
		{"int f(int a);", false},
		{"int x;", false},
		{"int a[3];", false},
		{"struct S { int a; } s;", false},
		{"struct S { int a; } *f(void) { return 0; }", true},
		{"struct S { struct T { int b; } t; } f() {}", true},
		{"struct S { int a; ", false},
		{"enum E { A, B };", false},
		{"int g = f(1);", false},
		{"int f(", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := mustStream(t, tt.input)
			if got := s.IsFunc(); got != tt.want {
				t.Errorf("IsFunc() = %v, want %v", got, tt.want)
			}
			if s.pos != 0 {
				t.Error("IsFunc must not consume tokens")
			}
		})
	}
}

func TestFromTokensAppendsEOF(t *testing.T) {
	s := FromTokens([]Token{{Type: TokenIdent, Literal: "x", Line: 4}})
	if _, ok := s.ConsumeIdent(); !ok {
		t.Fatal("ConsumeIdent = false")
	}
	if !s.AtEOF() || s.Peek().Line != 4 {
		t.Errorf("expected EOF on line 4, got %+v", s.Peek())
	}
}

func TestStreamPeekAt(t *testing.T) {
	s := mustStream(t, "sizeof ( int )")
	if got := s.PeekAt(2).Type; got != TokenInt {
		t.Errorf("PeekAt(2) = %v, want int", got)
	}
	if got := s.PeekAt(10).Type; got != TokenEOF {
		t.Errorf("PeekAt past end = %v, want EOF", got)
	}
	if s.Peek().Type != TokenSizeof {
		t.Error("PeekAt must not advance")
	}
}
