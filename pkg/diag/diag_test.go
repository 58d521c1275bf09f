package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorUnwrapsToSentinel(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{Syntax, ErrSyntax},
		{TypeSpec, ErrTypeSpec},
		{Undefined, ErrUndefined},
		{Limit, ErrLimit},
		{NotImplemented, ErrNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", Errorf(tt.kind, 1, 2, "boom"))
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
			kind, ok := KindOf(err)
			if !ok || kind != tt.kind {
				t.Errorf("KindOf = %v, %v; want %v", kind, ok, tt.kind)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := Errorf(Syntax, 3, 7, "expected %q", ";")
	if got, want := err.Error(), `line 3, col 7: expected ";"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := (&Error{Message: "bare"}).Error(), "bare"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseKind(t *testing.T) {
	for k := Syntax; k <= NotImplemented; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("nope"); ok {
		t.Error("ParseKind accepted an unknown name")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Level: LevelWarning, Line: 2, Column: 5, Message: "useless empty declaration"}
	if got, want := d.String(), "warning: line 2, col 5: useless empty declaration"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	e := FromError(Errorf(Limit, 1, 1, "too many arguments"))
	if e.Level != LevelError || e.Message != "too many arguments" {
		t.Errorf("FromError = %+v", e)
	}
	if got := FromError(errors.New("plain")).String(); got != "error: plain" {
		t.Errorf("FromError(plain) = %q", got)
	}
}
