package ctypes

import (
	"errors"
	"testing"
)

func TestTypeStrings(t *testing.T) {
	arena := NewArena()
	point := arena.NewStruct("P", 8, nil)
	fwd := arena.NewIncomplete(TEnum, "E")

	tests := []struct {
		name    string
		typ     *Type
		wantStr string
	}{
		{"void", Void(), "void"},
		{"int", Int(), "int"},
		{"unsigned int", UInt(), "unsigned int"},
		{"char", Char(), "char"},
		{"short", Short(), "short"},
		{"long", Long(), "long"},
		{"pointer to int", Pointer(Int()), "int *"},
		{"pointer to pointer", NewFromType(Char(), 2), "char * *"},
		{"array of int", NewArray(Int(), 0, 10), "int[10]"},
		{"array of pointers", NewArray(Int(), 1, 3), "int *[3]"},
		{"struct", point, "struct P"},
		{"incomplete enum", fwd, "enum E (incomplete)"},
		{"function", NewFunction(Int(), []Param{{"a", Int()}, {"s", Pointer(Char())}}), "int (int, char *)"},
		{"nil", nil, "<untyped>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestSizes(t *testing.T) {
	arena := NewArena()
	tests := []struct {
		name  string
		typ   *Type
		total int
		base  int
	}{
		{"char", Char(), 1, 1},
		{"short", Short(), 2, 2},
		{"int", Int(), 4, 4},
		{"long", Long(), 8, 8},
		{"int *", Pointer(Int()), 8, 4},
		{"void *", Pointer(Void()), 8, 1},
		{"long[3]", NewArray(Long(), 0, 3), 24, 8},
		{"char *[4]", NewArray(Char(), 1, 4), 32, 8},
		{"enum", arena.NewEnum("E", []EnumMember{{"A", 0}}), 4, 4},
		{"incomplete struct", arena.NewIncomplete(TStruct, "S"), 0, 0},
		{"function", NewFunction(Int(), nil), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.TotalSize(); got != tt.total {
				t.Errorf("TotalSize() = %d, want %d", got, tt.total)
			}
			if got := tt.typ.BaseSize(); got != tt.base {
				t.Errorf("BaseSize() = %d, want %d", got, tt.base)
			}
		})
	}
}

func TestLayoutHasNoPadding(t *testing.T) {
	fields := []Param{{"a", Char()}, {"b", Long()}, {"c", Short()}, {"d", NewArray(Int(), 0, 2)}}
	members, size := Layout(fields)
	wantOffsets := []int{0, 1, 9, 11}
	for i, m := range members {
		if m.Offset != wantOffsets[i] {
			t.Errorf("member %s offset = %d, want %d", m.Name, m.Offset, wantOffsets[i])
		}
	}
	if size != 19 {
		t.Errorf("size = %d, want 19", size)
	}

	st := NewArena().NewStruct("S", size, members)
	m, ok := st.Member("c")
	if !ok || m.Offset != 9 || m.Type.Kind != TShort {
		t.Errorf("Member(c) = %+v, %v", m, ok)
	}
	if _, ok := st.Member("zz"); ok {
		t.Error("Member(zz) should not exist")
	}
}

func TestCompletingTagIsSeenByEarlierReferences(t *testing.T) {
	arena := NewArena()
	fwd := arena.NewIncomplete(TStruct, "Node")
	ptr := Pointer(fwd)
	if !ptr.Elem.IsIncomplete() {
		t.Fatal("forward tag should be incomplete")
	}

	members, size := Layout([]Param{{"val", Int()}, {"next", ptr}})
	CompleteStruct(fwd, size, members)

	if ptr.Elem.IsIncomplete() {
		t.Error("earlier pointer should observe the completed tag")
	}
	if got := ptr.BaseSize(); got != 12 {
		t.Errorf("BaseSize() through earlier pointer = %d, want 12", got)
	}
}

func TestTypeEquality(t *testing.T) {
	arena := NewArena()
	a := arena.NewStruct("A", 4, nil)
	a2 := &Type{Kind: TStruct, Tag: a.Tag}
	b := arena.NewStruct("A", 4, nil)

	tests := []struct {
		name  string
		a, b  *Type
		equal bool
	}{
		{"int == int", Int(), Int(), true},
		{"int != unsigned int", Int(), UInt(), false},
		{"int != long", Int(), Long(), false},
		{"pointer to int == pointer to int", Pointer(Int()), Pointer(Int()), true},
		{"pointer to int != pointer to char", Pointer(Int()), Pointer(Char()), false},
		{"array[10] != array[20]", NewArray(Int(), 0, 10), NewArray(Int(), 0, 20), false},
		{"same tag record", a, a2, true},
		{"same name, different record", a, b, false},
		{"nil == nil", nil, nil, true},
		{"nil != int", nil, Int(), false},
		{"func", NewFunction(Int(), []Param{{"x", Int()}}), NewFunction(Int(), []Param{{"y", Int()}}), true},
		{"func arity", NewFunction(Int(), nil), NewFunction(Int(), []Param{{"y", Int()}}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.equal {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
		})
	}
}

func TestFuncParams(t *testing.T) {
	fn := NewFunction(Void(), []Param{{"a", Int()}, {"b", Char()}, {"c", Long()}})
	var names []string
	for name, ty := range fn.FuncParams() {
		if ty == nil {
			t.Fatalf("param %s has no type", name)
		}
		names = append(names, name)
		if name == "b" {
			break
		}
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("FuncParams yielded %v", names)
	}
	for range Int().FuncParams() {
		t.Error("non-function should yield nothing")
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		keywords []string
		want     string
	}{
		{[]string{"int"}, "int"},
		{[]string{"char"}, "char"},
		{[]string{"void"}, "void"},
		{[]string{"unsigned", "char"}, "unsigned char"},
		{[]string{"short", "int"}, "short"},
		{[]string{"long", "unsigned", "int"}, "unsigned long"},
		{[]string{"long", "long"}, "long"},
		{[]string{"signed"}, "int"},
		{[]string{"unsigned"}, "unsigned int"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var cfg Config
			for _, kw := range tt.keywords {
				if err := cfg.Add(kw); err != nil {
					t.Fatalf("Add(%q): %v", kw, err)
				}
			}
			ty, err := NewFromConfig(cfg)
			if err != nil {
				t.Fatalf("NewFromConfig: %v", err)
			}
			if ty.String() != tt.want {
				t.Errorf("got %q, want %q", ty.String(), tt.want)
			}
		})
	}
}

func TestNewFromConfigErrors(t *testing.T) {
	tests := [][]string{
		{"char", "int"},
		{"void", "int"},
		{"short", "long"},
		{"signed", "unsigned"},
		{"short", "char"},
	}
	for _, keywords := range tests {
		var cfg Config
		for _, kw := range keywords {
			if err := cfg.Add(kw); err != nil {
				t.Fatalf("Add(%q): %v", kw, err)
			}
		}
		if _, err := NewFromConfig(cfg); err == nil {
			t.Errorf("NewFromConfig(%v) should fail", keywords)
		}
	}

	var cfg Config
	if _, err := NewFromConfig(cfg); !errors.Is(err, ErrNoSpecifier) {
		t.Errorf("empty config error = %v, want ErrNoSpecifier", err)
	}
	if err := cfg.Add("int"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Add("int"); err == nil {
		t.Error("second int should be redundant")
	}
	if err := cfg.Add("float"); err == nil {
		t.Error("float is not supported")
	}
	cfg = Config{}
	for _, kw := range []string{"long", "long"} {
		if err := cfg.Add(kw); err != nil {
			t.Fatal(err)
		}
	}
	if err := cfg.Add("long"); err == nil {
		t.Error("long long long should be rejected")
	}
}
