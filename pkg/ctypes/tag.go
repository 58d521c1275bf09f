package ctypes

import (
	"fmt"
	"strconv"
)

// Tag is the shared record behind a struct or enum type. Every Type that
// names the tag points at the same record, so completing a forward
// declaration is observed by all earlier references.
type Tag struct {
	ID       int
	Name     string // empty for anonymous tags
	Kind     Kind   // TStruct or TEnum
	Complete bool

	Size        int          // struct only
	Members     []Member     // struct only
	Enumerators []EnumMember // enum only
}

func (t *Tag) displayName() string {
	if t.Name == "" {
		return "<anonymous#" + strconv.Itoa(t.ID) + ">"
	}
	return t.Name
}

// Arena owns the tag records of one translation unit
type Arena struct {
	tags []*Tag
}

// NewArena creates an empty Arena
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) alloc(kind Kind, name string) *Tag {
	tag := &Tag{ID: len(a.tags), Name: name, Kind: kind}
	a.tags = append(a.tags, tag)
	return tag
}

// NewIncomplete allocates a forward-declared struct or enum tag
func (a *Arena) NewIncomplete(kind Kind, name string) *Type {
	if kind != TStruct && kind != TEnum {
		panic(fmt.Sprintf("ctypes: incomplete %v type", kind))
	}
	return &Type{Kind: kind, Tag: a.alloc(kind, name)}
}

// NewStruct allocates a complete struct from a member list whose offsets
// were already assigned
func (a *Arena) NewStruct(name string, size int, members []Member) *Type {
	t := a.NewIncomplete(TStruct, name)
	CompleteStruct(t, size, members)
	return t
}

// NewEnum allocates a complete enum
func (a *Arena) NewEnum(name string, members []EnumMember) *Type {
	t := a.NewIncomplete(TEnum, name)
	CompleteEnum(t, members)
	return t
}

// CompleteStruct fills in the body of an incomplete struct tag in place
func CompleteStruct(t *Type, size int, members []Member) {
	t.Tag.Size = size
	t.Tag.Members = members
	t.Tag.Complete = true
}

// CompleteEnum fills in the body of an incomplete enum tag in place
func CompleteEnum(t *Type, members []EnumMember) {
	t.Tag.Enumerators = members
	t.Tag.Complete = true
}

// Layout assigns append-order offsets with no padding and returns the
// resulting members and total size
func Layout(fields []Param) ([]Member, int) {
	members := make([]Member, 0, len(fields))
	size := 0
	for _, f := range fields {
		members = append(members, Member{Name: f.Name, Type: f.Type, Offset: size})
		size += f.Type.TotalSize()
	}
	return members, size
}
