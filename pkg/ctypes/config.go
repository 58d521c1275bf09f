package ctypes

import (
	"errors"
	"fmt"
)

// ErrNoSpecifier is returned when a declaration names no base type keyword
var ErrNoSpecifier = errors.New("expected a type specifier")

// Config accumulates the elementary type keywords of a declaration
// specifier. Keyword order does not matter: "long unsigned int" and
// "unsigned long" reduce to the same type.
type Config struct {
	counts map[string]int
	seen   []string
}

// limits is the most times each keyword may appear
var limits = map[string]int{
	"void":     1,
	"char":     1,
	"short":    1,
	"int":      1,
	"long":     2,
	"signed":   1,
	"unsigned": 1,
}

// Add records one keyword
func (c *Config) Add(kw string) error {
	limit, ok := limits[kw]
	if !ok {
		return fmt.Errorf("%q is not an elementary type specifier", kw)
	}
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if c.counts[kw] == limit {
		return fmt.Errorf("redundant %q in type specifier", kw)
	}
	c.counts[kw]++
	c.seen = append(c.seen, kw)
	return nil
}

// Empty reports whether no keyword has been added
func (c *Config) Empty() bool {
	return len(c.seen) == 0
}

// NewFromConfig reduces the accumulated keywords to one base type
func NewFromConfig(c Config) (*Type, error) {
	if c.Empty() {
		return nil, ErrNoSpecifier
	}
	n := c.counts
	if n["signed"] > 0 && n["unsigned"] > 0 {
		return nil, fmt.Errorf("both signed and unsigned in type specifier %v", c.seen)
	}
	unsigned := n["unsigned"] > 0
	sign := n["signed"] + n["unsigned"]

	var kind Kind
	switch {
	case n["void"] == 1:
		if len(c.seen) != 1 {
			return nil, fmt.Errorf("void cannot be combined with other type specifiers %v", c.seen)
		}
		return Void(), nil
	case n["char"] == 1:
		if len(c.seen) != 1+sign {
			return nil, fmt.Errorf("invalid type specifier %v", c.seen)
		}
		kind = TChar
	case n["short"] == 1:
		if n["long"] > 0 || len(c.seen) != 1+sign+n["int"] {
			return nil, fmt.Errorf("invalid type specifier %v", c.seen)
		}
		kind = TShort
	case n["long"] > 0:
		if len(c.seen) != n["long"]+sign+n["int"] {
			return nil, fmt.Errorf("invalid type specifier %v", c.seen)
		}
		kind = TLong
	default:
		// int, signed, unsigned and their combinations
		kind = TInt
	}
	return &Type{Kind: kind, Unsigned: unsigned}, nil
}
