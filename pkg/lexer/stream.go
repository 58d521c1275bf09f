package lexer

import (
	"strconv"
	"strings"

	"github.com/raymyers/subcc/pkg/diag"
)

// Stream is an ordered token sequence with one token of lookahead for
// consumption plus arbitrary lookahead for IsFunc. It is owned by a
// single parser and advanced sequentially.
type Stream struct {
	toks []Token
	pos  int
}

// NewStream tokenizes input into a Stream
func NewStream(input string) (*Stream, error) {
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return FromTokens(toks), nil
}

// FromTokens wraps an already lexed token slice. A trailing EOF token is
// appended when missing.
func FromTokens(toks []Token) *Stream {
	if len(toks) == 0 || toks[len(toks)-1].Type != TokenEOF {
		var line int
		if len(toks) > 0 {
			line = toks[len(toks)-1].Line
		}
		toks = append(toks, Token{Type: TokenEOF, Line: line})
	}
	return &Stream{toks: toks}
}

// Peek returns the next token without consuming it
func (s *Stream) Peek() Token {
	return s.toks[s.pos]
}

// PeekAt returns the token n positions ahead, EOF past the end
func (s *Stream) PeekAt(n int) Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+n]
}

// AtEOF reports whether every token has been consumed
func (s *Stream) AtEOF() bool {
	return s.Peek().Type == TokenEOF
}

func isReserved(tok Token) bool {
	switch tok.Class() {
	case ClassEOF, ClassIdent, ClassNumber, ClassString, ClassIllegal:
		return false
	}
	return true
}

// Consume advances past the next token iff it is the reserved symbol or
// keyword lit.
func (s *Stream) Consume(lit string) bool {
	tok := s.Peek()
	if isReserved(tok) && tok.Literal == lit {
		s.pos++
		return true
	}
	return false
}

// Expect consumes lit or fails with a syntax error naming it
func (s *Stream) Expect(lit string) error {
	if s.Consume(lit) {
		return nil
	}
	return s.unexpected(strconv.Quote(lit))
}

func (s *Stream) unexpected(want string) error {
	tok := s.Peek()
	got := strconv.Quote(tok.Literal)
	if tok.Type == TokenEOF {
		got = "end of file"
	}
	return diag.Errorf(diag.Syntax, tok.Line, tok.Column, "expected %s, got %s", want, got)
}

// ExpectNumber consumes an integer or character literal
func (s *Stream) ExpectNumber() (int64, error) {
	tok := s.Peek()
	if tok.Class() != ClassNumber {
		return 0, s.unexpected("number")
	}
	var (
		v   int64
		err error
	)
	if tok.Type == TokenCharLit {
		v, err = charValue(tok.Literal)
	} else {
		v, err = intValue(tok.Literal)
	}
	if err != nil {
		return 0, diag.Errorf(diag.Syntax, tok.Line, tok.Column, "invalid number %q", tok.Literal)
	}
	s.pos++
	return v, nil
}

// ExpectIdent consumes an identifier and returns its name
func (s *Stream) ExpectIdent() (string, error) {
	if name, ok := s.ConsumeIdent(); ok {
		return name, nil
	}
	return "", s.unexpected("identifier")
}

// ConsumeIdent consumes an identifier if one is next
func (s *Stream) ConsumeIdent() (string, bool) {
	return s.consumeClass(ClassIdent)
}

// ConsumeStr consumes a string literal if one is next
func (s *Stream) ConsumeStr() (string, bool) {
	return s.consumeClass(ClassString)
}

// ConsumeType consumes a type-specifier keyword (struct and enum included)
func (s *Stream) ConsumeType() (string, bool) {
	return s.consumeClass(ClassType)
}

// ConsumeTypeQual consumes const or volatile
func (s *Stream) ConsumeTypeQual() (string, bool) {
	return s.consumeClass(ClassTypeQualifier)
}

// ConsumeStorage consumes a storage-class keyword
func (s *Stream) ConsumeStorage() (string, bool) {
	return s.consumeClass(ClassStorage)
}

// ConsumeAssignOp consumes = or a compound assignment operator
func (s *Stream) ConsumeAssignOp() (string, bool) {
	return s.consumeClass(ClassAssignOp)
}

func (s *Stream) consumeClass(c Class) (string, bool) {
	tok := s.Peek()
	if tok.Class() != c {
		return "", false
	}
	s.pos++
	return tok.Literal, true
}

// IsFunc looks ahead, without consuming, for the shape of a function
// definition: an identifier followed by a parenthesized list and then a
// '{', before any ';' or '=' ends the declaration. Struct and enum bodies
// in the specifier are skipped whole.
func (s *Stream) IsFunc() bool {
	for i := s.pos; i < len(s.toks)-1; i++ {
		switch s.toks[i].Type {
		case TokenSemicolon, TokenAssign, TokenEOF:
			return false
		case TokenLBrace:
			depth := 0
			for ; i < len(s.toks)-1; i++ {
				if s.toks[i].Type == TokenLBrace {
					depth++
				} else if s.toks[i].Type == TokenRBrace {
					depth--
					if depth == 0 {
						break
					}
				}
			}
		case TokenIdent:
			if s.toks[i+1].Type != TokenLParen {
				continue
			}
			depth := 0
			for j := i + 1; j < len(s.toks); j++ {
				switch s.toks[j].Type {
				case TokenLParen:
					depth++
				case TokenRParen:
					depth--
					if depth == 0 {
						return j+1 < len(s.toks) && s.toks[j+1].Type == TokenLBrace
					}
				case TokenEOF:
					return false
				}
			}
			return false
		}
	}
	return false
}

func intValue(lit string) (int64, error) {
	lit = strings.TrimRight(lit, "uUlL")
	v, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		u, uerr := strconv.ParseUint(lit, 0, 64)
		if uerr != nil {
			return 0, err
		}
		return int64(u), nil
	}
	return v, nil
}

func charValue(lit string) (int64, error) {
	// short octal escapes such as '\0', which UnquoteChar rejects
	if len(lit) >= 2 && len(lit) <= 4 && lit[0] == '\\' && strings.Trim(lit[1:], "01234567") == "" {
		v, err := strconv.ParseInt(lit[1:], 8, 64)
		return v, err
	}
	v, _, tail, err := strconv.UnquoteChar(lit, '\'')
	if err != nil {
		return 0, err
	}
	if tail != "" {
		return 0, strconv.ErrSyntax
	}
	return int64(v), nil
}
