// Package lexer tokenizes C source and exposes the token stream the parser consumes
package lexer

import (
	"unicode"

	"github.com/raymyers/subcc/pkg/diag"
)

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	if line, col, ok := l.skipComments(); !ok {
		return Token{Type: TokenIllegal, Literal: "/*", Line: line, Column: col}
	}
	l.skipWhitespace()

	tok := Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
		return tok
	case '+':
		tok = l.operator(TokenPlus, map[byte]TokenType{'+': TokenIncrement, '=': TokenPlusAssign})
	case '-':
		tok = l.operator(TokenMinus, map[byte]TokenType{'-': TokenDecrement, '=': TokenMinusAssign, '>': TokenArrow})
	case '*':
		tok = l.operator(TokenStar, map[byte]TokenType{'=': TokenStarAssign})
	case '/':
		tok = l.operator(TokenSlash, map[byte]TokenType{'=': TokenSlashAssign})
	case '%':
		tok = l.operator(TokenPercent, map[byte]TokenType{'=': TokenPercentAssign})
	case '=':
		tok = l.operator(TokenAssign, map[byte]TokenType{'=': TokenEq})
	case '!':
		tok = l.operator(TokenNot, map[byte]TokenType{'=': TokenNe})
	case '^':
		tok = l.operator(TokenCaret, map[byte]TokenType{'=': TokenXorAssign})
	case '&':
		tok = l.operator(TokenAmpersand, map[byte]TokenType{'&': TokenAnd, '=': TokenAndAssign})
	case '|':
		tok = l.operator(TokenPipe, map[byte]TokenType{'|': TokenOr, '=': TokenOrAssign})
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			tok = l.operator(TokenShl, map[byte]TokenType{'=': TokenShlAssign})
		} else {
			tok = l.operator(TokenLt, map[byte]TokenType{'=': TokenLe})
		}
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			tok = l.operator(TokenShr, map[byte]TokenType{'=': TokenShrAssign})
		} else {
			tok = l.operator(TokenGt, map[byte]TokenType{'=': TokenGe})
		}
	case '~':
		tok = l.newToken(TokenTilde)
	case '?':
		tok = l.newToken(TokenQuestion)
	case ':':
		tok = l.newToken(TokenColon)
	case '(':
		tok = l.newToken(TokenLParen)
	case ')':
		tok = l.newToken(TokenRParen)
	case '{':
		tok = l.newToken(TokenLBrace)
	case '}':
		tok = l.newToken(TokenRBrace)
	case '[':
		tok = l.newToken(TokenLBracket)
	case ']':
		tok = l.newToken(TokenRBracket)
	case ';':
		tok = l.newToken(TokenSemicolon)
	case ',':
		tok = l.newToken(TokenComma)
	case '.':
		tok = l.newToken(TokenDot)
	case '"':
		lit, ok := l.readQuoted('"')
		tok.Type = TokenString
		tok.Literal = lit
		if !ok {
			tok.Type = TokenIllegal
		}
		return tok
	case '\'':
		lit, ok := l.readQuoted('\'')
		tok.Type = TokenCharLit
		tok.Literal = lit
		if !ok || lit == "" {
			tok.Type = TokenIllegal
		}
		return tok
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type = TokenNumber
			tok.Literal = l.readNumber()
			return tok
		}
		tok.Type = TokenIllegal
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

// operator lexes a one or two character operator: base when the next
// character has no entry in follow, the mapped type otherwise.
// The operator starts at the current character; the start position
// already recorded by the caller is preserved.
func (l *Lexer) operator(base TokenType, follow map[byte]TokenType) Token {
	line, col := l.line, l.column
	if base == TokenShl || base == TokenShr {
		// the first '<' or '>' was consumed by the caller
		col--
	}
	if t, ok := follow[l.peekChar()]; ok {
		l.readChar()
		return Token{Type: t, Literal: t.String(), Line: line, Column: col}
	}
	return Token{Type: base, Literal: base.String(), Line: line, Column: col}
}

func (l *Lexer) newToken(tokenType TokenType) Token {
	return Token{Type: tokenType, Literal: string(l.ch), Line: l.line, Column: l.column}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' {
		l.readChar()
	}
}

// skipComments reports false, with the position of the opening "/*", when a
// block comment runs to the end of input
func (l *Lexer) skipComments() (line, col int, ok bool) {
	for l.ch == '/' {
		if l.peekChar() == '/' {
			// Single-line comment
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			l.skipWhitespace()
		} else if l.peekChar() == '*' {
			// Multi-line comment
			line, col = l.line, l.column
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 {
					return line, col, false
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar() // consume *
					l.readChar() // consume /
					break
				}
				l.readChar()
			}
			l.skipWhitespace()
		} else {
			break
		}
	}
	return 0, 0, true
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber reads a decimal, octal or hex literal with an optional
// integer suffix; conversion happens in the Stream.
func (l *Lexer) readNumber() string {
	pos := l.pos
	for isDigit(l.ch) || isLetter(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readQuoted reads a string or character literal body, escapes kept verbatim.
func (l *Lexer) readQuoted(quote byte) (string, bool) {
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return l.input[pos:l.pos], false
		}
		if l.ch == '\\' {
			l.readChar() // skip escape char
		}
		l.readChar()
	}
	str := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return str, true
}

// Tokenize lexes the whole input, ending with an EOF token
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var toks []Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case TokenIllegal:
			return nil, diag.Errorf(diag.Syntax, tok.Line, tok.Column, "invalid token %q", tok.Literal)
		case TokenEOF:
			return append(toks, tok), nil
		}
		toks = append(toks, tok)
	}
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
