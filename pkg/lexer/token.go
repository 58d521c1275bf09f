package lexer

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent   // main, foo, x
	TokenNumber  // 42, 0x2a
	TokenCharLit // 'a'
	TokenString  // "hello"

	// Keywords
	TokenInt      // int
	TokenVoid     // void
	TokenChar     // char
	TokenShort    // short
	TokenLong     // long
	TokenSigned   // signed
	TokenUnsigned // unsigned
	TokenStruct   // struct
	TokenEnum     // enum
	TokenConst    // const
	TokenVolatile // volatile
	TokenStatic   // static
	TokenExtern   // extern
	TokenAuto     // auto
	TokenRegister // register
	TokenTypedef  // typedef
	TokenReturn   // return
	TokenIf       // if
	TokenElse     // else
	TokenWhile    // while
	TokenDo       // do
	TokenFor      // for
	TokenBreak    // break
	TokenContinue // continue
	TokenSwitch   // switch
	TokenCase     // case
	TokenDefault  // default
	TokenSizeof   // sizeof

	// Operators
	TokenPlus      // +
	TokenMinus     // -
	TokenStar      // *
	TokenSlash     // /
	TokenPercent   // %
	TokenAssign    // =
	TokenEq        // ==
	TokenNe        // !=
	TokenLt        // <
	TokenLe        // <=
	TokenGt        // >
	TokenGe        // >=
	TokenAnd       // &&
	TokenOr        // ||
	TokenNot       // !
	TokenAmpersand // &
	TokenPipe      // |
	TokenCaret     // ^
	TokenTilde     // ~
	TokenShl       // <<
	TokenShr       // >>
	TokenQuestion  // ?
	TokenColon     // :

	// Compound assignment operators
	TokenPlusAssign    // +=
	TokenMinusAssign   // -=
	TokenStarAssign    // *=
	TokenSlashAssign   // /=
	TokenPercentAssign // %=
	TokenAndAssign     // &=
	TokenOrAssign      // |=
	TokenXorAssign     // ^=
	TokenShlAssign     // <<=
	TokenShrAssign     // >>=

	// Increment/decrement
	TokenIncrement // ++
	TokenDecrement // --

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenSemicolon // ;
	TokenComma     // ,
	TokenDot       // .
	TokenArrow     // ->
)

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenIllegal:       "ILLEGAL",
	TokenIdent:         "IDENT",
	TokenNumber:        "NUMBER",
	TokenCharLit:       "CHAR",
	TokenString:        "STRING",
	TokenInt:           "int",
	TokenVoid:          "void",
	TokenChar:          "char",
	TokenShort:         "short",
	TokenLong:          "long",
	TokenSigned:        "signed",
	TokenUnsigned:      "unsigned",
	TokenStruct:        "struct",
	TokenEnum:          "enum",
	TokenConst:         "const",
	TokenVolatile:      "volatile",
	TokenStatic:        "static",
	TokenExtern:        "extern",
	TokenAuto:          "auto",
	TokenRegister:      "register",
	TokenTypedef:       "typedef",
	TokenReturn:        "return",
	TokenIf:            "if",
	TokenElse:          "else",
	TokenWhile:         "while",
	TokenDo:            "do",
	TokenFor:           "for",
	TokenBreak:         "break",
	TokenContinue:      "continue",
	TokenSwitch:        "switch",
	TokenCase:          "case",
	TokenDefault:       "default",
	TokenSizeof:        "sizeof",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenEq:            "==",
	TokenNe:            "!=",
	TokenLt:            "<",
	TokenLe:            "<=",
	TokenGt:            ">",
	TokenGe:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenAmpersand:     "&",
	TokenPipe:          "|",
	TokenCaret:         "^",
	TokenTilde:         "~",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenQuestion:      "?",
	TokenColon:         ":",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenAndAssign:     "&=",
	TokenOrAssign:      "|=",
	TokenXorAssign:     "^=",
	TokenShlAssign:     "<<=",
	TokenShrAssign:     ">>=",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenArrow:         "->",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Class groups token types the way the parser consumes them
type Class int

const (
	ClassEOF Class = iota
	ClassReserved
	ClassIdent
	ClassNumber
	ClassString
	ClassType          // type-specifier keyword, including struct and enum
	ClassTypeQualifier // const, volatile
	ClassStorage       // static, extern, auto, register, typedef
	ClassAssignOp      // = and the compound forms
	ClassIllegal
)

func (c Class) String() string {
	names := []string{"eof", "reserved", "ident", "number", "string", "type", "type-qualifier", "storage", "assign-op", "illegal"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Class returns the token class of t
func (t TokenType) Class() Class {
	switch {
	case t == TokenEOF:
		return ClassEOF
	case t == TokenIllegal:
		return ClassIllegal
	case t == TokenIdent:
		return ClassIdent
	case t == TokenNumber, t == TokenCharLit:
		return ClassNumber
	case t == TokenString:
		return ClassString
	case t >= TokenInt && t <= TokenEnum:
		return ClassType
	case t == TokenConst, t == TokenVolatile:
		return ClassTypeQualifier
	case t >= TokenStatic && t <= TokenTypedef:
		return ClassStorage
	case t == TokenAssign, t >= TokenPlusAssign && t <= TokenShrAssign:
		return ClassAssignOp
	}
	return ClassReserved
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// Class returns the token class of tok
func (tok Token) Class() Class {
	return tok.Type.Class()
}

// keywords maps keyword strings to token types
var keywords = map[string]TokenType{
	"int":      TokenInt,
	"void":     TokenVoid,
	"char":     TokenChar,
	"short":    TokenShort,
	"long":     TokenLong,
	"signed":   TokenSigned,
	"unsigned": TokenUnsigned,
	"struct":   TokenStruct,
	"enum":     TokenEnum,
	"const":    TokenConst,
	"volatile": TokenVolatile,
	"static":   TokenStatic,
	"extern":   TokenExtern,
	"auto":     TokenAuto,
	"register": TokenRegister,
	"typedef":  TokenTypedef,
	"return":   TokenReturn,
	"if":       TokenIf,
	"else":     TokenElse,
	"while":    TokenWhile,
	"do":       TokenDo,
	"for":      TokenFor,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"switch":   TokenSwitch,
	"case":     TokenCase,
	"default":  TokenDefault,
	"sizeof":   TokenSizeof,
}

// LookupIdent returns the token type for an identifier (keyword or IDENT)
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdent
}
