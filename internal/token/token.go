package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT    TokenType = "IDENT"
	INT      TokenType = "INT"
	LIFETIME TokenType = "LIFETIME" // 'a, 'static, '_

	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LT        TokenType = "<"
	GT        TokenType = ">"
	COMMA     TokenType = ","
	COLON     TokenType = ":"
	PATHSEP   TokenType = "::"
	SEMICOLON TokenType = ";"
	PIPE      TokenType = "|"
	DOLLAR    TokenType = "$"
	CARET     TokenType = "^"
	QUESTION  TokenType = "?"
	PLUS      TokenType = "+"
	AMP       TokenType = "&"
	ASSIGN    TokenType = "="
	ARROW     TokenType = "->"
	DOTDOT    TokenType = ".."
	BANG      TokenType = "!"

	UNDERSCORE TokenType = "_"

	// Keywords
	WHERE TokenType = "WHERE"
	FN    TokenType = "FN"
	MUT   TokenType = "MUT"
	SELF  TokenType = "SELF" // lowercase receiver
	DYN   TokenType = "DYN"
	IMPL  TokenType = "IMPL"
)

var keywords = map[string]TokenType{
	"where": WHERE,
	"fn":    FN,
	"mut":   MUT,
	"self":  SELF,
	"dyn":   DYN,
	"impl":  IMPL,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Describe renders the token the way it is quoted in diagnostics.
func (t Token) Describe() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", t.Lexeme)
}
