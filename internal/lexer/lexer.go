package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/shapeshift/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
	firstLine    int
	columnOffset int // added to columns on the first line
}

func New(input string) *Lexer {
	return NewAt(input, 1, 1)
}

// NewAt creates a lexer whose positions start at line:column, for pattern
// text embedded in a larger document.
func NewAt(input string, line, column int) *Lexer {
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	l := &Lexer{input: input, line: line, column: 0, firstLine: line, columnOffset: column - 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) col() int {
	if l.line == l.firstLine {
		return l.column + l.columnOffset
	}
	return l.column
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()
	line, col := l.line, l.col()

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Line: line, Column: col}
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			tok = token.Token{Type: token.PATHSEP, Lexeme: "::", Literal: "::", Line: line, Column: col}
		} else {
			tok = newToken(token.COLON, l.ch, line, col)
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			tok = token.Token{Type: token.ARROW, Lexeme: "->", Literal: "->", Line: line, Column: col}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, line, col)
		}
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			tok = token.Token{Type: token.DOTDOT, Lexeme: "..", Literal: "..", Line: line, Column: col}
		} else {
			tok = newToken(token.ILLEGAL, l.ch, line, col)
		}
	case '\'':
		if isLetter(l.peekChar()) {
			l.readChar()
			name := "'" + l.readIdentifier()
			return token.Token{Type: token.LIFETIME, Lexeme: name, Literal: name, Line: line, Column: col}
		}
		tok = newToken(token.ILLEGAL, l.ch, line, col)
	case '(':
		tok = newToken(token.LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(token.RPAREN, l.ch, line, col)
	case '{':
		tok = newToken(token.LBRACE, l.ch, line, col)
	case '}':
		tok = newToken(token.RBRACE, l.ch, line, col)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, line, col)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, line, col)
	case '<':
		tok = newToken(token.LT, l.ch, line, col)
	case '>':
		tok = newToken(token.GT, l.ch, line, col)
	case ',':
		tok = newToken(token.COMMA, l.ch, line, col)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, line, col)
	case '|':
		tok = newToken(token.PIPE, l.ch, line, col)
	case '$':
		tok = newToken(token.DOLLAR, l.ch, line, col)
	case '^':
		tok = newToken(token.CARET, l.ch, line, col)
	case '?':
		tok = newToken(token.QUESTION, l.ch, line, col)
	case '+':
		tok = newToken(token.PLUS, l.ch, line, col)
	case '&':
		tok = newToken(token.AMP, l.ch, line, col)
	case '=':
		tok = newToken(token.ASSIGN, l.ch, line, col)
	case '!':
		tok = newToken(token.BANG, l.ch, line, col)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			if ident == "_" {
				return token.Token{Type: token.UNDERSCORE, Lexeme: "_", Literal: "_", Line: line, Column: col}
			}
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
		}
		if isDigit(l.ch) {
			digits := l.readNumber()
			n, err := strconv.Atoi(strings.ReplaceAll(digits, "_", ""))
			if err != nil {
				return token.Token{Type: token.ILLEGAL, Lexeme: digits, Literal: digits, Line: line, Column: col}
			}
			return token.Token{Type: token.INT, Lexeme: digits, Literal: n, Line: line, Column: col}
		}
		tok = newToken(token.ILLEGAL, l.ch, line, col)
	}

	l.readChar()
	return tok
}

// Tokenize returns every token up to and including EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, line, column int) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(ch), Literal: string(ch), Line: line, Column: column}
}
