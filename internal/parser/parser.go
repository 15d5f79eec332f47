package parser

import (
	"github.com/funvibe/shapeshift/internal/diagnostics"
	"github.com/funvibe/shapeshift/internal/lexer"
	"github.com/funvibe/shapeshift/internal/token"
)

// Parser is a recursive-descent parser over the pattern grammar. curToken is
// always the next unconsumed token; every parse function leaves it on the
// first token after the construct it parsed.
type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token

	// placeholders makes bare uppercase names parse as pattern placeholders.
	placeholders bool

	errors []*diagnostics.DiagnosticError
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the diagnostics recorded so far.
func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expect consumes the current token if it has type t, and records P001
// otherwise.
func (p *Parser) expect(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf(diagnostics.ErrP001, p.curToken, "expected '%s', found %s", t, p.curToken.Describe())
	return false
}

func (p *Parser) errorf(code diagnostics.ErrorCode, tok token.Token, msg string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(code, tok, msg, args...))
}

// expectEOF records trailing input after a complete construct.
func (p *Parser) expectEOF() {
	if !p.curTokenIs(token.EOF) {
		p.errorf(diagnostics.ErrP001, p.curToken, "unexpected %s after end of input", p.curToken.Describe())
	}
}

// synchronize skips to the next alternative separator, where clause or end of
// input so that later syntax errors are still reported.
func (p *Parser) synchronize() {
	depth := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			if depth > 0 {
				depth--
			}
		case token.PIPE, token.WHERE:
			if depth == 0 {
				return
			}
		}
		p.nextToken()
	}
}
