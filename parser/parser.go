// Package parser implements a recursive-descent parser over the token
// stream produced by lexer.Tokenize, building the ast.Program defined in
// package ast.
package parser

import (
	"strconv"

	"github.com/hearthlang/hearth/ast"
	"github.com/hearthlang/hearth/lexer"
)

// Parser walks a token stream with a two-token lookahead (current, peek),
// matching the teacher's lexer/parser cursor style.
type Parser struct {
	tokens       []lexer.Token
	pos          int
	currentToken lexer.Token
	peekToken    lexer.Token
}

// New creates a Parser over an already-tokenized input.
func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse tokenizes nothing itself; it consumes tokens into a Program,
// stopping at EOF. It is the `parse` entry point from spec.md §6.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := New(tokens)
	return p.parseProgram()
}

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = lexer.Token{Type: lexer.EOF, Pos: p.currentToken.Pos}
	}
}

func (p *Parser) expect(typ lexer.TokenType) (lexer.Token, error) {
	if p.currentToken.Type != typ {
		return lexer.Token{}, newError(p.currentToken.Pos, "expected %s, got %s(%q)", typ, p.currentToken.Type, p.currentToken.Value)
	}
	tok := p.currentToken
	p.nextToken()
	return tok, nil
}

func (p *Parser) expectKeyword(word string) error {
	if p.currentToken.Type != lexer.KEYWORD || p.currentToken.Value != word {
		return newError(p.currentToken.Pos, "expected keyword %q, got %s(%q)", word, p.currentToken.Type, p.currentToken.Value)
	}
	p.nextToken()
	return nil
}

// atStatementEnd reports whether the current token is one of the accepted
// statement terminators (spec.md §4.2: NEWLINE, also DEDENT or EOF).
func (p *Parser) atStatementEnd() bool {
	switch p.currentToken.Type {
	case lexer.NEWLINE, lexer.DEDENT, lexer.EOF:
		return true
	}
	return false
}

func (p *Parser) consumeTerminator() error {
	if p.atStatementEnd() {
		if p.currentToken.Type != lexer.EOF && p.currentToken.Type != lexer.DEDENT {
			p.nextToken()
		}
		return nil
	}
	_, err := p.expect(lexer.NEWLINE)
	return err
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for p.currentToken.Type != lexer.EOF {
		if p.currentToken.Type == lexer.DEDENT {
			p.nextToken()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program, nil
}

// parseStatement dispatches on the leading token, per spec.md §4.2. A
// stray NEWLINE/INDENT/DEDENT at statement position is consumed and
// yields no statement.
func (p *Parser) parseStatement() (ast.Stmt, error) {
	tok := p.currentToken

	switch tok.Type {
	case lexer.NEWLINE, lexer.INDENT, lexer.DEDENT:
		p.nextToken()
		return nil, nil
	case lexer.KEYWORD:
		switch tok.Value {
		case "remember":
			return p.parseVarDecl()
		case "update":
			return p.parseUpdate()
		case "think":
			return p.parseWhile()
		case "feel":
			return p.parseIf()
		case "speak", "shout", "whisper", "laugh", "murmur":
			return p.parsePrint(ast.PrintMode(tok.Value))
		case "panic":
			return p.parsePanic()
		case "pause":
			p.nextToken()
			if err := p.consumeTerminator(); err != nil {
				return nil, err
			}
			return &ast.Pause{}, nil
		case "sleep":
			p.nextToken()
			if err := p.consumeTerminator(); err != nil {
				return nil, err
			}
			return &ast.Sleep{}, nil
		case "listen":
			return p.parseInput()
		case "otherwise":
			return nil, newError(tok.Pos, "'otherwise' can only follow a 'feel' block")
		}
	}

	return nil, newError(tok.Pos, "unexpected token %s(%q)", tok.Type, tok.Value)
}

func (p *Parser) parseVarDecl() (ast.Stmt, error) {
	p.nextToken() // consume 'remember'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}

	if p.currentToken.Type == lexer.KEYWORD && p.currentToken.Value == "listen" {
		p.nextToken()
		prompt, err := p.expect(lexer.STRING)
		if err != nil {
			return nil, err
		}
		if err := p.consumeTerminator(); err != nil {
			return nil, err
		}
		return &ast.VarDecl{Name: name.Value, Value: &ast.InputCmd{Prompt: prompt.Value, Var: name.Value}}, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(); err != nil {
		return nil, err
	}
	return &ast.VarDecl{Name: name.Value, Value: value}, nil
}

func (p *Parser) parseUpdate() (ast.Stmt, error) {
	p.nextToken() // consume 'update'
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(); err != nil {
		return nil, err
	}
	return &ast.Update{Name: name.Value, Value: value}, nil
}

func (p *Parser) parsePrint(mode ast.PrintMode) (ast.Stmt, error) {
	p.nextToken() // consume the print keyword
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(); err != nil {
		return nil, err
	}
	return &ast.Print{Mode: mode, Expr: expr}, nil
}

func (p *Parser) parsePanic() (ast.Stmt, error) {
	p.nextToken() // consume 'panic'
	msg, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(); err != nil {
		return nil, err
	}
	return &ast.Panic{Message: msg.Value}, nil
}

func (p *Parser) parseInput() (ast.Stmt, error) {
	p.nextToken() // consume 'listen'
	prompt, err := p.expect(lexer.STRING)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if err := p.consumeTerminator(); err != nil {
		return nil, err
	}
	return &ast.InputCmd{Prompt: prompt.Value, Var: name.Value}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.nextToken() // consume 'think'
	spiral := false
	if p.currentToken.Type == lexer.KEYWORD && p.currentToken.Value == "spiral" {
		spiral = true
		p.nextToken()
	}
	if err := p.expectKeyword("while"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body, Spiral: spiral}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.nextToken() // consume 'feel'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.NEWLINE); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	for p.currentToken.Type == lexer.NEWLINE {
		p.nextToken()
	}

	var elseBlock []ast.Stmt
	if p.currentToken.Type == lexer.KEYWORD && p.currentToken.Value == "otherwise" {
		p.nextToken()
		if _, err := p.expect(lexer.NEWLINE); err != nil {
			return nil, err
		}
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	for p.currentToken.Type == lexer.NEWLINE {
		p.nextToken()
	}

	return &ast.If{Condition: cond, Then: thenBlock, Else: elseBlock}, nil
}

// parseBlock consumes a single INDENT/DEDENT-delimited block. It is empty
// if no INDENT opens it here (spec.md §4.2).
func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if p.currentToken.Type != lexer.INDENT {
		return nil, nil
	}
	p.nextToken() // consume INDENT

	var stmts []ast.Stmt
	for p.currentToken.Type != lexer.DEDENT && p.currentToken.Type != lexer.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if p.currentToken.Type == lexer.DEDENT {
		p.nextToken()
	}
	return stmts, nil
}

// parseExpression implements the language's single flat precedence level:
// term (OP term)*, strictly left-associative. There is no grouping and no
// operator ever binds tighter than another (spec.md §4.2).
func (p *Parser) parseExpression() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.currentToken.Type == lexer.OP {
		op := p.currentToken.Value
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (ast.Expr, error) {
	tok := p.currentToken
	switch tok.Type {
	case lexer.NUMBER:
		p.nextToken()
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return nil, newError(tok.Pos, "invalid integer literal %q", tok.Value)
		}
		return &ast.Literal{Value: n}, nil
	case lexer.STRING:
		p.nextToken()
		return &ast.Literal{Value: tok.Value}, nil
	case lexer.IDENT:
		p.nextToken()
		return &ast.Var{Name: tok.Value}, nil
	default:
		return nil, newError(tok.Pos, "invalid term: %s(%q)", tok.Type, tok.Value)
	}
}
