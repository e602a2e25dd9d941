// internal/parser/parser.go
package parser

import (
	"pseudo/internal/lexer"
)

// Parser builds the named-node tree for one source text. Recovery never
// aborts: expected-but-absent tokens become zero-width missing nodes and
// unparseable line tails are wrapped in ERROR nodes, so the tree is always
// complete enough to diagnose.
type Parser struct {
	source  string
	tokens  []lexer.Token
	current int
	root    *Node
}

func NewParser(source string) *Parser {
	scanner := lexer.NewScanner(source)
	return &Parser{
		source: source,
		tokens: scanner.ScanTokens(),
	}
}

// Parse builds and retains the program tree.
func (p *Parser) Parse() *Node {
	program := p.newNode("program")
	program.Named = true

	p.skipNewlines()
	for !p.isAtEnd() {
		stmt := p.parseStmt()
		if stmt != nil {
			program.addChild(stmt)
		}
		p.skipNewlines()
	}
	if len(program.Children) == 0 {
		eof := p.peek()
		program.StartByte, program.EndByte = eof.Start, eof.End
	}

	p.root = program
	return program
}

// Root returns the tree from the last Parse.
func (p *Parser) Root() *Node {
	return p.root
}

func (p *Parser) Source() string {
	return p.source
}

// NodeText returns the source text covered by n.
func (p *Parser) NodeText(n *Node) string {
	return n.Text(p.source)
}

// HasError reports whether the last parse produced any ERROR or missing node.
func (p *Parser) HasError() bool {
	if p.root == nil {
		return true
	}
	return FindFirstError(p.root) != nil
}

// Token plumbing

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekType() lexer.TokenType {
	return p.tokens[p.current].Type
}

func (p *Parser) peekAhead(n int) lexer.TokenType {
	if p.current+n >= len(p.tokens) {
		return lexer.TokenEOF
	}
	return p.tokens[p.current+n].Type
}

func (p *Parser) isAtEnd() bool {
	return p.peekType() == lexer.TokenEOF
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peekType() == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.TokenNewline) {
		p.advance()
	}
}

// Node constructors

func (p *Parser) newNode(typ string) *Node {
	tok := p.peek()
	return &Node{
		Type:       typ,
		Named:      true,
		StartByte:  tok.Start,
		EndByte:    tok.Start,
		StartPoint: Point{tok.Row, tok.Col},
		EndPoint:   Point{tok.Row, tok.Col},
	}
}

func leafNamed(tok lexer.Token, typ string) *Node {
	return &Node{
		Type:       typ,
		Named:      true,
		StartByte:  tok.Start,
		EndByte:    tok.End,
		StartPoint: Point{tok.Row, tok.Col},
		EndPoint:   Point{tok.Row, tok.Col + uint32(len(tok.Lexeme))},
	}
}

// leaf builds an anonymous node for a keyword or operator token; its type is
// the literal spelling.
func leaf(tok lexer.Token) *Node {
	n := leafNamed(tok, string(tok.Type))
	n.Named = false
	return n
}

// missing fabricates a zero-width node of the expected type at the current
// position.
func (p *Parser) missing(typ string) *Node {
	tok := p.peek()
	return &Node{
		Type:       typ,
		Missing:    true,
		StartByte:  tok.Start,
		EndByte:    tok.Start,
		StartPoint: Point{tok.Row, tok.Col},
		EndPoint:   Point{tok.Row, tok.Col},
	}
}

// expect consumes a token of type t or fabricates a missing node for it.
func (p *Parser) expect(t lexer.TokenType) *Node {
	if p.check(t) {
		return leaf(p.advance())
	}
	return p.missing(string(t))
}

// errorToLineEnd consumes the rest of the line into an ERROR node. The
// recognized keywords inside it stay addressable for the suggestion
// heuristics.
func (p *Parser) errorToLineEnd() *Node {
	errNode := p.newNode("ERROR")
	for !p.isAtEnd() && !p.check(lexer.TokenNewline) {
		tok := p.advance()
		switch tok.Type {
		case lexer.TokenIdent:
			errNode.addChild(leafNamed(tok, "identifier"))
		case lexer.TokenNumber:
			errNode.addChild(leafNamed(tok, "number"))
		case lexer.TokenString:
			errNode.addChild(leafNamed(tok, "string"))
		default:
			errNode.addChild(leaf(tok))
		}
	}
	return errNode
}

// Statements

// catStartsWhile distinguishes a nested "cat timp cond executa" loop from the
// "cat timp cond" terminator of an enclosing do_while: only the loop carries
// executa before the line break.
func (p *Parser) catStartsWhile() bool {
	for i := 0; ; i++ {
		switch p.peekAhead(i) {
		case lexer.TokenExecuta:
			return true
		case lexer.TokenNewline, lexer.TokenEOF:
			return false
		}
	}
}

func (p *Parser) blockEnder() bool {
	switch p.peekType() {
	case lexer.TokenSf, lexer.TokenAltfel, lexer.TokenPana:
		return true
	case lexer.TokenCat:
		return !p.catStartsWhile()
	}
	return false
}

// parseStmt parses one statement wrapped in a stmt node.
func (p *Parser) parseStmt() *Node {
	stmt := p.newNode("stmt")

	var inner *Node
	switch p.peekType() {
	case lexer.TokenDaca:
		inner = p.parseIf()
	case lexer.TokenPentru:
		inner = p.parseFor()
	case lexer.TokenCat:
		inner = p.parseWhile()
	case lexer.TokenExecuta:
		inner = p.parseDoWhile()
	case lexer.TokenRepeta:
		inner = p.parseRepeat()
	case lexer.TokenCiteste, lexer.TokenScrie, lexer.TokenIdent:
		inner = p.parseSimpleLine()
	default:
		inner = p.errorToLineEnd()
	}

	stmt.addChild(inner)
	return stmt
}

// parseSimpleLine parses one simple statement, or a multi_stmt when
// semicolons join several on a line.
func (p *Parser) parseSimpleLine() *Node {
	first := p.parseSimpleStmt()
	if !p.check(lexer.TokenSemicolon) {
		return first
	}

	multi := p.newNode("multi_stmt")
	multi.addChild(first)
	for p.check(lexer.TokenSemicolon) {
		multi.addChild(leaf(p.advance()))
		multi.addChild(p.parseSimpleStmt())
	}
	return multi
}

func (p *Parser) parseSimpleStmt() *Node {
	switch p.peekType() {
	case lexer.TokenCiteste:
		return p.parseRead()
	case lexer.TokenScrie:
		return p.parseWrite()
	case lexer.TokenIdent:
		if p.peekAhead(1) == lexer.TokenSwap {
			return p.parseSwap()
		}
		return p.parseAssign()
	}
	return p.errorToLineEnd()
}

func (p *Parser) parseAssign() *Node {
	node := p.newNode("assign")
	name := leafNamed(p.advance(), "identifier")
	node.addChild(name)
	node.setField("name", name)

	node.addChild(p.expect(lexer.TokenAssign))

	val := p.parseExpr()
	node.addChild(val)
	node.setField("value", val)
	return node
}

func (p *Parser) parseSwap() *Node {
	node := p.newNode("swap")
	left := leafNamed(p.advance(), "identifier")
	node.addChild(left)
	node.setField("left", left)

	node.addChild(leaf(p.advance())) // <->

	var right *Node
	if p.check(lexer.TokenIdent) {
		right = leafNamed(p.advance(), "identifier")
	} else {
		right = p.missing("identifier")
	}
	node.addChild(right)
	node.setField("right", right)
	return node
}

func (p *Parser) parseRead() *Node {
	node := p.newNode("read")
	node.addChild(leaf(p.advance())) // citeste

	names := p.newNode("name_list")
	if p.check(lexer.TokenIdent) {
		names.addChild(leafNamed(p.advance(), "identifier"))
		for p.check(lexer.TokenComma) {
			names.addChild(leaf(p.advance()))
			if p.check(lexer.TokenIdent) {
				names.addChild(leafNamed(p.advance(), "identifier"))
			} else {
				names.addChild(p.missing("identifier"))
			}
		}
	} else {
		names.addChild(p.missing("identifier"))
	}
	node.addChild(names)
	node.setField("names", names)
	return node
}

func (p *Parser) parseWrite() *Node {
	node := p.newNode("write")
	node.addChild(leaf(p.advance())) // scrie

	values := p.newNode("expr_list")
	values.addChild(p.parseExpr())
	for p.check(lexer.TokenComma) {
		values.addChild(leaf(p.advance()))
		values.addChild(p.parseExpr())
	}
	node.addChild(values)
	node.setField("values", values)
	return node
}

// parseBlock parses statements until a block-closing keyword, collecting them
// into parent.
func (p *Parser) parseBlock(parent *Node) {
	p.skipNewlines()
	for !p.isAtEnd() && !p.blockEnder() {
		parent.addChild(p.parseStmt())
		p.skipNewlines()
	}
}

func (p *Parser) parseIf() *Node {
	node := p.newNode("if")
	node.addChild(leaf(p.advance())) // daca

	cond := p.parseExpr()
	node.addChild(cond)
	node.setField("condition", cond)

	node.addChild(p.expect(lexer.TokenAtunci))
	p.parseBlock(node)

	if p.check(lexer.TokenAltfel) {
		node.addChild(leaf(p.advance()))
		p.parseBlock(node)
	}

	node.addChild(p.expect(lexer.TokenSf))
	p.match(lexer.TokenDaca) // optional trailer: "sf daca"
	return node
}

func (p *Parser) parseFor() *Node {
	node := p.newNode("for")
	node.addChild(leaf(p.advance())) // pentru

	var iter *Node
	if p.check(lexer.TokenIdent) {
		iter = leafNamed(p.advance(), "identifier")
	} else {
		iter = p.missing("identifier")
	}
	node.addChild(iter)
	node.setField("var", iter)

	node.addChild(p.expect(lexer.TokenAssign))

	start := p.parseExpr()
	node.addChild(start)
	node.setField("start", start)

	node.addChild(p.expect(lexer.TokenComma))

	end := p.parseExpr()
	node.addChild(end)
	node.setField("end", end)

	if p.check(lexer.TokenComma) {
		node.addChild(leaf(p.advance()))
		step := p.parseExpr()
		node.addChild(step)
		node.setField("step", step)
	}

	node.addChild(p.expect(lexer.TokenExecuta))
	p.parseBlock(node)
	node.addChild(p.expect(lexer.TokenSf))
	p.match(lexer.TokenPentru)
	return node
}

func (p *Parser) parseWhile() *Node {
	node := p.newNode("while")
	node.addChild(leaf(p.advance())) // cat
	node.addChild(p.expect(lexer.TokenTimp))

	cond := p.parseExpr()
	node.addChild(cond)
	node.setField("condition", cond)

	node.addChild(p.expect(lexer.TokenExecuta))
	p.parseBlock(node)
	node.addChild(p.expect(lexer.TokenSf))
	if p.match(lexer.TokenCat) { // optional trailer: "sf cat timp"
		p.match(lexer.TokenTimp)
	}
	return node
}

func (p *Parser) parseDoWhile() *Node {
	node := p.newNode("do_while")
	node.addChild(leaf(p.advance())) // executa
	p.parseBlock(node)

	node.addChild(p.expect(lexer.TokenCat))
	node.addChild(p.expect(lexer.TokenTimp))

	cond := p.parseExpr()
	node.addChild(cond)
	node.setField("condition", cond)
	return node
}

func (p *Parser) parseRepeat() *Node {
	node := p.newNode("repeat")
	node.addChild(leaf(p.advance())) // repeta
	p.parseBlock(node)

	node.addChild(p.expect(lexer.TokenPana))
	node.addChild(p.expect(lexer.TokenCand))

	cond := p.parseExpr()
	node.addChild(cond)
	node.setField("condition", cond)
	return node
}

// Expressions. Precedence, loosest first: sau, si, nu, comparison, additive,
// multiplicative, unary minus, primary.

// parseExpr wraps the parsed operator chain in an expr node.
func (p *Parser) parseExpr() *Node {
	node := p.newNode("expr")
	node.addChild(p.parseOr())
	return node
}

func (p *Parser) parseOr() *Node {
	left := p.parseAnd()
	for p.check(lexer.TokenSau) {
		node := &Node{Type: "or_expr", Named: true}
		node.addChild(left)
		node.setField("left", left)
		node.addChild(leaf(p.advance()))
		right := p.parseAnd()
		node.addChild(right)
		node.setField("right", right)
		left = node
	}
	return left
}

func (p *Parser) parseAnd() *Node {
	left := p.parseNot()
	for p.check(lexer.TokenSi) {
		node := &Node{Type: "and_expr", Named: true}
		node.addChild(left)
		node.setField("left", left)
		node.addChild(leaf(p.advance()))
		right := p.parseNot()
		node.addChild(right)
		node.setField("right", right)
		left = node
	}
	return left
}

func (p *Parser) parseNot() *Node {
	if p.check(lexer.TokenNu) {
		node := p.newNode("not_expr")
		node.addChild(leaf(p.advance()))
		operand := p.parseNot()
		node.addChild(operand)
		node.setField("operand", operand)
		return node
	}
	return p.parseComparison()
}

func comparisonOp(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenEq, lexer.TokenNe, lexer.TokenLt, lexer.TokenLe,
		lexer.TokenGt, lexer.TokenGe:
		return true
	}
	return false
}

func (p *Parser) parseComparison() *Node {
	left := p.parseAdditive()
	for comparisonOp(p.peekType()) {
		node := &Node{Type: "compare_expr", Named: true}
		node.addChild(left)
		node.setField("left", left)
		op := leaf(p.advance())
		node.addChild(op)
		node.setField("op", op)
		right := p.parseAdditive()
		node.addChild(right)
		node.setField("right", right)
		left = node
	}
	return left
}

func (p *Parser) parseAdditive() *Node {
	left := p.parseMultiplicative()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		node := &Node{Type: "add_expr", Named: true}
		node.addChild(left)
		node.setField("left", left)
		op := leaf(p.advance())
		node.addChild(op)
		node.setField("op", op)
		right := p.parseMultiplicative()
		node.addChild(right)
		node.setField("right", right)
		left = node
	}
	return left
}

func (p *Parser) parseMultiplicative() *Node {
	left := p.parseUnary()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) || p.check(lexer.TokenPercent) {
		node := &Node{Type: "mul_expr", Named: true}
		node.addChild(left)
		node.setField("left", left)
		op := leaf(p.advance())
		node.addChild(op)
		node.setField("op", op)
		right := p.parseUnary()
		node.addChild(right)
		node.setField("right", right)
		left = node
	}
	return left
}

func (p *Parser) parseUnary() *Node {
	if p.check(lexer.TokenMinus) {
		node := p.newNode("neg_expr")
		node.addChild(leaf(p.advance()))
		operand := p.parseUnary()
		node.addChild(operand)
		node.setField("operand", operand)
		return node
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *Node {
	switch p.peekType() {
	case lexer.TokenLParen:
		node := p.newNode("paren")
		node.addChild(leaf(p.advance()))
		node.addChild(p.parseOr())
		node.addChild(p.expect(lexer.TokenRParen))
		return node

	case lexer.TokenLBracket:
		node := p.newNode("floor")
		node.addChild(leaf(p.advance()))
		operand := p.parseOr()
		node.addChild(operand)
		node.setField("operand", operand)
		node.addChild(p.expect(lexer.TokenRBracket))
		return node

	case lexer.TokenSqrt:
		node := p.newNode("sqrt_expr")
		node.addChild(leaf(p.advance()))
		node.addChild(p.expect(lexer.TokenLParen))
		operand := p.parseOr()
		node.addChild(operand)
		node.setField("operand", operand)
		node.addChild(p.expect(lexer.TokenRParen))
		return node

	case lexer.TokenIdent:
		node := p.newNode("atom")
		node.addChild(leafNamed(p.advance(), "identifier"))
		return node

	case lexer.TokenNumber:
		node := p.newNode("atom")
		node.addChild(leafNamed(p.advance(), "number"))
		return node

	case lexer.TokenString:
		node := p.newNode("atom")
		node.addChild(leafNamed(p.advance(), "string"))
		return node
	}

	return p.missing("expr")
}
