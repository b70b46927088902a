package parser

import (
	"strconv"
	"strings"

	"genoscope-hq/callisto/pkg/hcvr/ast"
	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/variant"
)

// Parser parses HCVR rule text into syntax trees. Parsing is all-or-nothing:
// the entire input must form one statement, and any leftover text is a syntax
// error at the first unconsumed character.
type Parser struct {
	extended bool
}

// NewParser creates a new parser for the base dialect.
func NewParser() *Parser {
	return &Parser{}
}

// WithExtended enables the extended dialect: MIN and MEAN accumulators and
// score lists in the score slot of an item.
func (p *Parser) WithExtended(extended bool) *Parser {
	p.extended = extended
	return p
}

// Parse parses one rule. A rule opening with the SCORE keyword is a score
// condition; anything else is a boolean condition. Malformed input is
// reported as *hcvrerr.SyntaxError positioned at the offending character.
func (p *Parser) Parse(source string) (ast.Node, error) {
	s := &scanner{src: source}
	s.skipSpace()

	var root ast.Node
	var err error
	if s.peekKeyword("SCORE") {
		root, err = p.parseScoreCond(s)
	} else {
		root, err = p.parseBoolean(s)
	}
	if err != nil {
		return nil, err
	}

	s.skipSpace()
	if !s.eof() {
		return nil, s.errorHere()
	}
	return root, nil
}

// parseBoolean parses a boolean condition: AND-groups joined by OR. OR is
// left-associative and binds looser than AND.
func (p *Parser) parseBoolean(s *scanner) (ast.Node, error) {
	left, err := p.parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.keyword("OR") {
		right, err := p.parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = &ast.OrExpr{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd parses one or more conditions joined by AND into a single n-ary
// fold. A lone condition is returned as itself.
func (p *Parser) parseAnd(s *scanner) (ast.Node, error) {
	first, err := p.parseCondition(s)
	if err != nil {
		return nil, err
	}
	children := []ast.Node{first}
	for s.keyword("AND") {
		next, err := p.parseCondition(s)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return ast.NewAndExpr(children...)
}

func (p *Parser) parseCondition(s *scanner) (ast.Node, error) {
	switch {
	case s.symbol("("):
		inner, err := p.parseBoolean(s)
		if err != nil {
			return nil, err
		}
		if !s.symbol(")") {
			return nil, s.errorHere()
		}
		return inner, nil
	case s.keyword("TRUE"):
		return &ast.BoolConst{Value: true}, nil
	case s.keyword("FALSE"):
		return &ast.BoolConst{Value: false}, nil
	case s.keyword("EXCEPT"), s.keyword("EXCLUDE"):
		atom, err := p.parseResidue(s)
		if err != nil {
			return nil, err
		}
		return &ast.ExceptExpr{Atom: atom}, nil
	case s.keyword("SELECT"):
		return p.parseSelect(s)
	default:
		return p.parseResidue(s)
	}
}

// parseResidue lexes a residue reference (optional wildtype letter, position,
// optional "!", variant letters) and builds its mutation atom. A leading
// uppercase letter is a wildtype only when a digit follows it.
func (p *Parser) parseResidue(s *scanner) (ast.Node, error) {
	s.skipSpace()
	start := s.pos
	if isUpper(s.peek()) && isDigit(s.peekAt(1)) {
		s.pos++
	}
	if !isDigit(s.peek()) {
		return nil, s.errorHere()
	}
	for isDigit(s.peek()) {
		s.pos++
	}
	if s.peek() == '!' {
		s.pos++
	}
	variantsStart := s.pos
	for isVariantLetter(s.peek()) {
		s.pos++
	}
	if s.pos == variantsStart {
		return nil, s.errorHere()
	}

	set, err := variant.ParseMutationSet(s.src[start:s.pos])
	if err != nil {
		return nil, s.errorAt(start)
	}
	return ast.NewMutationAtom(set), nil
}

// parseSelect parses the remainder of a SELECT statement; the SELECT keyword
// has already been consumed.
func (p *Parser) parseSelect(s *scanner) (ast.Node, error) {
	quant, err := p.parseQuantifier(s)
	if err != nil {
		return nil, err
	}
	if !s.keyword("FROM") {
		return nil, s.errorHere()
	}
	if !s.symbol("(") {
		return nil, s.errorHere()
	}
	var atoms []ast.Node
	for {
		atom, err := p.parseResidue(s)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, atom)
		if !s.symbol(",") {
			break
		}
	}
	if !s.symbol(")") {
		return nil, s.errorHere()
	}
	return &ast.SelectFrom{Quant: quant, Atoms: atoms}, nil
}

// parseQuantifier parses a match-count predicate with the same two-level
// precedence as boolean conditions: AND binds tighter than OR.
func (p *Parser) parseQuantifier(s *scanner) (ast.Quantifier, error) {
	left, err := p.parseQuantAnd(s)
	if err != nil {
		return nil, err
	}
	for s.keyword("OR") {
		right, err := p.parseQuantAnd(s)
		if err != nil {
			return nil, err
		}
		left = &ast.QuantifierOr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseQuantAnd(s *scanner) (ast.Quantifier, error) {
	first, err := p.parseQuantPrim(s)
	if err != nil {
		return nil, err
	}
	children := []ast.Quantifier{first}
	for s.keyword("AND") {
		next, err := p.parseQuantPrim(s)
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &ast.QuantifierAnd{Children: children}, nil
}

func (p *Parser) parseQuantPrim(s *scanner) (ast.Quantifier, error) {
	if s.symbol("(") {
		inner, err := p.parseQuantifier(s)
		if err != nil {
			return nil, err
		}
		if !s.symbol(")") {
			return nil, s.errorHere()
		}
		return inner, nil
	}

	var op ast.EqualityOp
	switch {
	case s.keyword("ATLEAST"):
		op = ast.AtLeast
	case s.keyword("EXACTLY"):
		op = ast.Exactly
	case s.keyword("NOTMORETHAN"):
		op = ast.NotMoreThan
	default:
		return nil, s.errorHere()
	}

	limit, err := p.parseInt(s)
	if err != nil {
		return nil, err
	}
	return &ast.EqualityExpr{Op: op, Limit: limit}, nil
}

func (p *Parser) parseInt(s *scanner) (int, error) {
	s.skipSpace()
	start := s.pos
	for isDigit(s.peek()) {
		s.pos++
	}
	if s.pos == start {
		return 0, s.errorHere()
	}
	n, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		return 0, s.errorAt(start)
	}
	return n, nil
}

// parseScoreCond parses a full SCORE FROM (...) statement.
func (p *Parser) parseScoreCond(s *scanner) (ast.Node, error) {
	if !s.keyword("SCORE") {
		return nil, s.errorHere()
	}
	if !s.keyword("FROM") {
		return nil, s.errorHere()
	}
	if !s.symbol("(") {
		return nil, s.errorHere()
	}
	var lists []ast.Node
	for {
		element, err := p.parseScoreElement(s)
		if err != nil {
			return nil, err
		}
		lists = append(lists, element)
		if !s.symbol(",") {
			break
		}
	}
	if !s.symbol(")") {
		return nil, s.errorHere()
	}
	return &ast.ScoreCond{Lists: lists}, nil
}

// parseScoreElement parses one element of a score list: either an accumulator
// over a nested list, or a "condition => score" item.
func (p *Parser) parseScoreElement(s *scanner) (ast.Node, error) {
	if op, ok := p.acceptAccumulator(s); ok {
		return p.parseScoreList(s, op)
	}

	cond, err := p.parseBoolean(s)
	if err != nil {
		return nil, err
	}
	if !s.symbol("=>") {
		return nil, s.errorHere()
	}
	return p.parseScoreValue(s, cond)
}

// acceptAccumulator consumes an aggregation keyword if one is present. MAX is
// available in both dialects; MIN and MEAN only in the extended one.
func (p *Parser) acceptAccumulator(s *scanner) (ast.AggregateOp, bool) {
	switch {
	case s.keyword("MAX"):
		return ast.Max, true
	case p.extended && s.keyword("MEAN"):
		return ast.Mean, true
	case p.extended && s.keyword("MIN"):
		return ast.Min, true
	}
	return ast.Sum, false
}

func (p *Parser) parseScoreList(s *scanner, op ast.AggregateOp) (ast.Node, error) {
	if !s.symbol("(") {
		return nil, s.errorHere()
	}
	var items []ast.Node
	for {
		item, err := p.parseScoreElement(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !s.symbol(",") {
			break
		}
	}
	if !s.symbol(")") {
		return nil, s.errorHere()
	}
	return &ast.ScoreList{Op: op, Items: items}, nil
}

// parseScoreValue parses the score slot after "=>": a quoted flag label, a
// signed integer, or (extended dialect) a nested score list.
func (p *Parser) parseScoreValue(s *scanner, cond ast.Node) (ast.Node, error) {
	s.skipSpace()
	if s.peek() == '"' {
		label, err := p.parseFlag(s)
		if err != nil {
			return nil, err
		}
		return &ast.ScoreExpr{Cond: cond, Flag: label}, nil
	}

	if p.extended {
		if op, ok := p.acceptAccumulator(s); ok {
			nested, err := p.parseScoreList(s, op)
			if err != nil {
				return nil, err
			}
			return &ast.ScoreExpr{Cond: cond, Nested: nested}, nil
		}
		if s.peek() == '(' {
			nested, err := p.parseScoreList(s, ast.Sum)
			if err != nil {
				return nil, err
			}
			return &ast.ScoreExpr{Cond: cond, Nested: nested}, nil
		}
	}

	start := s.pos
	if s.peek() == '-' {
		s.pos++
	}
	digitsStart := s.pos
	for isDigit(s.peek()) {
		s.pos++
	}
	if s.pos == digitsStart {
		return nil, s.errorHere()
	}
	n, err := strconv.Atoi(s.src[start:s.pos])
	if err != nil {
		return nil, s.errorAt(start)
	}
	return &ast.ScoreExpr{Cond: cond, Score: n}, nil
}

// parseFlag parses a quoted flag label. Labels are restricted to letters,
// digits, spaces, and underscores.
func (p *Parser) parseFlag(s *scanner) (string, error) {
	s.pos++ // opening quote
	start := s.pos
	for isFlagChar(s.peek()) {
		s.pos++
	}
	if s.pos == start || s.peek() != '"' {
		return "", s.errorHere()
	}
	label := s.src[start:s.pos]
	s.pos++ // closing quote
	return label, nil
}

// scanner tracks a position in the rule text. All lookahead helpers skip
// leading whitespace first, so a failed match leaves the position on the
// first meaningful character, which is where syntax errors point.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

// peek returns the current byte, or 0 at end of input.
func (s *scanner) peek() byte { return s.peekAt(0) }

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

// keyword consumes kw if it appears next followed by a word boundary.
func (s *scanner) keyword(kw string) bool {
	if !s.peekKeyword(kw) {
		return false
	}
	s.pos += len(kw)
	return true
}

// peekKeyword reports whether kw appears next, without consuming it. Leading
// whitespace is skipped either way.
func (s *scanner) peekKeyword(kw string) bool {
	s.skipSpace()
	if !strings.HasPrefix(s.src[s.pos:], kw) {
		return false
	}
	return !isWordChar(s.peekAt(len(kw)))
}

// symbol consumes a literal punctuation token if it appears next.
func (s *scanner) symbol(sym string) bool {
	s.skipSpace()
	if !strings.HasPrefix(s.src[s.pos:], sym) {
		return false
	}
	s.pos += len(sym)
	return true
}

func (s *scanner) errorHere() *hcvrerr.SyntaxError {
	return hcvrerr.NewSyntaxError(s.src, s.pos)
}

func (s *scanner) errorAt(offset int) *hcvrerr.SyntaxError {
	return hcvrerr.NewSyntaxError(s.src, offset)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func isVariantLetter(c byte) bool {
	return isUpper(c) || c == 'i' || c == 'd'
}

func isWordChar(c byte) bool {
	return isUpper(c) || isDigit(c) || (c >= 'a' && c <= 'z') || c == '_'
}

func isFlagChar(c byte) bool {
	return isWordChar(c) || c == ' '
}
