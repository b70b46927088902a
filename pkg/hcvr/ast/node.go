package ast

import (
	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/variant"
)

// Node is one node of a parsed rule. Evaluation is a pure function of the
// environment; nodes are immutable and safe to evaluate concurrently.
type Node interface {
	Evaluate(env variant.Calls) (Result, error)
}

// BoolConst is the TRUE or FALSE literal.
type BoolConst struct {
	Value bool
}

// Evaluate returns the constant with no supporting residues.
func (n *BoolConst) Evaluate(variant.Calls) (Result, error) {
	return NewResult(BoolValue(n.Value), nil), nil
}

// MutationAtom is a residue leaf: the set of mutation calls that satisfy it
// at one position, e.g. "41L" or "184!VI".
type MutationAtom struct {
	set variant.MutationSet
}

// NewMutationAtom builds an atom requiring any of the given calls.
func NewMutationAtom(set variant.MutationSet) *MutationAtom {
	return &MutationAtom{set: set}
}

// Set returns the calls the atom matches against.
func (n *MutationAtom) Set() variant.MutationSet { return n.set }

// Evaluate scans the environment for the atom's position. A non-empty
// intersection with the calls observed there is a true result supported by
// the intersecting environment calls; an empty intersection is false. If the
// position is absent from every mutation set in the environment, the
// evaluation fails with *hcvrerr.MissingPositionError — total absence of a
// position is an input defect, not a non-match.
func (n *MutationAtom) Evaluate(env variant.Calls) (Result, error) {
	observed, ok := env.At(n.set.Position())
	if !ok {
		return Result{}, &hcvrerr.MissingPositionError{Position: n.set.Position()}
	}
	common, err := observed.Intersect(n.set)
	if err != nil {
		return Result{}, err
	}
	if len(common) == 0 {
		return NewResult(BoolValue(false), nil), nil
	}
	return NewResult(BoolValue(true), common), nil
}

// ExceptExpr negates a residue atom: EXCEPT 69i is true exactly when 69i does
// not match. The atom's residues are retained for traceability when the
// excluded call was in fact observed.
type ExceptExpr struct {
	Atom Node
}

// Evaluate inverts the wrapped atom's boolean result.
func (n *ExceptExpr) Evaluate(env variant.Calls) (Result, error) {
	inner, err := n.Atom.Evaluate(env)
	if err != nil {
		return Result{}, err
	}
	return NewResult(BoolValue(!inner.Bool()), inner.residues), nil
}

// AndExpr is an n-ary boolean AND fold.
type AndExpr struct {
	children []Node
}

// NewAndExpr builds an AND over one or more children. A zero-child AND is an
// implementation error and reported as such.
func NewAndExpr(children ...Node) (*AndExpr, error) {
	if len(children) == 0 {
		return nil, hcvrerr.Semanticf("AND requires at least one operand")
	}
	return &AndExpr{children: children}, nil
}

// Children returns the operands in evaluation order.
func (n *AndExpr) Children() []Node { return n.children }

// Evaluate folds the children in order, short-circuiting to a bare false
// result as soon as one child is false; later children are not evaluated and
// the residues gathered so far are discarded. If every child is true the
// result is true with the union of all residues.
func (n *AndExpr) Evaluate(env variant.Calls) (Result, error) {
	var residues []variant.Mutation
	for _, child := range n.children {
		r, err := child.Evaluate(env)
		if err != nil {
			return Result{}, err
		}
		if !r.Bool() {
			return NewResult(BoolValue(false), nil), nil
		}
		residues = unionResidues(residues, r.residues)
	}
	return NewResult(BoolValue(true), residues), nil
}

// OrExpr is a binary boolean OR. Both sides are always evaluated, so a
// missing position on either side surfaces regardless of the other side's
// value.
type OrExpr struct {
	Left, Right Node
}

// Evaluate returns the disjunction with the union of both sides' residues.
// A nil child counts as a bare false result.
func (n *OrExpr) Evaluate(env variant.Calls) (Result, error) {
	left, err := evaluateOrFalse(n.Left, env)
	if err != nil {
		return Result{}, err
	}
	right, err := evaluateOrFalse(n.Right, env)
	if err != nil {
		return Result{}, err
	}
	return NewResult(BoolValue(left.Bool() || right.Bool()),
		unionResidues(left.residues, right.residues)), nil
}

func evaluateOrFalse(n Node, env variant.Calls) (Result, error) {
	if n == nil {
		return NewResult(BoolValue(false), nil), nil
	}
	return n.Evaluate(env)
}

// EqualityOp is the comparison selected by an ATLEAST/EXACTLY/NOTMORETHAN
// quantifier keyword.
type EqualityOp int

const (
	// AtLeast matches counts >= limit.
	AtLeast EqualityOp = iota
	// Exactly matches counts == limit.
	Exactly
	// NotMoreThan matches counts <= limit.
	NotMoreThan
)

// Quantifier is a predicate over the number of residues that matched inside a
// SELECT statement. Quantifiers compose with AND/OR, e.g.
// "ATLEAST 2 AND NOTMORETHAN 3".
type Quantifier interface {
	Match(count int) bool
}

// EqualityExpr is a single inequality quantifier: an operator and an integer
// limit. It is consumed by SelectFrom and never evaluated against an
// environment directly.
type EqualityExpr struct {
	Op    EqualityOp
	Limit int
}

// Match applies the inequality to a match count.
func (e *EqualityExpr) Match(count int) bool {
	switch e.Op {
	case AtLeast:
		return count >= e.Limit
	case Exactly:
		return count == e.Limit
	default:
		return count <= e.Limit
	}
}

// QuantifierAnd matches when every child quantifier matches.
type QuantifierAnd struct {
	Children []Quantifier
}

// Match implements Quantifier.
func (q *QuantifierAnd) Match(count int) bool {
	for _, child := range q.Children {
		if !child.Match(count) {
			return false
		}
	}
	return true
}

// QuantifierOr matches when either side matches.
type QuantifierOr struct {
	Left, Right Quantifier
}

// Match implements Quantifier.
func (q *QuantifierOr) Match(count int) bool {
	return q.Left.Match(count) || q.Right.Match(count)
}

// SelectFrom is a SELECT <quantifier> FROM (residues...) statement: true when
// the number of matching residues satisfies the quantifier.
type SelectFrom struct {
	Quant Quantifier
	Atoms []Node
}

// Evaluate evaluates every residue atom — so a missing position anywhere in
// the list surfaces — counts the matches, and applies the quantifier to the
// count. Residues union over matching and non-matching atoms alike.
func (n *SelectFrom) Evaluate(env variant.Calls) (Result, error) {
	count := 0
	var residues []variant.Mutation
	for _, atom := range n.Atoms {
		r, err := atom.Evaluate(env)
		if err != nil {
			return Result{}, err
		}
		if r.Bool() {
			count++
		}
		residues = unionResidues(residues, r.residues)
	}
	return NewResult(BoolValue(n.Quant.Match(count)), residues), nil
}

// ScoreExpr maps a boolean condition to a score contribution: either a signed
// integer literal or a quoted flag label. A false condition contributes a
// bare zero that neither poisons aggregation nor carries residues. A true
// condition contributes the literal score with the condition's residues, or —
// for a flag — raises the label with a nominal zero score. The nominal zero
// is a compatibility decision inherited from the authoritative rule corpus;
// changing it to "no contribution" would alter MAX/MIN aggregates that mix
// flags with numeric scores.
type ScoreExpr struct {
	Cond  Node
	Score int
	Flag  string // non-empty means a flag label instead of a numeric score

	// Nested holds a score list used as the score slot (extended dialect,
	// e.g. "100G => MAX (...)"). Nil for plain literal scores.
	Nested Node
}

// Evaluate implements Node.
func (n *ScoreExpr) Evaluate(env variant.Calls) (Result, error) {
	r, err := n.Cond.Evaluate(env)
	if err != nil {
		return Result{}, err
	}
	if !r.Bool() {
		return NewResult(IntValue(0), nil), nil
	}
	if n.Nested != nil {
		nested, err := n.Nested.Evaluate(env)
		if err != nil {
			return Result{}, err
		}
		return newFlaggedResult(nested.value,
			unionResidues(r.residues, nested.residues), nested.flags), nil
	}
	if n.Flag != "" {
		return newFlaggedResult(IntValue(0), r.residues, singleFlag(n.Flag)), nil
	}
	return NewResult(IntValue(n.Score), r.residues), nil
}

// AggregateOp selects how a score list combines its contributions.
type AggregateOp int

const (
	// Sum adds contributions; the default when no keyword is written.
	Sum AggregateOp = iota
	// Max keeps the largest truthy contribution.
	Max
	// Min keeps the smallest truthy contribution (extended dialect).
	Min
	// Mean averages the truthy contributions, truncating toward zero
	// (extended dialect).
	Mean
)

// ScoreList aggregates score items (ScoreExpr or nested ScoreList) under one
// accumulator. Only truthy items — non-zero scores or true booleans —
// participate in the aggregate, so a MAX over negative scores is not masked
// by unmatched items' zeros. Residues and flags merge over all items
// regardless of whether they contributed numerically. A list with no truthy
// item yields a boolean-false result, distinguishable from a genuine zero
// total.
type ScoreList struct {
	Op    AggregateOp
	Items []Node
}

// Evaluate implements Node.
func (n *ScoreList) Evaluate(env variant.Calls) (Result, error) {
	if len(n.Items) == 0 {
		return Result{}, hcvrerr.Semanticf("score list requires at least one item")
	}

	var residues []variant.Mutation
	var flags FlagSet
	var contributions []int
	for _, item := range n.Items {
		r, err := item.Evaluate(env)
		if err != nil {
			return Result{}, err
		}
		residues = unionResidues(residues, r.residues)
		flags = flags.merge(r.flags)
		if r.value.IsTruthy() {
			contributions = append(contributions, r.value.Int())
		}
	}

	if len(contributions) == 0 {
		return newFlaggedResult(BoolValue(false), residues, flags), nil
	}

	total, err := n.aggregate(contributions)
	if err != nil {
		return Result{}, err
	}
	return newFlaggedResult(IntValue(total), residues, flags), nil
}

// aggregate folds the truthy contributions under the configured accumulator.
// Ties in MAX/MIN keep the earliest contribution, which is observable only
// through the (equal) reported value.
func (n *ScoreList) aggregate(contributions []int) (int, error) {
	switch n.Op {
	case Sum:
		total := 0
		for _, c := range contributions {
			total += c
		}
		return total, nil
	case Max:
		best := contributions[0]
		for _, c := range contributions[1:] {
			if c > best {
				best = c
			}
		}
		return best, nil
	case Min:
		best := contributions[0]
		for _, c := range contributions[1:] {
			if c < best {
				best = c
			}
		}
		return best, nil
	case Mean:
		total := 0
		for _, c := range contributions {
			total += c
		}
		return total / len(contributions), nil
	default:
		return 0, hcvrerr.Semanticf("unknown score accumulator %d", n.Op)
	}
}

// ScoreCond is the top-level SCORE FROM (...) condition: the sum, under the
// Result addition law, of every child score list or score expression.
type ScoreCond struct {
	Lists []Node
}

// Evaluate implements Node.
func (n *ScoreCond) Evaluate(env variant.Calls) (Result, error) {
	acc := NewResult(IntValue(0), nil)
	for _, list := range n.Lists {
		r, err := list.Evaluate(env)
		if err != nil {
			return Result{}, err
		}
		acc = acc.Add(r)
	}
	return acc, nil
}
