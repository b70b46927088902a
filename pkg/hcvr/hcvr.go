package hcvr

import (
	"genoscope-hq/callisto/pkg/hcvr/ast"
	"genoscope-hq/callisto/pkg/hcvr/parser"
	"genoscope-hq/callisto/pkg/variant"
)

// Rule is a parsed resistance rule. It retains its source text verbatim and
// is immutable: a Rule may be shared and evaluated concurrently.
type Rule struct {
	source string
	root   ast.Node
}

// Parse compiles base-dialect rule text into a Rule.
func Parse(source string) (*Rule, error) {
	return parse(parser.NewParser(), source)
}

// ParseExtended compiles rule text accepting the extended dialect.
func ParseExtended(source string) (*Rule, error) {
	return parse(parser.NewParser().WithExtended(true), source)
}

func parse(p *parser.Parser, source string) (*Rule, error) {
	root, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	return &Rule{source: source, root: root}, nil
}

// Source returns the rule text exactly as given to Parse.
func (r *Rule) Source() string { return r.source }

// String returns the rule text.
func (r *Rule) String() string { return r.source }

// Root returns the rule's syntax tree for callers that need to inspect it.
func (r *Rule) Root() ast.Node { return r.root }

// Evaluate runs the rule against an environment of observed mutation calls
// and returns the full result: value, supporting residues, and flags.
func (r *Rule) Evaluate(env variant.Calls) (ast.Result, error) {
	return r.root.Evaluate(env)
}

// Bool evaluates the rule and reduces the result to its boolean view.
func (r *Rule) Bool(env variant.Calls) (bool, error) {
	result, err := r.root.Evaluate(env)
	if err != nil {
		return false, err
	}
	return result.Bool(), nil
}

// Score evaluates the rule and reduces the result to its numeric view.
// Boolean results coerce to 0 or 1.
func (r *Rule) Score(env variant.Calls) (int, error) {
	result, err := r.root.Evaluate(env)
	if err != nil {
		return 0, err
	}
	return result.Score(), nil
}
