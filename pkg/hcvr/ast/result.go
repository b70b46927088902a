package ast

import (
	"strconv"

	"genoscope-hq/callisto/pkg/variant"
)

// ValueKind tags the two shapes a rule result can take.
type ValueKind int

const (
	// KindBool marks a boolean classification result.
	KindBool ValueKind = iota
	// KindInt marks a numeric resistance score.
	KindInt
)

// Value is the tagged boolean-or-integer result of evaluating a node.
// Coercion is defined once here and used consistently: a non-zero integer or
// true is truthy; false or zero is falsy; booleans convert to 0/1 when drawn
// into arithmetic.
type Value struct {
	kind ValueKind
	b    bool
	n    int
}

// BoolValue returns a boolean-kinded value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an integer-kinded value.
func IntValue(n int) Value { return Value{kind: KindInt, n: n} }

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsTruthy reports whether the value participates in aggregation: true for a
// true boolean or a non-zero integer.
func (v Value) IsTruthy() bool {
	if v.kind == KindBool {
		return v.b
	}
	return v.n != 0
}

// Int returns the numeric view of the value; booleans coerce to 0 or 1.
func (v Value) Int() int {
	if v.kind == KindBool {
		if v.b {
			return 1
		}
		return 0
	}
	return v.n
}

// Bool returns the boolean view of the value (truthiness).
func (v Value) Bool() bool { return v.IsTruthy() }

// String returns "true"/"false" for booleans and decimal digits for integers.
func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return strconv.Itoa(v.n)
}

// FlagSet is an ordered mapping from flag label to the supporting-mutation
// collections accumulated for that label. Labels keep first-seen order;
// merging concatenates support lists on label collision instead of
// overwriting. The zero value is an empty set. FlagSets are immutable; every
// combination builds a fresh value.
type FlagSet struct {
	labels  []string
	support map[string][][]variant.Mutation
}

// singleFlag returns a FlagSet holding one label with the given support.
func singleFlag(label string, support ...[]variant.Mutation) FlagSet {
	return FlagSet{
		labels:  []string{label},
		support: map[string][][]variant.Mutation{label: support},
	}
}

// Len returns the number of distinct labels.
func (f FlagSet) Len() int { return len(f.labels) }

// Has reports whether the label was raised.
func (f FlagSet) Has(label string) bool {
	_, ok := f.support[label]
	return ok
}

// Labels returns the labels in first-seen order.
func (f FlagSet) Labels() []string {
	out := make([]string, len(f.labels))
	copy(out, f.labels)
	return out
}

// Support returns the supporting-mutation collections recorded for a label.
func (f FlagSet) Support(label string) [][]variant.Mutation {
	return f.support[label]
}

// merge combines two flag sets, concatenating support lists where labels
// collide and appending new labels in order.
func (f FlagSet) merge(other FlagSet) FlagSet {
	if other.Len() == 0 {
		return f
	}
	if f.Len() == 0 {
		return other
	}
	merged := FlagSet{
		labels:  make([]string, len(f.labels), len(f.labels)+len(other.labels)),
		support: make(map[string][][]variant.Mutation, len(f.support)+len(other.support)),
	}
	copy(merged.labels, f.labels)
	for label, lists := range f.support {
		merged.support[label] = lists
	}
	for _, label := range other.labels {
		if existing, ok := merged.support[label]; ok {
			merged.support[label] = append(append([][]variant.Mutation{}, existing...), other.support[label]...)
		} else {
			merged.labels = append(merged.labels, label)
			merged.support[label] = other.support[label]
		}
	}
	return merged
}

// Result is the single value type flowing through evaluation: a tagged
// boolean-or-integer value, the residues that supported it, and any flags
// raised. Results are produced fresh at every node and never mutated.
type Result struct {
	value    Value
	residues []variant.Mutation
	flags    FlagSet
}

// NewResult builds a result with the given value and supporting residues.
func NewResult(v Value, residues []variant.Mutation) Result {
	return Result{value: v, residues: dedupResidues(residues)}
}

// newFlaggedResult builds a result that additionally carries flags.
func newFlaggedResult(v Value, residues []variant.Mutation, flags FlagSet) Result {
	return Result{value: v, residues: dedupResidues(residues), flags: flags}
}

// Value returns the tagged result value.
func (r Result) Value() Value { return r.value }

// Bool returns the boolean view of the result.
func (r Result) Bool() bool { return r.value.Bool() }

// Score returns the numeric view of the result.
func (r Result) Score() int { return r.value.Int() }

// Residues returns the supporting mutation calls, sorted by position then
// variant.
func (r Result) Residues() []variant.Mutation {
	out := make([]variant.Mutation, len(r.residues))
	copy(out, r.residues)
	return out
}

// Flags returns the flags raised while producing this result.
func (r Result) Flags() FlagSet { return r.flags }

// Add combines two results under the score-aggregation law: values add as
// integers (booleans coerce to 0/1), residue sets union, and flag mappings
// merge by appending on label collision.
func (r Result) Add(other Result) Result {
	return Result{
		value:    IntValue(r.value.Int() + other.value.Int()),
		residues: unionResidues(r.residues, other.residues),
		flags:    r.flags.merge(other.flags),
	}
}

type residueKey struct {
	pos     int
	variant byte
}

// dedupResidues copies the slice with duplicate (position, variant) calls
// removed, sorted for deterministic output.
func dedupResidues(residues []variant.Mutation) []variant.Mutation {
	if len(residues) == 0 {
		return nil
	}
	seen := make(map[residueKey]bool, len(residues))
	out := make([]variant.Mutation, 0, len(residues))
	for _, m := range residues {
		key := residueKey{m.Position(), m.Variant()}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	variant.SortMutations(out)
	return out
}

// unionResidues merges two residue sets, keeping the first occurrence of each
// (position, variant) call.
func unionResidues(a, b []variant.Mutation) []variant.Mutation {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return dedupResidues(b)
	}
	merged := make([]variant.Mutation, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return dedupResidues(merged)
}
