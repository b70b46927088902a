package variant

import (
	"fmt"
	"regexp"
	"sort"
)

// AminoAlphabet is the fixed 20-letter amino-acid alphabet used for
// "!"-complement expansion. Insertions ("i") and deletions ("d") are not part
// of the alphabet and are never added by complement expansion.
const AminoAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// ConstructionError reports malformed mutation text, conflicting wildtypes,
// multiple positions in one mutation set, or duplicate positions in one Calls
// environment. It is raised at construction (or comparison, for wildtype
// conflicts) and never deferred to evaluation.
type ConstructionError struct {
	Message string
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return e.Message
}

func constructionErrorf(format string, args ...any) error {
	return &ConstructionError{Message: fmt.Sprintf(format, args...)}
}

var mutationPattern = regexp.MustCompile(`^([A-Z]?)(\d+)([idA-Z])$`)

// Mutation is a single observed amino-acid call: a 1-based position, a variant
// (amino-acid letter, "i" for insertion, or "d" for deletion), and an optional
// wildtype letter. Immutable once constructed.
type Mutation struct {
	pos      int
	variant  byte
	wildtype byte // 0 when unspecified
}

// ParseMutation parses a mutation from text: optional wildtype letter,
// position, and exactly one variant letter (e.g. "S100G", "41L", "69i").
func ParseMutation(text string) (Mutation, error) {
	match := mutationPattern.FindStringSubmatch(text)
	if match == nil {
		return Mutation{}, constructionErrorf(
			"Mutation text expects wild type (optional), position, and one variant: %q.", text)
	}

	var wildtype byte
	if match[1] != "" {
		wildtype = match[1][0]
	}
	pos := 0
	for i := 0; i < len(match[2]); i++ {
		pos = pos*10 + int(match[2][i]-'0')
	}
	return NewMutation(wildtype, pos, match[3][0])
}

// NewMutation constructs a mutation from its parts. A zero wildtype means
// "unspecified".
func NewMutation(wildtype byte, pos int, v byte) (Mutation, error) {
	if pos <= 0 {
		return Mutation{}, constructionErrorf("Mutation position must be positive, got %d.", pos)
	}
	if !isVariantLetter(v) {
		return Mutation{}, constructionErrorf("Invalid variant %q.", string(v))
	}
	if wildtype != 0 && (wildtype < 'A' || wildtype > 'Z') {
		return Mutation{}, constructionErrorf("Invalid wildtype %q.", string(wildtype))
	}
	return Mutation{pos: pos, variant: v, wildtype: wildtype}, nil
}

func isVariantLetter(v byte) bool {
	return (v >= 'A' && v <= 'Z') || v == 'i' || v == 'd'
}

// Position returns the 1-based sequence position.
func (m Mutation) Position() int { return m.pos }

// Variant returns the called variant letter.
func (m Mutation) Variant() byte { return m.variant }

// Wildtype returns the wildtype letter and whether one was specified.
func (m Mutation) Wildtype() (byte, bool) { return m.wildtype, m.wildtype != 0 }

// String returns the text form: wildtype (if any), position, variant.
func (m Mutation) String() string {
	if m.wildtype != 0 {
		return fmt.Sprintf("%c%d%c", m.wildtype, m.pos, m.variant)
	}
	return fmt.Sprintf("%d%c", m.pos, m.variant)
}

// Equal reports whether two mutations describe the same call. Positions and
// variants must match; the wildtype is ignored unless both mutations specify
// one, in which case a disagreement is a hard data inconsistency reported as
// a *ConstructionError rather than a false result.
func (m Mutation) Equal(other Mutation) (bool, error) {
	if m.pos != other.pos {
		return false, nil
	}
	if m.wildtype != 0 && other.wildtype != 0 && m.wildtype != other.wildtype {
		return false, constructionErrorf("Wild type mismatch between %s and %s.", m, other)
	}
	return m.variant == other.variant, nil
}

// SortMutations sorts mutations in place by position, then variant letter.
func SortMutations(muts []Mutation) {
	sort.Slice(muts, func(i, j int) bool {
		if muts[i].pos != muts[j].pos {
			return muts[i].pos < muts[j].pos
		}
		return muts[i].variant < muts[j].variant
	})
}
