package variant

import (
	"sort"
	"strings"
)

// Calls is the evaluation environment for one rule evaluation: a set of
// MutationSet values, one per distinct position. Immutable once constructed;
// iteration order is irrelevant and comparison is set-wise.
type Calls struct {
	sets map[int]MutationSet
}

// ParseCalls parses a whitespace-separated list of mutation-set terms, e.g.
// "41L 67N 70R 215FY". Two terms at the same position are a construction
// error. An empty string yields an empty environment.
func ParseCalls(text string) (Calls, error) {
	sets := make(map[int]MutationSet)
	for _, term := range strings.Fields(text) {
		ms, err := ParseMutationSet(term)
		if err != nil {
			return Calls{}, err
		}
		if _, dup := sets[ms.Position()]; dup {
			return Calls{}, constructionErrorf("Multiple mutation sets at position %d.", ms.Position())
		}
		sets[ms.Position()] = ms
	}
	return Calls{sets: sets}, nil
}

// CallsFromAlignment derives an environment from a wildtype reference and the
// amino acids called at each position of a pre-aligned sample. sample[i] holds
// the variant letters called at position i+1; positions with an empty call are
// omitted from the environment. The sequences must have equal length.
//
// Every called position is included, even where the call equals the
// reference: downstream rules probe wildtype positions too, and omitting them
// would turn ordinary "no change here" evaluations into missing-position
// failures.
func CallsFromAlignment(reference string, sample []string) (Calls, error) {
	if len(reference) != len(sample) {
		return Calls{}, constructionErrorf(
			"Reference length was %d and sample length was %d.", len(reference), len(sample))
	}
	sets := make(map[int]MutationSet)
	for i, alt := range sample {
		if alt == "" {
			continue
		}
		ms, err := NewMutationSet(reference[i], i+1, alt)
		if err != nil {
			return Calls{}, err
		}
		sets[i+1] = ms
	}
	return Calls{sets: sets}, nil
}

// At returns the mutation set at the given position, if any.
func (c Calls) At(pos int) (MutationSet, bool) {
	ms, ok := c.sets[pos]
	return ms, ok
}

// HasPosition reports whether any mutation set covers the given position.
func (c Calls) HasPosition(pos int) bool {
	_, ok := c.sets[pos]
	return ok
}

// Len returns the number of covered positions.
func (c Calls) Len() int { return len(c.sets) }

// Sets returns the mutation sets sorted by position.
func (c Calls) Sets() []MutationSet {
	sets := make([]MutationSet, 0, len(c.sets))
	for _, ms := range c.sets {
		sets = append(sets, ms)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Position() < sets[j].Position() })
	return sets
}

// String returns the space-joined canonical forms, sorted by position.
func (c Calls) String() string {
	sets := c.Sets()
	parts := make([]string, len(sets))
	for i, ms := range sets {
		parts[i] = ms.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports set-wise equality of the two environments. Wildtype conflicts
// surface as a *ConstructionError, as in MutationSet.Equal.
func (c Calls) Equal(other Calls) (bool, error) {
	if len(c.sets) != len(other.sets) {
		return false, nil
	}
	for pos, ms := range c.sets {
		o, ok := other.sets[pos]
		if !ok {
			return false, nil
		}
		eq, err := ms.Equal(o)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}
