package variant

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var mutationSetPattern = regexp.MustCompile(`^([A-Z]?)(\d+)(!)?([idA-Z]+)$`)

// MutationSet holds every mutation call observed at one sequence position,
// together with the position's optional wildtype. Immutable once constructed.
type MutationSet struct {
	pos       int
	wildtype  byte // 0 when unspecified
	mutations map[byte]Mutation
}

// ParseMutationSet parses a mutation set from text: optional wildtype letter,
// position, and one or more variant letters optionally prefixed by "!"
// (e.g. "Q80KR", "184!VI"). A "!" prefix expands to every letter of the
// amino-acid alphabet except the listed ones.
func ParseMutationSet(text string) (MutationSet, error) {
	return parseMutationSet(text, "")
}

// ParseMutationSetRef parses a mutation set like ParseMutationSet, taking the
// wildtype from reference[pos-1] instead of the text.
func ParseMutationSetRef(text, reference string) (MutationSet, error) {
	return parseMutationSet(text, reference)
}

func parseMutationSet(text, reference string) (MutationSet, error) {
	match := mutationSetPattern.FindStringSubmatch(text)
	if match == nil {
		return MutationSet{}, constructionErrorf(
			"MutationSet text expects wild type (optional), position, and one or more variants: %q.", text)
	}

	var wildtype byte
	if match[1] != "" {
		wildtype = match[1][0]
	}
	pos, err := strconv.Atoi(match[2])
	if err != nil {
		return MutationSet{}, constructionErrorf("Invalid position in %q.", text)
	}
	if reference != "" {
		if pos < 1 || pos > len(reference) {
			return MutationSet{}, constructionErrorf(
				"Position %d is outside the reference of length %d.", pos, len(reference))
		}
		wildtype = reference[pos-1]
	}

	variants := match[4]
	if match[3] == "!" {
		variants = complement(variants)
	}
	return NewMutationSet(wildtype, pos, variants)
}

// complement returns the amino-acid alphabet minus the given letters.
func complement(variants string) string {
	var sb strings.Builder
	for i := 0; i < len(AminoAlphabet); i++ {
		if !strings.Contains(variants, string(AminoAlphabet[i])) {
			sb.WriteByte(AminoAlphabet[i])
		}
	}
	return sb.String()
}

// NewMutationSet constructs a mutation set at pos from an explicit wildtype
// (0 when unspecified) and a string of variant letters.
func NewMutationSet(wildtype byte, pos int, variants string) (MutationSet, error) {
	if variants == "" {
		return MutationSet{}, constructionErrorf("No variants at position %d.", pos)
	}
	mutations := make(map[byte]Mutation, len(variants))
	for i := 0; i < len(variants); i++ {
		m, err := NewMutation(wildtype, pos, variants[i])
		if err != nil {
			return MutationSet{}, err
		}
		mutations[variants[i]] = m
	}
	return MutationSet{pos: pos, wildtype: wildtype, mutations: mutations}, nil
}

// MutationSetOf constructs a mutation set from explicit Mutation values. The
// mutations must all share one position and at most one distinct wildtype;
// violating either is a construction error, as is an empty argument list.
func MutationSetOf(muts ...Mutation) (MutationSet, error) {
	if len(muts) == 0 {
		return MutationSet{}, constructionErrorf("No wildtype and no variants.")
	}

	positions := map[int]bool{}
	wildtypes := map[byte]bool{}
	mutations := make(map[byte]Mutation, len(muts))
	for _, m := range muts {
		positions[m.pos] = true
		if m.wildtype != 0 {
			wildtypes[m.wildtype] = true
		}
		mutations[m.variant] = m
	}

	if len(positions) > 1 {
		sorted := make([]int, 0, len(positions))
		for p := range positions {
			sorted = append(sorted, p)
		}
		sort.Ints(sorted)
		parts := make([]string, len(sorted))
		for i, p := range sorted {
			parts[i] = strconv.Itoa(p)
		}
		return MutationSet{}, constructionErrorf("Multiple positions found: %s.", strings.Join(parts, ", "))
	}
	if len(wildtypes) > 1 {
		letters := make([]string, 0, len(wildtypes))
		for w := range wildtypes {
			letters = append(letters, string(w))
		}
		sort.Strings(letters)
		return MutationSet{}, constructionErrorf("Multiple wildtypes found: %s.", strings.Join(letters, ", "))
	}

	var wildtype byte
	for w := range wildtypes {
		wildtype = w
	}
	var pos int
	for p := range positions {
		pos = p
	}
	return MutationSet{pos: pos, wildtype: wildtype, mutations: mutations}, nil
}

// Position returns the 1-based sequence position shared by all mutations.
func (s MutationSet) Position() int { return s.pos }

// Wildtype returns the wildtype letter and whether one was specified.
func (s MutationSet) Wildtype() (byte, bool) { return s.wildtype, s.wildtype != 0 }

// Len returns the number of distinct variant calls in the set.
func (s MutationSet) Len() int { return len(s.mutations) }

// Contains reports whether the set holds a call with the given variant letter.
func (s MutationSet) Contains(v byte) bool {
	_, ok := s.mutations[v]
	return ok
}

// Mutations returns the calls sorted by variant letter.
func (s MutationSet) Mutations() []Mutation {
	muts := make([]Mutation, 0, len(s.mutations))
	for _, m := range s.mutations {
		muts = append(muts, m)
	}
	SortMutations(muts)
	return muts
}

// Intersect returns the receiver's mutations whose variant also appears in
// other, provided both sets describe the same position. Used by evaluation to
// pull the environment's supporting calls for an atom: env.Intersect(atom)
// keeps the environment's mutations, which carry the observed wildtype.
// A wildtype disagreement between the two sets is a *ConstructionError.
func (s MutationSet) Intersect(other MutationSet) ([]Mutation, error) {
	if s.pos != other.pos {
		return nil, nil
	}
	if s.wildtype != 0 && other.wildtype != 0 && s.wildtype != other.wildtype {
		return nil, constructionErrorf("Wild type mismatch between %s and %s.", s, other)
	}
	var common []Mutation
	for v, m := range s.mutations {
		if other.Contains(v) {
			common = append(common, m)
		}
	}
	SortMutations(common)
	return common, nil
}

// Equal reports structural equality on (position, variants), ignoring order.
// As with Mutation.Equal, conflicting wildtypes are a *ConstructionError.
func (s MutationSet) Equal(other MutationSet) (bool, error) {
	if s.pos != other.pos {
		return false, nil
	}
	if s.wildtype != 0 && other.wildtype != 0 && s.wildtype != other.wildtype {
		return false, constructionErrorf("Wild type mismatch between %s and %s.", s, other)
	}
	if len(s.mutations) != len(other.mutations) {
		return false, nil
	}
	for v := range s.mutations {
		if !other.Contains(v) {
			return false, nil
		}
	}
	return true, nil
}

// variants returns the sorted variant letters present in the set.
func (s MutationSet) variants() string {
	letters := make([]byte, 0, len(s.mutations))
	for v := range s.mutations {
		letters = append(letters, v)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

// String returns the canonical text form: wildtype (if any), position, and
// sorted variant letters. Sets with more than ten variants are emitted in the
// compact "!"-complement form instead, matching the convention of real rule
// corpora; re-parsing either form yields an equal set.
func (s MutationSet) String() string {
	var sb strings.Builder
	if s.wildtype != 0 {
		sb.WriteByte(s.wildtype)
	}
	sb.WriteString(strconv.Itoa(s.pos))
	letters := s.variants()
	if len(letters) > 10 {
		sb.WriteByte('!')
		letters = complement(letters)
	}
	sb.WriteString(letters)
	return sb.String()
}

// GoString implements fmt.GoStringer for debugging output.
func (s MutationSet) GoString() string {
	return fmt.Sprintf("MutationSet(%q)", s.String())
}
