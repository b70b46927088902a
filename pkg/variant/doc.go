// Package variant implements the mutation algebra that resistance rules are
// evaluated against: single amino-acid calls (Mutation), the set of calls
// observed at one sequence position (MutationSet), and the full observed
// environment for one evaluation (Calls).
//
// # Text Forms
//
// A Mutation is written as an optional wildtype letter, a 1-based position,
// and a single variant letter: "S100G", "41L", "69i". The variant is one of
// the twenty amino-acid letters, "i" for an insertion, or "d" for a deletion.
//
// A MutationSet is written the same way with one or more variant letters,
// optionally prefixed by "!" to negate them against the amino-acid alphabet:
//
//	"41L"     position 41, leucine
//	"Q80KR"   wildtype Q, position 80, lysine or arginine
//	"184!VI"  position 184, every amino acid except valine and isoleucine
//
// The canonical String form sorts the variant letters and switches to the
// "!"-complement form whenever more than ten variants are present, keeping
// round-trip text compact. Insertions and deletions never take part in
// complement expansion.
//
// A Calls environment is a whitespace-separated list of MutationSet terms,
// one per distinct position:
//
//	calls, err := variant.ParseCalls("41L 67N 70R 215F")
//
// or is derived from a pre-aligned reference/sample pair:
//
//	calls, err := variant.CallsFromAlignment(ref, sample)
//
// # Wildtype Consistency
//
// Two values that both carry a wildtype must agree on it. A mismatch is a
// data-inconsistency in the inputs, so comparison and intersection report a
// *ConstructionError instead of returning false.
//
// All three types are immutable after construction and safe for concurrent
// use.
package variant
