// Package ast defines the syntax tree for HCVR resistance rules and its
// evaluation semantics.
//
// The node set is closed: boolean constants, mutation atoms, EXCEPT negation,
// AND/OR connectives, SELECT ... FROM quantified matches, score expressions,
// score lists with SUM/MAX/MIN/MEAN aggregation, and the top-level
// SCORE FROM condition. Every node implements
//
//	Evaluate(env variant.Calls) (Result, error)
//
// as a pure function: nodes are immutable after parsing, evaluation allocates
// fresh Result values, and a parsed tree may be evaluated concurrently
// against independent environments without locking.
//
// A Result carries a tagged boolean-or-integer value, the residues (observed
// mutation calls) that supported it, and any textual flags raised along the
// way. Results combine under the addition law used by score aggregation:
// values add as integers, residue sets union, and flag mappings merge by
// appending on label collision.
//
// Evaluation can fail in exactly one way beyond data inconsistencies in the
// environment itself: a mutation atom probing a position absent from every
// mutation set reports *hcvrerr.MissingPositionError. A position that is
// present but carries no matching variant is an ordinary false result.
package ast
