// Package hcvr is the public entry point for parsing and evaluating HCVR
// drug-resistance rules.
//
// # Overview
//
// A rule is a small program over the mutation calls observed in a sample:
// either a boolean classification ("151M AND EXCLUDE 69i") or a numeric
// scoring statement ("SCORE FROM (41L => 5, MAX (215F => 10, 215Y => 10))").
// Parse compiles rule text once into an immutable Rule; the Rule may then be
// evaluated any number of times, concurrently, against independent
// environments built with the variant package.
//
// # Dialects
//
// Parse accepts the base dialect. ParseExtended additionally accepts MIN and
// MEAN accumulators and score lists in the score slot of an item. Base-dialect
// rules parse identically under both.
//
// # Errors
//
// Parse failures are *hcvrerr.SyntaxError values pointing at the offending
// character. Evaluating a rule that references a sequence position absent
// from the environment fails with *hcvrerr.MissingPositionError; callers that
// consider absent positions a non-match must widen their environment rather
// than suppress the error.
package hcvr
