// Package parser turns HCVR rule text into a syntax tree.
//
// The grammar is parsed by hand with recursive descent; there is no separate
// token stream. A rule is either a boolean condition or, when it opens with
// the SCORE keyword, a score condition:
//
//	statement    := booleancondition | scorecondition
//	boolean      := and ("OR" and)*
//	and          := condition ("AND" condition)*
//	condition    := "TRUE" | "FALSE"
//	              | ("EXCEPT" | "EXCLUDE") residue
//	              | "SELECT" quantifier "FROM" "(" residue ("," residue)* ")"
//	              | "(" boolean ")"
//	              | residue
//	quantifier   := quantand ("OR" quantand)*
//	quantand     := quantprim ("AND" quantprim)*
//	quantprim    := ("ATLEAST" | "EXACTLY" | "NOTMORETHAN") integer
//	              | "(" quantifier ")"
//	scorecond    := "SCORE" "FROM" "(" scoreelement ("," scoreelement)* ")"
//	scoreelement := accumulator "(" scoreelement ("," scoreelement)* ")"
//	              | boolean "=>" score
//	score        := "-"? integer | '"' label '"'
//	residue      := wildtype? position "!"? variants
//
// The extended dialect additionally accepts MIN and MEAN accumulators and a
// score list in the score slot of an item ("100G => MAX (...)"). EXCLUDE is
// an alias of EXCEPT in both dialects. Whitespace, including newlines, is
// insignificant between tokens, and the whole input must be consumed.
//
// Failures are reported as *hcvrerr.SyntaxError, positioned at the first
// character the parser could not accept.
package parser
