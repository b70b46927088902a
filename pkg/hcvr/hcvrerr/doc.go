// Package hcvrerr defines the error types surfaced by HCVR rule parsing and
// evaluation.
//
// Three kinds are defined here:
//
// SyntaxError: malformed rule text, fatal to parsing. Its message reproduces
// the legacy positional format byte-for-byte, with a ">!<" marker spliced
// into the offending line, so existing tooling that matches on the text keeps
// working.
//
// MissingPositionError: a rule probes a sequence position that is entirely
// absent from the supplied environment. This is distinct from "position
// present but no variant matched", which is an ordinary false result.
//
// SemanticError: an internal consistency failure while assembling or
// evaluating the syntax tree. The grammar makes these unreachable; they exist
// so that a bug fails deterministically instead of producing undefined
// behavior.
//
// Construction-time errors of the mutation algebra live with their data types
// in package variant.
package hcvrerr
