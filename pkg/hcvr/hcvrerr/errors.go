package hcvrerr

import (
	"fmt"
	"strings"
)

// marker is spliced into the offending line immediately before the failing
// character, following the convention of the legacy rule tooling.
const marker = ">!<"

// SyntaxError reports malformed rule text. No partial syntax tree accompanies
// it; parsing is all-or-nothing.
type SyntaxError struct {
	// Source is the complete rule text that failed to parse.
	Source string

	// Offset is the 0-based byte offset of the offending character.
	Offset int

	// Line and Column locate the offending character (both 1-based).
	Line   int
	Column int
}

// NewSyntaxError builds a SyntaxError for the given rule text and 0-based
// offset, deriving line and column.
func NewSyntaxError(source string, offset int) *SyntaxError {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	line := 1 + strings.Count(source[:offset], "\n")
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	return &SyntaxError{
		Source: source,
		Offset: offset,
		Line:   line,
		Column: offset - lineStart + 1,
	}
}

// markedLine returns the line containing the failure with the marker inserted
// immediately before the offending character, trimmed of surrounding
// whitespace.
func (e *SyntaxError) markedLine() string {
	lineStart := strings.LastIndexByte(e.Source[:e.Offset], '\n') + 1
	lineEnd := strings.IndexByte(e.Source[e.Offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(e.Source)
	} else {
		lineEnd += e.Offset
	}
	line := e.Source[lineStart:e.Offset] + marker + e.Source[e.Offset:lineEnd]
	return strings.TrimSpace(line)
}

// Error implements the error interface. The format is a compatibility
// contract and must not change:
//
//	Error in HCVR: <marked line> (at char <0-based offset>), (line:<l>, col:<c>)
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Error in HCVR: %s (at char %d), (line:%d, col:%d)",
		e.markedLine(), e.Offset, e.Line, e.Column)
}

// MissingPositionError reports that a rule referenced a sequence position not
// covered by any mutation set in the environment. It is always surfaced to
// the caller, never silently treated as false.
type MissingPositionError struct {
	Position int
}

// Error implements the error interface.
func (e *MissingPositionError) Error() string {
	return fmt.Sprintf("Missing position %d.", e.Position)
}

// SemanticError reports an internal consistency failure in the syntax tree,
// such as a boolean fold with no operands. Correct grammar keeps these
// unreachable.
type SemanticError struct {
	Message string
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	return e.Message
}

// Semanticf builds a SemanticError from a format string.
func Semanticf(format string, args ...any) *SemanticError {
	return &SemanticError{Message: fmt.Sprintf(format, args...)}
}
