package hcvrerr

import "testing"

func TestSyntaxError_Format(t *testing.T) {
	src := "SCORE FROM ( 10R => 2;0 )"
	err := NewSyntaxError(src, 21)

	want := "Error in HCVR: SCORE FROM ( 10R => 2>!<;0 ) (at char 21), (line:1, col:22)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSyntaxError_Multiline(t *testing.T) {
	src := "SCORE FROM (\n    10R => 2;0\n)\n"
	err := NewSyntaxError(src, 25)

	// Only the offending line appears, trimmed of indentation.
	want := "Error in HCVR: 10R => 2>!<;0 (at char 25), (line:2, col:13)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSyntaxError_OffsetClamped(t *testing.T) {
	err := NewSyntaxError("AND", 99)
	if err.Offset != 3 {
		t.Errorf("Offset = %d, want 3", err.Offset)
	}
	if err.Line != 1 || err.Column != 4 {
		t.Errorf("Line, Column = %d, %d, want 1, 4", err.Line, err.Column)
	}
}

func TestMissingPositionError(t *testing.T) {
	err := &MissingPositionError{Position: 41}
	if got, want := err.Error(), "Missing position 41."; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
