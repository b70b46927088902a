package ast

import (
	"testing"

	"genoscope-hq/callisto/pkg/variant"
)

func TestValue_Coercion(t *testing.T) {
	tests := []struct {
		name       string
		value      Value
		wantTruthy bool
		wantInt    int
	}{
		{"true", BoolValue(true), true, 1},
		{"false", BoolValue(false), false, 0},
		{"zero", IntValue(0), false, 0},
		{"positive", IntValue(30), true, 30},
		{"negative", IntValue(-10), true, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsTruthy(); got != tt.wantTruthy {
				t.Errorf("IsTruthy() = %v, want %v", got, tt.wantTruthy)
			}
			if got := tt.value.Int(); got != tt.wantInt {
				t.Errorf("Int() = %d, want %d", got, tt.wantInt)
			}
		})
	}
}

func TestResult_Add(t *testing.T) {
	a := NewResult(IntValue(10), []variant.Mutation{mustMut(t, "41L")})
	b := NewResult(IntValue(20), []variant.Mutation{mustMut(t, "67N"), mustMut(t, "41L")})

	sum := a.Add(b)
	if sum.Score() != 30 {
		t.Errorf("Score() = %d, want 30", sum.Score())
	}
	residues := sum.Residues()
	if len(residues) != 2 {
		t.Fatalf("len(Residues()) = %d, want 2", len(residues))
	}
	if residues[0].String() != "41L" || residues[1].String() != "67N" {
		t.Errorf("Residues() = %v, want [41L 67N]", residues)
	}
}

func TestResult_Add_BoolCoercion(t *testing.T) {
	// A definitionally-false score list contributes nothing to the sum.
	sum := NewResult(IntValue(15), nil).Add(NewResult(BoolValue(false), nil))
	if sum.Score() != 15 {
		t.Errorf("Score() = %d, want 15", sum.Score())
	}
}

func TestFlagSet_Merge(t *testing.T) {
	a := singleFlag("first")
	b := singleFlag("second", []variant.Mutation{mustMut(t, "100S")})
	c := singleFlag("first", []variant.Mutation{mustMut(t, "200T")})

	merged := a.merge(b).merge(c)
	if got := merged.Labels(); len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("Labels() = %v, want [first second]", got)
	}
	// Label collision appends support instead of overwriting.
	if got := len(merged.Support("first")); got != 1 {
		t.Errorf("len(Support(first)) = %d, want 1", got)
	}
	if !merged.Has("second") {
		t.Error("Has(second) = false, want true")
	}
}

func TestFlagSet_MergeWithEmpty(t *testing.T) {
	var empty FlagSet
	f := singleFlag("only")

	if got := empty.merge(f); got.Len() != 1 || !got.Has("only") {
		t.Errorf("empty.merge(f) = %v labels, want [only]", got.Labels())
	}
	if got := f.merge(empty); got.Len() != 1 || !got.Has("only") {
		t.Errorf("f.merge(empty) = %v labels, want [only]", got.Labels())
	}
}

func mustMut(t *testing.T, text string) variant.Mutation {
	t.Helper()
	m, err := variant.ParseMutation(text)
	if err != nil {
		t.Fatalf("ParseMutation(%q) failed: %v", text, err)
	}
	return m
}
