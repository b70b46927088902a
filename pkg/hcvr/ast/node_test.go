package ast

import (
	"errors"
	"testing"

	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/variant"
)

// probe counts evaluations and returns a fixed result, for short-circuit
// checks.
type probe struct {
	calls  int
	result Result
}

func (p *probe) Evaluate(variant.Calls) (Result, error) {
	p.calls++
	return p.result, nil
}

func mustCalls(t *testing.T, text string) variant.Calls {
	t.Helper()
	calls, err := variant.ParseCalls(text)
	if err != nil {
		t.Fatalf("ParseCalls(%q) failed: %v", text, err)
	}
	return calls
}

func atom(t *testing.T, text string) *MutationAtom {
	t.Helper()
	ms, err := variant.ParseMutationSet(text)
	if err != nil {
		t.Fatalf("ParseMutationSet(%q) failed: %v", text, err)
	}
	return NewMutationAtom(ms)
}

func TestBoolConst(t *testing.T) {
	r, err := (&BoolConst{Value: true}).Evaluate(variant.Calls{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() || len(r.Residues()) != 0 {
		t.Errorf("got %v with %d residues, want true with none", r.Bool(), len(r.Residues()))
	}
}

func TestMutationAtom_Match(t *testing.T) {
	env := mustCalls(t, "S100GT 200d")

	r, err := atom(t, "100G").Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() {
		t.Fatal("atom did not match")
	}
	residues := r.Residues()
	if len(residues) != 1 {
		t.Fatalf("len(residues) = %d, want 1", len(residues))
	}
	// The residue is the environment's call, carrying the observed wildtype.
	if got := residues[0].String(); got != "S100G" {
		t.Errorf("residue = %q, want %q", got, "S100G")
	}
}

func TestMutationAtom_PresentButNoMatch(t *testing.T) {
	// Position 41 is covered by a deletion call, so this is false, not an
	// error.
	r, err := atom(t, "41L").Evaluate(mustCalls(t, "41d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Bool() || len(r.Residues()) != 0 {
		t.Errorf("got %v with %d residues, want false with none", r.Bool(), len(r.Residues()))
	}
}

func TestMutationAtom_MissingPosition(t *testing.T) {
	_, err := atom(t, "41L").Evaluate(mustCalls(t, "67N"))

	var mpe *hcvrerr.MissingPositionError
	if !errors.As(err, &mpe) {
		t.Fatalf("Evaluate() error = %v, want *MissingPositionError", err)
	}
	if mpe.Position != 41 {
		t.Errorf("Position = %d, want 41", mpe.Position)
	}
}

func TestExceptExpr(t *testing.T) {
	except := &ExceptExpr{Atom: atom(t, "69i")}

	r, err := except.Evaluate(mustCalls(t, "69d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() {
		t.Error("EXCEPT over a non-matching call = false, want true")
	}

	r, err = except.Evaluate(mustCalls(t, "69i"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Bool() {
		t.Error("EXCEPT over a matching call = true, want false")
	}
}

func TestAndExpr_ShortCircuit(t *testing.T) {
	unreached := &probe{result: NewResult(BoolValue(true), nil)}
	and, err := NewAndExpr(&BoolConst{Value: false}, unreached)
	if err != nil {
		t.Fatalf("NewAndExpr failed: %v", err)
	}

	r, err := and.Evaluate(variant.Calls{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Bool() {
		t.Error("AND over [false, X] = true, want false")
	}
	if unreached.calls != 0 {
		t.Errorf("second operand evaluated %d times after short-circuit", unreached.calls)
	}
	if len(r.Residues()) != 0 {
		t.Errorf("short-circuited AND kept %d residues, want 0", len(r.Residues()))
	}
}

func TestAndExpr_AllTrue(t *testing.T) {
	env := mustCalls(t, "1G 2T 7Y")
	and, err := NewAndExpr(atom(t, "1G"), atom(t, "2T"), atom(t, "7Y"))
	if err != nil {
		t.Fatalf("NewAndExpr failed: %v", err)
	}

	r, err := and.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() {
		t.Error("AND over all-true = false, want true")
	}
	if len(r.Residues()) != 3 {
		t.Errorf("len(residues) = %d, want 3", len(r.Residues()))
	}
}

func TestNewAndExpr_Empty(t *testing.T) {
	_, err := NewAndExpr()
	var serr *hcvrerr.SemanticError
	if !errors.As(err, &serr) {
		t.Fatalf("NewAndExpr() error = %v, want *SemanticError", err)
	}
}

func TestOrExpr(t *testing.T) {
	env := mustCalls(t, "1d 2T")
	or := &OrExpr{Left: atom(t, "1G"), Right: atom(t, "2T")}

	r, err := or.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() {
		t.Error("OR = false, want true")
	}
	if len(r.Residues()) != 1 {
		t.Errorf("len(residues) = %d, want 1", len(r.Residues()))
	}
}

func TestOrExpr_NilChildIsFalse(t *testing.T) {
	or := &OrExpr{Left: nil, Right: &BoolConst{Value: false}}
	r, err := or.Evaluate(variant.Calls{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Bool() {
		t.Error("OR with nil children = true, want false")
	}
}

func TestOrExpr_MissingPositionSurfaces(t *testing.T) {
	// The right side is missing even though the left side already matched.
	or := &OrExpr{Left: &BoolConst{Value: true}, Right: atom(t, "41L")}
	_, err := or.Evaluate(mustCalls(t, "67N"))

	var mpe *hcvrerr.MissingPositionError
	if !errors.As(err, &mpe) {
		t.Fatalf("Evaluate() error = %v, want *MissingPositionError", err)
	}
}

func TestEqualityExpr(t *testing.T) {
	tests := []struct {
		name  string
		quant Quantifier
		count int
		want  bool
	}{
		{"atleast met", &EqualityExpr{Op: AtLeast, Limit: 2}, 3, true},
		{"atleast unmet", &EqualityExpr{Op: AtLeast, Limit: 2}, 1, false},
		{"exactly met", &EqualityExpr{Op: Exactly, Limit: 1}, 1, true},
		{"exactly unmet", &EqualityExpr{Op: Exactly, Limit: 1}, 2, false},
		{"notmorethan met", &EqualityExpr{Op: NotMoreThan, Limit: 2}, 2, true},
		{"notmorethan unmet", &EqualityExpr{Op: NotMoreThan, Limit: 2}, 3, false},
		{
			"compound and",
			&QuantifierAnd{Children: []Quantifier{
				&EqualityExpr{Op: AtLeast, Limit: 2},
				&EqualityExpr{Op: NotMoreThan, Limit: 3},
			}},
			4,
			false,
		},
		{
			"compound or",
			&QuantifierOr{
				Left:  &EqualityExpr{Op: Exactly, Limit: 1},
				Right: &EqualityExpr{Op: AtLeast, Limit: 5},
			},
			5,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quant.Match(tt.count); got != tt.want {
				t.Errorf("Match(%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestSelectFrom(t *testing.T) {
	sel := &SelectFrom{
		Quant: &EqualityExpr{Op: AtLeast, Limit: 2},
		Atoms: []Node{atom(t, "2T"), atom(t, "7Y"), atom(t, "3G")},
	}

	r, err := sel.Evaluate(mustCalls(t, "2T 7Y 3d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !r.Bool() {
		t.Error("SELECT ATLEAST 2 with two matches = false, want true")
	}

	r, err = sel.Evaluate(mustCalls(t, "2T 7d 3d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Bool() {
		t.Error("SELECT ATLEAST 2 with one match = true, want false")
	}
}

func TestSelectFrom_MissingPosition(t *testing.T) {
	sel := &SelectFrom{
		Quant: &EqualityExpr{Op: AtLeast, Limit: 2},
		Atoms: []Node{atom(t, "41L"), atom(t, "67N"), atom(t, "70R")},
	}

	_, err := sel.Evaluate(mustCalls(t, "41L 67N"))
	var mpe *hcvrerr.MissingPositionError
	if !errors.As(err, &mpe) {
		t.Fatalf("Evaluate() error = %v, want *MissingPositionError", err)
	}
	if mpe.Position != 70 {
		t.Errorf("Position = %d, want 70", mpe.Position)
	}
}

func TestScoreExpr(t *testing.T) {
	env := mustCalls(t, "100G")

	matched := &ScoreExpr{Cond: atom(t, "100G"), Score: 10}
	r, err := matched.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 10 || len(r.Residues()) != 1 {
		t.Errorf("matched score = %d with %d residues, want 10 with 1", r.Score(), len(r.Residues()))
	}

	unmatched := &ScoreExpr{Cond: atom(t, "100T"), Score: 10}
	r, err = unmatched.Evaluate(env)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 0 || len(r.Residues()) != 0 {
		t.Errorf("unmatched score = %d with %d residues, want 0 with none", r.Score(), len(r.Residues()))
	}
}

func TestScoreExpr_Flag(t *testing.T) {
	flagged := &ScoreExpr{Cond: atom(t, "100S"), Flag: "flag1 with_space"}

	r, err := flagged.Evaluate(mustCalls(t, "100S"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 0 {
		t.Errorf("flag score = %d, want nominal 0", r.Score())
	}
	if !r.Flags().Has("flag1 with_space") {
		t.Error("flag label not raised")
	}
}

func TestScoreList_MaxWithNegatives(t *testing.T) {
	list := &ScoreList{Op: Max, Items: []Node{
		&ScoreExpr{Cond: atom(t, "100G"), Score: -10},
		&ScoreExpr{Cond: atom(t, "101D"), Score: -20},
		&ScoreExpr{Cond: atom(t, "102D"), Score: 30},
	}}

	// 102D does not match, so its zero must not mask the negative maxima.
	r, err := list.Evaluate(mustCalls(t, "100G 101D 102d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != -10 {
		t.Errorf("Score() = %d, want -10", r.Score())
	}
}

func TestScoreList_AllFalseIsDefinitionallyFalse(t *testing.T) {
	list := &ScoreList{Op: Sum, Items: []Node{
		&ScoreExpr{Cond: atom(t, "100T"), Score: 10},
	}}

	r, err := list.Evaluate(mustCalls(t, "100G"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Value().Kind() != KindBool || r.Bool() {
		t.Errorf("all-false list = %v (%v), want boolean false", r.Value(), r.Value().Kind())
	}
}

func TestScoreList_Min(t *testing.T) {
	list := &ScoreList{Op: Min, Items: []Node{
		&ScoreExpr{Cond: atom(t, "100G"), Score: 40},
		&ScoreExpr{Cond: atom(t, "101D"), Score: 15},
	}}

	r, err := list.Evaluate(mustCalls(t, "100G 101D"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 15 {
		t.Errorf("Score() = %d, want 15", r.Score())
	}
}

func TestScoreList_Mean(t *testing.T) {
	list := &ScoreList{Op: Mean, Items: []Node{
		&ScoreExpr{Cond: atom(t, "100G"), Score: 10},
		&ScoreExpr{Cond: atom(t, "101D"), Score: 21},
		&ScoreExpr{Cond: atom(t, "102E"), Score: 50},
	}}

	// 102E does not match; the mean runs over the two truthy contributions,
	// truncating toward zero.
	r, err := list.Evaluate(mustCalls(t, "100G 101D 102d"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 15 {
		t.Errorf("Score() = %d, want 15", r.Score())
	}
}

func TestScoreCond_SumsAndMergesFlags(t *testing.T) {
	cond := &ScoreCond{Lists: []Node{
		&ScoreExpr{Cond: atom(t, "100G"), Score: 10},
		&ScoreExpr{Cond: atom(t, "200T"), Score: 3},
		&ScoreExpr{Cond: atom(t, "100S"), Flag: "flag1 with_space"},
	}}

	r, err := cond.Evaluate(mustCalls(t, "100S 200T"))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.Score() != 3 {
		t.Errorf("Score() = %d, want 3", r.Score())
	}
	if !r.Flags().Has("flag1 with_space") {
		t.Error("flag label missing from summed result")
	}
}
