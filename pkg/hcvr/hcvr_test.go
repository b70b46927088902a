package hcvr

import (
	"errors"
	"testing"

	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/variant"
)

// Start of the HIV RT reference, long enough to cover every position the
// scoring rules below reference.
const rtReference = "PISPIETVPVKLKPGMDGPKVKQWPLTEEKIKALVEICTEMEKEGKISKIGPENPYNTPVFA" +
	"IKKKDSTKWRKLVDFRELNKRTQDFWEVQLGIPHPAGLKKKKSVTVLDVGDAYFSVPLDEDF" +
	"RKYTAFTIPSINNETPGIRYQYNVLPQGWKGSPAIFQSSMTKILEPFRKQNPDIVIYQYMDD" +
	"LYVGSDLEIGQHRTKIEELRQHLLRWGLTTPDKKHQK"

func mustCalls(t *testing.T, text string) variant.Calls {
	t.Helper()
	calls, err := variant.ParseCalls(text)
	if err != nil {
		t.Fatalf("ParseCalls(%q) failed: %v", text, err)
	}
	return calls
}

func mustRule(t *testing.T, source string) *Rule {
	t.Helper()
	rule, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return rule
}

// alignedCalls applies the given mutation calls to the RT reference and
// rebuilds the environment from the full alignment, so every reference
// position is present (as its wildtype call where unchanged).
func alignedCalls(t *testing.T, changes string) variant.Calls {
	t.Helper()
	sample := make([]string, len(rtReference))
	for i := range sample {
		sample[i] = string(rtReference[i])
	}
	for _, set := range mustCalls(t, changes).Sets() {
		letters := make([]byte, 0, set.Len())
		for _, m := range set.Mutations() {
			letters = append(letters, m.Variant())
		}
		sample[set.Position()-1] = string(letters)
	}
	calls, err := variant.CallsFromAlignment(rtReference, sample)
	if err != nil {
		t.Fatalf("CallsFromAlignment failed: %v", err)
	}
	return calls
}

func TestParse_RoundTripSource(t *testing.T) {
	sources := []string{
		"151M OR 69i",
		"151M AND EXCLUDE 69i",
		"215F OR 215Y",
		"215FY AND 184!VI",
		"SELECT ATLEAST 2 AND NOTMORETHAN 2 FROM (41L, 67N, 70R, 210W, 215FY, 219QE)",
		"SCORE FROM (65R => 20, 74V => 20, 184VI => 20)",
		"SCORE FROM ( MAX  (101P => 40, 101E => 30, 101HN => 15, 101Q => 5 ))",
		"SCORE FROM ( 98G => 10, 100I => 40, MAX (101P => 40, 101E => 30, 101HN => 15, 101Q => 5) )",
		"3N AND (2N AND (4N OR 2N))",
	}

	for _, source := range sources {
		rule := mustRule(t, source)
		if got := rule.Source(); got != source {
			t.Errorf("Source() = %q, want %q", got, source)
		}
	}
}

func TestRule_BoolConstants(t *testing.T) {
	tests := []struct {
		rule string
		env  string
		want bool
	}{
		{"TRUE OR 1G", "1d", true},
		{"FALSE AND 1G", "1G", false},
		{"TRUE OR (FALSE AND TRUE)", "1G", true},
		{"1G AND (2T AND 7Y)", "2T 7Y 1G", true},
		{"1G AND (2T AND 7Y)", "2T 7d 1G", false},
		{"1G OR (2T OR 7Y)", "1d 2T 7d", true},
		{"1G OR (2T OR 7Y)", "1d 2d 7d", false},
	}

	for _, tt := range tests {
		rule := mustRule(t, tt.rule)
		got, err := rule.Bool(mustCalls(t, tt.env))
		if err != nil {
			t.Fatalf("Bool(%q) on %q failed: %v", tt.rule, tt.env, err)
		}
		if got != tt.want {
			t.Errorf("Bool(%q) on %q = %v, want %v", tt.rule, tt.env, got, tt.want)
		}
	}
}

func TestRule_SelectMissingPosition(t *testing.T) {
	rule := mustRule(t, "SELECT ATLEAST 2 FROM (41L, 67N, 70R, 210W, 215F, 219Q)")

	ok, err := rule.Bool(mustCalls(t, "41L 67N 70d 210d 215d 219d"))
	if err != nil {
		t.Fatalf("Bool() failed: %v", err)
	}
	if !ok {
		t.Error("Bool() = false, want true")
	}

	_, err = rule.Bool(mustCalls(t, "41L 67N"))
	var missing *hcvrerr.MissingPositionError
	if !errors.As(err, &missing) {
		t.Fatalf("Bool() error = %v, want MissingPositionError", err)
	}
	if got := err.Error(); got != "Missing position 70." {
		t.Errorf("error = %q, want %q", got, "Missing position 70.")
	}
}

func TestRule_ScoreFrom(t *testing.T) {
	rule := mustRule(t, "SCORE FROM ( 100G => 5, 101DST => 20 )")

	tests := []struct {
		env  string
		want int
	}{
		{"100G 101G", 5},
		{"100G 101d", 5},
		{"100G 101D", 25},
		{"100G 101DST", 25},
	}
	for _, tt := range tests {
		got, err := rule.Score(mustCalls(t, tt.env))
		if err != nil {
			t.Fatalf("Score(%q) failed: %v", tt.env, err)
		}
		if got != tt.want {
			t.Errorf("Score(%q) = %d, want %d", tt.env, got, tt.want)
		}
	}

	_, err := rule.Score(mustCalls(t, "105G 106DST"))
	var missing *hcvrerr.MissingPositionError
	if !errors.As(err, &missing) || missing.Position != 100 {
		t.Errorf("Score() error = %v, want missing position 100", err)
	}
}

func TestRule_ScoreResidues(t *testing.T) {
	// Residues carry the environment's calls, wildtype included.
	rule := mustRule(t, "SCORE FROM ( 100G => 10, 101D => 20 )")
	result, err := rule.Evaluate(mustCalls(t, "S100G R101d"))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	residues := result.Residues()
	if len(residues) != 1 || residues[0].String() != "S100G" {
		t.Errorf("Residues() = %v, want [S100G]", residues)
	}
}

func TestRule_ScoreFlags(t *testing.T) {
	rule := mustRule(t, `SCORE FROM (100G => 10, 200T => 3, 100S => "flag1 with_space")`)

	got, err := rule.Score(mustCalls(t, "100G 200d"))
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if got != 10 {
		t.Errorf("Score() = %d, want 10", got)
	}

	result, err := rule.Evaluate(mustCalls(t, "100S 200T"))
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if result.Score() != 3 {
		t.Errorf("Score() = %d, want 3", result.Score())
	}
	if !result.Flags().Has("flag1 with_space") {
		t.Errorf("Flags() = %v, want [flag1 with_space]", result.Flags().Labels())
	}
}

func TestRule_ChainedConditionsOverAlignment(t *testing.T) {
	rule := mustRule(t, `
	SCORE FROM(41L => 5, 62V => 5, MAX ( 65E => 10, 65N =>
	30, 65R => 45 ), MAX ( 67E => 5, 67G => 5, 67H => 5, 67N => 5, 67S =>
	5, 67T => 5, 67d => 30 ), 68d => 15, MAX ( 69G => 10, 69i => 60, 69d =>
	15 ), MAX ( 70E => 15, 70G => 15, 70N => 15, 70Q => 15, 70R => 5, 70S
	=> 15, 70T => 15, 70d => 15 ), MAX ( 74I => 30, 74V => 30 ), 75I => 5,
	77L => 5, 115F => 60, 116Y => 10, MAX ( 151L => 30, 151M => 60 ), MAX(
	184I => 15, 184V => 15 ), 210W => 5, MAX ( 215A => 5, 215C => 5, 215D
	=> 5, 215E => 5, 215F => 10, 215I => 5, 215L => 5, 215N => 5, 215S =>
	5, 215V => 5, 215Y => 10 ), MAX ( 219E => 5, 219N => 5, 219Q => 5, 219R
	=> 5 ), (40F AND 41L AND 210W AND 215FY) => 5, (41L AND 210W) => 10,
	(41L AND 210W AND 215FY) => 5, (41L AND 44AD AND 210W AND 215FY) => 5,
	(41L AND 67EGN AND 215FY) => 5, (67EGN AND 215FY AND 219ENQR) => 5,
	(67EGN AND 70R AND 184IV AND 219ENQR) => 20, (67EGN AND 70R AND
	219ENQR) => 10, (70R AND 215FY) => 5, (74IV AND 184IV) => 15, (77L AND
	116Y AND 151M) => 10, MAX ((210W AND 215ACDEILNSV) => 5, (210W AND
	215FY) => 10), MAX ((41L AND 215ACDEILNSV) => 5, (41L AND 215FY) =>
	15))
	`)

	tests := []struct {
		changes string
		want    int
	}{
		{"40F 41L 210W 215Y", 65},
		{"41L 210W 215F", 60},
		{"40F 210W 215Y", 25},
		{"40F 67G 215Y", 15},
	}
	for _, tt := range tests {
		got, err := rule.Score(alignedCalls(t, tt.changes))
		if err != nil {
			t.Fatalf("Score(%q) failed: %v", tt.changes, err)
		}
		if got != tt.want {
			t.Errorf("Score(%q) = %d, want %d", tt.changes, got, tt.want)
		}
	}
}

func TestParseExtended(t *testing.T) {
	source := "SCORE FROM (MIN (41L => 10, 67N => 20))"

	if _, err := Parse(source); err == nil {
		t.Error("Parse() accepted an extended-dialect rule")
	}

	rule, err := ParseExtended(source)
	if err != nil {
		t.Fatalf("ParseExtended(%q) failed: %v", source, err)
	}
	got, err := rule.Score(mustCalls(t, "41L 67N"))
	if err != nil {
		t.Fatalf("Score() failed: %v", err)
	}
	if got != 10 {
		t.Errorf("Score() = %d, want 10", got)
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("SCORE FROM ( 10R => 2;0 )")
	var synErr *hcvrerr.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("Parse() error = %v, want *hcvrerr.SyntaxError", err)
	}
	want := "Error in HCVR: SCORE FROM ( 10R => 2>!<;0 ) (at char 21), (line:1, col:22)"
	if got := err.Error(); got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}
