package corpus

import (
	"errors"
	"testing"

	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
)

func TestLint_CleanCorpus(t *testing.T) {
	issues, err := NewLoader(false, nil).Lint("testdata/hivdb.yaml")
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("got %d issues on a clean corpus: %+v", len(issues), issues)
	}
}

func TestLint_CollectsAllProblems(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", `
name: broken
drugs:
  - name: AZT
    rule: "SCORE FROM ( 41L => )"
  - name: 3TC
    rule: 184VI
  - name: EFV
    rule: "103N OR"
  - name: NVP
    rule: ""
`)

	issues, err := NewLoader(false, nil).Lint(path)
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3: %+v", len(issues), issues)
	}

	var synErr *hcvrerr.SyntaxError
	if !errors.As(issues[0].Err, &synErr) {
		t.Errorf("first issue = %v, want a syntax error", issues[0].Err)
	}
	if issues[0].Drug != "AZT" {
		t.Errorf("first issue drug = %q, want AZT", issues[0].Drug)
	}
	if issues[2].Drug != "NVP" {
		t.Errorf("third issue drug = %q, want NVP", issues[2].Drug)
	}
}

func TestLint_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "name: a\ndrugs:\n  - name: AZT\n    rule: 41L\n")
	writeFile(t, dir, "b.yaml", "name: b\ndrugs:\n  - name: AZT\n    rule: 67N\n")

	issues, err := NewLoader(false, nil).Lint(dir)
	if err != nil {
		t.Fatalf("Lint failed: %v", err)
	}
	if len(issues) != 1 || issues[0].Drug != "AZT" {
		t.Fatalf("issues = %+v, want one duplicate-drug issue for AZT", issues)
	}
}
