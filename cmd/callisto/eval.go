package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"genoscope-hq/callisto/pkg/cli"
	"genoscope-hq/callisto/pkg/corpus"
	"genoscope-hq/callisto/pkg/hcvr"
	"genoscope-hq/callisto/pkg/hcvr/ast"
	"genoscope-hq/callisto/pkg/interpret"
	"genoscope-hq/callisto/pkg/variant"
)

var evalFlags struct {
	rule      string
	rulesFile string
	calls     string
	extended  bool
	format    string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate resistance rules against a sample",
	Long: `Evaluate a single rule or a whole corpus against observed mutation
calls.

Calls are space-separated, with an optional wildtype letter before the
position and one or more variant letters after it: "M41L 67N T215FY".

Examples:
  # One rule, inline
  callisto eval --rule "SCORE FROM ( 41L => 5, 215FY => 20 )" --calls "41L 215Y"

  # Whole corpus
  callisto eval --rules-file rules.yaml --calls "41L 67N 215Y"

  # Extended dialect (MIN/MEAN, nested score lists)
  callisto eval --rule "SCORE FROM ( MEAN (41L => 10, 67N => 20) )" --calls "41L 67N" --extended

  # JSON output
  callisto eval --rules-file rules.yaml --calls "41L" --format json`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.rule, "rule", "r", "", "rule text to evaluate")
	evalCmd.Flags().StringVarP(&evalFlags.rulesFile, "rules-file", "f", "", "corpus file or directory")
	evalCmd.Flags().StringVar(&evalFlags.calls, "calls", "", "observed mutation calls (space separated)")
	evalCmd.Flags().BoolVar(&evalFlags.extended, "extended", false, "accept the extended rule dialect")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

// evalResult is the JSON shape of one evaluation.
type evalResult struct {
	Drug      string   `json:"drug,omitempty"`
	Class     string   `json:"class,omitempty"`
	Kind      string   `json:"kind"`
	Score     int      `json:"score"`
	Resistant bool     `json:"resistant"`
	Residues  []string `json:"residues,omitempty"`
	Flags     []string `json:"flags,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	if (evalFlags.rule == "") == (evalFlags.rulesFile == "") {
		return fmt.Errorf("exactly one of --rule or --rules-file must be specified")
	}
	if evalFlags.calls == "" {
		return fmt.Errorf("--calls must be specified")
	}

	calls, err := variant.ParseCalls(evalFlags.calls)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	var results []evalResult
	if evalFlags.rule != "" {
		results = []evalResult{evalRule(evalFlags.rule, calls)}
	} else {
		c, err := corpus.NewLoader(evalFlags.extended, nil).Load(evalFlags.rulesFile)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}
		engine := interpret.NewEngine(c)
		for _, interp := range engine.Interpret(calls) {
			results = append(results, toEvalResult(interp))
		}
	}

	if evalFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}
	printEvalText(results)
	return nil
}

func evalRule(source string, calls variant.Calls) evalResult {
	parse := hcvr.Parse
	if evalFlags.extended {
		parse = hcvr.ParseExtended
	}
	rule, err := parse(source)
	if err != nil {
		return evalResult{Error: err.Error()}
	}

	result, err := rule.Evaluate(calls)
	if err != nil {
		return evalResult{Error: err.Error()}
	}

	out := evalResult{
		Kind:      "bool",
		Score:     result.Score(),
		Resistant: result.Bool(),
		Flags:     result.Flags().Labels(),
	}
	if result.Value().Kind() == ast.KindInt {
		out.Kind = "score"
	}
	for _, m := range result.Residues() {
		out.Residues = append(out.Residues, m.String())
	}
	return out
}

func toEvalResult(interp interpret.Interpretation) evalResult {
	out := evalResult{
		Drug:      interp.Drug,
		Class:     interp.Class,
		Kind:      interp.Kind,
		Score:     interp.Score,
		Resistant: interp.Resistant,
		Residues:  interp.Residues,
		Flags:     interp.Flags,
	}
	if interp.Err != nil {
		out.Error = interp.Err.Error()
	}
	return out
}

func printEvalText(results []evalResult) {
	for _, r := range results {
		if r.Drug != "" {
			if r.Class != "" {
				fmt.Printf("%s (%s):\n", r.Drug, r.Class)
			} else {
				fmt.Printf("%s:\n", r.Drug)
			}
		}
		if r.Error != "" {
			fmt.Printf("  error: %s\n", r.Error)
			continue
		}
		if r.Kind == "score" {
			fmt.Printf("  score: %d\n", r.Score)
		}
		fmt.Printf("  resistant: %v\n", r.Resistant)
		if len(r.Residues) > 0 {
			fmt.Printf("  residues: %s\n", strings.Join(r.Residues, ", "))
		}
		if len(r.Flags) > 0 {
			fmt.Printf("  flags: %s\n", strings.Join(r.Flags, ", "))
		}
	}
}
