package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genoscope-hq/callisto/pkg/cli"
	"genoscope-hq/callisto/pkg/corpus"
	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
)

var lintFlags struct {
	file     string
	dir      string
	extended bool
	format   string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate rule corpus files",
	Long: `Validate rule corpus files for YAML and rule-language errors.

Every drug in every document is checked; a bad rule does not stop the
rest of the corpus from being linted. Rule syntax errors report the
offending character, line, and column.

Examples:
  # Lint single file
  callisto lint --file rules.yaml

  # Lint directory
  callisto lint --dir rules/

  # JSON output for CI/CD
  callisto lint --file rules.yaml --format json`,
	RunE: lintCorpus,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "corpus file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of corpus files")
	lintCmd.Flags().BoolVar(&lintFlags.extended, "extended", false, "accept the extended rule dialect")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintIssue is the JSON shape of one lint finding.
type lintIssue struct {
	File    string `json:"file"`
	Drug    string `json:"drug,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func lintCorpus(cmd *cobra.Command, args []string) error {
	if (lintFlags.file == "") == (lintFlags.dir == "") {
		return fmt.Errorf("exactly one of --file or --dir must be specified")
	}
	path := lintFlags.file
	if path == "" {
		path = lintFlags.dir
	}

	issues, err := corpus.NewLoader(lintFlags.extended, nil).Lint(path)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	findings := make([]lintIssue, 0, len(issues))
	for _, issue := range issues {
		finding := lintIssue{
			File:    issue.Source,
			Drug:    issue.Drug,
			Message: issue.Err.Error(),
		}
		var synErr *hcvrerr.SyntaxError
		if errors.As(issue.Err, &synErr) {
			finding.Line = synErr.Line
			finding.Column = synErr.Column
		}
		findings = append(findings, finding)
	}

	if lintFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			if f.Drug != "" {
				fmt.Printf("✗ %s: drug %s: %s\n", f.File, f.Drug, f.Message)
			} else {
				fmt.Printf("✗ %s: %s\n", f.File, f.Message)
			}
		}
		if len(findings) == 0 {
			fmt.Println("✓ All rules valid")
		} else {
			fmt.Printf("\n%d problem(s) found\n", len(findings))
		}
	}

	if len(findings) > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}
