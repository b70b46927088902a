package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genoscope-hq/callisto/pkg/cli"
	"genoscope-hq/callisto/pkg/corpus"
)

var corpusFlags struct {
	file     string
	extended bool
	format   string
	rules    bool
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect rule corpora",
	Long: `Inspect rule corpus files.

Subcommands:
  list - List the drugs a corpus defines

Examples:
  callisto corpus list --file rules.yaml
  callisto corpus list --file rules/ --rules`,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the drugs a corpus defines",
	RunE:  listCorpus,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusListCmd)

	corpusListCmd.Flags().StringVarP(&corpusFlags.file, "file", "f", "", "corpus file or directory")
	corpusListCmd.Flags().BoolVar(&corpusFlags.extended, "extended", false, "accept the extended rule dialect")
	corpusListCmd.Flags().BoolVar(&corpusFlags.rules, "rules", false, "include rule text")
	corpusListCmd.Flags().StringVar(&corpusFlags.format, "format", "text", "output format: text, json")
}

// corpusEntry is the JSON shape of one listed drug.
type corpusEntry struct {
	Drug  string `json:"drug"`
	Class string `json:"class,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

func listCorpus(cmd *cobra.Command, args []string) error {
	if corpusFlags.file == "" {
		return fmt.Errorf("--file must be specified")
	}

	c, err := corpus.NewLoader(corpusFlags.extended, nil).Load(corpusFlags.file)
	if err != nil {
		return cli.NewCommandError("corpus list", err)
	}

	entries := make([]corpusEntry, 0, c.Len())
	for _, drug := range c.Drugs() {
		entry := corpusEntry{Drug: drug.Name, Class: drug.Class}
		if corpusFlags.rules {
			entry.Rule = drug.Rule.Source()
		}
		entries = append(entries, entry)
	}

	if corpusFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	fmt.Printf("Corpus: %s", c.Name())
	if c.Gene() != "" {
		fmt.Printf(" (gene %s)", c.Gene())
	}
	fmt.Printf(", %d drug(s)\n", c.Len())
	for _, e := range entries {
		if e.Class != "" {
			fmt.Printf("  %s  [%s]\n", e.Drug, e.Class)
		} else {
			fmt.Printf("  %s\n", e.Drug)
		}
		if e.Rule != "" {
			fmt.Printf("    %s\n", e.Rule)
		}
	}
	return nil
}
