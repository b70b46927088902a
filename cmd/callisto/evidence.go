package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"genoscope-hq/callisto/pkg/cli"
	"genoscope-hq/callisto/pkg/config"
	"genoscope-hq/callisto/pkg/evidence"
	"genoscope-hq/callisto/pkg/evidence/export"
	"genoscope-hq/callisto/pkg/evidence/retention"
	"genoscope-hq/callisto/pkg/evidence/storage"
)

var evidenceFlags struct {
	drug       string
	drugClass  string
	corpusName string
	resistant  string
	minScore   int
	timeRange  string
	limit      int
	offset     int
	format     string
	output     string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Query the evidence database",
	Long: `Query and export recorded interpretation evidence.

Each evidence record carries the rule text, the input calls, and the
outcome, so a reported resistance call can be reproduced later.

Subcommands:
  query - Query evidence records with filters
  prune - Apply the retention policy now

Examples:
  # Records for one drug
  callisto evidence query --drug AZT

  # Resistant calls in a time range, as CSV
  callisto evidence query --resistant true \
    --time-range "2026-08-01T00:00:00Z/2026-08-23T00:00:00Z" --format csv

  # Export to a file
  callisto evidence query --format json --output evidence.json`,
}

var evidenceQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query evidence records",
	Long: `Query evidence records with filters.

Time Range Format:
  RFC3339 interval: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-23T00:00:00Z"`,
	RunE: queryEvidence,
}

var evidencePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	Long:  `Run one retention pass against the configured evidence backend.`,
	RunE:  pruneEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceQueryCmd, evidencePruneCmd)

	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.drug, "drug", "", "filter by drug name")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.drugClass, "class", "", "filter by drug class")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.corpusName, "corpus", "", "filter by corpus name")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.resistant, "resistant", "", "filter by outcome: true, false")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.minScore, "min-score", 0, "minimum score threshold")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.limit, "limit", 100, "max results")
	evidenceQueryCmd.Flags().IntVar(&evidenceFlags.offset, "offset", 0, "pagination offset")
	evidenceQueryCmd.Flags().StringVar(&evidenceFlags.format, "format", "text", "output format: text, json, csv")
	evidenceQueryCmd.Flags().StringVarP(&evidenceFlags.output, "output", "o", "", "output file (default: stdout)")
}

// openStorage opens the evidence backend named in the configuration.
func openStorage(cfg *config.Config) (evidence.Storage, error) {
	switch cfg.Evidence.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(cfg.Evidence.SQLite)
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown evidence backend %q", cfg.Evidence.Backend)
	}
}

func buildQuery() (*evidence.Query, error) {
	q := &evidence.Query{
		Drug:       evidenceFlags.drug,
		DrugClass:  evidenceFlags.drugClass,
		CorpusName: evidenceFlags.corpusName,
		Limit:      evidenceFlags.limit,
		Offset:     evidenceFlags.offset,
	}

	if evidenceFlags.resistant != "" {
		b, err := strconv.ParseBool(evidenceFlags.resistant)
		if err != nil {
			return nil, fmt.Errorf("invalid --resistant value %q", evidenceFlags.resistant)
		}
		q.Resistant = &b
	}
	if evidenceFlags.minScore > 0 {
		q.MinScore = &evidenceFlags.minScore
	}
	if evidenceFlags.timeRange != "" {
		parts := strings.SplitN(evidenceFlags.timeRange, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range %q, want start/end", evidenceFlags.timeRange)
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid time range start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid time range end: %w", err)
		}
		q.StartTime = &start
		q.EndTime = &end
	}
	return q, nil
}

func queryEvidence(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}

	q, err := buildQuery()
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}
	defer store.Close()

	ctx := context.Background()
	records, err := store.Query(ctx, q)
	if err != nil {
		return cli.NewCommandError("evidence query", err)
	}

	var out io.Writer = os.Stdout
	if evidenceFlags.output != "" {
		f, err := os.Create(evidenceFlags.output)
		if err != nil {
			return cli.NewCommandError("evidence query", err)
		}
		defer f.Close()
		out = f
	}

	switch evidenceFlags.format {
	case "json":
		return export.NewJSONExporter().WithPretty(true).Export(ctx, records, out)
	case "csv":
		return export.NewCSVExporter().Export(ctx, records, out)
	default:
		printEvidenceText(records, out)
		return nil
	}
}

func printEvidenceText(records []*evidence.Record, w io.Writer) {
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %s", r.RecordedTime.Format(time.RFC3339), r.Drug, r.Kind)
		if r.Kind == "score" {
			fmt.Fprintf(w, " %d", r.Score)
		}
		fmt.Fprintf(w, "  resistant=%v", r.Resistant)
		if len(r.Residues) > 0 {
			fmt.Fprintf(w, "  residues=%s", strings.Join(r.Residues, ","))
		}
		if r.Error != "" {
			fmt.Fprintf(w, "  error=%q", r.Error)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d record(s)\n", len(records))
}

func pruneEvidence(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, cfg.Evidence.Retention)
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		return cli.NewCommandError("evidence prune", err)
	}
	fmt.Printf("pruned %d record(s)\n", deleted)
	return nil
}
