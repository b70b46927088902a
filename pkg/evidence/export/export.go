// Package export writes evidence records to an output stream as JSON or CSV.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"genoscope-hq/callisto/pkg/evidence"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// WithPretty enables indented output.
func (e *JSONExporter) WithPretty(pretty bool) *JSONExporter {
	e.pretty = pretty
	return e
}

// Export implements evidence.Exporter.
func (e *JSONExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []*evidence.Record{}
	}
	enc := json.NewEncoder(w)
	if e.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode evidence records: %w", err)
	}
	return nil
}

// csvHeader is the column order for CSV exports.
var csvHeader = []string{
	"id", "recorded_time", "corpus_name", "gene", "drug", "drug_class",
	"kind", "score", "resistant", "residues", "flags", "calls_text",
	"rule_source", "duration_ns", "error",
}

// CSVExporter writes records as CSV with a header row. List columns join
// their values with "; ".
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export implements evidence.Exporter.
func (e *CSVExporter) Export(ctx context.Context, records []*evidence.Record, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []string{
			r.ID,
			r.RecordedTime.Format(time.RFC3339Nano),
			r.CorpusName,
			r.Gene,
			r.Drug,
			r.DrugClass,
			r.Kind,
			strconv.Itoa(r.Score),
			strconv.FormatBool(r.Resistant),
			strings.Join(r.Residues, "; "),
			strings.Join(r.Flags, "; "),
			r.CallsText,
			r.RuleSource,
			strconv.FormatInt(r.Duration.Nanoseconds(), 10),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
