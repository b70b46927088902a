// Package evidence defines the audit record written for each drug
// interpretation and the storage interface behind it.
//
// Evidence answers "why did this sample score resistant for this drug":
// each record carries the rule text, the input calls, the outcome, and the
// supporting residues, so a reported score can be reproduced later against
// the same rule and input.
package evidence

import (
	"context"
	"io"
	"time"
)

// Record is the audit trail for a single rule evaluation.
type Record struct {
	// ID is a UUID v4 assigned by the recorder.
	ID string `json:"id"`

	// RecordedTime is when the evaluation finished.
	RecordedTime time.Time `json:"recorded_time"`

	// Corpus identity
	CorpusName string `json:"corpus_name"`
	Gene       string `json:"gene,omitempty"`

	// Drug and rule
	Drug       string `json:"drug"`
	DrugClass  string `json:"drug_class,omitempty"`
	RuleSource string `json:"rule_source"`

	// CallsText is the canonical text of the evaluated environment.
	CallsText string `json:"calls_text"`

	// Outcome. Kind is "score" or "bool"; Score is meaningful for score
	// rules, Resistant for both (a score rule is resistant when truthy).
	Kind      string `json:"kind"`
	Score     int    `json:"score"`
	Resistant bool   `json:"resistant"`

	// Residues are the supporting mutation calls, canonical text form.
	Residues []string `json:"residues,omitempty"`

	// Flags are the labels raised during evaluation.
	Flags []string `json:"flags,omitempty"`

	// Duration is the evaluation wall time.
	Duration time.Duration `json:"duration"`

	// Error is set when evaluation failed (e.g. a missing position); the
	// outcome fields are zero in that case.
	Error string `json:"error,omitempty"`
}

// Query defines filter parameters for reading evidence records. Zero-valued
// fields do not filter. Results are ordered newest first.
type Query struct {
	// StartTime and EndTime bound RecordedTime (inclusive).
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Exact-match filters.
	Drug       string `json:"drug,omitempty"`
	DrugClass  string `json:"drug_class,omitempty"`
	CorpusName string `json:"corpus_name,omitempty"`

	// Resistant filters on the outcome when non-nil.
	Resistant *bool `json:"resistant,omitempty"`

	// MinScore filters score-rule records when non-nil.
	MinScore *int `json:"min_score,omitempty"`

	// Pagination.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface evidence backends implement. Implementations must
// be safe for concurrent use.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query, newest first.
	Query(ctx context.Context, q *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, q *Query) (int64, error)

	// Delete removes records matching the query and returns how many were
	// removed. Retention pruning deletes by EndTime cutoff.
	Delete(ctx context.Context, q *Query) (int64, error)

	// DeleteOldest removes the n oldest records. Used by count-capped
	// retention.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// Exporter writes evidence records to an output stream in some format.
type Exporter interface {
	Export(ctx context.Context, records []*Record, w io.Writer) error
}
