// Package interpret applies a rule corpus to a sample's mutation calls and
// produces one interpretation per drug.
package interpret

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"genoscope-hq/callisto/pkg/corpus"
	"genoscope-hq/callisto/pkg/evidence"
	"genoscope-hq/callisto/pkg/evidence/recorder"
	"genoscope-hq/callisto/pkg/hcvr/ast"
	"genoscope-hq/callisto/pkg/hcvr/hcvrerr"
	"genoscope-hq/callisto/pkg/telemetry/metrics"
	"genoscope-hq/callisto/pkg/variant"
)

// Interpretation is the outcome of one drug's rule against one sample.
type Interpretation struct {
	Drug  string
	Class string

	// Kind is "score" for score rules and "bool" for classification rules.
	Kind string

	// Score is the accumulated resistance score. For bool rules it is 0 or 1.
	Score int

	// Resistant is the truthiness of the result: a bool rule's outcome, or
	// score > 0 for score rules.
	Resistant bool

	// Residues are the supporting mutation calls in canonical text form.
	Residues []string

	// Flags are labels raised during evaluation.
	Flags []string

	// Duration is the evaluation wall time.
	Duration time.Duration

	// Err is set when evaluation failed, e.g. the sample lacks a position
	// the rule requires. The outcome fields are zero in that case.
	Err error
}

// Engine evaluates every drug in a corpus against sample calls. The corpus
// can be swapped while evaluations run, so a file watcher can reload rules
// without stopping the engine.
type Engine struct {
	mu     sync.RWMutex
	corpus *corpus.Corpus

	logger   *slog.Logger
	metrics  *metrics.InterpretMetrics
	recorder *recorder.Recorder

	now func() time.Time
}

// NewEngine creates an engine over the given corpus.
func NewEngine(c *corpus.Corpus) *Engine {
	return &Engine{
		corpus: c,
		logger: slog.Default().With("component", "interpret"),
		now:    time.Now,
	}
}

// WithLogger overrides the engine's logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	if logger != nil {
		e.logger = logger.With("component", "interpret")
	}
	return e
}

// WithMetrics attaches evaluation metrics.
func (e *Engine) WithMetrics(m *metrics.InterpretMetrics) *Engine {
	e.metrics = m
	return e
}

// WithRecorder attaches an evidence recorder. Each drug evaluation is then
// written to the evidence store.
func (e *Engine) WithRecorder(r *recorder.Recorder) *Engine {
	e.recorder = r
	return e
}

// Corpus returns the corpus currently in use.
func (e *Engine) Corpus() *corpus.Corpus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.corpus
}

// SetCorpus swaps the rule corpus. In-flight evaluations finish against the
// corpus they started with.
func (e *Engine) SetCorpus(c *corpus.Corpus) {
	e.mu.Lock()
	old := e.corpus
	e.corpus = c
	e.mu.Unlock()

	e.logger.Info("corpus swapped",
		"name", c.Name(),
		"drugs", c.Len(),
		"previous", old.Name(),
	)
}

// Interpret evaluates every drug in the corpus against the calls. The result
// has one entry per drug in corpus order; a drug whose rule fails (for
// example on a missing position) gets its Err set and the remaining drugs
// are still evaluated.
func (e *Engine) Interpret(calls variant.Calls) []Interpretation {
	c := e.Corpus()

	results := make([]Interpretation, 0, c.Len())
	for _, drug := range c.Drugs() {
		results = append(results, e.evaluate(c, drug, calls))
	}
	return results
}

// InterpretDrug evaluates a single drug by name.
func (e *Engine) InterpretDrug(name string, calls variant.Calls) (Interpretation, bool) {
	c := e.Corpus()
	drug, ok := c.Drug(name)
	if !ok {
		return Interpretation{}, false
	}
	return e.evaluate(c, drug, calls), true
}

func (e *Engine) evaluate(c *corpus.Corpus, drug corpus.Drug, calls variant.Calls) Interpretation {
	start := e.now()
	result, err := drug.Rule.Evaluate(calls)
	elapsed := e.now().Sub(start)

	interp := Interpretation{
		Drug:     drug.Name,
		Class:    drug.Class,
		Duration: elapsed,
	}

	if err != nil {
		interp.Err = err
		e.logger.Warn("rule evaluation failed",
			"drug", drug.Name,
			"error", err,
		)
	} else {
		interp.Kind = kindOf(result)
		interp.Score = result.Score()
		interp.Resistant = result.Bool()
		interp.Residues = residueStrings(result)
		interp.Flags = result.Flags().Labels()
	}

	e.observe(drug, interp, elapsed, err)
	e.record(c, drug, calls, interp, elapsed, err)
	return interp
}

func (e *Engine) observe(drug corpus.Drug, interp Interpretation, elapsed time.Duration, err error) {
	if e.metrics == nil {
		return
	}
	outcome := "susceptible"
	switch {
	case err != nil:
		outcome = "error"
		var missing *hcvrerr.MissingPositionError
		if errors.As(err, &missing) {
			e.metrics.RecordMissingPosition(drug.Name)
		}
	case interp.Resistant:
		outcome = "resistant"
	}
	e.metrics.RecordEvaluation(drug.Name, outcome, elapsed)
}

func (e *Engine) record(c *corpus.Corpus, drug corpus.Drug, calls variant.Calls, interp Interpretation, elapsed time.Duration, err error) {
	if e.recorder == nil {
		return
	}
	rec := &evidence.Record{
		CorpusName: c.Name(),
		Gene:       c.Gene(),
		Drug:       drug.Name,
		DrugClass:  drug.Class,
		RuleSource: drug.Rule.Source(),
		CallsText:  calls.String(),
		Kind:       interp.Kind,
		Score:      interp.Score,
		Resistant:  interp.Resistant,
		Residues:   interp.Residues,
		Flags:      interp.Flags,
		Duration:   elapsed,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if recErr := e.recorder.Record(rec); recErr != nil {
		e.logger.Warn("failed to record evidence", "drug", drug.Name, "error", recErr)
	}
}

func kindOf(result ast.Result) string {
	if result.Value().Kind() == ast.KindInt {
		return "score"
	}
	return "bool"
}

func residueStrings(result ast.Result) []string {
	residues := result.Residues()
	if len(residues) == 0 {
		return nil
	}
	out := make([]string, len(residues))
	for i, m := range residues {
		out[i] = m.String()
	}
	return out
}
