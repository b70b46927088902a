// Package corpus loads drug-resistance rule corpora from YAML documents.
//
// A corpus document maps drugs to HCVR rule text:
//
//	name: HIVDB-lite
//	gene: RT
//	drugs:
//	  - name: AZT
//	    class: NRTI
//	    rule: |
//	      SCORE FROM (41L => 5, 210W => 5)
//
// Every rule is parsed at load time, so a corpus that loads is a corpus
// whose rules all evaluate. Loading is fail-fast: the first malformed rule
// aborts the load with its positional parse error.
package corpus

import "genoscope-hq/callisto/pkg/hcvr"

// Drug is one drug entry with its compiled resistance rule.
type Drug struct {
	// Name is the drug identifier, unique within a corpus.
	Name string

	// Class is the drug class label (e.g. "NRTI"). May be empty.
	Class string

	// Rule is the compiled resistance rule.
	Rule *hcvr.Rule
}

// Corpus is an immutable set of compiled drug rules. Corpora are safe for
// concurrent use; reloading produces a new Corpus rather than mutating one.
type Corpus struct {
	name   string
	gene   string
	drugs  []Drug
	byName map[string]int
}

// Name returns the corpus name from its document (or the merged name when
// loaded from a directory).
func (c *Corpus) Name() string { return c.name }

// Gene returns the gene the corpus rules apply to. May be empty.
func (c *Corpus) Gene() string { return c.gene }

// Len returns the number of drugs.
func (c *Corpus) Len() int { return len(c.drugs) }

// Drugs returns the drug entries in document order.
func (c *Corpus) Drugs() []Drug {
	out := make([]Drug, len(c.drugs))
	copy(out, c.drugs)
	return out
}

// Drug looks up a drug by name.
func (c *Corpus) Drug(name string) (Drug, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Drug{}, false
	}
	return c.drugs[i], true
}
