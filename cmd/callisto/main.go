// Callisto interprets genetic variant calls against drug-resistance rule
// corpora.
//
// Rules are written in a compact condition language: residue atoms like
// 41L or 215FY combine with AND/OR/EXCEPT, SELECT quantifiers, and SCORE
// FROM lists that accumulate per-mutation penalty scores.
//
// Usage:
//
//	# Evaluate one rule against a sample
//	callisto eval --rule "SCORE FROM ( 41L => 5, 215FY => 20 )" --calls "41L 215Y"
//
//	# Interpret a sample against a whole corpus
//	callisto eval --rules-file rules.yaml --calls "41L 67N 215Y"
//
//	# Validate rule files
//	callisto lint --file rules.yaml
//
//	# Watch a corpus and interpret samples from stdin
//	callisto run --config config.yaml
//
//	# Query recorded evidence
//	callisto evidence query --drug AZT --format json
package main

func main() {
	Execute()
}
