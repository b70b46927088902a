package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"genoscope-hq/callisto/pkg/hcvr"
)

// document is the YAML shape of one corpus file.
type document struct {
	Name  string      `yaml:"name"`
	Gene  string      `yaml:"gene"`
	Drugs []drugEntry `yaml:"drugs"`
}

type drugEntry struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
	Rule  string `yaml:"rule"`
}

// Loader compiles corpus documents into Corpus values.
type Loader struct {
	extended bool
	logger   *slog.Logger
}

// NewLoader creates a loader. When extended is true, rules are parsed in the
// extended dialect.
func NewLoader(extended bool, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		extended: extended,
		logger:   logger.With("component", "corpus"),
	}
}

// Load reads a corpus from a YAML file, or from every .yaml/.yml file in a
// directory. Directory documents merge into one corpus; a drug name occurring
// twice is an error.
func (l *Loader) Load(path string) (*Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus path %q: %w", path, err)
	}

	var corpus *Corpus
	if info.IsDir() {
		corpus, err = l.loadDirectory(path)
	} else {
		corpus, err = l.loadFile(path)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("corpus loaded",
		"path", path,
		"name", corpus.Name(),
		"drugs", corpus.Len(),
	)
	return corpus, nil
}

// LoadBytes compiles a single corpus document from memory. source names the
// document in error messages.
func (l *Loader) LoadBytes(data []byte, source string) (*Corpus, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse corpus document %q: %w", source, err)
	}
	if len(doc.Drugs) == 0 {
		return nil, fmt.Errorf("corpus document %q defines no drugs", source)
	}

	corpus := &Corpus{
		name:   doc.Name,
		gene:   doc.Gene,
		byName: make(map[string]int, len(doc.Drugs)),
	}
	if err := l.appendDocument(corpus, &doc, source); err != nil {
		return nil, err
	}
	return corpus, nil
}

func (l *Loader) loadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file %q: %w", path, err)
	}
	return l.LoadBytes(data, path)
}

func (l *Loader) loadDirectory(dir string) (*Corpus, error) {
	merged := &Corpus{byName: make(map[string]int)}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read corpus file %q: %w", path, err)
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse corpus document %q: %w", path, err)
		}

		if merged.name == "" {
			merged.name = doc.Name
		}
		if merged.gene == "" {
			merged.gene = doc.Gene
		} else if doc.Gene != "" && doc.Gene != merged.gene {
			return fmt.Errorf("corpus document %q targets gene %q, directory already holds %q",
				path, doc.Gene, merged.gene)
		}
		return l.appendDocument(merged, &doc, path)
	})
	if err != nil {
		return nil, err
	}

	if merged.Len() == 0 {
		return nil, fmt.Errorf("no corpus documents found under %q", dir)
	}
	if merged.name == "" {
		merged.name = filepath.Base(dir)
	}
	return merged, nil
}

// appendDocument compiles a document's drugs into the corpus.
func (l *Loader) appendDocument(corpus *Corpus, doc *document, source string) error {
	for _, entry := range doc.Drugs {
		if entry.Name == "" {
			return fmt.Errorf("corpus document %q has a drug with no name", source)
		}
		if entry.Rule == "" {
			return fmt.Errorf("drug %q in %q has no rule", entry.Name, source)
		}
		if _, dup := corpus.byName[entry.Name]; dup {
			return fmt.Errorf("drug %q defined twice (second definition in %q)", entry.Name, source)
		}

		rule, err := l.parse(strings.TrimSpace(entry.Rule))
		if err != nil {
			return fmt.Errorf("rule for drug %q in %q: %w", entry.Name, source, err)
		}

		corpus.byName[entry.Name] = len(corpus.drugs)
		corpus.drugs = append(corpus.drugs, Drug{
			Name:  entry.Name,
			Class: entry.Class,
			Rule:  rule,
		})
	}
	return nil
}

func (l *Loader) parse(rule string) (*hcvr.Rule, error) {
	if l.extended {
		return hcvr.ParseExtended(rule)
	}
	return hcvr.Parse(rule)
}
