package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Issue is one problem found while linting corpus documents. Drug is empty
// for document-level problems such as unparseable YAML.
type Issue struct {
	Source string
	Drug   string
	Err    error
}

// Lint checks a corpus file or directory without building a corpus. Unlike
// Load it does not stop at the first bad rule: every drug is parsed and all
// problems are reported together. The returned error covers I/O failures
// only.
func (l *Loader) Lint(path string) ([]Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus path %q: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
				return nil
			}
			if ext := filepath.Ext(p); ext == ".yaml" || ext == ".yml" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no corpus documents found under %q", path)
		}
	} else {
		files = []string{path}
	}

	var issues []Issue
	seen := make(map[string]string)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file %q: %w", file, err)
		}
		issues = append(issues, l.lintDocument(data, file, seen)...)
	}
	return issues, nil
}

func (l *Loader) lintDocument(data []byte, source string, seen map[string]string) []Issue {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []Issue{{Source: source, Err: fmt.Errorf("invalid YAML: %w", err)}}
	}
	if len(doc.Drugs) == 0 {
		return []Issue{{Source: source, Err: fmt.Errorf("document defines no drugs")}}
	}

	var issues []Issue
	for _, entry := range doc.Drugs {
		if entry.Name == "" {
			issues = append(issues, Issue{Source: source, Err: fmt.Errorf("drug with no name")})
			continue
		}
		if prev, dup := seen[entry.Name]; dup {
			issues = append(issues, Issue{
				Source: source,
				Drug:   entry.Name,
				Err:    fmt.Errorf("drug defined twice (first definition in %q)", prev),
			})
			continue
		}
		seen[entry.Name] = source

		if entry.Rule == "" {
			issues = append(issues, Issue{Source: source, Drug: entry.Name, Err: fmt.Errorf("drug has no rule")})
			continue
		}
		if _, err := l.parse(strings.TrimSpace(entry.Rule)); err != nil {
			issues = append(issues, Issue{Source: source, Drug: entry.Name, Err: err})
		}
	}
	return issues
}
