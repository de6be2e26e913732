package documents

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bobmcallan/answerd/internal/common"
)

// Match is one hit inside a document: the matching line with its
// surrounding context.
type Match struct {
	Path    string
	Line    int
	Excerpt string
}

// Searcher scans a directory of plain text documents for query terms.
type Searcher struct {
	dir          string
	contextLines int
	triggers     []string
	logger       *common.Logger
}

// NewSearcher builds a searcher over the directory. triggers are the
// intent words stripped from queries before matching.
func NewSearcher(dir string, contextLines int, triggers []string, logger *common.Logger) *Searcher {
	if contextLines < 0 {
		contextLines = 0
	}
	lowered := make([]string, len(triggers))
	for i, t := range triggers {
		lowered[i] = strings.ToLower(t)
	}
	return &Searcher{
		dir:          dir,
		contextLines: contextLines,
		triggers:     lowered,
		logger:       logger,
	}
}

// StripTriggers removes the intent trigger words and filler from a
// query, leaving the terms to search for.
func (s *Searcher) StripTriggers(query string) string {
	words := strings.Fields(strings.ToLower(query))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if s.isTrigger(strings.Trim(w, "?!.,")) {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimRight(strings.Join(kept, " "), "?!.")
}

func (s *Searcher) isTrigger(word string) bool {
	for _, t := range s.triggers {
		if word == t {
			return true
		}
	}
	return false
}

// searchableExtensions lists the document types the walker opens.
var searchableExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Search walks the document directory and returns every line that
// contains the terms, case-insensitively, with context around it.
func (s *Searcher) Search(terms string) ([]Match, error) {
	needle := strings.ToLower(strings.TrimSpace(terms))
	if needle == "" {
		return nil, nil
	}

	var matches []Match
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !searchableExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		found, err := s.searchFile(path, needle)
		if err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable document")
			return nil
		}
		matches = append(matches, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("documents: walk %s: %w", s.dir, err)
	}
	return matches, nil
}

func (s *Searcher) searchFile(path, needle string) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var matches []Match
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		start := i - s.contextLines
		if start < 0 {
			start = 0
		}
		end := i + s.contextLines + 1
		if end > len(lines) {
			end = len(lines)
		}
		matches = append(matches, Match{
			Path:    path,
			Line:    i + 1,
			Excerpt: strings.Join(lines[start:end], "\n"),
		})
	}
	return matches, nil
}

// Resolve answers a document question: strip the trigger words, search,
// and join the excerpts. Separate hits are divided by a rule line.
func (s *Searcher) Resolve(query string) (string, error) {
	terms := s.StripTriggers(query)
	matches, err := s.Search(terms)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return fmt.Sprintf("I couldn't find anything about %q in your documents.", terms), nil
	}

	excerpts := make([]string, len(matches))
	for i, m := range matches {
		excerpts[i] = fmt.Sprintf("%s (line %d):\n%s", filepath.Base(m.Path), m.Line, m.Excerpt)
	}
	s.logger.Debug().Str("terms", terms).Int("matches", len(matches)).Msg("Document search resolved")
	return strings.Join(excerpts, "\n---\n"), nil
}
