// Package scanner finds the submissions that make up a corpus.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/panbanda/simfeat/pkg/config"
	"github.com/panbanda/simfeat/pkg/parser"
)

// Scanner selects submission files by language and exclusion rules.
type Scanner struct {
	config   *config.Config
	language parser.Language
}

// NewScanner uses the default configuration when cfg is nil. A language
// name config validation would reject falls back to auto detection.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	lang, _ := parser.ParseLanguage(cfg.Lexer.Language)
	return &Scanner{config: cfg, language: lang}
}

// rules are the exclusions in effect below one root. Paths handed to
// excluded are relative to that root.
type rules struct {
	matcher    gitignore.Matcher
	extensions []string
}

func (s *Scanner) rulesFor(root string) rules {
	ex := s.config.Exclude
	patterns := make([]gitignore.Pattern, 0, len(ex.Patterns)+len(ex.Dirs))
	for _, p := range ex.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, d := range ex.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(d, "/")+"/", nil))
	}
	if ex.Gitignore {
		if found, err := gitignore.ReadPatterns(osfs.New(root), nil); err == nil {
			patterns = append(patterns, found...)
		}
	}

	r := rules{extensions: ex.Extensions}
	if len(patterns) > 0 {
		r.matcher = gitignore.NewMatcher(patterns)
	}
	return r
}

func (r rules) excluded(rel string, isDir bool) bool {
	if !isDir {
		ext := filepath.Ext(rel)
		for _, e := range r.extensions {
			if strings.EqualFold(ext, e) {
				return true
			}
		}
	}
	return r.matcher != nil && r.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// wanted reports whether path is in a compared language.
func (s *Scanner) wanted(path string) bool {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return false
	}
	return s.language == parser.LangUnknown || lang == s.language
}

// ScanDir walks root and returns the submission files below it in walk
// order. Symlinks resolving outside root are ignored, as are unreadable
// entries.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	realRoot, err := filepath.Abs(root)
	if err == nil {
		realRoot, err = filepath.EvalSymlinks(realRoot)
	}
	if err != nil {
		return nil, err
	}

	r := s.rulesFor(root)
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if rel == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(target, realRoot) {
				return skip(d)
			}
		}

		switch {
		case r.excluded(rel, d.IsDir()):
			return skip(d)
		case !d.IsDir() && s.wanted(path):
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func skip(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

// isWithinRoot reports whether path lies at or below root.
func isWithinRoot(path, root string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(root), abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// ScanFile reports whether a single named file is a submission. The
// exclusion rules are those of the file's directory.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false, err
	}
	if s.rulesFor(filepath.Dir(path)).excluded(filepath.Base(path), false) {
		return false, nil
	}
	return s.wanted(path), nil
}

// ScanPaths expands files and directories into the sorted, de-duplicated
// absolute paths of every submission. No paths means the current
// directory.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	set := make(map[string]struct{})
	for _, p := range paths {
		found, err := s.scanOne(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		for _, f := range found {
			set[f] = struct{}{}
		}
	}

	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) scanOne(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return s.ScanDir(abs)
	}
	ok, err := s.ScanFile(abs)
	if err != nil || !ok {
		return nil, err
	}
	return []string{abs}, nil
}

// GroupByLanguage buckets files by detected language, dropping unknown
// ones. Input order is kept within each bucket.
func (s *Scanner) GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string, len(parser.Languages))
	for _, f := range files {
		if lang := parser.DetectLanguage(f); lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}
