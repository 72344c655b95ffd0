// Package parser turns submission source into tree-sitter syntax trees for
// the languages the lexer understands.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
)

// Language names a submission language.
type Language string

const (
	LangJava    Language = "java"
	LangC       Language = "c"
	LangCPP     Language = "cpp"
	LangUnknown Language = "unknown"
)

// Languages lists the supported languages in registry order.
var Languages = []Language{LangJava, LangC, LangCPP}

type grammar struct {
	lang       Language
	aliases    []string
	extensions []string
	load       func() *sitter.Language
}

// Headers (.h) are treated as C; C++ headers use .hpp or .hxx.
var grammars = []grammar{
	{LangJava, []string{"java"}, []string{".java"}, java.GetLanguage},
	{LangC, []string{"c"}, []string{".c", ".h"}, c.GetLanguage},
	{LangCPP, []string{"cpp", "c++", "cxx"}, []string{".cpp", ".cc", ".cxx", ".hpp", ".hxx"}, cpp.GetLanguage},
}

func lookup(match func(g grammar) bool) (grammar, bool) {
	for _, g := range grammars {
		if match(g) {
			return g, true
		}
	}
	return grammar{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseLanguage resolves a configured language name. "" and "auto" mean
// detect per file and yield LangUnknown without error.
func ParseLanguage(name string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "auto" {
		return LangUnknown, nil
	}
	if g, ok := lookup(func(g grammar) bool { return contains(g.aliases, key) }); ok {
		return g.lang, nil
	}
	return LangUnknown, fmt.Errorf("unsupported language: %s", name)
}

// DetectLanguage picks a language from the file extension.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if g, ok := lookup(func(g grammar) bool { return contains(g.extensions, ext) }); ok {
		return g.lang
	}
	return LangUnknown
}

// GetTreeSitterLanguage returns the grammar for lang.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	g, ok := lookup(func(g grammar) bool { return g.lang == lang })
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return g.load(), nil
}

// ParseResult is a syntax tree together with the bytes it indexes.
// Callers own Tree and must close it.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// Parser holds one tree-sitter parser. It is not safe for concurrent use.
type Parser struct {
	ts *sitter.Parser
}

func New() *Parser {
	return &Parser{ts: sitter.NewParser()}
}

func (p *Parser) Close() {
	p.ts.Close()
}

func (p *Parser) Parse(src []byte, lang Language, path string) (*ParseResult, error) {
	return p.ParseCtx(context.Background(), src, lang, path)
}

// ParseCtx parses src as lang. A cancelled ctx aborts the parse.
func (p *Parser) ParseCtx(ctx context.Context, src []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}
	p.ts.SetLanguage(tsLang)

	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ParseResult{Tree: tree, Language: lang, Source: src, Path: path}, nil
}

// TypedNodeVisitor receives each node with its type already read, which
// saves a cgo call per visitor check. Returning false prunes the subtree.
type TypedNodeVisitor func(node *sitter.Node, nodeType string, source []byte) bool

// WalkTyped visits node and its descendants depth first in source order.
func WalkTyped(node *sitter.Node, source []byte, visit TypedNodeVisitor) {
	if node == nil || !visit(node, node.Type(), source) {
		return
	}
	n := int(node.ChildCount())
	for i := 0; i < n; i++ {
		WalkTyped(node.Child(i), source, visit)
	}
}

// GetNodeText slices the node's bytes out of source. Nil nodes and ranges
// outside source yield "".
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || int(end) > len(source) {
		return ""
	}
	return string(source[start:end])
}
