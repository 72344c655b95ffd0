package lexer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/simfeat/pkg/parser"
)

// DefaultStripPatterns match the Java template lines shared by every submission.
var DefaultStripPatterns = []string{
	`package .*`,
	`public class .*`,
	`public .* main.*`,
}

// Lexer turns source text into typed tokens using tree-sitter grammars.
type Lexer struct {
	lang     parser.Language
	strip    bool
	patterns []*regexp.Regexp
}

// Option is a functional option for configuring Lexer.
type Option func(*Lexer)

// WithLanguage forces a language instead of detecting it from the file path.
func WithLanguage(lang parser.Language) Option {
	return func(l *Lexer) {
		l.lang = lang
	}
}

// WithTemplateStripping drops braces and the tokens of lines matching patterns.
func WithTemplateStripping(patterns []*regexp.Regexp) Option {
	return func(l *Lexer) {
		l.strip = true
		l.patterns = patterns
	}
}

// New creates a new Lexer.
func New(opts ...Option) *Lexer {
	l := &Lexer{lang: parser.LangUnknown}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CompilePatterns compiles strip patterns, reporting the first invalid one.
func CompilePatterns(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid strip pattern %q: %w", expr, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// LanguageFor returns the language used to lex path.
// Files without a recognized extension are lexed as Java.
func (l *Lexer) LanguageFor(path string) parser.Language {
	if l.lang != parser.LangUnknown {
		return l.lang
	}
	if lang := parser.DetectLanguage(path); lang != parser.LangUnknown {
		return lang
	}
	return parser.LangJava
}

// Tokenize lexes src into tokens in source order.
// The parser is owned by the caller and must not be shared between goroutines.
func (l *Lexer) Tokenize(ctx context.Context, p *parser.Parser, path string, src []byte) ([]Token, error) {
	if !utf8.Valid(src) {
		return nil, &LexError{Path: path, Reason: "invalid UTF-8"}
	}

	lang := l.LanguageFor(path)
	result, err := p.ParseCtx(ctx, src, lang, path)
	if err != nil {
		return nil, &LexError{Path: path, Reason: "parse failed", Err: err}
	}
	defer result.Tree.Close()

	tokens, err := Leaves(result, VocabularyFor(lang))
	if err != nil {
		return nil, err
	}
	if l.strip {
		tokens = StripTemplate(tokens, src, l.patterns)
	}
	return tokens, nil
}

// Leaves converts the leaf nodes of a parse tree into classified tokens.
func Leaves(result *parser.ParseResult, vocab *Vocabulary) ([]Token, error) {
	var (
		tokens []Token
		lexErr error
	)

	parser.WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		if lexErr != nil {
			return false
		}
		if vocab.CommentNodes[nodeType] {
			return false
		}
		if vocab.StringNodes[nodeType] {
			tokens = append(tokens, newToken(node, source, StringLiteral))
			return false
		}
		if node.ChildCount() > 0 {
			return true
		}
		if node.IsMissing() || node.StartByte() == node.EndByte() {
			return false
		}
		text := parser.GetNodeText(node, source)
		if strings.TrimSpace(text) == "" {
			return false
		}
		if nodeType == "ERROR" {
			pos := node.StartPoint()
			lexErr = &LexError{
				Path:   result.Path,
				Line:   int(pos.Row) + 1,
				Column: int(pos.Column) + 1,
				Reason: fmt.Sprintf("unexpected %q", text),
			}
			return false
		}

		tokens = append(tokens, newToken(node, source, classify(vocab, nodeType, text)))
		return false
	})

	if lexErr != nil {
		return nil, lexErr
	}
	return tokens, nil
}

func newToken(node *sitter.Node, source []byte, kind Kind) Token {
	pos := node.StartPoint()
	return Token{
		Value:  parser.GetNodeText(node, source),
		Kind:   kind,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// classify assigns a kind to a leaf from its node type and text.
func classify(vocab *Vocabulary, nodeType, text string) Kind {
	switch {
	case vocab.NumberNodes[nodeType]:
		return NumberLiteral
	case text == "true" || text == "false":
		return BooleanLiteral
	case vocab.NullNodes[nodeType]:
		return NullLiteral
	case vocab.IdentifierNodes[nodeType]:
		return Identifier
	case vocab.NoReturn[text], vocab.Keywords[text]:
		return Keyword
	case vocab.BasicTypes[text], vocab.BasicTypeNodes[nodeType]:
		return BasicType
	case vocab.Modifiers[text]:
		return Modifier
	case vocab.Separators[text]:
		return Separator
	}
	return classifyWord(text)
}

// classifyWord handles leaves outside the vocabulary, such as contextual
// keywords, preprocessor directives and macro bodies.
func classifyWord(text string) Kind {
	r, _ := utf8.DecodeRuneInString(text)
	switch {
	case strings.HasPrefix(text, "#") && len(text) > 1:
		return Keyword
	case unicode.IsDigit(r):
		return NumberLiteral
	case unicode.IsLetter(r) || r == '_' || r == '$':
		return Identifier
	default:
		return Operator
	}
}

// StripTemplate removes brace separators and every token positioned at or
// after a strip pattern match on its line. Line numbers are unchanged.
func StripTemplate(tokens []Token, src []byte, patterns []*regexp.Regexp) []Token {
	cuts := templateCuts(string(src), patterns)

	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == Separator && (tok.Value == "{" || tok.Value == "}") {
			continue
		}
		if cut, ok := cuts[tok.Line]; ok && tok.Column-1 >= cut {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// templateCuts maps 1-based line numbers to the byte column of the earliest
// pattern match on that line.
func templateCuts(src string, patterns []*regexp.Regexp) map[int]int {
	cuts := make(map[int]int)
	if len(patterns) == 0 {
		return cuts
	}
	for i, line := range strings.Split(src, "\n") {
		for _, re := range patterns {
			loc := re.FindStringIndex(line)
			if loc == nil {
				continue
			}
			if cut, ok := cuts[i+1]; !ok || loc[0] < cut {
				cuts[i+1] = loc[0]
			}
		}
	}
	return cuts
}
