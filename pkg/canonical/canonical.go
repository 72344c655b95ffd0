// Package canonical maps token streams onto a small symbolic alphabet that
// keeps program structure and discards names and literal values.
package canonical

import (
	"errors"
	"sort"

	"github.com/panbanda/simfeat/pkg/lexer"
)

// ErrEmptyInput is returned when there are no tokens to canonicalize.
var ErrEmptyInput = errors.New("empty token sequence")

// Line is one canonical line group and the source line it starts on.
type Line struct {
	Text   string `json:"text"`
	Number int    `json:"line"`
}

// Result is the canonical form of one token stream.
type Result struct {
	// Sequence holds exactly one symbol per input token.
	Sequence string
	Lines    []Line
	Declared map[string]bool
}

// LineTexts returns the canonical text of every line group.
func (r *Result) LineTexts() []string {
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text
	}
	return out
}

// LineNumbers returns the source line of every line group.
func (r *Result) LineNumbers() []int {
	out := make([]int, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Number
	}
	return out
}

// DeclaredNames returns the declared names in sorted order.
func (r *Result) DeclaredNames() []string {
	names := make([]string, 0, len(r.Declared))
	for name := range r.Declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run canonicalizes tokens with both passes: declared names found anywhere in
// the stream are recognized at every use, including uses before declaration.
func Run(tokens []lexer.Token) (*Result, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}
	return Canonicalize(tokens, CollectDeclaredNames(tokens))
}

// CollectDeclaredNames runs the forward classification from an empty set and
// returns every name it recognized as declared.
func CollectDeclaredNames(tokens []lexer.Token) map[string]bool {
	if len(tokens) == 0 {
		return map[string]bool{}
	}
	s := newState(tokens, nil)
	s.run()
	return s.known
}

// Canonicalize classifies tokens with seed pre-registered as declared names.
// The seed is not modified.
func Canonicalize(tokens []lexer.Token, seed map[string]bool) (*Result, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyInput
	}
	s := newState(tokens, seed)
	s.run()
	return &Result{
		Sequence: string(s.flat),
		Lines:    s.lines,
		Declared: s.known,
	}, nil
}

type state struct {
	tokens []lexer.Token
	known  map[string]bool
	// set after a basic type or a no-return keyword; the next identifier is declared
	expecting bool
	depth     int

	flat  []byte
	lines []Line

	// line scratch buffer; buf[k] is the symbol of tokens[bufStart+k]
	buf      []byte
	bufStart int
	curLine  int
}

func newState(tokens []lexer.Token, seed map[string]bool) *state {
	known := make(map[string]bool, len(seed))
	for name := range seed {
		known[name] = true
	}
	return &state{
		tokens:  tokens,
		known:   known,
		flat:    make([]byte, 0, len(tokens)),
		curLine: tokens[0].Line,
	}
}

func (s *state) run() {
	for i, tok := range s.tokens {
		if tok.Kind == lexer.Separator {
			switch tok.Value {
			case "(":
				s.depth++
			case ")":
				s.depth--
			}
		}

		if i > 0 && s.breaksLine(i) {
			s.flush()
			s.bufStart = i
			s.curLine = tok.Line
		}

		sym := s.classify(i)
		s.flat = append(s.flat, sym)
		s.buf = append(s.buf, sym)
	}
	s.flush()
}

// breaksLine reports whether token i starts a new line group: the source line
// changed, or the previous token ended a statement outside parentheses.
func (s *state) breaksLine(i int) bool {
	if s.tokens[i].Line != s.curLine {
		return true
	}
	prev := s.tokens[i-1]
	return prev.Kind == lexer.Separator && prev.Value == ";" && s.depth == 0
}

func (s *state) flush() {
	if len(s.buf) > 0 {
		s.lines = append(s.lines, Line{Text: string(s.buf), Number: s.curLine})
	}
	s.buf = s.buf[:0]
}

func (s *state) classify(i int) Symbol {
	tok := s.tokens[i]

	switch tok.Kind {
	case lexer.Identifier:
		if s.expecting || s.known[tok.Value] {
			s.known[tok.Value] = true
			s.expecting = false
			return Declared
		}
		return OtherIdentifier

	case lexer.Keyword:
		if tok.Value == "void" {
			s.expecting = true
		}
		return keywordSymbol(tok.Value)

	case lexer.BasicType:
		s.expecting = true
		return BasicType

	case lexer.Modifier:
		s.expecting = false
		return Modifier

	case lexer.Separator:
		s.expecting = false
		return Separator

	case lexer.Operator:
		s.expecting = false
		if tok.Value == "=" {
			s.relabelTarget(i)
		}
		return operatorSymbol(tok.Value)

	case lexer.StringLiteral:
		s.expecting = false
		return String
	case lexer.NumberLiteral:
		s.expecting = false
		return Number
	case lexer.BooleanLiteral:
		s.expecting = false
		return Boolean
	case lexer.NullLiteral:
		s.expecting = false
		return Null
	}

	s.expecting = false
	return OtherOperator
}

// relabelTarget marks the nearest identifier before an assignment on the same
// source line as declared.
func (s *state) relabelTarget(i int) {
	line := s.tokens[i].Line
	for k := i - 1; k >= 0 && s.tokens[k].Line == line; k-- {
		if s.tokens[k].Kind != lexer.Identifier {
			continue
		}
		s.flat[k] = Declared
		if k >= s.bufStart {
			s.buf[k-s.bufStart] = Declared
		}
		s.known[s.tokens[k].Value] = true
		return
	}
}
