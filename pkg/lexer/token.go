package lexer

import "fmt"

// Kind is the lexical category of a token.
type Kind int

const (
	Identifier Kind = iota
	Keyword
	BasicType
	Modifier
	Separator
	Operator
	StringLiteral
	NumberLiteral
	BooleanLiteral
	NullLiteral
)

var kindNames = [...]string{
	Identifier:     "Identifier",
	Keyword:        "Keyword",
	BasicType:      "BasicType",
	Modifier:       "Modifier",
	Separator:      "Separator",
	Operator:       "Operator",
	StringLiteral:  "String",
	NumberLiteral:  "Number",
	BooleanLiteral: "Boolean",
	NullLiteral:    "Null",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is a single lexeme with its 1-based source position.
type Token struct {
	Value  string `json:"value"`
	Kind   Kind   `json:"kind"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d:%d", t.Kind, t.Value, t.Line, t.Column)
}

// LexError reports a source file that could not be tokenized.
type LexError struct {
	Path   string
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *LexError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("lex %s:%d:%d: %s", e.Path, e.Line, e.Column, msg)
	}
	return fmt.Sprintf("lex %s: %s", e.Path, msg)
}

func (e *LexError) Unwrap() error {
	return e.Err
}
