package lexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/simfeat/pkg/parser"
)

func tokenize(t *testing.T, l *Lexer, path, src string) []Token {
	t.Helper()
	p := parser.New()
	defer p.Close()

	tokens, err := l.Tokenize(context.Background(), p, path, []byte(src))
	require.NoError(t, err)
	return tokens
}

func values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Value
	}
	return out
}

func TestTokenizeJava(t *testing.T) {
	src := `class A {
    void f() {
        int x = 5;
        String s = "hi there";
        x += 1;
    }
}
`
	tokens := tokenize(t, New(), "A.java", src)

	assert.Equal(t, []string{
		"class", "A", "{",
		"void", "f", "(", ")", "{",
		"int", "x", "=", "5", ";",
		"String", "s", "=", `"hi there"`, ";",
		"x", "+=", "1", ";",
		"}", "}",
	}, values(tokens))

	kinds := map[string]Kind{}
	for _, tok := range tokens {
		kinds[tok.Value] = tok.Kind
	}
	assert.Equal(t, Keyword, kinds["class"])
	assert.Equal(t, Keyword, kinds["void"])
	assert.Equal(t, BasicType, kinds["int"])
	assert.Equal(t, Identifier, kinds["String"])
	assert.Equal(t, Identifier, kinds["x"])
	assert.Equal(t, Operator, kinds["="])
	assert.Equal(t, Operator, kinds["+="])
	assert.Equal(t, NumberLiteral, kinds["5"])
	assert.Equal(t, StringLiteral, kinds[`"hi there"`])
	assert.Equal(t, Separator, kinds[";"])
	assert.Equal(t, Separator, kinds["{"])

	assert.Equal(t, Token{Value: "int", Kind: BasicType, Line: 3, Column: 9}, tokens[8])
}

func TestTokenizeJavaLiteralsAndComments(t *testing.T) {
	src := `class A {
    // a comment
    boolean b = true; /* block */
    Object o = null;
    private static double d = 1.5;
}
`
	tokens := tokenize(t, New(), "A.java", src)

	got := map[string]Kind{}
	for _, tok := range tokens {
		got[tok.Value] = tok.Kind
	}
	assert.NotContains(t, values(tokens), "// a comment")
	assert.NotContains(t, values(tokens), "/* block */")
	assert.Equal(t, BasicType, got["boolean"])
	assert.Equal(t, BooleanLiteral, got["true"])
	assert.Equal(t, NullLiteral, got["null"])
	assert.Equal(t, Modifier, got["private"])
	assert.Equal(t, Modifier, got["static"])
	assert.Equal(t, BasicType, got["double"])
	assert.Equal(t, NumberLiteral, got["1.5"])
}

func TestTokenizeC(t *testing.T) {
	src := "#include <stdio.h>\nint main(void) {\n  return 0;\n}\n"
	tokens := tokenize(t, New(), "main.c", src)

	assert.Equal(t, []string{
		"#include", "<stdio.h>",
		"int", "main", "(", "void", ")", "{",
		"return", "0", ";",
		"}",
	}, values(tokens))
	assert.Equal(t, Keyword, tokens[0].Kind)
	assert.Equal(t, StringLiteral, tokens[1].Kind)
	assert.Equal(t, BasicType, tokens[2].Kind)
	assert.Equal(t, Keyword, tokens[5].Kind)
	assert.Equal(t, NumberLiteral, tokens[9].Kind)
}

func TestTokenizeWithForcedLanguage(t *testing.T) {
	l := New(WithLanguage(parser.LangC))
	assert.Equal(t, parser.LangC, l.LanguageFor("Main.java"))

	auto := New()
	assert.Equal(t, parser.LangJava, auto.LanguageFor("submission.txt"))
	assert.Equal(t, parser.LangCPP, auto.LanguageFor("a.cpp"))
}

func TestTokenizeInvalidUTF8(t *testing.T) {
	p := parser.New()
	defer p.Close()

	_, err := New().Tokenize(context.Background(), p, "bad.java", []byte{0xff, 0xfe, 'a'})
	require.Error(t, err)

	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, "bad.java", lexErr.Path)
	assert.Contains(t, err.Error(), "invalid UTF-8")
}

func TestTokenizeWithTemplateStripping(t *testing.T) {
	patterns, err := CompilePatterns(DefaultStripPatterns)
	require.NoError(t, err)

	src := `package hw1;
public class Main {
    public static void main(String[] args) {
        int x = 1;
    }
}
`
	tokens := tokenize(t, New(WithTemplateStripping(patterns)), "Main.java", src)

	assert.Equal(t, []string{"int", "x", "=", "1", ";"}, values(tokens))
	assert.Equal(t, 4, tokens[0].Line)
}

func TestStripTemplate(t *testing.T) {
	patterns, err := CompilePatterns(DefaultStripPatterns)
	require.NoError(t, err)

	src := "int a; public static void main(String[] a)\nfoo();\n"
	tokens := []Token{
		{Value: "int", Kind: BasicType, Line: 1, Column: 1},
		{Value: "a", Kind: Identifier, Line: 1, Column: 5},
		{Value: ";", Kind: Separator, Line: 1, Column: 6},
		{Value: "public", Kind: Modifier, Line: 1, Column: 8},
		{Value: "main", Kind: Identifier, Line: 1, Column: 27},
		{Value: "{", Kind: Separator, Line: 2, Column: 1},
		{Value: "foo", Kind: Identifier, Line: 2, Column: 2},
	}

	got := StripTemplate(tokens, []byte(src), patterns)
	assert.Equal(t, []string{"int", "a", ";", "foo"}, values(got))
}

func TestStripTemplateNoPatterns(t *testing.T) {
	tokens := []Token{
		{Value: "{", Kind: Separator, Line: 1, Column: 1},
		{Value: "x", Kind: Identifier, Line: 1, Column: 2},
		{Value: "}", Kind: Separator, Line: 1, Column: 3},
	}
	got := StripTemplate(tokens, []byte("{x}"), nil)
	assert.Equal(t, []string{"x"}, values(got))
}

func TestCompilePatternsInvalid(t *testing.T) {
	_, err := CompilePatterns([]string{"("})
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		nodeType string
		text     string
		want     Kind
	}{
		{"identifier", "count", Identifier},
		{"decimal_integer_literal", "42", NumberLiteral},
		{"hex_integer_literal", "0x1F", NumberLiteral},
		{"true", "true", BooleanLiteral},
		{"null_literal", "null", NullLiteral},
		{"while", "while", Keyword},
		{"void_type", "void", Keyword},
		{"int", "int", BasicType},
		{"final", "final", Modifier},
		{"::", "::", Separator},
		{"...", "...", Separator},
		{">>>=", ">>>=", Operator},
		{"->", "->", Operator},
		{"record", "record", Identifier},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(javaVocabulary, tt.nodeType, tt.text))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "Identifier", Identifier.String())
	assert.Equal(t, "Null", NullLiteral.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestLexErrorMessage(t *testing.T) {
	err := &LexError{Path: "A.java", Line: 3, Column: 7, Reason: `unexpected "#"`}
	assert.Equal(t, `lex A.java:3:7: unexpected "#"`, err.Error())
}
