package lexer

import "github.com/panbanda/simfeat/pkg/parser"

// Vocabulary holds the reserved words and punctuation of one language.
type Vocabulary struct {
	BasicTypes map[string]bool
	Modifiers  map[string]bool
	Keywords   map[string]bool
	Separators map[string]bool

	// Node types lexed as a single literal token without descending.
	StringNodes map[string]bool
	NumberNodes map[string]bool
	NullNodes   map[string]bool
	// Node types always treated as identifiers.
	IdentifierNodes map[string]bool
	// Named leaf node types that are basic types whatever their text.
	BasicTypeNodes map[string]bool
	CommentNodes   map[string]bool

	// Words that name the absence of a return type.
	NoReturn map[string]bool
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var commonSeparators = set("(", ")", "{", "}", "[", "]", ";", ",", ".", "...", "@", "::")

var javaVocabulary = &Vocabulary{
	BasicTypes: set("boolean", "byte", "char", "short", "int", "long", "float", "double"),
	Modifiers: set("abstract", "default", "final", "native", "private", "protected", "public",
		"static", "strictfp", "synchronized", "transient", "volatile"),
	Keywords: set("assert", "break", "case", "catch", "class", "const", "continue", "do",
		"else", "enum", "extends", "finally", "for", "goto", "if", "implements", "import",
		"instanceof", "interface", "new", "package", "return", "super", "switch", "this",
		"throw", "throws", "try", "void", "while"),
	Separators:  commonSeparators,
	StringNodes: set("string_literal", "character_literal", "text_block"),
	NumberNodes: set("decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal"),
	NullNodes:       set("null_literal"),
	IdentifierNodes: set("identifier", "type_identifier"),
	BasicTypeNodes:  set("boolean_type"),
	CommentNodes:    set("comment", "line_comment", "block_comment"),
	NoReturn:        set("void"),
}

var cVocabulary = &Vocabulary{
	BasicTypes: set("char", "short", "int", "long", "float", "double", "signed", "unsigned", "_Bool", "bool"),
	Modifiers:  set("static", "extern", "auto", "register", "const", "volatile", "inline", "restrict"),
	Keywords: set("break", "case", "continue", "default", "do", "else", "enum", "for", "goto",
		"if", "return", "sizeof", "struct", "switch", "typedef", "union", "void", "while"),
	Separators:      commonSeparators,
	StringNodes:     set("string_literal", "char_literal", "system_lib_string"),
	NumberNodes:     set("number_literal"),
	NullNodes:       set("null"),
	IdentifierNodes: set("identifier", "type_identifier", "field_identifier", "statement_identifier"),
	BasicTypeNodes:  set("primitive_type"),
	CommentNodes:    set("comment"),
	NoReturn:        set("void"),
}

var cppVocabulary = &Vocabulary{
	BasicTypes: cVocabulary.BasicTypes,
	Modifiers: set("static", "extern", "auto", "register", "const", "volatile", "inline",
		"mutable", "constexpr", "virtual", "explicit", "friend", "public", "private",
		"protected", "override", "final"),
	Keywords: set("break", "case", "catch", "class", "continue", "default", "delete", "do",
		"else", "enum", "for", "goto", "if", "namespace", "new", "operator", "return",
		"sizeof", "struct", "switch", "template", "this", "throw", "try", "typedef",
		"typename", "union", "using", "void", "while"),
	Separators:      commonSeparators,
	StringNodes:     set("string_literal", "char_literal", "raw_string_literal", "system_lib_string"),
	NumberNodes:     set("number_literal"),
	NullNodes:       set("null", "nullptr"),
	IdentifierNodes: set("identifier", "type_identifier", "field_identifier", "namespace_identifier", "statement_identifier"),
	BasicTypeNodes:  set("primitive_type"),
	CommentNodes:    set("comment"),
	NoReturn:        set("void"),
}

// VocabularyFor returns the vocabulary of lang, falling back to Java.
func VocabularyFor(lang parser.Language) *Vocabulary {
	switch lang {
	case parser.LangC:
		return cVocabulary
	case parser.LangCPP:
		return cppVocabulary
	default:
		return javaVocabulary
	}
}
