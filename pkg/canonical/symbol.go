package canonical

// Symbol is one letter of the canonical alphabet.
type Symbol = byte

const (
	Declared        Symbol = 'A'
	OtherIdentifier Symbol = 'B'
	Loop            Symbol = 'C'
	Decision        Symbol = 'D'
	BasicType       Symbol = 'E'
	OtherKeyword    Symbol = 'F'
	String          Symbol = 'G'
	Number          Symbol = 'H'
	Boolean         Symbol = 'I'
	Null            Symbol = 'J'
	Separator       Symbol = 'K'
	Arithmetic      Symbol = 'L'
	Assignment      Symbol = 'M'
	Logical         Symbol = 'N'
	Comparison      Symbol = 'O'
	IncDec          Symbol = 'P'
	OtherOperator   Symbol = 'Q'
	Modifier        Symbol = 'R'
)

// Alphabet lists every symbol the canonicalizer can emit.
const Alphabet = "ABCDEFGHIJKLMNOPQR"

var (
	loopKeywords     = map[string]bool{"do": true, "while": true, "for": true}
	decisionKeywords = map[string]bool{"if": true, "else": true, "switch": true}

	arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
	assignmentOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true}
	logicalOps    = map[string]bool{"&&": true, "||": true, "!": true}
	comparisonOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "!=": true, "==": true}
	incDecOps     = map[string]bool{"++": true, "--": true}
)

func keywordSymbol(value string) Symbol {
	switch {
	case loopKeywords[value]:
		return Loop
	case decisionKeywords[value]:
		return Decision
	default:
		return OtherKeyword
	}
}

func operatorSymbol(value string) Symbol {
	switch {
	case arithmeticOps[value]:
		return Arithmetic
	case assignmentOps[value]:
		return Assignment
	case logicalOps[value]:
		return Logical
	case comparisonOps[value]:
		return Comparison
	case incDecOps[value]:
		return IncDec
	default:
		return OtherOperator
	}
}
