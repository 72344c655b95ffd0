// Package style extracts layout fingerprints from raw source text: how a
// file indents, where it places braces and where it puts comments.
package style

import "strings"

// Sequence codes.
const (
	NewlineMark byte = '2'
	IndentMark  byte = '1'

	BraceStart  byte = '1'
	BraceEnd    byte = '2'
	BraceMiddle byte = '3'
	BraceAlone  byte = '4'

	CommentLineStart byte = '1'
	CommentAfterCode byte = '2'
	CommentBlockEnd  byte = '3'
)

// Sequences holds the three style sequences of one file.
type Sequences struct {
	// Brace holds (brace char, position class) pairs.
	Brace   string `json:"brace"`
	Indent  string `json:"indent"`
	Comment string `json:"comment"`
}

// Extract scans raw line by line and builds its style sequences.
func Extract(raw string) Sequences {
	var indent, brace, comment []byte

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		indent = append(indent, NewlineMark)
		spaces := len(line) - len(strings.TrimLeft(line, " "))
		indent = append(indent, IndentMarks(spaces)...)

		c, b := scanLine(line[spaces:])
		comment = append(comment, c...)
		brace = append(brace, b...)
	}

	return Sequences{
		Brace:   string(brace),
		Indent:  string(indent),
		Comment: string(comment),
	}
}

// IndentMarks converts a count of leading spaces into indent marks, treating
// multiples of four as four-space indents and multiples of two as two-space
// indents.
func IndentMarks(spaces int) []byte {
	var n int
	switch {
	case spaces%4 == 0:
		n = spaces / 4
	case spaces%2 == 0:
		n = spaces / 2
	default:
		n = spaces
	}
	return []byte(strings.Repeat(string(IndentMark), n))
}

// scanLine walks a line with all spaces removed and reports comment markers
// and brace positions.
func scanLine(line string) (comments, braces []byte) {
	text := []rune(strings.ReplaceAll(line, " ", ""))
	n := len(text)
	if n == 0 {
		return nil, nil
	}

	pos := 0
	for {
		if text[pos] == '/' {
			if pos+1 >= n {
				break
			}
			if text[pos+1] == '/' {
				pos += 2
				if pos == 2 {
					comments = append(comments, CommentLineStart)
				} else {
					comments = append(comments, CommentAfterCode)
				}
			}
		}
		if pos >= n {
			break
		}

		if text[pos] == '*' {
			if pos+1 >= n {
				break
			}
			if text[pos+1] == '/' {
				pos += 2
				comments = append(comments, CommentBlockEnd)
			}
		}
		if pos >= n {
			break
		}

		if c := text[pos]; c == '{' || c == '}' {
			braces = append(braces, byte(c), braceClass(pos, n))
		}

		if pos >= n-1 {
			break
		}
		pos++
	}
	return comments, braces
}

func braceClass(pos, n int) byte {
	switch {
	case n == 1:
		return BraceAlone
	case pos == 0:
		return BraceStart
	case pos == n-1:
		return BraceEnd
	default:
		return BraceMiddle
	}
}
