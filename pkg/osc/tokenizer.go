package osc

import (
	"fmt"
	"strings"
)

// TextToken classifies a lexeme of the textual packet grammar.
type TextToken uint8

const (
	TextEnd TextToken = iota
	TextLiteral
	TextString
	TextSymbol
	TextChar
	TextSeparator
	TextArrayStart
	TextArrayEnd
	TextObjectStart
	TextObjectEnd
)

// String returns the token name.
func (t TextToken) String() string {
	switch t {
	case TextEnd:
		return "End"
	case TextLiteral:
		return "Literal"
	case TextString:
		return "String"
	case TextSymbol:
		return "Symbol"
	case TextChar:
		return "Char"
	case TextSeparator:
		return "Separator"
	case TextArrayStart:
		return "ArrayStart"
	case TextArrayEnd:
		return "ArrayEnd"
	case TextObjectStart:
		return "ObjectStart"
	case TextObjectEnd:
		return "ObjectEnd"
	default:
		return fmt.Sprintf("TextToken(%d)", uint8(t))
	}
}

// Lexeme is one token with its source text. For String, Symbol and Char
// tokens Text is the still-escaped body between the quotes and Offset is
// the offset of the body; otherwise Offset is where the token starts.
type Lexeme struct {
	Kind   TextToken
	Text   string
	Offset int
}

// Tokenizer is a single-pass scanner over textual packet input.
type Tokenizer struct {
	src string
	pos int
}

// NewTokenizer returns a tokenizer positioned at the start of src.
func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Pos returns the offset of the next unread byte.
func (t *Tokenizer) Pos() int {
	return t.pos
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func (t *Tokenizer) skipSpace() {
	for t.pos < len(t.src) && isSpace(t.src[t.pos]) {
		t.pos++
	}
}

// PeekChar skips whitespace and returns the next byte without consuming it.
// ok is false at the end of input.
func (t *Tokenizer) PeekChar() (c byte, ok bool) {
	t.skipSpace()
	if t.pos >= len(t.src) {
		return 0, false
	}
	return t.src[t.pos], true
}

// Peek returns the next lexeme without consuming it.
func (t *Tokenizer) Peek() (Lexeme, error) {
	save := t.pos
	lx, err := t.Next()
	t.pos = save
	return lx, err
}

// Next consumes and returns the next lexeme.
func (t *Tokenizer) Next() (Lexeme, error) {
	t.skipSpace()
	start := t.pos
	if start >= len(t.src) {
		return Lexeme{Kind: TextEnd, Offset: start}, nil
	}

	switch c := t.src[start]; c {
	case ',':
		t.pos++
		return Lexeme{Kind: TextSeparator, Text: ",", Offset: start}, nil
	case '[':
		t.pos++
		return Lexeme{Kind: TextArrayStart, Text: "[", Offset: start}, nil
	case ']':
		t.pos++
		return Lexeme{Kind: TextArrayEnd, Text: "]", Offset: start}, nil
	case '{':
		t.pos++
		return Lexeme{Kind: TextObjectStart, Text: "{", Offset: start}, nil
	case '}':
		t.pos++
		return Lexeme{Kind: TextObjectEnd, Text: "}", Offset: start}, nil
	case '"':
		return t.quoted(TextString, start+1)
	case '\'':
		return t.quoted(TextChar, start+1)
	case '$':
		if start+1 < len(t.src) && t.src[start+1] == '"' {
			return t.quoted(TextSymbol, start+2)
		}
	}
	return t.literal(start), nil
}

// quoted scans a body starting at bodyStart up to the unescaped quote that
// matches the byte just before it.
func (t *Tokenizer) quoted(kind TextToken, bodyStart int) (Lexeme, error) {
	quote := t.src[bodyStart-1]
	for i := bodyStart; i < len(t.src); i++ {
		switch t.src[i] {
		case '\\':
			i++
		case quote:
			t.pos = i + 1
			return Lexeme{Kind: kind, Text: t.src[bodyStart:i], Offset: bodyStart}, nil
		}
	}
	return Lexeme{}, syntaxErrorf(bodyStart-1, ErrUnexpectedToken, "unterminated %s", kind)
}

// literal scans a bare literal up to the next unescaped ',', ']' or '}'.
// Trailing whitespace is not part of the literal.
func (t *Tokenizer) literal(start int) Lexeme {
	i := start
scan:
	for ; i < len(t.src); i++ {
		switch t.src[i] {
		case '\\':
			i++
		case ',', ']', '}':
			break scan
		}
	}
	if i > len(t.src) {
		i = len(t.src)
	}
	t.pos = i
	return Lexeme{Kind: TextLiteral, Text: strings.TrimRight(t.src[start:i], " \n\r\t"), Offset: start}
}

// NextObjectName reads the name of a typed object up to its ':' and returns
// it lower-cased. Names longer than five characters are rejected.
func (t *Tokenizer) NextObjectName() (string, error) {
	t.skipSpace()
	start := t.pos
	end := strings.IndexAny(t.src[start:], ":,]}")
	if end < 0 || t.src[start+end] != ':' {
		return "", syntaxErrorf(start, ErrUnexpectedToken, "expected object name followed by ':'")
	}
	name := strings.ToLower(strings.TrimRight(t.src[start:start+end], " \n\r\t"))
	if name == "" || len(name) > 5 {
		return "", syntaxErrorf(start, ErrInvalidObjectName, "%q", name)
	}
	t.pos = start + end + 1
	return name, nil
}

// NextAddress reads a message address: everything up to the first ',' not
// inside a {...} pattern group, or, when braced, up to an unmatched '}'.
func (t *Tokenizer) NextAddress(braced bool) (string, int, error) {
	t.skipSpace()
	start := t.pos
	depth := 0
	i := start
scan:
	for ; i < len(t.src); i++ {
		switch t.src[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				if braced {
					break scan
				}
				return "", start, syntaxErrorf(i, ErrUnexpectedToken, "unexpected '}' in address")
			}
			depth--
		case ',':
			if depth == 0 {
				break scan
			}
		}
	}
	t.pos = i
	return strings.TrimRight(t.src[start:i], " \n\r\t"), start, nil
}
