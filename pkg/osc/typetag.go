package osc

import "fmt"

// Token identifies one element of a type-tag string.
type Token uint8

const (
	// TokenNone is the zero value; also the uniform-type result for an
	// empty argument list.
	TokenNone Token = iota
	TokenBlob
	TokenString
	TokenSymbol
	TokenInt
	TokenLong
	TokenFloat
	TokenDouble
	TokenTimeTag
	TokenChar
	TokenColor
	TokenMidi
	TokenTrue
	TokenFalse
	TokenNull
	TokenImpulse
	TokenArrayStart
	TokenArrayEnd
	TokenEnd

	// TokenBool is the uniform-type category covering True and False.
	TokenBool
	// TokenMixedTypes is the uniform-type result when elements differ.
	TokenMixedTypes
)

var tokenNames = [...]string{
	TokenNone:       "None",
	TokenBlob:       "Blob",
	TokenString:     "String",
	TokenSymbol:     "Symbol",
	TokenInt:        "Int",
	TokenLong:       "Long",
	TokenFloat:      "Float",
	TokenDouble:     "Double",
	TokenTimeTag:    "TimeTag",
	TokenChar:       "Char",
	TokenColor:      "Color",
	TokenMidi:       "Midi",
	TokenTrue:       "True",
	TokenFalse:      "False",
	TokenNull:       "Null",
	TokenImpulse:    "Impulse",
	TokenArrayStart: "ArrayStart",
	TokenArrayEnd:   "ArrayEnd",
	TokenEnd:        "End",
	TokenBool:       "Bool",
	TokenMixedTypes: "MixedTypes",
}

// String returns the token name.
func (t Token) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", uint8(t))
}

// Tag returns the type-tag character for t, or 0 for tokens that have no
// wire representation (None, End, Bool, MixedTypes).
func (t Token) Tag() byte {
	switch t {
	case TokenInt:
		return 'i'
	case TokenLong:
		return 'h'
	case TokenFloat:
		return 'f'
	case TokenDouble:
		return 'd'
	case TokenString:
		return 's'
	case TokenSymbol:
		return 'S'
	case TokenChar:
		return 'c'
	case TokenColor:
		return 'r'
	case TokenTimeTag:
		return 't'
	case TokenMidi:
		return 'm'
	case TokenTrue:
		return 'T'
	case TokenFalse:
		return 'F'
	case TokenNull:
		return 'N'
	case TokenImpulse:
		return 'I'
	case TokenBlob:
		return 'b'
	case TokenArrayStart:
		return '['
	case TokenArrayEnd:
		return ']'
	}
	return 0
}

// TokenForTag maps a type-tag character to its token. NUL maps to TokenEnd.
func TokenForTag(c byte) (Token, error) {
	switch c {
	case 0:
		return TokenEnd, nil
	case 'i':
		return TokenInt, nil
	case 'h':
		return TokenLong, nil
	case 'f':
		return TokenFloat, nil
	case 'd':
		return TokenDouble, nil
	case 's':
		return TokenString, nil
	case 'S':
		return TokenSymbol, nil
	case 'c':
		return TokenChar, nil
	case 'r':
		return TokenColor, nil
	case 't':
		return TokenTimeTag, nil
	case 'm':
		return TokenMidi, nil
	case 'T':
		return TokenTrue, nil
	case 'F':
		return TokenFalse, nil
	case 'N':
		return TokenNull, nil
	case 'I':
		return TokenImpulse, nil
	case 'b':
		return TokenBlob, nil
	case '[':
		return TokenArrayStart, nil
	case ']':
		return TokenArrayEnd, nil
	}
	return TokenNone, fmt.Errorf("%w: %q", ErrUnknownArgumentType, c)
}

// TagScanner is a cursor over a type-tag string (without the leading
// comma). It never allocates; copying the struct snapshots the position.
type TagScanner struct {
	tags string
	pos  int
}

// NewTagScanner returns a scanner positioned at the start of tags.
// A leading ',' is skipped if present.
func NewTagScanner(tags string) TagScanner {
	if len(tags) > 0 && tags[0] == ',' {
		tags = tags[1:]
	}
	return TagScanner{tags: tags}
}

// Tags returns the full tag string being scanned.
func (s *TagScanner) Tags() string {
	return s.tags
}

// Pos returns the index of the next unread tag character.
func (s *TagScanner) Pos() int {
	return s.pos
}

// Peek returns the current token without advancing.
func (s *TagScanner) Peek() (Token, error) {
	if s.pos >= len(s.tags) {
		return TokenEnd, nil
	}
	return TokenForTag(s.tags[s.pos])
}

// Next returns the current token and advances past it. At the end of the
// string it keeps returning TokenEnd.
func (s *TagScanner) Next() (Token, error) {
	tok, err := s.Peek()
	if err != nil {
		return TokenNone, err
	}
	if tok != TokenEnd {
		s.pos++
	}
	return tok, nil
}

// Count returns the number of top-level argument elements in the whole tag
// string and their uniform type. An array counts as one element.
func (s *TagScanner) Count() (int, Token, error) {
	probe := TagScanner{tags: s.tags}
	count, uniform, closed, err := probe.countElements()
	if err != nil {
		return 0, TokenNone, err
	}
	if closed {
		return 0, TokenNone, fmt.Errorf("%w: unmatched ']' in type tag %q", ErrUnexpectedToken, s.tags)
	}
	return count, uniform, nil
}

// CountArray counts the elements of the array whose ArrayStart was the most
// recently consumed token. The scanner position is not moved.
func (s *TagScanner) CountArray() (int, Token, error) {
	probe := *s
	count, uniform, closed, err := probe.countElements()
	if err != nil {
		return 0, TokenNone, err
	}
	if !closed {
		return 0, TokenNone, fmt.Errorf("%w: unterminated '[' in type tag %q", ErrUnexpectedToken, s.tags)
	}
	return count, uniform, nil
}

// countElements walks from the current position. Depth-zero tokens count
// as elements; '[' counts once and descends; ']' ascends, and ascending
// past the starting level ends the walk with closed set.
func (s *TagScanner) countElements() (count int, uniform Token, closed bool, err error) {
	depth := 0
	uniform = TokenNone
	for {
		tok, err := s.Next()
		if err != nil {
			return 0, TokenNone, false, err
		}
		switch tok {
		case TokenEnd:
			if depth > 0 {
				return 0, TokenNone, false, fmt.Errorf("%w: unterminated '[' in type tag %q", ErrUnexpectedToken, s.tags)
			}
			return count, uniform, false, nil
		case TokenArrayStart:
			if depth == 0 {
				count++
				uniform = foldUniform(uniform, TokenArrayStart)
			}
			depth++
		case TokenArrayEnd:
			depth--
			if depth < 0 {
				return count, uniform, true, nil
			}
		default:
			if depth == 0 {
				count++
				uniform = foldUniform(uniform, tok)
			}
		}
	}
}

// foldUniform merges the next element type into the running uniform type.
func foldUniform(current, next Token) Token {
	if next == TokenTrue || next == TokenFalse {
		next = TokenBool
	}
	switch {
	case current == TokenNone:
		return next
	case current == next, current == TokenMixedTypes:
		return current
	case next == TokenNull && (current == TokenString || current == TokenBlob):
		return current
	}
	return TokenMixedTypes
}
