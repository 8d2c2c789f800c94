// Package address validates OSC address patterns.
//
// An address pattern is a '/'-separated path whose parts may contain the
// OSC wildcard syntax:
//
//	?         any single character
//	*         any run of characters
//	[a-z]     any character in the set (a leading '!' negates it)
//	{foo,bar} any of the comma-separated strings
//
// Only syntax is checked here. Matching patterns against method addresses
// is left to the dispatching layer.
package address

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty indicates an empty address.
	ErrEmpty = errors.New("address: empty")

	// ErrNoLeadingSlash indicates the address does not start with '/'.
	ErrNoLeadingSlash = errors.New("address: must start with '/'")

	// ErrInvalidChar indicates a character not allowed in an address.
	ErrInvalidChar = errors.New("address: invalid character")

	// ErrUnbalanced indicates an unterminated or stray bracket/brace.
	ErrUnbalanced = errors.New("address: unbalanced bracket")
)

// IsValidPattern reports whether s is a syntactically valid address pattern.
func IsValidPattern(s string) bool {
	return ValidatePattern(s) == nil
}

// IsValidAddress reports whether s is a valid method address: a valid
// pattern that contains no wildcard characters.
func IsValidAddress(s string) bool {
	if !IsValidPattern(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if isWildcard(s[i]) {
			return false
		}
	}
	return true
}

// ValidatePattern returns a descriptive error when s is not a valid
// address pattern.
func ValidatePattern(s string) error {
	if s == "" {
		return ErrEmpty
	}
	if s[0] != '/' {
		return ErrNoLeadingSlash
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '[':
			end, err := scanBracket(s, i)
			if err != nil {
				return err
			}
			i = end
		case '{':
			end, err := scanBrace(s, i)
			if err != nil {
				return err
			}
			i = end
		case ']', '}':
			return fmt.Errorf("%w: stray %q at offset %d", ErrUnbalanced, c, i)
		default:
			if !isAddressChar(c) {
				return fmt.Errorf("%w: %q at offset %d", ErrInvalidChar, c, i)
			}
		}
	}
	return nil
}

// scanBracket validates a character set starting at s[start] == '[' and
// returns the offset of the closing ']'.
func scanBracket(s string, start int) (int, error) {
	i := start + 1
	if i < len(s) && s[i] == '!' {
		i++
	}
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ']':
			return i, nil
		case c == '/' || c == '[' || c == '{' || c == '}':
			return 0, fmt.Errorf("%w: %q inside [] at offset %d", ErrInvalidChar, c, i)
		case !isAddressChar(c) && c != '-':
			return 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidChar, c, i)
		}
	}
	return 0, fmt.Errorf("%w: unterminated '[' at offset %d", ErrUnbalanced, start)
}

// scanBrace validates a string list starting at s[start] == '{' and returns
// the offset of the closing '}'.
func scanBrace(s string, start int) (int, error) {
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '}':
			return i, nil
		case c == ',':
		case c == '/' || c == '{' || c == '[' || c == ']':
			return 0, fmt.Errorf("%w: %q inside {} at offset %d", ErrInvalidChar, c, i)
		case !isAddressChar(c):
			return 0, fmt.Errorf("%w: %q at offset %d", ErrInvalidChar, c, i)
		}
	}
	return 0, fmt.Errorf("%w: unterminated '{' at offset %d", ErrUnbalanced, start)
}

func isAddressChar(c byte) bool {
	if c <= ' ' || c > '~' {
		return false
	}
	switch c {
	case '#', ',':
		return false
	}
	return true
}

func isWildcard(c byte) bool {
	switch c {
	case '?', '*', '[', ']', '{', '}':
		return true
	}
	return false
}
