package osc

import "strings"

// Escape renders s for use inside a double-quoted string literal.
// Named control characters become their two-character mnemonic, other
// bytes outside ' '..'~' become \xHH, and '"' and '\' are backslashed.
func Escape(s string) string {
	return escape(s, '"')
}

// escape works byte-wise so that multi-byte UTF-8 sequences round-trip
// through \xHH. The quote byte selects which quote character needs
// escaping; a single quote is written as \x27 because there is no
// mnemonic for it.
func escape(s string, quote byte) string {
	if !needsEscape(s, quote) {
		return s
	}
	const hexDigits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if m := escapeMnemonic(c); m != 0 {
			sb.WriteByte('\\')
			sb.WriteByte(m)
			continue
		}
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\'' && quote == '\'', c < ' ', c > '~':
			sb.WriteString(`\x`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0F])
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func needsEscape(s string, quote byte) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < ' ' || c > '~' || c == '"' || c == '\\' || (c == '\'' && quote == '\'') {
			return true
		}
	}
	return false
}

func escapeMnemonic(c byte) byte {
	switch c {
	case 0:
		return '0'
	case '\a':
		return 'a'
	case '\b':
		return 'b'
	case '\f':
		return 'f'
	case '\n':
		return 'n'
	case '\r':
		return 'r'
	case '\t':
		return 't'
	case '\v':
		return 'v'
	}
	return 0
}

func unescapeMnemonic(c byte) (byte, bool) {
	switch c {
	case '0':
		return 0, true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	}
	return 0, false
}

// Unescape reverses Escape. The first pass validates every escape and
// measures the output; the second materialises it. Errors are
// *SyntaxError values whose offset points into s.
func Unescape(s string) (string, error) {
	return unescapeAt(s, 0)
}

// unescapeAt is Unescape with error offsets shifted by base, the position
// of s within a larger input.
func unescapeAt(s string, base int) (string, error) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, nil
	}

	n := 0
	for i := 0; i < len(s); i++ {
		n++
		if s[i] != '\\' {
			continue
		}
		if i+1 >= len(s) {
			return "", syntaxErrorf(base+i, ErrMalformedEscape, "dangling backslash")
		}
		c := s[i+1]
		if c == 'x' {
			if i+3 >= len(s) {
				return "", syntaxErrorf(base+i, ErrMalformedEscape, `truncated \x escape`)
			}
			for j := i + 2; j < i+4; j++ {
				if _, ok := hexValue(s[j]); !ok {
					return "", syntaxErrorf(base+j, ErrMalformedEscape, "invalid hex digit %q", s[j])
				}
			}
			i += 3
			continue
		}
		if _, ok := unescapeMnemonic(c); !ok {
			return "", syntaxErrorf(base+i+1, ErrMalformedEscape, "unknown escape character %q", c)
		}
		i++
	}

	out := make([]byte, 0, n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if s[i+1] == 'x' {
			hi, _ := hexValue(s[i+2])
			lo, _ := hexValue(s[i+3])
			out = append(out, hi<<4|lo)
			i += 3
			continue
		}
		m, _ := unescapeMnemonic(s[i+1])
		out = append(out, m)
		i++
	}
	return string(out), nil
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
