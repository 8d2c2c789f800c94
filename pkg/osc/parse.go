package osc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/oscwire/osc-go/pkg/address"
)

// ParseLiteral classifies a bare literal by its shape. The checks run in a
// fixed order and the first match wins:
//
//  1. 0x + up to 8 hex digits: Int32 (bits reinterpreted); more: Int64
//  2. trailing 'L' on an integer: Int64
//  3. plain integer: Int32, or Int64 if out of 32-bit range
//  4. trailing 'd' on a float: Float64
//  5. trailing 'f' on a float: Float32
//  6. bare float: Float32, or Float64 if out of 32-bit range
//  7. true / false (any case): Bool
//  8. null / nil (any case): Null
//  9. inf / bang / impulse / infinitum (any case): Impulse
//  10. anything else: Symbol holding the raw text
//
// The order matters for compatibility with existing text: an unsuffixed
// "5.0" is always a Float32.
//
// Floats are decimal only: hex floats such as "0x1p3" and words such as
// "inf", "nan" or "Infinity" are never floats. The one exception is the
// exact spellings Format writes for non-finite values, "+Inf", "-Inf" and
// "NaN", which parse when they carry an f or d suffix. Without a suffix
// they are symbols.
func ParseLiteral(s string) Value {
	if hexDigits, ok := strings.CutPrefix(s, "0x"); ok && isHex(hexDigits) {
		if len(hexDigits) <= 8 {
			v, _ := strconv.ParseUint(hexDigits, 16, 32)
			return Int32(int32(uint32(v)))
		}
		if v, err := strconv.ParseUint(hexDigits, 16, 64); err == nil {
			return Int64(int64(v))
		}
	}

	if rest, ok := strings.CutSuffix(s, "L"); ok {
		if v, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return Int64(v)
		}
	}

	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return Int32(v)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int64(v)
	}

	if rest, ok := strings.CutSuffix(s, "d"); ok {
		if v, ok := parseFloat(rest, 64); ok {
			return Float64(v)
		}
	}
	if rest, ok := strings.CutSuffix(s, "f"); ok {
		if v, ok := parseFloat(rest, 32); ok {
			return Float32(v)
		}
	}

	if isDecimalFloat(s) {
		if v, err := strconv.ParseFloat(s, 32); err == nil {
			return Float32(v)
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return Float64(v)
		}
	}

	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null", "nil":
		return Null{}
	case "inf", "bang", "impulse", "infinitum":
		return Impulse{}
	}

	return Symbol(s)
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := hexValue(s[i]); !ok {
			return false
		}
	}
	return true
}

// parseFloat parses the body of a suffixed float literal.
func parseFloat(s string, bitSize int) (float64, bool) {
	switch s {
	case "+Inf":
		return math.Inf(1), true
	case "-Inf":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	if !isDecimalFloat(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, bitSize)
	return v, err == nil
}

// isDecimalFloat reports whether s is written as a decimal number: an
// optional sign, then a digit or a '.' and a digit, using only digits,
// '.', 'e', 'E' and signs. Words such as "inf" or "nan" and hex floats
// such as "0x1p3" are not floats, with or without a suffix.
func isDecimalFloat(s string) bool {
	t := s
	if t != "" && (t[0] == '+' || t[0] == '-') {
		t = t[1:]
	}
	if t != "" && t[0] == '.' {
		t = t[1:]
	}
	if t == "" || t[0] < '0' || t[0] > '9' {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return true
}

// parser builds packets from textual input.
type parser struct {
	tok         *Tokenizer
	maxDepth    int
	arrayDepth  int
	bundleDepth int
}

func newParser(text string, maxDepth int) *parser {
	return &parser{tok: NewTokenizer(text), maxDepth: maxDepth}
}

// enter increments one of the nesting counters and fails once it passes
// the configured maximum. Arrays and bundles are counted separately.
func (p *parser) enter(depth *int) error {
	*depth++
	if *depth > p.maxDepth {
		return syntaxErrorf(p.tok.Pos(), ErrMaxDepthExceeded, "nesting deeper than %d", p.maxDepth)
	}
	return nil
}

func leave(depth *int) {
	*depth--
}

// expectEnd checks that nothing but whitespace follows.
func (p *parser) expectEnd() error {
	lx, err := p.tok.Next()
	if err != nil {
		return err
	}
	if lx.Kind != TextEnd {
		return syntaxErrorf(lx.Offset, ErrUnexpectedToken, "trailing %s", lx.Kind)
	}
	return nil
}

// parsePacket dispatches on the first non-blank character: '#' or '{'
// starts a bundle, anything else a message.
func (p *parser) parsePacket() (Packet, error) {
	c, ok := p.tok.PeekChar()
	if !ok {
		return nil, syntaxErrorf(p.tok.Pos(), ErrUnexpectedToken, "empty packet")
	}
	switch c {
	case '#':
		return p.parseBundle(false)
	case '{':
		p.tok.Next()
		return p.parseBundle(true)
	}
	return p.parseMessage(false)
}

// parseMessage reads "address[, arg]*". When braced the message is a
// bundle element and ends at its closing '}', which is consumed.
func (p *parser) parseMessage(braced bool) (*Message, error) {
	addr, offset, err := p.tok.NextAddress(braced)
	if err != nil {
		return nil, err
	}
	if err := address.ValidatePattern(addr); err != nil {
		return nil, syntaxErrorf(offset, ErrInvalidAddress, "%q: %v", addr, err)
	}

	terminator := TextEnd
	if braced {
		terminator = TextObjectEnd
	}

	lx, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	args := []Value{}
	switch lx.Kind {
	case terminator:
	case TextSeparator:
		if args, err = p.parseList(terminator); err != nil {
			return nil, err
		}
	default:
		return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected ',' after address, got %s", lx.Kind)
	}

	if err := validateArgs(args, 0, p.maxDepth); err != nil {
		return nil, err
	}
	return &Message{address: addr, args: args}, nil
}

// parseList reads one or more comma-separated values up to terminator.
func (p *parser) parseList(terminator TextToken) ([]Value, error) {
	var values []Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		lx, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		switch lx.Kind {
		case TextSeparator:
		case terminator:
			return values, nil
		default:
			return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected ',' or %s, got %s", terminator, lx.Kind)
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	lx, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	switch lx.Kind {
	case TextLiteral:
		return ParseLiteral(lx.Text), nil
	case TextString:
		s, err := unescapeAt(lx.Text, lx.Offset)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TextSymbol:
		s, err := unescapeAt(lx.Text, lx.Offset)
		if err != nil {
			return nil, err
		}
		return Symbol(s), nil
	case TextChar:
		s, err := unescapeAt(lx.Text, lx.Offset)
		if err != nil {
			return nil, err
		}
		if len(s) != 1 {
			return nil, syntaxErrorf(lx.Offset, ErrInvalidLiteral, "char literal must be one byte, got %d", len(s))
		}
		return Char(s[0]), nil
	case TextArrayStart:
		return p.parseArray()
	case TextObjectStart:
		return p.parseObject()
	default:
		return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected value, got %s", lx.Kind)
	}
}

// parseArray reads the elements after '[' through the matching ']'.
func (p *parser) parseArray() (Value, error) {
	if err := p.enter(&p.arrayDepth); err != nil {
		return nil, err
	}
	defer leave(&p.arrayDepth)

	lx, err := p.tok.Peek()
	if err != nil {
		return nil, err
	}
	if lx.Kind == TextArrayEnd {
		p.tok.Next()
		return Array{}, nil
	}
	values, err := p.parseList(TextArrayEnd)
	if err != nil {
		return nil, err
	}
	return Array(values), nil
}

// parseBundle reads "#bundle, timetag[, {element}]*". When braced the
// bundle ends at its closing '}', which is consumed.
func (p *parser) parseBundle(braced bool) (*Bundle, error) {
	if err := p.enter(&p.bundleDepth); err != nil {
		return nil, err
	}
	defer leave(&p.bundleDepth)

	lx, err := p.tok.Next()
	if err != nil {
		return nil, err
	}
	if lx.Kind != TextLiteral || lx.Text != "#bundle" {
		return nil, syntaxErrorf(lx.Offset, ErrInvalidBundleIdent, "got %q", lx.Text)
	}
	if lx, err = p.tok.Next(); err != nil {
		return nil, err
	}
	if lx.Kind != TextSeparator {
		return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected ',' after #bundle, got %s", lx.Kind)
	}
	tt, err := p.parseTimeTagField()
	if err != nil {
		return nil, err
	}

	terminator := TextEnd
	if braced {
		terminator = TextObjectEnd
	}

	packets := []Packet{}
	for {
		lx, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		if lx.Kind == terminator {
			break
		}
		if lx.Kind != TextSeparator {
			return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected ',' or %s, got %s", terminator, lx.Kind)
		}
		if lx, err = p.tok.Next(); err != nil {
			return nil, err
		}
		if lx.Kind != TextObjectStart {
			return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected '{' to open bundle element, got %s", lx.Kind)
		}

		if c, _ := p.tok.PeekChar(); c == '#' {
			sub, err := p.parseBundle(true)
			if err != nil {
				return nil, err
			}
			packets = append(packets, sub)
			continue
		}
		msg, err := p.parseMessage(true)
		if err != nil {
			return nil, err
		}
		msg.timestamp = &tt
		packets = append(packets, msg)
	}

	return &Bundle{timeTag: tt, packets: packets}, nil
}

// parseTimeTagField reads a time tag written as a bare literal or a
// quoted string.
func (p *parser) parseTimeTagField() (TimeTag, error) {
	lx, err := p.tok.Next()
	if err != nil {
		return 0, err
	}
	text := lx.Text
	switch lx.Kind {
	case TextLiteral:
	case TextString:
		if text, err = unescapeAt(lx.Text, lx.Offset); err != nil {
			return 0, err
		}
	default:
		return 0, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected time tag, got %s", lx.Kind)
	}
	tt, err := ParseTimeTag(text)
	if err != nil {
		return 0, &SyntaxError{Offset: lx.Offset, Msg: fmt.Sprintf("time tag %q", text), Err: err}
	}
	return tt, nil
}
