package osc

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// Typed objects in the text grammar have the form "{ name: fields }":
//
//	{ midi: port, status, data1, data2 }         also m:
//	{ midi: port, NoteOn, channel, data1, data2 }
//	{ time: 2024-05-01T12:00:00Z }               also t:
//	{ color: r, g, b[, a] }                      also c:
//	{ blob: 64xAAEC }  { blob: 0x0001 }  { blob: 0, 1, 2 }
//	                                             also b:, data:, d:

const (
	base64BlobPrefix = "64x"
	hexBlobPrefix    = "0x"
)

// parseObject reads the name after '{' and dispatches to the field reader,
// which consumes the closing '}'.
func (p *parser) parseObject() (Value, error) {
	p.tok.skipSpace()
	offset := p.tok.Pos()
	name, err := p.tok.NextObjectName()
	if err != nil {
		return nil, err
	}
	switch name {
	case "midi", "m":
		return p.parseMidi()
	case "time", "t":
		tt, err := p.parseTimeTagField()
		if err != nil {
			return nil, err
		}
		return tt, p.expectObjectEnd()
	case "color", "c":
		return p.parseColor()
	case "blob", "b", "data", "d":
		return p.parseBlob()
	}
	return nil, syntaxErrorf(offset, ErrInvalidObjectName, "%q", name)
}

func (p *parser) expectObjectEnd() error {
	lx, err := p.tok.Next()
	if err != nil {
		return err
	}
	if lx.Kind != TextObjectEnd {
		return syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected '}', got %s", lx.Kind)
	}
	return nil
}

// literalFields reads comma-separated bare literals through the closing
// '}'.
func (p *parser) literalFields() ([]Lexeme, error) {
	var fields []Lexeme
	for {
		lx, err := p.tok.Next()
		if err != nil {
			return nil, err
		}
		if lx.Kind == TextObjectEnd && len(fields) == 0 {
			return nil, nil
		}
		if lx.Kind != TextLiteral {
			return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected literal, got %s", lx.Kind)
		}
		fields = append(fields, lx)

		if lx, err = p.tok.Next(); err != nil {
			return nil, err
		}
		switch lx.Kind {
		case TextSeparator:
		case TextObjectEnd:
			return fields, nil
		default:
			return nil, syntaxErrorf(lx.Offset, ErrUnexpectedToken, "expected ',' or '}', got %s", lx.Kind)
		}
	}
}

// parseByte reads a decimal or 0x-prefixed hex value in 0..255.
func parseByte(lx Lexeme) (uint8, error) {
	var (
		v   uint64
		err error
	)
	if digits, ok := strings.CutPrefix(lx.Text, hexBlobPrefix); ok {
		v, err = strconv.ParseUint(digits, 16, 8)
	} else {
		v, err = strconv.ParseUint(lx.Text, 10, 8)
	}
	if err != nil {
		return 0, syntaxErrorf(lx.Offset, ErrInvalidLiteral, "%q is not a byte value", lx.Text)
	}
	return uint8(v), nil
}

func parseBytes(fields []Lexeme) ([]uint8, error) {
	out := make([]uint8, len(fields))
	for i, f := range fields {
		b, err := parseByte(f)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (p *parser) parseMidi() (Value, error) {
	start := p.tok.Pos()
	fields, err := p.literalFields()
	if err != nil {
		return nil, err
	}
	switch len(fields) {
	case 4:
		b, err := parseBytes(fields)
		if err != nil {
			return nil, err
		}
		return Midi{Port: b[0], Status: b[1], Data1: b[2], Data2: b[3]}, nil
	case 5:
		typ, ok := ParseMidiMessageType(fields[1].Text)
		if !ok {
			status, err := parseByte(fields[1])
			if err != nil {
				return nil, err
			}
			typ = MidiMessageType(status)
		}
		b, err := parseBytes([]Lexeme{fields[0], fields[2], fields[3], fields[4]})
		if err != nil {
			return nil, err
		}
		return NewMidi(b[0], typ, b[1], b[2], b[3]), nil
	}
	return nil, syntaxErrorf(start, ErrInvalidLiteral, "midi takes 4 or 5 fields, got %d", len(fields))
}

func (p *parser) parseColor() (Value, error) {
	start := p.tok.Pos()
	fields, err := p.literalFields()
	if err != nil {
		return nil, err
	}
	if len(fields) != 3 && len(fields) != 4 {
		return nil, syntaxErrorf(start, ErrInvalidLiteral, "color takes 3 or 4 fields, got %d", len(fields))
	}
	b, err := parseBytes(fields)
	if err != nil {
		return nil, err
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 0xFF}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// parseBlob accepts, in order of preference, a 64x-prefixed base64 body, a
// 0x-prefixed hex body, or a list of decimal byte values.
func (p *parser) parseBlob() (Value, error) {
	lx, err := p.tok.Peek()
	if err != nil {
		return nil, err
	}
	if lx.Kind == TextLiteral {
		if body, ok := strings.CutPrefix(lx.Text, base64BlobPrefix); ok {
			p.tok.Next()
			data, err := decodeBase64Body(body, lx.Offset+len(base64BlobPrefix))
			if err != nil {
				return nil, err
			}
			return Blob(data), p.expectObjectEnd()
		}
		if body, ok := strings.CutPrefix(lx.Text, hexBlobPrefix); ok {
			p.tok.Next()
			data, err := decodeHexBody(body, lx.Offset+len(hexBlobPrefix))
			if err != nil {
				return nil, err
			}
			return Blob(data), p.expectObjectEnd()
		}
	}

	fields, err := p.literalFields()
	if err != nil {
		return nil, err
	}
	data := make([]byte, 0, 8)
	for _, f := range fields {
		b, err := parseByte(f)
		if err != nil {
			return nil, err
		}
		data = append(data, b)
	}
	return Blob(data), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

// base64DecodedLen returns the number of bytes encoded by a padded base64
// body, ignoring embedded whitespace. The final quantum decodes to 3, 2 or
// 1 bytes for 0, 1 or 2 trailing '=' characters.
func base64DecodedLen(body string) (int, bool) {
	chars, pad := 0, 0
	for i := 0; i < len(body); i++ {
		switch c := body[i]; {
		case isSpace(c):
		case c == '=':
			chars++
			pad++
		default:
			if pad > 0 {
				return 0, false
			}
			chars++
		}
	}
	if chars%4 != 0 || pad > 2 {
		return 0, false
	}
	return chars/4*3 - pad, true
}

func decodeBase64Body(body string, offset int) ([]byte, error) {
	n, ok := base64DecodedLen(body)
	if !ok {
		return nil, syntaxErrorf(offset, ErrInvalidLiteral, "malformed base64 blob")
	}
	src := stripSpace(body)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(src)))
	written, err := base64.StdEncoding.Decode(out, []byte(src))
	if err != nil || written != n {
		return nil, syntaxErrorf(offset, ErrInvalidLiteral, "malformed base64 blob")
	}
	return out[:n], nil
}

func decodeHexBody(body string, offset int) ([]byte, error) {
	digits := stripSpace(body)
	if len(digits)%2 != 0 {
		return nil, syntaxErrorf(offset, ErrInvalidLiteral, "hex blob has an odd number of digits")
	}
	out, err := hex.DecodeString(digits)
	if err != nil {
		return nil, syntaxErrorf(offset, ErrInvalidLiteral, "malformed hex blob: %v", err)
	}
	return out, nil
}
