package osc

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Value is an OSC argument. The set of implementations is closed: it is
// exactly the types declared in this file plus Color, Midi and TimeTag.
type Value interface {
	// Token returns the type-tag token the value is encoded with.
	Token() Token

	isValue()
}

type (
	// Int32 is a 32-bit signed integer ('i').
	Int32 int32

	// Int64 is a 64-bit signed integer ('h').
	Int64 int64

	// Float32 is a 32-bit IEEE 754 float ('f').
	Float32 float32

	// Float64 is a 64-bit IEEE 754 float ('d').
	Float64 float64

	// String is a NUL-terminated string ('s').
	String string

	// Symbol is a string distinguished by its type tag ('S').
	Symbol string

	// Char is a single byte character ('c').
	Char byte

	// Bool is encoded purely in the type tag ('T' or 'F').
	Bool bool

	// Null is the nil argument ('N').
	Null struct{}

	// Impulse is the payload-free trigger ("bang") argument ('I').
	Impulse struct{}

	// Blob is an arbitrary byte sequence ('b').
	Blob []byte

	// Array is a nested list of arguments ('[' ... ']').
	Array []Value
)

func (Int32) Token() Token   { return TokenInt }
func (Int64) Token() Token   { return TokenLong }
func (Float32) Token() Token { return TokenFloat }
func (Float64) Token() Token { return TokenDouble }
func (String) Token() Token  { return TokenString }
func (Symbol) Token() Token  { return TokenSymbol }
func (Char) Token() Token    { return TokenChar }
func (Null) Token() Token    { return TokenNull }
func (Impulse) Token() Token { return TokenImpulse }
func (Blob) Token() Token    { return TokenBlob }
func (Array) Token() Token   { return TokenArrayStart }

func (b Bool) Token() Token {
	if b {
		return TokenTrue
	}
	return TokenFalse
}

func (Int32) isValue()   {}
func (Int64) isValue()   {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (String) isValue()  {}
func (Symbol) isValue()  {}
func (Char) isValue()    {}
func (Bool) isValue()    {}
func (Null) isValue()    {}
func (Impulse) isValue() {}
func (Blob) isValue()    {}
func (Array) isValue()   {}
func (Color) isValue()   {}
func (Midi) isValue()    {}
func (TimeTag) isValue() {}

// TypeTag returns the type-tag characters for args, without the leading
// comma. Arrays are bracketed recursively.
func TypeTag(args []Value) string {
	var sb strings.Builder
	appendTypeTag(&sb, args)
	return sb.String()
}

func appendTypeTag(sb *strings.Builder, args []Value) {
	for _, arg := range args {
		if arr, ok := arg.(Array); ok {
			sb.WriteByte('[')
			appendTypeTag(sb, arr)
			sb.WriteByte(']')
			continue
		}
		if arg != nil {
			sb.WriteByte(arg.Token().Tag())
		}
	}
}

// validateArgs checks that every argument, recursively, is a non-nil value
// that can be encoded without loss.
func validateArgs(args []Value, depth, maxDepth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: arrays nested deeper than %d", ErrMaxDepthExceeded, maxDepth)
	}
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			return fmt.Errorf("%w: argument %d is nil", ErrInvalidArgument, i)
		case String:
			if strings.IndexByte(string(v), 0) >= 0 {
				return fmt.Errorf("%w: string argument %d contains NUL", ErrInvalidArgument, i)
			}
		case Symbol:
			if strings.IndexByte(string(v), 0) >= 0 {
				return fmt.Errorf("%w: symbol argument %d contains NUL", ErrInvalidArgument, i)
			}
		case Blob:
			if int64(len(v)) > math.MaxInt32 {
				return fmt.Errorf("%w: blob argument %d exceeds %d bytes", ErrInvalidArgument, i, math.MaxInt32)
			}
		case Array:
			if err := validateArgs(v, depth+1, maxDepth); err != nil {
				return err
			}
		case Int32, Int64, Float32, Float64, Char, Bool, Null, Impulse, Color, Midi, TimeTag:
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedType, arg)
		}
	}
	return nil
}

// ValuesEqual reports whether a and b hold structurally equal arguments.
// Floats compare by bit pattern so that NaN payloads round-trip as equal.
func ValuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valueEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b Value) bool {
	switch av := a.(type) {
	case Float32:
		bv, ok := b.(Float32)
		return ok && math.Float32bits(float32(av)) == math.Float32bits(float32(bv))
	case Float64:
		bv, ok := b.(Float64)
		return ok && math.Float64bits(float64(av)) == math.Float64bits(float64(bv))
	case Blob:
		bv, ok := b.(Blob)
		return ok && bytes.Equal(av, bv)
	case Array:
		bv, ok := b.(Array)
		return ok && ValuesEqual(av, bv)
	}
	return a == b
}
