package osc

import (
	"errors"
	"fmt"
)

// Codec errors. Every failure returned by this package wraps exactly one of
// these, so callers can classify errors with errors.Is.
var (
	ErrUnknownArgumentType        = errors.New("osc: unknown argument type")
	ErrUnexpectedToken            = errors.New("osc: unexpected token")
	ErrInvalidBundleIdent         = errors.New("osc: invalid bundle ident")
	ErrInvalidBundleMessageHeader = errors.New("osc: invalid bundle message header")
	ErrInvalidBundleMessageLength = errors.New("osc: invalid bundle message length")
	ErrInvalidObjectName          = errors.New("osc: invalid object name")
	ErrInvalidAddress             = errors.New("osc: error parsing address")
	ErrUnexpectedWriterState      = errors.New("osc: unexpected writer state")
	ErrUnsupportedType            = errors.New("osc: unsupported argument type")
	ErrMalformedEscape            = errors.New("osc: malformed escape sequence")
	ErrInvalidLiteral             = errors.New("osc: invalid literal")
	ErrInvalidArgument            = errors.New("osc: invalid argument")
	ErrBufferTooSmall             = errors.New("osc: destination buffer too small")
	ErrOutOfBounds                = errors.New("osc: read past end of packet")
	ErrMaxDepthExceeded           = errors.New("osc: maximum nesting depth exceeded")
)

// SyntaxError describes a failure at a specific byte offset of textual input.
type SyntaxError struct {
	// Offset is the byte offset of the offending character.
	Offset int

	// Msg describes the problem.
	Msg string

	// Err is the sentinel error classifying the failure.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at offset %d: %s", e.Err, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(offset int, err error, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Offset: offset,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}
