// Package commands implements the osc CLI commands.
package commands

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/oscwire/osc-go/pkg/log"
	"github.com/oscwire/osc-go/pkg/osc"
	"github.com/oscwire/osc-go/pkg/stream"
)

// Binary input and output formats.
const (
	FormatHex    = "hex"
	FormatRaw    = "raw"
	FormatStream = "stream"
)

// Options carries the settings shared by the commands.
type Options struct {
	// Format is FormatHex, FormatRaw or FormatStream.
	Format string

	// Stream configures framing and codec limits. Its Codec also applies
	// to the hex and raw formats.
	Stream stream.Options

	// Logger receives protocol capture events for stream I/O. Nil
	// disables capture.
	Logger    log.Logger
	SessionID string
}

func (o Options) checkFormat() error {
	switch o.Format {
	case FormatHex, FormatRaw, FormatStream:
		return nil
	default:
		return fmt.Errorf("unknown format: %s (supported: hex, raw, stream)", o.Format)
	}
}

// ParseHex decodes hex text. Whitespace and an optional 0x prefix are
// ignored.
func ParseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}

// ReadLines returns the non-blank lines of r, trimmed.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// describe summarises p in one line for listings.
func describe(p osc.Packet) string {
	switch p := p.(type) {
	case *osc.Message:
		return fmt.Sprintf("message %s %s (%d bytes)", p.Address(), p.TypeTag(), p.SizeInBytes())
	case *osc.Bundle:
		return fmt.Sprintf("bundle %s, %d elements (%d bytes)", p.TimeTag(), p.Len(), p.SizeInBytes())
	default:
		return fmt.Sprintf("%T", p)
	}
}
