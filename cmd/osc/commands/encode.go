package commands

import (
	"fmt"
	"io"

	"github.com/oscwire/osc-go/pkg/inspect"
	"github.com/oscwire/osc-go/pkg/stream"
)

// RunEncode parses each text packet and writes its binary form to w. Hex
// output puts one packet per line, raw output concatenates the encodings
// and stream output frames each packet. It returns the number of packets
// written.
func RunEncode(texts []string, opts Options, w io.Writer) (int, error) {
	if err := opts.checkFormat(); err != nil {
		return 0, err
	}

	var pw *stream.PacketWriter
	if opts.Format == FormatStream {
		pw = newPacketWriter(w, opts)
	}

	for i, text := range texts {
		p, err := opts.Stream.Codec.Parse(text)
		if err != nil {
			return i, fmt.Errorf("packet %d: %w", i+1, err)
		}

		if pw != nil {
			if err := pw.WritePacket(p); err != nil {
				return i, fmt.Errorf("packet %d: %w", i+1, err)
			}
			continue
		}

		data, err := opts.Stream.Codec.Encode(p)
		if err != nil {
			return i, fmt.Errorf("packet %d: %w", i+1, err)
		}
		if opts.Format == FormatHex {
			_, err = fmt.Fprintln(w, inspect.FormatHex(data))
		} else {
			_, err = w.Write(data)
		}
		if err != nil {
			return i, err
		}
	}
	return len(texts), nil
}

func newPacketWriter(w io.Writer, opts Options) *stream.PacketWriter {
	maxSize := opts.Stream.MaxFrameSize
	if maxSize == 0 {
		maxSize = stream.DefaultMaxMessageSize
	}
	fw := stream.NewFrameWriterWithMaxSize(w, opts.Stream.Framing, maxSize)
	pw := stream.NewPacketWriterFromFrames(fw, opts.Stream.Codec)
	if opts.Logger != nil {
		pw.SetLogger(opts.Logger, opts.SessionID)
	}
	if opts.Stream.RemoteAddr != "" {
		pw.SetRemoteAddr(opts.Stream.RemoteAddr)
	}
	return pw
}

