package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/oscwire/osc-go/pkg/osc"
	"github.com/oscwire/osc-go/pkg/stream"
)

// DecodeResult counts the outcome of a decode run.
type DecodeResult struct {
	Packets  int
	Failures int
}

// RunDecode reads binary packets from r and prints each in text form. Hex
// input holds one packet per line. A bad hex line or a recoverable stream
// error is reported on w and skipped; other stream errors end the run.
func RunDecode(r io.Reader, opts Options, w io.Writer) (DecodeResult, error) {
	var res DecodeResult
	if err := opts.checkFormat(); err != nil {
		return res, err
	}

	switch opts.Format {
	case FormatHex:
		lines, err := ReadLines(r)
		if err != nil {
			return res, err
		}
		for i, line := range lines {
			p, err := decodeHexLine(line, opts.Stream.Codec)
			if err != nil {
				res.Failures++
				fmt.Fprintf(w, "error: line %d: %v\n", i+1, err)
				continue
			}
			res.Packets++
			fmt.Fprintln(w, osc.Format(p))
		}
		return res, nil

	case FormatRaw:
		data, err := io.ReadAll(r)
		if err != nil {
			return res, err
		}
		p, err := opts.Stream.Codec.Decode(data)
		if err != nil {
			res.Failures++
			return res, err
		}
		res.Packets++
		fmt.Fprintln(w, osc.Format(p))
		return res, nil
	}

	pr := newPacketReader(r, opts)
	for {
		p, err := pr.ReadPacket()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			res.Failures++
			if stream.Recoverable(err, opts.Stream.Framing) {
				fmt.Fprintf(w, "error: frame %d: %v\n", res.Packets+res.Failures, err)
				continue
			}
			return res, err
		}
		res.Packets++
		fmt.Fprintln(w, osc.Format(p))
	}
}

func decodeHexLine(line string, codec osc.Config) (osc.Packet, error) {
	data, err := ParseHex(line)
	if err != nil {
		return nil, err
	}
	return codec.Decode(data)
}

func newPacketReader(r io.Reader, opts Options) *stream.PacketReader {
	maxSize := opts.Stream.MaxFrameSize
	if maxSize == 0 {
		maxSize = stream.DefaultMaxMessageSize
	}
	fr := stream.NewFrameReaderWithMaxSize(r, opts.Stream.Framing, maxSize)
	pr := stream.NewPacketReaderFromFrames(fr, opts.Stream.Codec)
	if opts.Logger != nil {
		pr.SetLogger(opts.Logger, opts.SessionID)
	}
	if opts.Stream.RemoteAddr != "" {
		pr.SetRemoteAddr(opts.Stream.RemoteAddr)
	}
	return pr
}
