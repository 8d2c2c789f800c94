package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/oscwire/osc-go/pkg/inspect"
	"github.com/oscwire/osc-go/pkg/osc"
)

// InspectOptions configures RunInspect.
type InspectOptions struct {
	Codec osc.Config

	// ShowRaw appends the bytes of each region to the layout.
	ShowRaw bool

	// Path selects a bundle element or argument to print instead of the
	// layout, for example "0/2".
	Path string
}

// RunInspect writes the annotated byte layout of data to w, or the node
// selected by opts.Path. Layout errors are returned after the fields read
// so far have been written.
func RunInspect(data []byte, opts InspectOptions, w io.Writer) error {
	if opts.Path != "" {
		path, err := inspect.ParsePath(opts.Path)
		if err != nil {
			return err
		}
		p, err := opts.Codec.Decode(data)
		if err != nil {
			return err
		}
		node, err := inspect.Resolve(p, path)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, node.String())
		return err
	}

	ins := &inspect.Inspector{MaxDepth: opts.Codec.MaxDepth}
	fields, layoutErr := ins.Layout(data)

	f := inspect.NewFormatter()
	f.ShowRaw = opts.ShowRaw
	if _, err := io.WriteString(w, f.FormatLayout(fields)); err != nil {
		return err
	}
	return layoutErr
}

// ReadInspectInput returns the packet bytes for inspection: the hex
// arguments when present, otherwise r read as hex text or raw bytes.
func ReadInspectInput(args []string, format string, r io.Reader) ([]byte, error) {
	if len(args) > 0 {
		return ParseHex(strings.Join(args, " "))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatHex:
		return ParseHex(string(data))
	case FormatRaw:
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: hex, raw)", format)
	}
}
