package inspect

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/oscwire/osc-go/pkg/osc"
)

// Inspector errors.
var (
	ErrUnbalancedArray = errors.New("inspect: unbalanced array in type tag")
	ErrTooDeep         = errors.New("inspect: nesting exceeds maximum depth")
)

// Field names used in layouts besides the argument type names.
const (
	FieldAddress     = "address"
	FieldTypeTag     = "typetag"
	FieldBundle      = "bundle"
	FieldTimeTag     = "time"
	FieldElementSize = "size"
	FieldArrayEnd    = "end"
	FieldTrailing    = "trailing"
)

// Field describes one region of an encoded packet.
type Field struct {
	// Offset is the position of the region from the start of the packet.
	Offset int

	// Size is the region length including padding.
	Size int

	// Depth is the nesting level: bundle elements and array contents sit
	// one level below their container.
	Depth int

	// Name is the region kind, a Field* constant or an argument type name.
	Name string

	// Value is the decoded content in text form.
	Value string

	// Raw is the region's bytes.
	Raw []byte
}

// Inspector produces annotated layouts of binary packets.
type Inspector struct {
	// MaxDepth bounds array and bundle nesting. Values <= 0 select
	// osc.DefaultMaxDepth.
	MaxDepth int
}

// NewInspector creates an Inspector with the default depth limit.
func NewInspector() *Inspector {
	return &Inspector{MaxDepth: osc.DefaultMaxDepth}
}

// Layout walks data and returns its regions in order. On malformed input
// it returns the regions decoded before the fault along with an error
// naming the offset.
func (i *Inspector) Layout(data []byte) ([]Field, error) {
	maxDepth := i.MaxDepth
	if maxDepth <= 0 {
		maxDepth = osc.DefaultMaxDepth
	}
	w := &walker{data: data, maxDepth: maxDepth}
	err := w.packet(0, len(data), 0, 0)
	return w.fields, err
}

type walker struct {
	data     []byte
	fields   []Field
	maxDepth int
}

func (w *walker) add(offset, size, depth int, name, value string) {
	w.fields = append(w.fields, Field{
		Offset: offset,
		Size:   size,
		Depth:  depth,
		Name:   name,
		Value:  value,
		Raw:    w.data[offset : offset+size],
	})
}

func (w *walker) fail(offset int, err error) error {
	return fmt.Errorf("inspect: at offset %d: %w", offset, err)
}

// packet lays out data[base:base+n].
func (w *walker) packet(base, n, depth, bundles int) error {
	if n > 0 && w.data[base] == '#' {
		return w.bundle(base, n, depth, bundles+1)
	}
	return w.message(base, n, depth)
}

func (w *walker) message(base, n, depth int) error {
	r := osc.NewReader(w.data[base : base+n])

	addr, err := r.ReadAddress()
	if err != nil {
		return w.fail(base, err)
	}
	w.add(base, r.Pos(), depth, FieldAddress, strconv.Quote(addr))

	if r.Remaining() == 0 {
		return nil
	}
	start := r.Pos()
	tags, err := r.ReadTypeTag()
	if err != nil {
		return w.fail(base+start, err)
	}
	w.add(base+start, r.Pos()-start, depth, FieldTypeTag, ","+tags.Tags())

	if err := w.arguments(r, &tags, base, depth, 0); err != nil {
		return err
	}
	if rest := r.Remaining(); rest > 0 {
		w.add(base+r.Pos(), rest, depth, FieldTrailing, strconv.Itoa(rest)+" bytes")
	}
	return nil
}

// arguments lays out tokens until the end of the tag string or, inside an
// array, up to the matching ArrayEnd.
func (w *walker) arguments(r *osc.Reader, tags *osc.TagScanner, base, depth, arrays int) error {
	for {
		start := r.Pos()
		tok, err := tags.Peek()
		if err != nil {
			return w.fail(base+start, err)
		}

		switch tok {
		case osc.TokenEnd:
			if arrays > 0 {
				return w.fail(base+start, ErrUnbalancedArray)
			}
			return nil

		case osc.TokenArrayEnd:
			if arrays == 0 {
				return w.fail(base+start, ErrUnbalancedArray)
			}
			tags.Next()
			w.add(base+start, 0, depth-1, FieldArrayEnd, "]")
			return nil

		case osc.TokenArrayStart:
			if arrays+1 > w.maxDepth {
				return w.fail(base+start, ErrTooDeep)
			}
			tags.Next()
			w.add(base+start, 0, depth, TokenName(tok), "[")
			if err := w.arguments(r, tags, base, depth+1, arrays+1); err != nil {
				return err
			}

		default:
			v, err := r.ReadArgument(tags)
			if err != nil {
				return w.fail(base+start, err)
			}
			w.add(base+start, r.Pos()-start, depth, TokenName(tok), osc.FormatValue(v))
		}
	}
}

func (w *walker) bundle(base, n, depth, bundles int) error {
	if bundles > w.maxDepth {
		return w.fail(base, ErrTooDeep)
	}
	r := osc.NewReader(w.data[base : base+n])

	if err := r.ReadBundleIdent(); err != nil {
		return w.fail(base, err)
	}
	w.add(base, r.Pos(), depth, FieldBundle, "#bundle")

	start := r.Pos()
	tt, err := r.ReadBundleTimeTag()
	if err != nil {
		return w.fail(base+start, err)
	}
	w.add(base+start, r.Pos()-start, depth, FieldTimeTag, tt.String())

	for r.Remaining() > 0 {
		start := r.Pos()
		size, err := r.ReadBundleMessageLength(n)
		if err != nil {
			return w.fail(base+start, err)
		}
		w.add(base+start, r.Pos()-start, depth+1, FieldElementSize, strconv.Itoa(size))

		if size > 0 {
			if err := w.packet(base+r.Pos(), size, depth+1, bundles); err != nil {
				return err
			}
		}
		if err := r.Skip(size); err != nil {
			return w.fail(base+r.Pos(), err)
		}
	}
	return nil
}
