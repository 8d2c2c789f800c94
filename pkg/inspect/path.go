package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oscwire/osc-go/pkg/osc"
)

// Path errors.
var (
	ErrEmptyPath       = errors.New("empty path")
	ErrInvalidPath     = errors.New("invalid path format")
	ErrInvalidNumber   = errors.New("invalid numeric value in path")
	ErrIndexOutOfRange = errors.New("path index out of range")
	ErrNotContainer    = errors.New("path descends into a scalar value")
)

// Path selects a node inside a packet. Each index picks a bundle element,
// a message argument or an array element, depending on the node it is
// applied to.
type Path struct {
	Indices []int

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a slash-separated list of indices such as "1/0/2".
// Indices can be decimal or hex (0x prefix).
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}
	if strings.HasPrefix(input, "/") || strings.HasSuffix(input, "/") || strings.Contains(input, "//") {
		return nil, ErrInvalidPath
	}

	parts := strings.Split(input, "/")
	p := &Path{Raw: input, Indices: make([]int, len(parts))}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 0, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, part)
		}
		p.Indices[i] = int(n)
	}
	return p, nil
}

// String returns the path in the form ParsePath accepts.
func (p *Path) String() string {
	parts := make([]string, len(p.Indices))
	for i, n := range p.Indices {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "/")
}

// Node is the target of a path: a packet or an argument value.
type Node struct {
	Packet osc.Packet
	Value  osc.Value
}

// String renders the node in OSC text form.
func (n Node) String() string {
	if n.Packet != nil {
		return osc.Format(n.Packet)
	}
	return osc.FormatValue(n.Value)
}

// Resolve follows path from p. A nil or empty path selects p itself.
func Resolve(p osc.Packet, path *Path) (Node, error) {
	node := Node{Packet: p}
	if path == nil {
		return node, nil
	}
	for depth, idx := range path.Indices {
		var (
			n    int
			next Node
		)
		switch {
		case node.Packet != nil:
			switch pk := node.Packet.(type) {
			case *osc.Bundle:
				n = pk.Len()
				if idx < n {
					next = Node{Packet: pk.Packet(idx)}
				}
			case *osc.Message:
				n = pk.Len()
				if idx < n {
					next = Node{Value: pk.Arg(idx)}
				}
			}
		default:
			arr, ok := node.Value.(osc.Array)
			if !ok {
				return Node{}, fmt.Errorf("%w: %s at segment %d", ErrNotContainer, ValueKind(node.Value), depth)
			}
			n = len(arr)
			if idx < n {
				next = Node{Value: arr[idx]}
			}
		}
		if idx >= n {
			return Node{}, fmt.Errorf("%w: index %d at segment %d, length %d", ErrIndexOutOfRange, idx, depth, n)
		}
		node = next
	}
	return node, nil
}
