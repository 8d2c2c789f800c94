package osc

// DefaultMaxDepth bounds how deeply arrays and bundles may nest, counting
// the outermost array or bundle as level one.
const DefaultMaxDepth = 32

// Config carries codec limits. The zero value uses the defaults.
type Config struct {
	// MaxDepth bounds array and bundle nesting when encoding, decoding and
	// parsing. Values <= 0 select DefaultMaxDepth.
	MaxDepth int
}

// DefaultConfig returns the configuration used by the package-level
// functions.
func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth}
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c Config) newReader(data []byte) *Reader {
	r := NewReader(data)
	r.maxDepth = c.maxDepth()
	return r
}

func (c Config) newWriter(dst []byte) *Writer {
	w := NewWriter(dst)
	w.maxDepth = c.maxDepth()
	return w
}
