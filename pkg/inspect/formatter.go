package inspect

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowRaw appends the hex bytes of each region.
	ShowRaw bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int

	// MaxValueWidth truncates long values; 0 disables truncation.
	MaxValueWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowRaw:       false,
		IndentWidth:   2,
		MaxValueWidth: 60,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	return strings.Repeat(" ", depth*width) + content
}

// FormatField renders one layout line: offset, size, name and value.
func (f *Formatter) FormatField(field Field) string {
	value := field.Value
	if f.MaxValueWidth > 3 && len(value) > f.MaxValueWidth {
		value = value[:f.MaxValueWidth-3] + "..."
	}
	line := fmt.Sprintf("%06x %5d  %-12s %s", field.Offset, field.Size, f.Indent(field.Depth, field.Name), value)
	if f.ShowRaw && len(field.Raw) > 0 {
		line += "  | " + FormatHex(field.Raw)
	}
	return line
}

// FormatLayout renders every field with a header line.
func (f *Formatter) FormatLayout(fields []Field) string {
	var sb strings.Builder
	sb.WriteString("offset  size  field        value\n")
	for _, field := range fields {
		sb.WriteString(f.FormatField(field))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatHex renders data as space-separated 4-byte groups, matching the
// OSC alignment unit.
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i := 0; i < len(data); i += 4 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString(data[i:min(i+4, len(data))]))
	}
	return sb.String()
}
