package osc

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Format renders p in the textual grammar accepted by Parse.
func Format(p Packet) string {
	var sb strings.Builder
	p.format(&sb)
	return sb.String()
}

// FormatValue renders a single argument as it appears in a message.
func FormatValue(v Value) string {
	var sb strings.Builder
	formatValue(&sb, v)
	return sb.String()
}

func formatMessage(sb *strings.Builder, m *Message) {
	sb.WriteString(m.address)
	for _, arg := range m.args {
		sb.WriteString(", ")
		formatValue(sb, arg)
	}
}

func formatBundle(sb *strings.Builder, b *Bundle) {
	sb.WriteString("{ #bundle, ")
	sb.WriteString(b.timeTag.String())
	for _, p := range b.packets {
		sb.WriteString(", ")
		switch p := p.(type) {
		case *Message:
			sb.WriteString("{ ")
			formatMessage(sb, p)
			sb.WriteString(" }")
		case *Bundle:
			formatBundle(sb, p)
		}
	}
	sb.WriteString(" }")
}

func formatValue(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Int32:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Int64:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('L')
	case Float32:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		sb.WriteByte('f')
	case Float64:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		sb.WriteByte('d')
	case String:
		sb.WriteByte('"')
		sb.WriteString(escape(string(v), '"'))
		sb.WriteByte('"')
	case Symbol:
		sb.WriteString(`$"`)
		sb.WriteString(escape(string(v), '"'))
		sb.WriteByte('"')
	case Char:
		sb.WriteByte('\'')
		sb.WriteString(escape(string([]byte{byte(v)}), '\''))
		sb.WriteByte('\'')
	case Bool:
		sb.WriteString(strconv.FormatBool(bool(v)))
	case Null:
		sb.WriteString("null")
	case Impulse:
		sb.WriteString("bang")
	case Color:
		sb.WriteString("{ color: ")
		writeUints(sb, v.R, v.G, v.B, v.A)
		sb.WriteString(" }")
	case Midi:
		sb.WriteString("{ midi: ")
		writeUints(sb, v.Port, v.Status, v.Data1, v.Data2)
		sb.WriteString(" }")
	case TimeTag:
		sb.WriteString("{ time: ")
		sb.WriteString(v.String())
		sb.WriteString(" }")
	case Blob:
		sb.WriteString("{ blob: ")
		sb.WriteString(base64BlobPrefix)
		sb.WriteString(base64.StdEncoding.EncodeToString(v))
		sb.WriteString(" }")
	case Array:
		sb.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatValue(sb, elem)
		}
		sb.WriteByte(']')
	}
}

func writeUints(sb *strings.Builder, vals ...uint8) {
	for i, v := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	}
}
