package inspect

import "github.com/oscwire/osc-go/pkg/osc"

var tokenNames = map[osc.Token]string{
	osc.TokenInt:        "int32",
	osc.TokenLong:       "int64",
	osc.TokenFloat:      "float32",
	osc.TokenDouble:     "float64",
	osc.TokenString:     "string",
	osc.TokenSymbol:     "symbol",
	osc.TokenChar:       "char",
	osc.TokenColor:      "color",
	osc.TokenMidi:       "midi",
	osc.TokenTimeTag:    "timetag",
	osc.TokenTrue:       "true",
	osc.TokenFalse:      "false",
	osc.TokenNull:       "null",
	osc.TokenImpulse:    "impulse",
	osc.TokenBlob:       "blob",
	osc.TokenArrayStart: "array",
}

// TokenName returns the display name of an argument token.
func TokenName(tok osc.Token) string {
	if name, ok := tokenNames[tok]; ok {
		return name
	}
	return tok.String()
}

// ValueKind returns the display name of a value's type.
func ValueKind(v osc.Value) string {
	if _, ok := v.(osc.Bool); ok {
		return "bool"
	}
	return TokenName(v.Token())
}
