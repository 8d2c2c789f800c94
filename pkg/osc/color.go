package osc

// Color is a 32-bit ARGB colour ('r'). On the wire the four channels are
// packed as A, R, G, B in consecutive bytes. The text form lists them as
// R, G, B, A.
type Color struct {
	R, G, B, A uint8
}

// Token reports TokenColor.
func (Color) Token() Token { return TokenColor }

// ColorFromARGB unpacks a 0xAARRGGBB value, the wire layout.
func ColorFromARGB(argb uint32) Color {
	return Color{
		A: uint8(argb >> 24),
		R: uint8(argb >> 16),
		G: uint8(argb >> 8),
		B: uint8(argb),
	}
}

// ColorFromRGBA unpacks a 0xRRGGBBAA value.
func ColorFromRGBA(rgba uint32) Color {
	return Color{
		R: uint8(rgba >> 24),
		G: uint8(rgba >> 16),
		B: uint8(rgba >> 8),
		A: uint8(rgba),
	}
}

// ARGB packs the colour as 0xAARRGGBB.
func (c Color) ARGB() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA packs the colour as 0xRRGGBBAA.
func (c Color) RGBA() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}
