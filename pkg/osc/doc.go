// Package osc encodes and decodes Open Sound Control packets.
//
// A packet is either a *Message (an address pattern plus typed arguments)
// or a *Bundle (a time tag plus nested packets). Both have two
// representations: the binary wire format and a textual form intended for
// logs, configuration files and interactive use.
//
// # Binary Form
//
//	msg := osc.MustMessage("/mixer/fader", osc.Int32(3), osc.Float32(0.75))
//	data, err := osc.Encode(msg)
//	...
//	pkt, err := osc.Decode(data)
//
// Everything is big-endian and padded to four bytes. SizeInBytes runs the
// encoder without a destination, so it always matches what Encode emits.
//
// # Text Form
//
//	/mixer/fader, 3, 0.75f, "label", [1, 2], { color: 255, 0, 0 }
//	{ #bundle, 2024-05-01T12:00:00Z, { /a, 1 }, { /b, bang } }
//
// Bare literals are classified by shape: 5 is an Int32, 5L an Int64, 5.0
// and 5f Float32, 5d Float64, 0xFF a hex Int32, true/false Bool, null/nil
// Null, bang/inf/impulse/infinitum Impulse, anything else a Symbol. Typed
// objects in braces carry midi, time, color and blob values.
//
// # Errors
//
// Every failure wraps one of the Err* sentinels and can be tested with
// errors.Is. Failures in textual input are *SyntaxError values carrying
// the byte offset.
//
// # Limits
//
// Arrays and bundles may nest at most Config.MaxDepth levels
// (DefaultMaxDepth unless configured). Deeper input fails with
// ErrMaxDepthExceeded instead of exhausting the stack.
package osc
