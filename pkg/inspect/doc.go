// Package inspect explains binary OSC packets for debugging.
//
// The inspect package offers:
//   - An annotated layout dump (offset, size, field, decoded value) of a
//     packet, which stays useful when the packet is malformed
//   - Path expressions (e.g. "1/0/2") selecting a bundle element,
//     argument or array element
//   - Formatting of layouts for terminal display
package inspect
