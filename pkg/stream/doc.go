// Package stream carries OSC packets over byte streams such as TCP
// connections, serial lines or pipes.
//
// Stream transports have no datagram boundaries, so each packet travels
// in a frame. Two framings are supported:
//
//   - FramingLengthPrefix: a big-endian int32 byte count before each
//     packet (OSC 1.0).
//   - FramingSLIP: each packet is SLIP-escaped and surrounded by END
//     bytes, the double-END form recommended by OSC 1.1.
//
// FrameReader and FrameWriter move raw frames. PacketReader and
// PacketWriter add the OSC codec on top, and Conn pairs both directions
// over one io.ReadWriter.
//
// Protocol capture is optional. Pass a log.Logger to SetLogger to record
// every frame and decoded packet:
//
//	conn := stream.NewConn(rw, stream.Options{Framing: stream.FramingSLIP})
//	conn.SetLogger(logger, log.NewSessionID())
//	defer conn.Close()
package stream
