// Package protocol implements the framing used between the host and the
// input relay. Frames are length-prefixed and carry a command id followed by
// a command-specific payload:
//
//	byte 0:  totalSize  (bytes after this one: command id + payload)
//	byte 1:  commandID
//	byte 2+: payload    (little-endian for multi-byte fields)
//
// The stream is unidirectional: only the host emits frames. Anything the
// relay sends back is free-text diagnostics and must never be fed to the
// decoder. There is no checksum; a corrupted or dropped byte desynchronizes
// framing until the decoder happens to land on a frame boundary again.
package protocol

// Command identifiers understood by the relay.
const (
	CmdLeftDown  byte = 0
	CmdLeftUp    byte = 1
	CmdMouseMove byte = 2
	CmdKeyDown   byte = 3
	CmdKeyUp     byte = 4
)

// Frame sizes (command id + payload, excludes the size byte).
const (
	SizeLeftDown  byte = 1
	SizeLeftUp    byte = 1
	SizeMouseMove byte = 5 // dx:int16le dy:int16le
	SizeKeyDown   byte = 2 // usage:byte
	SizeKeyUp     byte = 2 // usage:byte
)

const (
	// MaxHandlers bounds the dispatch table. Command ids double as table
	// indexes, so every valid id is < MaxHandlers.
	MaxHandlers = 16

	// MaxPacketSize bounds a single frame (command id + payload). The relay
	// accumulates frames into a fixed buffer of this capacity; a declared
	// size above it is rejected outright instead of truncated.
	MaxPacketSize = 254

	// MaxPayloadSize is the largest payload a frame can carry.
	MaxPayloadSize = MaxPacketSize - 1

	// DefaultBaudRate is the serial line rate the relay firmware expects.
	DefaultBaudRate = 115200
)

// CommandName returns a human-readable name for known command ids.
func CommandName(id byte) string {
	switch id {
	case CmdLeftDown:
		return "LEFT_DOWN"
	case CmdLeftUp:
		return "LEFT_UP"
	case CmdMouseMove:
		return "MOUSE_MOVE"
	case CmdKeyDown:
		return "KEY_DOWN"
	case CmdKeyUp:
		return "KEY_UP"
	default:
		return "UNKNOWN"
	}
}
