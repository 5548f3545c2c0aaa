package protocol

import (
	"encoding/binary"

	"github.com/downd/fishingcv/pkg/errors"
)

// Encode frames a command id and payload into a single wire packet. The
// returned slice is [totalSize][commandID][payload...] and must be written
// to the transport in one call so concurrent writers cannot interleave a
// frame (the architecture keeps a single writer regardless).
func Encode(commandID byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, errors.Newf(ErrPayloadTooLarge, "payload of %d bytes exceeds limit of %d", len(payload), MaxPayloadSize)
	}

	packet := make([]byte, 0, 2+len(payload))
	packet = append(packet, byte(1+len(payload)), commandID)
	packet = append(packet, payload...)
	return packet, nil
}

// EncodeLeftDown frames a LEFT_DOWN command (no payload).
func EncodeLeftDown() []byte {
	return []byte{SizeLeftDown, CmdLeftDown}
}

// EncodeLeftUp frames a LEFT_UP command (no payload).
func EncodeLeftUp() []byte {
	return []byte{SizeLeftUp, CmdLeftUp}
}

// EncodeMouseMove frames a relative MOUSE_MOVE command. Displacements are
// carried as little-endian int16 per axis; callers are responsible for
// decomposing anything the actuator cannot execute in one step.
func EncodeMouseMove(dx, dy int16) []byte {
	packet := make([]byte, 6)
	packet[0] = SizeMouseMove
	packet[1] = CmdMouseMove
	binary.LittleEndian.PutUint16(packet[2:4], uint16(dx))
	binary.LittleEndian.PutUint16(packet[4:6], uint16(dy))
	return packet
}

// EncodeKeyDown frames a KEY_DOWN command for a single HID usage code.
func EncodeKeyDown(usage byte) []byte {
	return []byte{SizeKeyDown, CmdKeyDown, usage}
}

// EncodeKeyUp frames a KEY_UP command for a single HID usage code.
func EncodeKeyUp(usage byte) []byte {
	return []byte{SizeKeyUp, CmdKeyUp, usage}
}

// DecodeMouseMovePayload extracts the displacement pair from a MOUSE_MOVE
// frame (command id + payload, as handed to a handler).
func DecodeMouseMovePayload(frame []byte) (dx, dy int16, err error) {
	if len(frame) != int(SizeMouseMove) {
		return 0, 0, errors.Newf(ErrSizeMismatch, "MOUSE_MOVE frame is %d bytes, want %d", len(frame), SizeMouseMove)
	}
	dx = int16(binary.LittleEndian.Uint16(frame[1:3]))
	dy = int16(binary.LittleEndian.Uint16(frame[3:5]))
	return dx, dy, nil
}
