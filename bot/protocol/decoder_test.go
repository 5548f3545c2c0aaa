package protocol

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(zerolog.Nop())
}

// feedAll pushes a byte stream into the decoder one byte at a time, the way
// the relay polling loop does.
func feedAll(d *Decoder, stream []byte) {
	for _, b := range stream {
		d.Feed(b)
	}
}

func TestDecoderDispatchesCompleteFrame(t *testing.T) {
	registry := newTestRegistry(t)

	var got [][]byte
	ok := registry.Register(CmdMouseMove, SizeMouseMove, func(frame []byte) {
		cp := make([]byte, len(frame))
		copy(cp, frame)
		got = append(got, cp)
	})
	require.True(t, ok)

	decoder := NewDecoder(registry, zerolog.Nop())
	feedAll(decoder, EncodeMouseMove(120, -40))

	require.Len(t, got, 1)
	assert.Equal(t, CmdMouseMove, got[0][0])

	dx, dy, err := DecodeMouseMovePayload(got[0])
	require.NoError(t, err)
	assert.Equal(t, int16(120), dx)
	assert.Equal(t, int16(-40), dy)
	assert.Equal(t, uint64(1), decoder.Stats().Dispatched)
}

func TestDecoderPayloadlessCommand(t *testing.T) {
	registry := newTestRegistry(t)

	calls := 0
	require.True(t, registry.Register(CmdLeftDown, SizeLeftDown, func(frame []byte) {
		calls++
		assert.Equal(t, []byte{CmdLeftDown}, frame)
	}))

	decoder := NewDecoder(registry, zerolog.Nop())
	feedAll(decoder, EncodeLeftDown())
	feedAll(decoder, EncodeLeftDown())

	assert.Equal(t, 2, calls)
}

func TestDecoderRecoversFromUnknownCommand(t *testing.T) {
	registry := newTestRegistry(t)

	calls := 0
	require.True(t, registry.Register(CmdLeftUp, SizeLeftUp, func([]byte) { calls++ }))

	decoder := NewDecoder(registry, zerolog.Nop())

	// Declared size 3, command id beyond the table. The decoder must drop
	// back to awaiting a size byte without invoking anything, regardless of
	// what follows.
	decoder.Feed(3)
	decoder.Feed(MaxHandlers + 4)
	assert.Equal(t, uint64(1), decoder.Stats().UnknownCommand)
	assert.Zero(t, calls)

	// The stream resynchronizes on the next well-formed frame.
	feedAll(decoder, EncodeLeftUp())
	assert.Equal(t, 1, calls)
}

func TestDecoderRecoversFromSizeMismatch(t *testing.T) {
	registry := newTestRegistry(t)

	calls := 0
	require.True(t, registry.Register(CmdMouseMove, SizeMouseMove, func([]byte) { calls++ }))

	decoder := NewDecoder(registry, zerolog.Nop())

	// MOUSE_MOVE declared with the wrong size.
	decoder.Feed(2)
	decoder.Feed(CmdMouseMove)
	assert.Equal(t, uint64(1), decoder.Stats().SizeMismatch)
	assert.Zero(t, calls)

	feedAll(decoder, EncodeMouseMove(1, 1))
	assert.Equal(t, 1, calls)
}

func TestDecoderRejectsDegenerateSizes(t *testing.T) {
	registry := newTestRegistry(t)
	require.True(t, registry.Register(CmdLeftDown, SizeLeftDown, func([]byte) {
		t.Fatal("no frame should dispatch")
	}))

	decoder := NewDecoder(registry, zerolog.Nop())

	decoder.Feed(0) // zero-length frame has no room for a command id
	assert.Equal(t, uint64(1), decoder.Stats().EmptyPackets)

	decoder.Feed(255) // exceeds the 254-byte frame buffer
	assert.Equal(t, uint64(1), decoder.Stats().OversizePacket)

	// Both conditions leave the decoder waiting for a size byte, so the
	// next byte is interpreted as a size again.
	decoder.Feed(0)
	assert.Equal(t, uint64(2), decoder.Stats().EmptyPackets)
}

func TestDecoderFrameSpansManyIterations(t *testing.T) {
	registry := newTestRegistry(t)

	var got []byte
	require.True(t, registry.Register(CmdKeyDown, SizeKeyDown, func(frame []byte) {
		got = append([]byte(nil), frame...)
	}))

	decoder := NewDecoder(registry, zerolog.Nop())

	// Interleave unrelated work between bytes: partial state must survive.
	packet := EncodeKeyDown(0x2C)
	for _, b := range packet {
		assert.Nil(t, got)
		decoder.Feed(b)
		if len(got) > 0 {
			break
		}
	}
	assert.Equal(t, []byte{CmdKeyDown, 0x2C}, got)
}

func TestRegistryRejectsOutOfRangeID(t *testing.T) {
	registry := newTestRegistry(t)

	assert.False(t, registry.Register(MaxHandlers, 1, func([]byte) {}))
	assert.False(t, registry.Register(255, 1, func([]byte) {}))
	assert.False(t, registry.Register(CmdLeftDown, 1, nil))
	assert.False(t, registry.Register(CmdLeftDown, 0, func([]byte) {}))
	assert.True(t, registry.Register(MaxHandlers-1, 1, func([]byte) {}))
}

func TestEncodeRejectsOversizePayload(t *testing.T) {
	_, err := Encode(CmdMouseMove, make([]byte, MaxPayloadSize+1))
	assert.Error(t, err)

	packet, err := Encode(CmdMouseMove, make([]byte, MaxPayloadSize))
	require.NoError(t, err)
	assert.Equal(t, byte(MaxPacketSize), packet[0])
	assert.Len(t, packet, MaxPacketSize+1)
}
