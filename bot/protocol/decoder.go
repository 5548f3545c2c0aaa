package protocol

import "github.com/rs/zerolog"

type decodeState uint8

const (
	awaitingSize decodeState = iota
	awaitingID
	accumulating
)

// DecoderStats counts decode outcomes. Malformed input never stops the
// decoder; these counters are the only way (besides diagnostics) to see it.
type DecoderStats struct {
	Dispatched     uint64
	EmptyPackets   uint64
	OversizePacket uint64
	UnknownCommand uint64
	SizeMismatch   uint64
}

// Decoder is the relay-side framing state machine. Feed is called once per
// incoming byte and returns immediately; a frame may span many polling
// iterations while bytes trickle in, so all partial state lives here.
//
// A Decoder is not safe for concurrent use. The relay loop is the single
// caller, which matches the single-reader discipline of the transport.
type Decoder struct {
	registry *Registry
	logger   zerolog.Logger

	state decodeState
	total int // declared totalSize of the frame being read
	buf   [MaxPacketSize]byte
	n     int // bytes accumulated so far, command id included

	stats DecoderStats
}

// NewDecoder creates a decoder dispatching into the given registry.
func NewDecoder(registry *Registry, logger zerolog.Logger) *Decoder {
	return &Decoder{
		registry: registry,
		logger:   logger.With().Str("component", "protocol-decoder").Logger(),
	}
}

// Feed advances the state machine by one byte. Errors are recoverable by
// construction: a diagnostic is emitted, the in-flight frame is discarded
// and the decoder resumes waiting for a size byte. No frame is ever
// partially dispatched.
func (d *Decoder) Feed(b byte) {
	switch d.state {
	case awaitingSize:
		d.feedSize(b)
	case awaitingID:
		d.feedID(b)
	case accumulating:
		d.buf[d.n] = b
		d.n++
		if d.n == d.total {
			d.dispatch()
		}
	}
}

func (d *Decoder) feedSize(b byte) {
	size := int(b)
	switch {
	case size == 0:
		d.stats.EmptyPackets++
		d.logger.Error().
			Str("code", ErrEmptyPacket.String()).
			Msg("Declared frame size is zero, discarding")
	case size > MaxPacketSize:
		d.stats.OversizePacket++
		d.logger.Error().
			Str("code", ErrPacketTooLarge.String()).
			Int("declared_size", size).
			Int("capacity", MaxPacketSize).
			Msg("Declared frame size exceeds buffer capacity, discarding")
	default:
		d.total = size
		d.state = awaitingID
	}
}

func (d *Decoder) feedID(id byte) {
	reg, ok := d.registry.lookup(id)
	if !ok {
		d.stats.UnknownCommand++
		d.logger.Error().
			Str("code", ErrUnknownCommand.String()).
			Uint8("command_id", id).
			Msg("No handler for command, discarding frame")
		d.reset()
		return
	}
	if int(reg.size) != d.total {
		d.stats.SizeMismatch++
		d.logger.Error().
			Str("code", ErrSizeMismatch.String()).
			Uint8("command_id", id).
			Str("command", CommandName(id)).
			Int("declared_size", d.total).
			Uint8("expected_size", reg.size).
			Msg("Declared size does not match registration, discarding frame")
		d.reset()
		return
	}

	d.buf[0] = id
	d.n = 1
	if d.n == d.total {
		// Payload-less command, complete as soon as the id arrives.
		d.dispatch()
		return
	}
	d.state = accumulating
}

func (d *Decoder) dispatch() {
	reg, ok := d.registry.lookup(d.buf[0])
	if ok {
		reg.handler(d.buf[:d.n])
		d.stats.Dispatched++
	}
	d.reset()
}

func (d *Decoder) reset() {
	d.state = awaitingSize
	d.total = 0
	d.n = 0
}

// Stats returns a snapshot of the decode counters.
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}
