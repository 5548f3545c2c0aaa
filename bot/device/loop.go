package device

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/protocol"
)

// Loop is the relay's cooperative polling loop: read the bytes that have
// arrived, feed them to the decoder one at a time, check for cancellation,
// repeat. Nothing in an iteration blocks on "more bytes for this frame";
// the decoder carries partial-frame state across iterations.
type Loop struct {
	decoder *protocol.Decoder
	logger  zerolog.Logger
}

// NewLoop creates a polling loop around a decoder.
func NewLoop(decoder *protocol.Decoder, logger zerolog.Logger) *Loop {
	return &Loop{
		decoder: decoder,
		logger:  logger.With().Str("component", "device-loop").Logger(),
	}
}

// Run consumes r until it is drained or ctx is cancelled. Read errors end
// the loop (the transport is gone); decode errors never do.
func (l *Loop) Run(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			l.decoder.Feed(buf[i])
		}
		if err != nil {
			if err == io.EOF {
				l.logger.Debug().Msg("Transport closed")
				return nil
			}
			return err
		}
	}
}
