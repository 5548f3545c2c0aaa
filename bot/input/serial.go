package input

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/motion"
	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/bot/relay"
	"github.com/downd/fishingcv/pkg/errors"
)

// Input-specific error codes
var (
	ErrNoPositionSource = errors.MustNewCode("input.no_position_source")
)

// MaxStepPerCommand bounds the displacement carried by one MOUSE_MOVE
// frame, matching the relay's per-command envelope.
const MaxStepPerCommand = 125

// DefaultStepInterval paces successive MOUSE_MOVE frames to the relay's
// processing throughput.
const DefaultStepInterval = 5 * time.Millisecond

// SerialInteractor turns input actions into wire frames on a relay channel.
// It is the single writer to its channel; do not share the channel with
// anything else.
type SerialInteractor struct {
	channel      relay.Channel
	logger       zerolog.Logger
	position     PositionSource
	maxStep      int
	stepInterval time.Duration
	rng          *rand.Rand
}

// NewSerialInteractor creates an interactor writing to the given channel.
func NewSerialInteractor(channel relay.Channel, logger zerolog.Logger) *SerialInteractor {
	return &SerialInteractor{
		channel:      channel,
		logger:       logger.With().Str("component", "serial-input").Logger(),
		maxStep:      MaxStepPerCommand,
		stepInterval: DefaultStepInterval,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithPositionSource installs the cursor position query used by
// MouseMoveTo.
func (s *SerialInteractor) WithPositionSource(src PositionSource) *SerialInteractor {
	s.position = src
	return s
}

// WithStepInterval overrides the inter-frame pacing delay. Zero disables
// pacing.
func (s *SerialInteractor) WithStepInterval(d time.Duration) *SerialInteractor {
	s.stepInterval = d
	return s
}

// MouseMoveTo resolves the current cursor position and moves relative to
// it.
func (s *SerialInteractor) MouseMoveTo(x, y int) error {
	if s.position == nil {
		return errors.New(ErrNoPositionSource, "absolute move requires a position source")
	}
	curX, curY, err := s.position()
	if err != nil {
		return errors.AsError(err).AddContext("op", "cursor_position")
	}
	return s.MouseMoveRelative(x-curX, y-curY)
}

// MouseMoveRelative decomposes the displacement and sends one MOUSE_MOVE
// frame per step, pacing between frames.
func (s *SerialInteractor) MouseMoveRelative(dx, dy int) error {
	steps, err := motion.Decompose(dx, dy, s.maxStep)
	if err != nil {
		return err
	}

	for i, step := range steps {
		if i > 0 && s.stepInterval > 0 {
			time.Sleep(s.stepInterval)
		}
		if err := s.channel.Send(protocol.EncodeMouseMove(int16(step.Dx), int16(step.Dy))); err != nil {
			return err
		}
	}

	s.logger.Debug().Int("dx", dx).Int("dy", dy).Int("steps", len(steps)).Msg("Relative move sent")
	return nil
}

func (s *SerialInteractor) MouseLeftDown() error {
	return s.channel.Send(protocol.EncodeLeftDown())
}

func (s *SerialInteractor) MouseLeftUp() error {
	return s.channel.Send(protocol.EncodeLeftUp())
}

// MouseLeftClick presses, holds for a randomized delay, releases.
func (s *SerialInteractor) MouseLeftClick(minHold, maxHold time.Duration) error {
	if err := s.MouseLeftDown(); err != nil {
		return err
	}
	s.sleepBetween(minHold, maxHold)
	return s.MouseLeftUp()
}

// KeyPress presses and releases a key with a randomized hold delay.
func (s *SerialInteractor) KeyPress(usage byte, minHold, maxHold time.Duration) error {
	if err := s.channel.Send(protocol.EncodeKeyDown(usage)); err != nil {
		return err
	}
	s.sleepBetween(minHold, maxHold)
	return s.channel.Send(protocol.EncodeKeyUp(usage))
}

func (s *SerialInteractor) sleepBetween(min, max time.Duration) {
	if min < 0 {
		min = 0
	}
	d := min
	if max > min {
		d += time.Duration(s.rng.Int63n(int64(max - min)))
	}
	if d > 0 {
		time.Sleep(d)
	}
}
