package device

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/motion"
	"github.com/downd/fishingcv/bot/protocol"
)

// HIDMaxStep is the largest per-axis displacement executed in one actuator
// command. Slightly inside the int8 range so a step always fits a HID
// report.
const HIDMaxStep = 125

// DefaultStepDelay paces successive decomposed motion steps to the rate the
// actuator can absorb them.
const DefaultStepDelay = 2 * time.Millisecond

// Dispatcher binds the wire commands to an Actuator. It installs one
// handler per command id on a protocol registry at startup; the registry is
// not touched afterwards.
//
// Handlers never return errors to the decode path. A failing actuator is
// logged and the loop keeps consuming bytes (the relay must not halt on bad
// input or a wedged HID endpoint).
type Dispatcher struct {
	actuator  Actuator
	logger    zerolog.Logger
	maxStep   int
	stepDelay time.Duration
}

// NewDispatcher creates a dispatcher driving the given actuator.
func NewDispatcher(actuator Actuator, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		actuator:  actuator,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		maxStep:   HIDMaxStep,
		stepDelay: DefaultStepDelay,
	}
}

// WithStepDelay overrides the inter-step pacing delay. Zero disables
// pacing, which tests use.
func (d *Dispatcher) WithStepDelay(delay time.Duration) *Dispatcher {
	d.stepDelay = delay
	return d
}

// Register installs all command handlers. Returns false if any registration
// was rejected.
func (d *Dispatcher) Register(registry *protocol.Registry) bool {
	ok := registry.Register(protocol.CmdLeftDown, protocol.SizeLeftDown, d.handleLeftDown)
	ok = registry.Register(protocol.CmdLeftUp, protocol.SizeLeftUp, d.handleLeftUp) && ok
	ok = registry.Register(protocol.CmdMouseMove, protocol.SizeMouseMove, d.handleMouseMove) && ok
	ok = registry.Register(protocol.CmdKeyDown, protocol.SizeKeyDown, d.handleKeyDown) && ok
	ok = registry.Register(protocol.CmdKeyUp, protocol.SizeKeyUp, d.handleKeyUp) && ok
	return ok
}

func (d *Dispatcher) handleLeftDown([]byte) {
	if err := d.actuator.MouseLeftDown(); err != nil {
		d.logger.Error().Err(err).Msg("Left down failed")
	}
}

func (d *Dispatcher) handleLeftUp([]byte) {
	if err := d.actuator.MouseLeftUp(); err != nil {
		d.logger.Error().Err(err).Msg("Left up failed")
	}
}

func (d *Dispatcher) handleMouseMove(frame []byte) {
	dx, dy, err := protocol.DecodeMouseMovePayload(frame)
	if err != nil {
		d.logger.Error().Err(err).Msg("Malformed MOUSE_MOVE payload")
		return
	}

	steps, err := motion.Decompose(int(dx), int(dy), d.maxStep)
	if err != nil {
		d.logger.Error().Err(err).Msg("Motion decomposition failed")
		return
	}

	for i, step := range steps {
		if i > 0 && d.stepDelay > 0 {
			time.Sleep(d.stepDelay)
		}
		if err := d.actuator.MouseMove(int8(step.Dx), int8(step.Dy)); err != nil {
			d.logger.Error().Err(err).Int("step", i).Msg("Mouse move failed")
			return
		}
	}
}

func (d *Dispatcher) handleKeyDown(frame []byte) {
	if err := d.actuator.KeyDown(frame[1]); err != nil {
		d.logger.Error().Err(err).Msg("Key down failed")
	}
}

func (d *Dispatcher) handleKeyUp(frame []byte) {
	if err := d.actuator.KeyUp(frame[1]); err != nil {
		d.logger.Error().Err(err).Msg("Key up failed")
	}
}
