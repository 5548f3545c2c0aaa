// Package device implements the relay side of the wire protocol: frame
// dispatch, motion execution and the cooperative polling loop. It is the
// reference for what the relay firmware does, and is exercised directly by
// the relay simulator and the test suite.
package device

import "github.com/rs/zerolog"

// Actuator is the HID edge: the capability that physically performs an
// input action. Displacements are bounded to a signed byte per axis, the
// envelope of a single HID mouse report; anything larger goes through the
// motion decomposer first.
type Actuator interface {
	MouseMove(dx, dy int8) error
	MouseLeftDown() error
	MouseLeftUp() error
	KeyDown(usage byte) error
	KeyUp(usage byte) error
}

// LogActuator performs no real input; it reports every action to its
// logger. The relay simulator points that logger at the client connection,
// which makes the actions visible as the free-text diagnostic stream.
type LogActuator struct {
	logger zerolog.Logger
}

// NewLogActuator creates an actuator that only logs.
func NewLogActuator(logger zerolog.Logger) *LogActuator {
	return &LogActuator{logger: logger.With().Str("component", "actuator").Logger()}
}

func (a *LogActuator) MouseMove(dx, dy int8) error {
	a.logger.Info().Int8("dx", dx).Int8("dy", dy).Msg("Mouse move")
	return nil
}

func (a *LogActuator) MouseLeftDown() error {
	a.logger.Info().Msg("Mouse left down")
	return nil
}

func (a *LogActuator) MouseLeftUp() error {
	a.logger.Info().Msg("Mouse left up")
	return nil
}

func (a *LogActuator) KeyDown(usage byte) error {
	a.logger.Info().Uint8("usage", usage).Msg("Key down")
	return nil
}

func (a *LogActuator) KeyUp(usage byte) error {
	a.logger.Info().Uint8("usage", usage).Msg("Key up")
	return nil
}
