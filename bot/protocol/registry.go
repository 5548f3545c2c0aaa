package protocol

import "github.com/rs/zerolog"

// HandlerFunc consumes one complete frame: frame[0] is the command id, the
// rest is the payload. The slice is only valid for the duration of the call.
type HandlerFunc func(frame []byte)

type registration struct {
	size    byte
	handler HandlerFunc
	active  bool
}

// Registry is the fixed-capacity dispatch table mapping command ids to their
// expected frame size and handler. It is populated once at startup and read
// from the decode path afterwards; it performs no locking of its own.
type Registry struct {
	logger   zerolog.Logger
	handlers [MaxHandlers]registration
}

// NewRegistry creates an empty dispatch table.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		logger: logger.With().Str("component", "protocol-registry").Logger(),
	}
}

// Register installs a handler for a command id. The id doubles as the table
// index, so ids at or above MaxHandlers are rejected with a diagnostic and
// the table is left untouched. Returns true if the handler was installed.
func (r *Registry) Register(id byte, size byte, handler HandlerFunc) bool {
	if int(id) >= MaxHandlers {
		r.logger.Error().
			Uint8("command_id", id).
			Int("max_handlers", MaxHandlers).
			Msg("Command id out of range, handler not installed")
		return false
	}
	if size == 0 || int(size) > MaxPacketSize {
		r.logger.Error().
			Uint8("command_id", id).
			Uint8("size", size).
			Msg("Invalid frame size, handler not installed")
		return false
	}
	if handler == nil {
		r.logger.Error().
			Uint8("command_id", id).
			Msg("Nil handler, not installed")
		return false
	}

	if r.handlers[id].active {
		r.logger.Warn().
			Uint8("command_id", id).
			Msg("Replacing existing handler")
	}

	r.handlers[id] = registration{size: size, handler: handler, active: true}
	r.logger.Debug().
		Uint8("command_id", id).
		Str("command", CommandName(id)).
		Uint8("size", size).
		Msg("Handler registered")
	return true
}

// lookup returns the registration for an id, bounds-checked.
func (r *Registry) lookup(id byte) (registration, bool) {
	if int(id) >= MaxHandlers || !r.handlers[id].active {
		return registration{}, false
	}
	return r.handlers[id], true
}
