package relay

import "github.com/downd/fishingcv/pkg/errors"

// Relay-specific error codes
var (
	ErrPortDiscoveryFailed = errors.MustNewCode("relay.port_discovery_failed")
	ErrPortNotFound        = errors.MustNewCode("relay.port_not_found")
	ErrPortOpenFailed      = errors.MustNewCode("relay.port_open_failed")
	ErrWriteFailed         = errors.MustNewCode("relay.write_failed")
	ErrShortWrite          = errors.MustNewCode("relay.short_write")
	ErrDialFailed          = errors.MustNewCode("relay.dial_failed")
	ErrChannelClosed       = errors.MustNewCode("relay.channel_closed")
)
