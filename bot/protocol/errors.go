package protocol

import "github.com/downd/fishingcv/pkg/errors"

// Protocol-specific error codes
var (
	ErrPayloadTooLarge = errors.MustNewCode("protocol.payload_too_large")
	ErrEmptyPacket     = errors.MustNewCode("protocol.empty_packet")
	ErrPacketTooLarge  = errors.MustNewCode("protocol.packet_too_large")
	ErrUnknownCommand  = errors.MustNewCode("protocol.unknown_command")
	ErrSizeMismatch    = errors.MustNewCode("protocol.size_mismatch")
)
