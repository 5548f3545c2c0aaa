package config

import "github.com/downd/fishingcv/pkg/errors"

// Config-specific error codes
var (
	ErrConfigFileReadFailed    = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed   = errors.MustNewCode("config.file_parse_failed")
	ErrConfigValidationFailed  = errors.MustNewCode("config.validation_failed")
	ErrConfigFileMarshalFailed = errors.MustNewCode("config.file_marshal_failed")
	ErrConfigFileWriteFailed   = errors.MustNewCode("config.file_write_failed")

	ErrRelayValidationFailed      = errors.MustNewCode("config.relay_validation_failed")
	ErrRelayModeInvalid           = errors.MustNewCode("config.relay_mode_invalid")
	ErrRelayPortRequired          = errors.MustNewCode("config.relay_port_required")
	ErrRelayAddrRequired          = errors.MustNewCode("config.relay_addr_required")
	ErrRelayBaudInvalid           = errors.MustNewCode("config.relay_baud_invalid")
	ErrVisionValidationFailed     = errors.MustNewCode("config.vision_validation_failed")
	ErrVisionTemplateRequired     = errors.MustNewCode("config.vision_template_required")
	ErrVisionResizeInvalid        = errors.MustNewCode("config.vision_resize_invalid")
	ErrVisionThresholdInvalid     = errors.MustNewCode("config.vision_threshold_invalid")
	ErrControllerValidationFailed = errors.MustNewCode("config.controller_validation_failed")
	ErrControllerTimeoutInvalid   = errors.MustNewCode("config.controller_timeout_invalid")
	ErrControllerCooldownInvalid  = errors.MustNewCode("config.controller_cooldown_invalid")
	ErrControllerStrikesInvalid   = errors.MustNewCode("config.controller_strikes_invalid")
	ErrControllerHoldRangeInvalid = errors.MustNewCode("config.controller_hold_range_invalid")
	ErrPipelineValidationFailed   = errors.MustNewCode("config.pipeline_validation_failed")
	ErrPipelineModeInvalid        = errors.MustNewCode("config.pipeline_mode_invalid")

	// Logging-specific error codes
	ErrLogDirectoryCreationFailed = errors.MustNewCode("config.log_directory_creation_failed")
	ErrLogFileOpenFailed          = errors.MustNewCode("config.log_file_open_failed")
	ErrLogCleanupFailed           = errors.MustNewCode("config.log_cleanup_failed")
)
