package vision

import "github.com/downd/fishingcv/pkg/errors"

// Vision-specific error codes
var (
	ErrTemplateLoadFailed = errors.MustNewCode("vision.template_load_failed")
	ErrEmptyFrame         = errors.MustNewCode("vision.empty_frame")
	ErrInvalidConfig      = errors.MustNewCode("vision.invalid_config")
)
