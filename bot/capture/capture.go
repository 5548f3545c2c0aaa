// Package capture abstracts where frames come from. The bot only needs a
// Capture call; live window grabbing stays outside this repository, while
// the video-file source below covers recorded-session runs and detector
// dry-runs.
package capture

import (
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/downd/fishingcv/pkg/errors"
)

// Capture-specific error codes
var (
	ErrOpenFailed = errors.MustNewCode("capture.open_failed")
	ErrEndOfInput = errors.MustNewCode("capture.end_of_input")
)

// Source supplies frames on demand. Capture blocks until a frame is
// available and hands ownership of the Mat to the caller, who must Close
// it.
type Source interface {
	Capture() (gocv.Mat, error)
	Close() error
}

// SourceFunc adapts a function to the Source interface; tests use it to
// script frame sequences.
type SourceFunc func() (gocv.Mat, error)

func (f SourceFunc) Capture() (gocv.Mat, error) { return f() }

func (f SourceFunc) Close() error { return nil }

// VideoSource reads frames from a video file.
type VideoSource struct {
	cap    *gocv.VideoCapture
	path   string
	logger zerolog.Logger
}

// OpenVideo opens a video file as a frame source.
func OpenVideo(path string, logger zerolog.Logger) (*VideoSource, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrOpenFailed, err, "failed to open video %s", path)
	}
	return &VideoSource{
		cap:    cap,
		path:   path,
		logger: logger.With().Str("component", "capture").Logger(),
	}, nil
}

// Capture reads the next frame. Returns ErrEndOfInput once the file is
// exhausted.
func (v *VideoSource) Capture() (gocv.Mat, error) {
	frame := gocv.NewMat()
	if ok := v.cap.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, errors.Newf(ErrEndOfInput, "no more frames in %s", v.path)
	}
	return frame, nil
}

// Close releases the underlying capture handle.
func (v *VideoSource) Close() error {
	return v.cap.Close()
}
