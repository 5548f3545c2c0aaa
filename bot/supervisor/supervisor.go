// Package supervisor runs the capture → detect → control loop, either as
// one sequential loop or as a capture goroutine feeding the control loop
// through a single-slot mailbox.
package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/downd/fishingcv/bot/capture"
	"github.com/downd/fishingcv/bot/vision"
	"github.com/downd/fishingcv/pkg/errors"
)

// Ticker consumes one detection per loop iteration. The controller
// satisfies this; tests substitute a recorder.
type Ticker interface {
	Tick(det vision.Detection)
}

// DefaultTickInterval paces loop iterations when the caller does not
// override it. Detection latency dominates in practice; the pacing only
// keeps an idle loop from spinning.
const DefaultTickInterval = 10 * time.Millisecond

// Stats counts supervisor activity since start.
type Stats struct {
	// FramesCaptured counts frames pulled from the source.
	FramesCaptured uint64
	// FramesDropped counts frames overwritten unconsumed in concurrent
	// mode. Always zero in sync mode.
	FramesDropped uint64
	// Ticks counts control loop iterations that reached the ticker.
	Ticks uint64
}

// Supervisor drives the pipeline. It does not own the source, detector or
// ticker; the caller wires and closes them.
type Supervisor struct {
	source       capture.Source
	detector     vision.Detector
	ticker       Ticker
	logger       zerolog.Logger
	tickInterval time.Duration

	mu    sync.Mutex
	stats Stats
}

// New creates a supervisor over the given pipeline stages.
func New(source capture.Source, detector vision.Detector, ticker Ticker, logger zerolog.Logger) *Supervisor {
	return &Supervisor{
		source:       source,
		detector:     detector,
		ticker:       ticker,
		logger:       logger.With().Str("component", "supervisor").Logger(),
		tickInterval: DefaultTickInterval,
	}
}

// WithTickInterval overrides the loop pacing. Zero disables pacing.
func (s *Supervisor) WithTickInterval(d time.Duration) *Supervisor {
	s.tickInterval = d
	return s
}

// Stats returns a snapshot of the counters.
func (s *Supervisor) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RunSync captures, analyzes and ticks in a single loop. Returns nil when
// the source is exhausted or the context is canceled.
func (s *Supervisor) RunSync(ctx context.Context) error {
	s.logger.Info().Msg("Starting synchronous pipeline")

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Msg("Pipeline stopped")
			return nil
		}

		frame, err := s.source.Capture()
		if err != nil {
			if errors.HasCode(err, capture.ErrEndOfInput) {
				s.logger.Info().Msg("Frame source exhausted")
				return nil
			}
			return err
		}
		s.mu.Lock()
		s.stats.FramesCaptured++
		s.mu.Unlock()

		s.step(frame)
		s.pace(ctx)
	}
}

// RunConcurrent captures in its own goroutine and runs detection and
// control against the freshest frame. A slow detector costs dropped
// frames, never queue growth.
func (s *Supervisor) RunConcurrent(ctx context.Context) error {
	s.logger.Info().Msg("Starting concurrent pipeline")

	slot := NewSlot()

	var (
		wg         sync.WaitGroup
		captureErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer slot.Close()

		for ctx.Err() == nil {
			frame, err := s.source.Capture()
			if err != nil {
				if errors.HasCode(err, capture.ErrEndOfInput) {
					s.logger.Info().Msg("Frame source exhausted")
					return
				}
				captureErr = err
				return
			}
			s.mu.Lock()
			s.stats.FramesCaptured++
			s.mu.Unlock()
			slot.Publish(frame)
		}
	}()

	for {
		frame, ok := slot.Take()
		if !ok {
			break
		}
		s.step(frame.Mat)
		s.pace(ctx)
	}

	wg.Wait()

	s.mu.Lock()
	s.stats.FramesDropped = slot.Drops()
	s.mu.Unlock()

	s.logger.Info().
		Uint64("frames", s.stats.FramesCaptured).
		Uint64("dropped", s.stats.FramesDropped).
		Uint64("ticks", s.stats.Ticks).
		Msg("Pipeline stopped")
	return captureErr
}

// step analyzes one frame and ticks the controller, releasing the frame.
// Detector failure degrades to an empty detection so the state machine
// keeps a defined next state.
func (s *Supervisor) step(frame gocv.Mat) {
	det, err := s.detector.Analyze(frame)
	frame.Close()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Detection failed, treating game as closed")
		det = vision.Detection{}
	}

	s.ticker.Tick(det)
	s.mu.Lock()
	s.stats.Ticks++
	s.mu.Unlock()
}

func (s *Supervisor) pace(ctx context.Context) {
	if s.tickInterval <= 0 {
		return
	}
	t := time.NewTimer(s.tickInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
