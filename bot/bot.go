// Package bot assembles the full pipeline from configuration: relay
// channel, interactor, detector, frame source, controller and supervisor.
package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/capture"
	"github.com/downd/fishingcv/bot/config"
	"github.com/downd/fishingcv/bot/controller"
	"github.com/downd/fishingcv/bot/input"
	"github.com/downd/fishingcv/bot/relay"
	"github.com/downd/fishingcv/bot/supervisor"
	"github.com/downd/fishingcv/bot/vision"
	"github.com/downd/fishingcv/pkg/errors"
	"github.com/downd/fishingcv/utils"
)

// Bot-specific error codes
var (
	ErrNoFrameSource = errors.MustNewCode("bot.no_frame_source")
)

// Bot owns the wired pipeline and the resources behind it.
type Bot struct {
	config     *config.Config
	logger     zerolog.Logger
	channel    relay.Channel
	detector   vision.Detector
	source     capture.Source
	controller *controller.Controller
	supervisor *supervisor.Supervisor
	startTime  time.Time
}

// New wires a bot from configuration. Every resource opened here is
// released by Close; a wiring failure releases what was already open.
func New(cfg *config.Config, logger zerolog.Logger, position input.PositionSource) (*Bot, error) {
	// Every run gets its own id so interleaved log files stay separable.
	logger = logger.With().Str("session", utils.GenerateULIDString()).Logger()

	channel, err := openChannel(cfg, logger)
	if err != nil {
		return nil, err
	}

	detector, err := vision.NewFishingVision(cfg.VisionConfig(), logger)
	if err != nil {
		channel.Close()
		return nil, err
	}

	source, err := openSource(cfg, logger)
	if err != nil {
		detector.Close()
		channel.Close()
		return nil, err
	}

	interactor := input.NewSerialInteractor(channel, logger).
		WithStepInterval(cfg.Relay.StepInterval.Std()).
		WithPositionSource(position)

	ctrl := controller.New(cfg.ControllerConfig(), interactor, logger)
	sup := supervisor.New(source, detector, ctrl, logger).
		WithTickInterval(cfg.Pipeline.TickInterval.Std())

	return &Bot{
		config:     cfg,
		logger:     logger.With().Str("component", "bot").Logger(),
		channel:    channel,
		detector:   detector,
		source:     source,
		controller: ctrl,
		supervisor: sup,
		startTime:  time.Now(),
	}, nil
}

// Run drives the pipeline until the context is canceled or the frame
// source ends.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().
		Str("relay_mode", b.config.Relay.Mode).
		Str("pipeline_mode", b.config.Pipeline.Mode).
		Msg("Starting bot")

	var err error
	if b.config.Pipeline.Mode == config.PipelineModeSync {
		err = b.supervisor.RunSync(ctx)
	} else {
		err = b.supervisor.RunConcurrent(ctx)
	}

	stats := b.controller.Stats()
	pipeline := b.supervisor.Stats()
	b.logger.Info().
		Dur("uptime", time.Since(b.startTime)).
		Uint64("frames", pipeline.FramesCaptured).
		Uint64("frames_dropped", pipeline.FramesDropped).
		Uint64("clicks_sent", stats.ClicksSent).
		Uint64("fish_caught", stats.FishCaught).
		Msg("Bot stopped")
	return err
}

// Close releases the channel, detector and frame source.
func (b *Bot) Close() error {
	var firstErr error
	if err := b.source.Close(); err != nil {
		b.logger.Error().Err(err).Msg("Error closing frame source")
		firstErr = err
	}
	if err := b.detector.Close(); err != nil {
		b.logger.Error().Err(err).Msg("Error closing detector")
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := b.channel.Close(); err != nil {
		b.logger.Error().Err(err).Msg("Error closing relay channel")
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns the controller's session counters.
func (b *Bot) Stats() controller.Stats {
	return b.controller.Stats()
}

// Uptime reports how long the bot has been running.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.startTime)
}

func openChannel(cfg *config.Config, logger zerolog.Logger) (relay.Channel, error) {
	if cfg.Relay.Mode == config.RelayModeTCP {
		return relay.DialTCP(cfg.Relay.Addr, cfg.Relay.LogDevice, logger)
	}
	return relay.OpenSerial(cfg.SerialConfig(), logger)
}

func openSource(cfg *config.Config, logger zerolog.Logger) (capture.Source, error) {
	if cfg.Capture.VideoPath == "" {
		return nil, errors.New(ErrNoFrameSource, "no frame source configured; set capture.video_path")
	}
	return capture.OpenVideo(cfg.Capture.VideoPath, logger)
}
