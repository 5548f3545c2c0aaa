// Package controller holds the finite-state machine that turns detection
// results into input actions. It never terminates on its own and never
// blocks inside a tick beyond the input hold delays; pacing between ticks
// belongs to the pipeline driving it.
package controller

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/clock"
	"github.com/downd/fishingcv/bot/input"
	"github.com/downd/fishingcv/bot/vision"
)

// State identifies one controller state.
type State string

const (
	// StatePullingRod: the rod is not in the water; bait and cast, then
	// look for the mini-game.
	StatePullingRod State = "PULLING_ROD"
	// StateSearchingFish: the mini-game is (expected to be) open; watch
	// for a clickable fish.
	StateSearchingFish State = "SEARCHING_FISH"
	// StateWaitAfterClick: a strike was sent; let the game settle before
	// looking again.
	StateWaitAfterClick State = "WAIT_AFTER_CLICK"
)

// Config holds the per-state timings and scripted input delays. Timeouts
// are guards against a stuck state, sized to detector tick cadence rather
// than wall-clock precision.
type Config struct {
	// SearchingFishTimeout abandons a search and goes back to the rod.
	SearchingFishTimeout time.Duration
	// ClickCooldown is how long WAIT_AFTER_CLICK holds before resuming
	// the search.
	ClickCooldown time.Duration
	// StrikesPerFish is how many strikes land one fish in the reference
	// client.
	StrikesPerFish int

	// Key and click hold ranges for the scripted inputs.
	KeyHoldMin   time.Duration
	KeyHoldMax   time.Duration
	ClickHoldMin time.Duration
	ClickHoldMax time.Duration
}

// DefaultConfig returns the reference timings.
func DefaultConfig() Config {
	return Config{
		SearchingFishTimeout: 15 * time.Second,
		ClickCooldown:        time.Second,
		StrikesPerFish:       3,
		KeyHoldMin:           100 * time.Millisecond,
		KeyHoldMax:           300 * time.Millisecond,
		ClickHoldMin:         10 * time.Millisecond,
		ClickHoldMax:         50 * time.Millisecond,
	}
}

// Stats counts what the session achieved so far.
type Stats struct {
	ClicksSent uint64
	FishCaught uint64
}

// Controller is the automation state machine. Not safe for concurrent use;
// exactly one pipeline ticks it.
type Controller struct {
	cfg        Config
	interactor input.Interactor
	clk        clock.Clock
	logger     zerolog.Logger

	state      State
	stateStart time.Time
	strikes    int
	stats      Stats
}

// New creates a controller in PULLING_ROD.
func New(cfg Config, interactor input.Interactor, logger zerolog.Logger) *Controller {
	c := &Controller{
		cfg:        cfg,
		interactor: interactor,
		clk:        clock.Real{},
		logger:     logger.With().Str("component", "controller").Logger(),
		state:      StatePullingRod,
	}
	c.stateStart = c.clk.Now()
	return c
}

// WithClock replaces the time source, for tests.
func (c *Controller) WithClock(clk clock.Clock) *Controller {
	c.clk = clk
	c.stateStart = clk.Now()
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Stats returns a snapshot of the session counters.
func (c *Controller) Stats() Stats { return c.stats }

// Tick consumes one detection result. Input failures are logged, never
// fatal: the machine always has a defined next state.
func (c *Controller) Tick(det vision.Detection) {
	switch c.state {
	case StatePullingRod:
		c.tickPullingRod(det)
	case StateSearchingFish:
		c.tickSearchingFish(det)
	case StateWaitAfterClick:
		c.tickWaitAfterClick()
	}
}

func (c *Controller) tickPullingRod(det vision.Detection) {
	if det.GameOpen {
		c.logger.Debug().Msg("Game already open, resuming search")
		c.transition(StateSearchingFish)
		return
	}

	// One attempt, then advance regardless: if the cast did not take, the
	// search will time out and bring us back here.
	c.castRod()
	c.transition(StateSearchingFish)
}

func (c *Controller) tickSearchingFish(det vision.Detection) {
	if c.clk.Since(c.stateStart) > c.cfg.SearchingFishTimeout {
		c.logger.Info().Msg("Search timed out, pulling rod again")
		c.transition(StatePullingRod)
		return
	}

	if !det.GameOpen {
		c.logger.Debug().Msg("Game closed mid-search")
		c.transition(StatePullingRod)
		return
	}

	if det.Clickable && det.FishFound {
		center := det.FishCenter()
		c.strike(center.X, center.Y)
		c.transition(StateWaitAfterClick)
		return
	}

	c.logger.Debug().
		Bool("clickable", det.Clickable).
		Bool("fish_found", det.FishFound).
		Msg("Nothing to catch yet")
}

func (c *Controller) tickWaitAfterClick() {
	// Detection content is deliberately ignored here; the cooldown is the
	// only exit condition.
	if c.clk.Since(c.stateStart) >= c.cfg.ClickCooldown {
		c.transition(StateSearchingFish)
	}
}

// castRod runs the scripted start sequence: bait on the hotbar, then cast.
func (c *Controller) castRod() {
	c.logger.Info().Msg("Putting bait and casting")
	if err := c.interactor.KeyPress(input.KeyDigit1, c.cfg.KeyHoldMin, c.cfg.KeyHoldMax); err != nil {
		c.logger.Error().Err(err).Msg("Bait key failed")
	}
	if err := c.interactor.KeyPress(input.KeySpace, c.cfg.KeyHoldMin, c.cfg.KeyHoldMax); err != nil {
		c.logger.Error().Err(err).Msg("Cast key failed")
	}
}

// strike moves onto the fish and clicks it.
func (c *Controller) strike(x, y int) {
	c.logger.Info().Int("x", x).Int("y", y).Msg("Striking fish")
	if err := c.interactor.MouseMoveTo(x, y); err != nil {
		c.logger.Error().Err(err).Msg("Move to fish failed")
		return
	}
	if err := c.interactor.MouseLeftClick(c.cfg.ClickHoldMin, c.cfg.ClickHoldMax); err != nil {
		c.logger.Error().Err(err).Msg("Strike click failed")
		return
	}
	c.strikes++
	c.stats.ClicksSent++
}

func (c *Controller) transition(next State) {
	if next == StatePullingRod {
		// A full strike streak means the fish was landed.
		if c.strikes >= c.cfg.StrikesPerFish {
			c.stats.FishCaught++
			c.logger.Info().
				Uint64("fish_caught", c.stats.FishCaught).
				Uint64("clicks_sent", c.stats.ClicksSent).
				Msg("Fish caught")
		}
		c.strikes = 0
	}

	c.logger.Debug().Str("from", string(c.state)).Str("to", string(next)).Msg("State change")
	c.state = next
	c.stateStart = c.clk.Now()
}
