// Package config holds the bot configuration: file loading, validation,
// defaults and logger setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/downd/fishingcv/bot/controller"
	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/bot/relay"
	"github.com/downd/fishingcv/bot/vision"
	"github.com/downd/fishingcv/pkg/errors"
)

// Duration wraps time.Duration so YAML files can say "15s" or "250ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the bot configuration
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Relay      RelayConfig      `yaml:"relay"`
	Vision     VisionConfig     `yaml:"vision"`
	Capture    CaptureConfig    `yaml:"capture"`
	Controller ControllerConfig `yaml:"controller"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`    // "json" or "console"
	FilePath string `yaml:"file_path"` // Path to log file, empty disables
	Console  bool   `yaml:"console"`   // Whether to log to console
	Cleanup  bool   `yaml:"cleanup"`   // Whether to truncate the log file on startup
}

// RelayConfig selects and configures the actuator transport.
type RelayConfig struct {
	// Mode is "serial" (hardware relay) or "tcp" (relay simulator).
	Mode string `yaml:"mode"`
	// Port is the serial device path; empty discovers by VID.
	Port string `yaml:"port"`
	// VID is the USB vendor id matched during discovery.
	VID string `yaml:"vid"`
	// BaudRate of the serial line.
	BaudRate int `yaml:"baud_rate"`
	// Addr is the simulator address for tcp mode.
	Addr string `yaml:"addr"`
	// LogDevice drains and logs the relay's diagnostic lines.
	LogDevice bool `yaml:"log_device"`
	// StepInterval paces successive mouse-move frames.
	StepInterval Duration `yaml:"step_interval"`
}

// VisionConfig represents detector configuration. Color bounds stay in
// code; they are calibration constants, not deployment knobs.
type VisionConfig struct {
	TemplatePath string  `yaml:"template_path"`
	ResizeFactor float64 `yaml:"resize_factor"`
	// GameThreshold is the minimum template-match correlation.
	GameThreshold float64 `yaml:"game_threshold"`
	// GrabPixelThreshold is the minimum lit-pixel count for a clickable
	// grab circle.
	GrabPixelThreshold int `yaml:"grab_pixel_threshold"`
}

// CaptureConfig represents the frame source configuration.
type CaptureConfig struct {
	// VideoPath replays a recorded session instead of a live capture.
	VideoPath string `yaml:"video_path"`
}

// ControllerConfig represents the state machine timings.
type ControllerConfig struct {
	SearchTimeout  Duration `yaml:"search_timeout"`
	ClickCooldown  Duration `yaml:"click_cooldown"`
	StrikesPerFish int      `yaml:"strikes_per_fish"`
	KeyHoldMin     Duration `yaml:"key_hold_min"`
	KeyHoldMax     Duration `yaml:"key_hold_max"`
	ClickHoldMin   Duration `yaml:"click_hold_min"`
	ClickHoldMax   Duration `yaml:"click_hold_max"`
}

// PipelineConfig selects how the capture/detect/control loop runs.
type PipelineConfig struct {
	// Mode is "sync" or "concurrent".
	Mode string `yaml:"mode"`
	// TickInterval paces loop iterations.
	TickInterval Duration `yaml:"tick_interval"`
}

// Relay transport modes
const (
	RelayModeSerial = "serial"
	RelayModeTCP    = "tcp"
)

// Pipeline modes
const (
	PipelineModeSync       = "sync"
	PipelineModeConcurrent = "concurrent"
)

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	visionDefaults := vision.DefaultConfig()
	ctrlDefaults := controller.DefaultConfig()

	return &Config{
		Log: LogConfig{
			Level:    "info",
			Format:   "console",
			FilePath: "logs/fishingcv.log",
			Console:  true,
			Cleanup:  true,
		},
		Relay: RelayConfig{
			Mode:         RelayModeSerial,
			VID:          relay.ArduinoVID,
			BaudRate:     protocol.DefaultBaudRate,
			Addr:         "127.0.0.1:7421",
			LogDevice:    true,
			StepInterval: Duration(5 * time.Millisecond),
		},
		Vision: VisionConfig{
			TemplatePath:       visionDefaults.TemplatePath,
			ResizeFactor:       visionDefaults.ResizeFactor,
			GameThreshold:      float64(visionDefaults.GameThreshold),
			GrabPixelThreshold: visionDefaults.GrabPixelThreshold,
		},
		Controller: ControllerConfig{
			SearchTimeout:  Duration(ctrlDefaults.SearchingFishTimeout),
			ClickCooldown:  Duration(ctrlDefaults.ClickCooldown),
			StrikesPerFish: ctrlDefaults.StrikesPerFish,
			KeyHoldMin:     Duration(ctrlDefaults.KeyHoldMin),
			KeyHoldMax:     Duration(ctrlDefaults.KeyHoldMax),
			ClickHoldMin:   Duration(ctrlDefaults.ClickHoldMin),
			ClickHoldMax:   Duration(ctrlDefaults.ClickHoldMax),
		},
		Pipeline: PipelineConfig{
			Mode:         PipelineModeConcurrent,
			TickInterval: Duration(10 * time.Millisecond),
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(ErrConfigFileReadFailed, err, "failed to read config file")
	}

	// Start from defaults so a partial file only overrides what it names.
	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(ErrConfigFileParseFailed, err, "failed to parse config file")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(ErrConfigValidationFailed, err, "configuration validation failed")
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(ErrConfigFileMarshalFailed, err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrap(ErrConfigFileWriteFailed, err, "failed to write config file")
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Relay.Validate(); err != nil {
		return errors.Wrap(ErrRelayValidationFailed, err, "relay validation failed")
	}
	if err := c.Vision.Validate(); err != nil {
		return errors.Wrap(ErrVisionValidationFailed, err, "vision validation failed")
	}
	if err := c.Controller.Validate(); err != nil {
		return errors.Wrap(ErrControllerValidationFailed, err, "controller validation failed")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return errors.Wrap(ErrPipelineValidationFailed, err, "pipeline validation failed")
	}
	return nil
}

// Validate validates the relay configuration
func (r *RelayConfig) Validate() error {
	switch r.Mode {
	case RelayModeSerial:
		if r.Port == "" && r.VID == "" {
			return errors.New(ErrRelayPortRequired, "serial mode needs a port or a vid to discover one")
		}
		if r.BaudRate <= 0 {
			return errors.Newf(ErrRelayBaudInvalid, "baud_rate must be positive, got %d", r.BaudRate)
		}
	case RelayModeTCP:
		if r.Addr == "" {
			return errors.New(ErrRelayAddrRequired, "tcp mode needs an addr")
		}
	default:
		return errors.Newf(ErrRelayModeInvalid, "unknown relay mode %q", r.Mode)
	}
	return nil
}

// Validate validates the vision configuration
func (v *VisionConfig) Validate() error {
	if v.TemplatePath == "" {
		return errors.New(ErrVisionTemplateRequired, "template_path is required")
	}
	if v.ResizeFactor <= 0 || v.ResizeFactor > 1 {
		return errors.Newf(ErrVisionResizeInvalid, "resize_factor must be in (0, 1], got %v", v.ResizeFactor)
	}
	if v.GameThreshold <= 0 || v.GameThreshold > 1 {
		return errors.Newf(ErrVisionThresholdInvalid, "game_threshold must be in (0, 1], got %v", v.GameThreshold)
	}
	return nil
}

// Validate validates the controller configuration
func (c *ControllerConfig) Validate() error {
	if c.SearchTimeout <= 0 {
		return errors.New(ErrControllerTimeoutInvalid, "search_timeout must be positive")
	}
	if c.ClickCooldown <= 0 {
		return errors.New(ErrControllerCooldownInvalid, "click_cooldown must be positive")
	}
	if c.StrikesPerFish <= 0 {
		return errors.Newf(ErrControllerStrikesInvalid, "strikes_per_fish must be positive, got %d", c.StrikesPerFish)
	}
	if c.KeyHoldMax < c.KeyHoldMin || c.ClickHoldMax < c.ClickHoldMin {
		return errors.New(ErrControllerHoldRangeInvalid, "hold ranges must have max >= min")
	}
	return nil
}

// Validate validates the pipeline configuration
func (p *PipelineConfig) Validate() error {
	switch p.Mode {
	case PipelineModeSync, PipelineModeConcurrent:
	default:
		return errors.Newf(ErrPipelineModeInvalid, "unknown pipeline mode %q", p.Mode)
	}
	return nil
}

// SerialConfig maps the relay section onto the serial channel settings.
func (c *Config) SerialConfig() relay.SerialConfig {
	return relay.SerialConfig{
		Port:      c.Relay.Port,
		VID:       c.Relay.VID,
		BaudRate:  c.Relay.BaudRate,
		LogDevice: c.Relay.LogDevice,
	}
}

// VisionConfig maps the vision section onto the detector settings,
// keeping the calibrated color bounds.
func (c *Config) VisionConfig() vision.Config {
	cfg := vision.DefaultConfig()
	cfg.TemplatePath = c.Vision.TemplatePath
	cfg.ResizeFactor = c.Vision.ResizeFactor
	cfg.GameThreshold = float32(c.Vision.GameThreshold)
	cfg.GrabPixelThreshold = c.Vision.GrabPixelThreshold
	return cfg
}

// ControllerConfig maps the controller section onto the state machine
// settings.
func (c *Config) ControllerConfig() controller.Config {
	return controller.Config{
		SearchingFishTimeout: c.Controller.SearchTimeout.Std(),
		ClickCooldown:        c.Controller.ClickCooldown.Std(),
		StrikesPerFish:       c.Controller.StrikesPerFish,
		KeyHoldMin:           c.Controller.KeyHoldMin.Std(),
		KeyHoldMax:           c.Controller.KeyHoldMax.Std(),
		ClickHoldMin:         c.Controller.ClickHoldMin.Std(),
		ClickHoldMax:         c.Controller.ClickHoldMax.Std(),
	}
}
