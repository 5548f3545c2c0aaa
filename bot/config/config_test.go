package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downd/fishingcv/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := LoadDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, RelayModeSerial, cfg.Relay.Mode)
	assert.Equal(t, 115200, cfg.Relay.BaudRate)
	assert.Equal(t, 15*time.Second, cfg.Controller.SearchTimeout.Std())
	assert.Equal(t, 3, cfg.Controller.StrikesPerFish)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
relay:
  mode: tcp
  addr: "127.0.0.1:9000"
controller:
  search_timeout: 30s
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, RelayModeTCP, cfg.Relay.Mode)
	assert.Equal(t, "127.0.0.1:9000", cfg.Relay.Addr)
	assert.Equal(t, 30*time.Second, cfg.Controller.SearchTimeout.Std())
	// Untouched sections keep their defaults.
	assert.Equal(t, time.Second, cfg.Controller.ClickCooldown.Std())
	assert.Equal(t, PipelineModeConcurrent, cfg.Pipeline.Mode)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
controller:
  search_timeout: fifteen
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrConfigFileParseFailed))
}

func TestValidateRejectsUnknownModes(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Relay.Mode = "carrier-pigeon"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")

	cfg = LoadDefaultConfig()
	cfg.Pipeline.Mode = "turbo"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Vision.ResizeFactor = 1.5
	assert.Error(t, cfg.Validate())

	cfg = LoadDefaultConfig()
	cfg.Controller.KeyHoldMax = 0
	cfg.Controller.KeyHoldMin = Duration(time.Second)
	assert.Error(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := LoadDefaultConfig()
	cfg.Relay.Port = "/dev/ttyACM3"
	cfg.Controller.SearchTimeout = Duration(20 * time.Second)

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM3", loaded.Relay.Port)
	assert.Equal(t, 20*time.Second, loaded.Controller.SearchTimeout.Std())
}

func TestSectionMappings(t *testing.T) {
	cfg := LoadDefaultConfig()
	cfg.Relay.Port = "/dev/ttyACM0"

	serial := cfg.SerialConfig()
	assert.Equal(t, "/dev/ttyACM0", serial.Port)
	assert.Equal(t, cfg.Relay.BaudRate, serial.BaudRate)

	ctrl := cfg.ControllerConfig()
	assert.Equal(t, cfg.Controller.SearchTimeout.Std(), ctrl.SearchingFishTimeout)
	assert.Equal(t, cfg.Controller.StrikesPerFish, ctrl.StrikesPerFish)

	vis := cfg.VisionConfig()
	assert.Equal(t, cfg.Vision.TemplatePath, vis.TemplatePath)
	// Calibrated color bounds survive the mapping untouched.
	assert.NotZero(t, vis.FishUpper.Val1)
}
