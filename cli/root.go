package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/downd/fishingcv/bot/config"
)

var rootCmd = &cobra.Command{
	Use:   "fishingcv",
	Short: "Vision-driven fishing automation over a hardware input relay",
	Long: `fishingcv watches the fishing mini-game with OpenCV and plays it by
sending mouse and keyboard commands to an Arduino-based HID relay over a
serial line, so the game only ever sees real hardware input.

A TCP relay simulator (relay-sim) stands in for the hardware during
development.`,
	Version: "0.1.0",
}

var configPath string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
}

// loadConfig reads the configured file, falling back to defaults when no
// file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.LoadDefaultConfig(), nil
	}
	return config.LoadConfig(configPath)
}

// setupLogger builds the logger from the loaded configuration.
func setupLogger(cfg *config.Config) (zerolog.Logger, error) {
	return config.SetupLogger(cfg)
}
