package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/downd/fishingcv/bot"
	"github.com/downd/fishingcv/bot/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fishing bot",
	Long: `Run the capture, detection and control pipeline against the
configured relay until interrupted or the frame source ends.`,
	RunE: runBot,
}

type runOptions struct {
	relayMode    string
	serialPort   string
	relayAddr    string
	videoPath    string
	pipelineMode string
}

var runOpts = &runOptions{}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runOpts.relayMode, "relay", "", "relay transport (serial|tcp)")
	runCmd.Flags().StringVar(&runOpts.serialPort, "port", "", "serial port path (default: discover by VID)")
	runCmd.Flags().StringVar(&runOpts.relayAddr, "addr", "", "relay simulator address for tcp relay")
	runCmd.Flags().StringVar(&runOpts.videoPath, "video", "", "video file to use as frame source")
	runCmd.Flags().StringVar(&runOpts.pipelineMode, "pipeline", "", "pipeline mode (sync|concurrent)")
}

// originPosition anchors absolute moves at the screen origin. Detection
// coordinates are frame-relative, so with the cursor parked at the origin
// a move-to becomes the equivalent relative displacement; querying the
// real OS cursor is platform glue that lives outside this repository.
func originPosition() (int, int, error) {
	return 0, 0, nil
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	b, err := bot.New(cfg, logger, originPosition)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to wire bot")
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info().Msg("Shutting down...")
		cancel()
	}()

	return b.Run(ctx)
}

// applyRunFlags lets command-line flags override the file configuration.
func applyRunFlags(cfg *config.Config) {
	if runOpts.relayMode != "" {
		cfg.Relay.Mode = runOpts.relayMode
	}
	if runOpts.serialPort != "" {
		cfg.Relay.Port = runOpts.serialPort
	}
	if runOpts.relayAddr != "" {
		cfg.Relay.Addr = runOpts.relayAddr
	}
	if runOpts.videoPath != "" {
		cfg.Capture.VideoPath = runOpts.videoPath
	}
	if runOpts.pipelineMode != "" {
		cfg.Pipeline.Mode = runOpts.pipelineMode
	}
}
