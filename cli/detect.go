package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/downd/fishingcv/bot/capture"
	"github.com/downd/fishingcv/bot/vision"
	"github.com/downd/fishingcv/pkg/errors"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Dry-run the detector over a video file",
	Long: `Run the vision pipeline over a recorded session without sending any
input, logging per-frame detections and the overall frame rate. Useful
for calibrating the template and thresholds.`,
	RunE: runDetect,
}

var detectVideo string

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVar(&detectVideo, "video", "", "video file to analyze")
	detectCmd.MarkFlagRequired("video")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	detector, err := vision.NewFishingVision(cfg.VisionConfig(), logger)
	if err != nil {
		return err
	}
	defer detector.Close()

	source, err := capture.OpenVideo(detectVideo, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	var frames, gameOpen, clickable, fishFound int
	start := time.Now()

	for {
		if cmd.Context().Err() != nil {
			break
		}

		frame, err := source.Capture()
		if err != nil {
			if errors.HasCode(err, capture.ErrEndOfInput) {
				break
			}
			return err
		}

		det, err := detector.Analyze(frame)
		frame.Close()
		if err != nil {
			logger.Warn().Err(err).Int("frame", frames).Msg("Analysis failed")
			frames++
			continue
		}

		frames++
		if det.GameOpen {
			gameOpen++
		}
		if det.Clickable {
			clickable++
		}
		if det.FishFound {
			fishFound++
			center := det.FishCenter()
			logger.Info().
				Int("frame", frames).
				Int("x", center.X).
				Int("y", center.Y).
				Bool("clickable", det.Clickable).
				Msg("Fish")
		}
	}

	elapsed := time.Since(start)
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frames) / elapsed.Seconds()
	}
	logger.Info().
		Int("frames", frames).
		Int("game_open", gameOpen).
		Int("clickable", clickable).
		Int("fish_found", fishFound).
		Float64("fps", fps).
		Msg("Detection run complete")
	return nil
}
