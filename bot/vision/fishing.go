package vision

import (
	"image"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/downd/fishingcv/pkg/errors"
)

// Config holds the tunables of the fishing-game detector. The defaults are
// the values calibrated against the reference client.
type Config struct {
	// TemplatePath locates the mini-game border template image.
	TemplatePath string
	// ResizeFactor downsamples frame and template before template
	// matching (0 < f <= 1); matching cost dominates the frame budget.
	ResizeFactor float64
	// GameThreshold is the minimum normalized correlation to accept the
	// template match as "game open".
	GameThreshold float32
	// BorderOffset and TitleOffset crop the window chrome off the matched
	// region before color analysis.
	BorderOffset int
	TitleOffset  int

	// FishLower/FishUpper bound the fish body color in HSV.
	FishLower gocv.Scalar
	FishUpper gocv.Scalar

	// GrabLower/GrabUpper bound the lit grab-circle color in HSV;
	// GrabPixelThreshold is the minimum count of in-range pixels for the
	// circle to count as lit.
	GrabLower          gocv.Scalar
	GrabUpper          gocv.Scalar
	GrabPixelThreshold int
}

// DefaultConfig returns the calibrated reference values.
func DefaultConfig() Config {
	return Config{
		TemplatePath:       "resources/template_fish_game_border.png",
		ResizeFactor:       0.5,
		GameThreshold:      0.7,
		BorderOffset:       10,
		TitleOffset:        28,
		FishLower:          gocv.NewScalar(73, 99, 116, 0),
		FishUpper:          gocv.NewScalar(144, 154, 132, 0),
		GrabLower:          gocv.NewScalar(118, 56, 141, 0),
		GrabUpper:          gocv.NewScalar(255, 144, 255, 0),
		GrabPixelThreshold: 157,
	}
}

// FishingVision locates the mini-game window by template matching and then
// finds the fish and the grab circle inside it by HSV color masking.
type FishingVision struct {
	cfg      Config
	logger   zerolog.Logger
	template gocv.Mat // grayscale, pre-filtered
	tmplSize image.Point
}

// NewFishingVision loads and prepares the game template.
func NewFishingVision(cfg Config, logger zerolog.Logger) (*FishingVision, error) {
	if cfg.ResizeFactor <= 0 || cfg.ResizeFactor > 1 {
		return nil, errors.Newf(ErrInvalidConfig, "resize factor must be in (0, 1], got %v", cfg.ResizeFactor)
	}

	raw := gocv.IMRead(cfg.TemplatePath, gocv.IMReadColor)
	if raw.Empty() {
		return nil, errors.Newf(ErrTemplateLoadFailed, "could not read template %s", cfg.TemplatePath)
	}
	defer raw.Close()

	// Smoothing before matching gives noticeably better correlation on
	// the compressed game art.
	filtered := gocv.NewMat()
	gocv.BilateralFilter(raw, &filtered, 7, 85, 85)
	defer filtered.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(filtered, &gray, gocv.ColorBGRToGray)

	return &FishingVision{
		cfg:      cfg,
		logger:   logger.With().Str("component", "vision").Logger(),
		template: gray,
		tmplSize: image.Pt(raw.Cols(), raw.Rows()),
	}, nil
}

// Close releases the prepared template.
func (v *FishingVision) Close() error {
	return v.template.Close()
}

// Analyze implements Detector.
func (v *FishingVision) Analyze(frame gocv.Mat) (Detection, error) {
	if frame.Empty() {
		return Detection{}, errors.New(ErrEmptyFrame, "empty frame")
	}

	blurred := gocv.NewMat()
	gocv.BilateralFilter(frame, &blurred, 7, 85, 85)
	defer blurred.Close()

	gameRect, corr := v.locateGame(blurred)
	if corr < v.cfg.GameThreshold {
		v.logger.Debug().Float32("correlation", corr).Msg("Game window not found")
		return Detection{}, nil
	}
	v.logger.Debug().Float32("correlation", corr).Msg("Game window found")

	// Crop the chrome off and clamp to the frame.
	crop := image.Rect(
		gameRect.Min.X+v.cfg.BorderOffset,
		gameRect.Min.Y+v.cfg.BorderOffset+v.cfg.TitleOffset,
		gameRect.Max.X-v.cfg.BorderOffset,
		gameRect.Max.Y-v.cfg.BorderOffset,
	).Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if crop.Empty() {
		return Detection{GameOpen: true}, nil
	}

	region := blurred.Region(crop)
	defer region.Close()

	hsv := gocv.NewMat()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)
	defer hsv.Close()

	det := Detection{GameOpen: true}
	det.Clickable = v.grabCircleLit(hsv)

	if fishRect, ok := v.findFish(hsv); ok {
		det.FishFound = true
		det.Fish = fishRect.Add(crop.Min)
	}

	v.logger.Debug().
		Bool("clickable", det.Clickable).
		Bool("fish_found", det.FishFound).
		Msg("Frame analyzed")
	return det, nil
}

// locateGame runs a downscaled grayscale template match and returns the
// match rectangle in full-frame coordinates with its correlation.
func (v *FishingVision) locateGame(frame gocv.Mat) (image.Rectangle, float32) {
	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	defer gray.Close()

	f := v.cfg.ResizeFactor
	searchImg := gray
	searchTmpl := v.template
	var scaled, scaledTmpl gocv.Mat
	if f < 1 {
		scaled = gocv.NewMat()
		gocv.Resize(gray, &scaled, image.Pt(int(float64(gray.Cols())*f), int(float64(gray.Rows())*f)), 0, 0, gocv.InterpolationArea)
		defer scaled.Close()

		scaledTmpl = gocv.NewMat()
		gocv.Resize(v.template, &scaledTmpl, image.Pt(int(float64(v.template.Cols())*f), int(float64(v.template.Rows())*f)), 0, 0, gocv.InterpolationArea)
		defer scaledTmpl.Close()

		searchImg, searchTmpl = scaled, scaledTmpl
	}

	if searchImg.Cols() < searchTmpl.Cols() || searchImg.Rows() < searchTmpl.Rows() {
		return image.Rectangle{}, 0
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(searchImg, searchTmpl, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	inv := 1.0 / f
	topLeft := image.Pt(int(float64(maxLoc.X)*inv), int(float64(maxLoc.Y)*inv))
	return image.Rectangle{
		Min: topLeft,
		Max: topLeft.Add(v.tmplSize),
	}, maxVal
}

// grabCircleLit counts pixels inside the grab-circle color range.
func (v *FishingVision) grabCircleLit(hsv gocv.Mat) bool {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, v.cfg.GrabLower, v.cfg.GrabUpper, &mask)

	lit := gocv.CountNonZero(mask)
	v.logger.Debug().Int("lit_pixels", lit).Int("threshold", v.cfg.GrabPixelThreshold).Msg("Grab circle mask")
	return lit >= v.cfg.GrabPixelThreshold
}

// findFish returns the bounding box of the largest fish-colored blob, in
// crop coordinates.
func (v *FishingVision) findFish(hsv gocv.Mat) (image.Rectangle, bool) {
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, v.cfg.FishLower, v.cfg.FishUpper, &mask)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > bestArea {
			bestArea = area
			best = i
		}
	}
	if best < 0 {
		return image.Rectangle{}, false
	}
	return gocv.BoundingRect(contours.At(best)), true
}
