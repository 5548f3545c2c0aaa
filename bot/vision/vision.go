// Package vision defines the detection result the controller consumes and
// the detector capability that produces it, plus the OpenCV implementation
// for the fishing mini-game.
package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Detection is the structured output of analyzing one frame. It is produced
// per frame and consumed once; nothing retains it.
type Detection struct {
	// GameOpen reports whether the mini-game window was located.
	GameOpen bool
	// Clickable reports whether the grab circle is lit, i.e. a click now
	// would count.
	Clickable bool
	// FishFound reports whether a fish was located; Fish is only
	// meaningful when set.
	FishFound bool
	// Fish is the fish bounding box in full-frame coordinates.
	Fish image.Rectangle
}

// FishCenter returns the center of the fish bounding box.
func (d Detection) FishCenter() image.Point {
	return image.Pt(d.Fish.Min.X+d.Fish.Dx()/2, d.Fish.Min.Y+d.Fish.Dy()/2)
}

// Detector analyzes frames. Implementations must treat every failure as
// "game not open": the controller has no separate error channel and always
// needs a defined next state.
type Detector interface {
	Analyze(frame gocv.Mat) (Detection, error)
	Close() error
}
