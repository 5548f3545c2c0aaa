// Package input exposes the host-side capability for performing user input
// and its relay-backed implementation. A direct software-injection
// implementation can satisfy the same interface; only the relay path lives
// in this repository.
package input

import "time"

// HID keyboard usage codes for the keys the controller scripts.
const (
	KeySpace  byte = 0x2C
	KeyDigit1 byte = 0x1E
)

// Interactor performs input actions. Hold delays are randomized inside the
// given range so scripted sequences do not tick with robotic regularity.
type Interactor interface {
	// MouseMoveTo moves the cursor to an absolute screen position.
	MouseMoveTo(x, y int) error
	// MouseMoveRelative moves the cursor by a relative displacement.
	MouseMoveRelative(dx, dy int) error
	MouseLeftDown() error
	MouseLeftUp() error
	// MouseLeftClick presses and releases, holding between minHold and
	// maxHold.
	MouseLeftClick(minHold, maxHold time.Duration) error
	// KeyPress presses and releases a key by HID usage code.
	KeyPress(usage byte, minHold, maxHold time.Duration) error
}

// PositionSource reports the current cursor position, used to turn absolute
// targets into the relative displacements the relay understands. The OS
// query lives outside this package.
type PositionSource func() (x, y int, err error)
