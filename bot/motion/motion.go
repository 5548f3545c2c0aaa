// Package motion splits arbitrarily large relative displacements into steps
// the actuator can execute in a single command.
package motion

import "github.com/downd/fishingcv/pkg/errors"

// Motion-specific error codes
var (
	ErrInvalidStep = errors.MustNewCode("motion.invalid_step")
)

// Step is one bounded relative displacement.
type Step struct {
	Dx int
	Dy int
}

// Decompose splits (dx, dy) into a finite sequence of steps whose per-axis
// magnitudes never exceed maxStep and whose sum is exactly (dx, dy).
//
// The split is uniform: with steps = ceil(max(|dx|,|dy|) / maxStep), it
// emits that many (dx/steps, dy/steps) pairs using truncating division,
// then a corrective pair carrying the truncation remainder. The remainder
// itself is split by the same rule in the rare case it exceeds maxStep
// (possible when maxStep is small relative to the displacement), so the
// per-step bound holds unconditionally.
//
// A zero displacement yields an empty sequence.
func Decompose(dx, dy, maxStep int) ([]Step, error) {
	if maxStep <= 0 {
		return nil, errors.Newf(ErrInvalidStep, "maxStep must be positive, got %d", maxStep)
	}

	var out []Step
	for dx != 0 || dy != 0 {
		span := absInt(dx)
		if absInt(dy) > span {
			span = absInt(dy)
		}
		if span <= maxStep {
			out = append(out, Step{Dx: dx, Dy: dy})
			break
		}

		// steps <= span, so the dominant axis always advances by at least
		// one per step and the loop terminates.
		steps := (span + maxStep - 1) / maxStep
		stepDx, stepDy := dx/steps, dy/steps

		for i := 0; i < steps; i++ {
			out = append(out, Step{Dx: stepDx, Dy: stepDy})
		}
		dx -= stepDx * steps
		dy -= stepDy * steps
	}
	return out, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
