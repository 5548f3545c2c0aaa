package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumSteps(steps []Step) (dx, dy int) {
	for _, s := range steps {
		dx += s.Dx
		dy += s.Dy
	}
	return dx, dy
}

func assertBounded(t *testing.T, steps []Step, maxStep int) {
	t.Helper()
	for i, s := range steps {
		assert.LessOrEqual(t, absInt(s.Dx), maxStep, "step %d dx out of envelope", i)
		assert.LessOrEqual(t, absInt(s.Dy), maxStep, "step %d dy out of envelope", i)
	}
}

func TestDecomposeZeroIsEmpty(t *testing.T) {
	steps, err := Decompose(0, 0, 125)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestDecomposeWithinEnvelopeIsSingleStep(t *testing.T) {
	steps, err := Decompose(120, 40, 125)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, Step{Dx: 120, Dy: 40}, steps[0])
}

func TestDecomposeUniformSplitWithRemainder(t *testing.T) {
	steps, err := Decompose(300, 100, 125)
	require.NoError(t, err)

	// ceil(300/125) = 3 uniform steps of (100, 33) plus the truncation
	// remainder (0, 1).
	require.Len(t, steps, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Step{Dx: 100, Dy: 33}, steps[i])
	}
	assert.Equal(t, Step{Dx: 0, Dy: 1}, steps[3])
}

func TestDecomposeProperties(t *testing.T) {
	cases := []struct {
		dx, dy, maxStep int
	}{
		{120, 40, 125},
		{-120, 40, 125},
		{1000, -733, 125},
		{32767, 32767, 125},
		{-32768, 1, 125},
		{7, 0, 2},       // remainder larger than maxStep on first split
		{10000, 3, 3},   // tiny envelope, huge displacement
		{1, 1, 1},
		{0, -5000, 125},
	}

	for _, tc := range cases {
		steps, err := Decompose(tc.dx, tc.dy, tc.maxStep)
		require.NoError(t, err)

		gotDx, gotDy := sumSteps(steps)
		assert.Equal(t, tc.dx, gotDx, "dx sum for %+v", tc)
		assert.Equal(t, tc.dy, gotDy, "dy sum for %+v", tc)
		assertBounded(t, steps, tc.maxStep)
	}
}

func TestDecomposeRejectsNonPositiveStep(t *testing.T) {
	_, err := Decompose(10, 10, 0)
	assert.Error(t, err)

	_, err = Decompose(10, 10, -5)
	assert.Error(t, err)
}
