package input

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/pkg/errors"
)

// captureChannel records every frame it is asked to send.
type captureChannel struct {
	frames [][]byte
}

func (c *captureChannel) Send(frame []byte) error {
	c.frames = append(c.frames, append([]byte(nil), frame...))
	return nil
}

func (c *captureChannel) Close() error { return nil }

func newTestInteractor() (*SerialInteractor, *captureChannel) {
	ch := &captureChannel{}
	return NewSerialInteractor(ch, zerolog.Nop()).WithStepInterval(0), ch
}

// moveSum decodes every MOUSE_MOVE frame and accumulates displacements,
// asserting each stays inside the per-command envelope.
func moveSum(t *testing.T, frames [][]byte, maxStep int) (dx, dy int) {
	t.Helper()
	for _, f := range frames {
		require.Equal(t, protocol.CmdMouseMove, f[1])
		stepDx, stepDy, err := protocol.DecodeMouseMovePayload(f[1:])
		require.NoError(t, err)
		assert.LessOrEqual(t, abs(int(stepDx)), maxStep)
		assert.LessOrEqual(t, abs(int(stepDy)), maxStep)
		dx += int(stepDx)
		dy += int(stepDy)
	}
	return dx, dy
}

func TestMouseMoveRelativeDecomposes(t *testing.T) {
	interactor, ch := newTestInteractor()

	require.NoError(t, interactor.MouseMoveRelative(400, -300))

	dx, dy := moveSum(t, ch.frames, MaxStepPerCommand)
	assert.Equal(t, 400, dx)
	assert.Equal(t, -300, dy)
	assert.Greater(t, len(ch.frames), 1)
}

func TestMouseMoveRelativeNoOp(t *testing.T) {
	interactor, ch := newTestInteractor()

	require.NoError(t, interactor.MouseMoveRelative(0, 0))
	assert.Empty(t, ch.frames)
}

func TestMouseMoveToUsesPositionSource(t *testing.T) {
	interactor, ch := newTestInteractor()
	interactor.WithPositionSource(func() (int, int, error) { return 30, 10, nil })

	require.NoError(t, interactor.MouseMoveTo(150, 50))

	dx, dy := moveSum(t, ch.frames, MaxStepPerCommand)
	assert.Equal(t, 120, dx)
	assert.Equal(t, 40, dy)
}

func TestMouseMoveToWithoutPositionSource(t *testing.T) {
	interactor, _ := newTestInteractor()

	err := interactor.MouseMoveTo(10, 10)
	assert.True(t, errors.HasCode(err, ErrNoPositionSource))
}

func TestMouseLeftClickOrdersFrames(t *testing.T) {
	interactor, ch := newTestInteractor()

	require.NoError(t, interactor.MouseLeftClick(0, 0))

	require.Len(t, ch.frames, 2)
	assert.Equal(t, protocol.EncodeLeftDown(), ch.frames[0])
	assert.Equal(t, protocol.EncodeLeftUp(), ch.frames[1])
}

func TestKeyPressOrdersFrames(t *testing.T) {
	interactor, ch := newTestInteractor()

	start := time.Now()
	require.NoError(t, interactor.KeyPress(KeySpace, time.Millisecond, 2*time.Millisecond))
	elapsed := time.Since(start)

	require.Len(t, ch.frames, 2)
	assert.Equal(t, protocol.EncodeKeyDown(KeySpace), ch.frames[0])
	assert.Equal(t, protocol.EncodeKeyUp(KeySpace), ch.frames[1])
	assert.GreaterOrEqual(t, elapsed, time.Millisecond)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
