package device

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downd/fishingcv/bot/protocol"
)

// recordingActuator captures actions in order.
type recordingActuator struct {
	actions []string
	moves   [][2]int
}

func (a *recordingActuator) MouseMove(dx, dy int8) error {
	a.actions = append(a.actions, "move")
	a.moves = append(a.moves, [2]int{int(dx), int(dy)})
	return nil
}

func (a *recordingActuator) MouseLeftDown() error {
	a.actions = append(a.actions, "left_down")
	return nil
}

func (a *recordingActuator) MouseLeftUp() error {
	a.actions = append(a.actions, "left_up")
	return nil
}

func (a *recordingActuator) KeyDown(usage byte) error {
	a.actions = append(a.actions, "key_down")
	return nil
}

func (a *recordingActuator) KeyUp(usage byte) error {
	a.actions = append(a.actions, "key_up")
	return nil
}

func newTestStack(t *testing.T) (*recordingActuator, *protocol.Decoder) {
	t.Helper()
	actuator := &recordingActuator{}
	registry := protocol.NewRegistry(zerolog.Nop())
	dispatcher := NewDispatcher(actuator, zerolog.Nop()).WithStepDelay(0)
	require.True(t, dispatcher.Register(registry))
	return actuator, protocol.NewDecoder(registry, zerolog.Nop())
}

func feed(d *protocol.Decoder, packets ...[]byte) {
	for _, p := range packets {
		for _, b := range p {
			d.Feed(b)
		}
	}
}

func TestDispatcherClickSequence(t *testing.T) {
	actuator, decoder := newTestStack(t)

	feed(decoder, protocol.EncodeLeftDown(), protocol.EncodeLeftUp())

	assert.Equal(t, []string{"left_down", "left_up"}, actuator.actions)
}

func TestDispatcherSmallMoveIsSingleStep(t *testing.T) {
	actuator, decoder := newTestStack(t)

	feed(decoder, protocol.EncodeMouseMove(100, -50))

	require.Len(t, actuator.moves, 1)
	assert.Equal(t, [2]int{100, -50}, actuator.moves[0])
}

func TestDispatcherDecomposesLargeMove(t *testing.T) {
	actuator, decoder := newTestStack(t)

	feed(decoder, protocol.EncodeMouseMove(400, -300))

	var sumX, sumY int
	for _, m := range actuator.moves {
		assert.LessOrEqual(t, abs(m[0]), HIDMaxStep)
		assert.LessOrEqual(t, abs(m[1]), HIDMaxStep)
		sumX += m[0]
		sumY += m[1]
	}
	assert.Equal(t, 400, sumX)
	assert.Equal(t, -300, sumY)
	assert.Greater(t, len(actuator.moves), 1)
}

func TestDispatcherKeyCommands(t *testing.T) {
	actuator, decoder := newTestStack(t)

	feed(decoder, protocol.EncodeKeyDown(0x2C), protocol.EncodeKeyUp(0x2C))

	assert.Equal(t, []string{"key_down", "key_up"}, actuator.actions)
}

func TestLoopDrainsReaderAndDispatches(t *testing.T) {
	actuator, decoder := newTestStack(t)
	loop := NewLoop(decoder, zerolog.Nop())

	var stream []byte
	stream = append(stream, protocol.EncodeMouseMove(10, 20)...)
	stream = append(stream, protocol.EncodeLeftDown()...)
	stream = append(stream, protocol.EncodeLeftUp()...)

	err := loop.Run(context.Background(), bytes.NewReader(stream))
	require.NoError(t, err)

	assert.Equal(t, []string{"move", "left_down", "left_up"}, actuator.actions)
}

func TestLoopStopsOnCancel(t *testing.T) {
	_, decoder := newTestStack(t)
	loop := NewLoop(decoder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := loop.Run(ctx, blockingReader{})
	assert.ErrorIs(t, err, context.Canceled)
}

// blockingReader never returns data; the loop must bail out on ctx before
// calling Read.
type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
