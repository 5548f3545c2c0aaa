package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func testMat() gocv.Mat {
	return gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
}

func TestSlotOverwriteKeepsLatest(t *testing.T) {
	slot := NewSlot()
	defer slot.Close()

	slot.Publish(testMat())
	slot.Publish(testMat())
	slot.Publish(testMat())

	frame, ok := slot.Take()
	require.True(t, ok)
	defer frame.Mat.Close()

	assert.Equal(t, uint64(3), frame.Seq, "consumer must see the freshest frame")
	assert.Equal(t, uint64(2), slot.Drops())
}

func TestSlotTakeBlocksUntilPublish(t *testing.T) {
	slot := NewSlot()
	defer slot.Close()

	got := make(chan Frame, 1)
	go func() {
		frame, ok := slot.Take()
		if ok {
			got <- frame
		}
	}()

	time.Sleep(10 * time.Millisecond)
	slot.Publish(testMat())

	select {
	case frame := <-got:
		assert.Equal(t, uint64(1), frame.Seq)
		frame.Mat.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not wake after Publish")
	}
}

func TestSlotCloseUnblocksTake(t *testing.T) {
	slot := NewSlot()

	done := make(chan bool, 1)
	go func() {
		_, ok := slot.Take()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	slot.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not wake after Close")
	}
}

func TestSlotClosedDiscardsPublishes(t *testing.T) {
	slot := NewSlot()
	slot.Publish(testMat())
	slot.Close()

	// The pending frame was never consumed.
	assert.Equal(t, uint64(1), slot.Drops())

	slot.Publish(testMat())
	_, ok := slot.Take()
	assert.False(t, ok)
	assert.Equal(t, uint64(1), slot.Drops(), "publishes after close are discarded, not counted")
}
