package relay

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/pkg/errors"
)

func TestTCPChannelDeliversFrames(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	ch, err := DialTCP(ln.Addr().String(), false, zerolog.Nop())
	require.NoError(t, err)

	frameA := protocol.EncodeMouseMove(120, 40)
	frameB := protocol.EncodeLeftDown()
	require.NoError(t, ch.Send(frameA))
	require.NoError(t, ch.Send(frameB))
	require.NoError(t, ch.Close())

	select {
	case data := <-received:
		assert.Equal(t, append(append([]byte{}, frameA...), frameB...), data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frames")
	}
}

func TestTCPChannelSendAfterClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		io.Copy(io.Discard, conn)
		conn.Close()
	}()

	ch, err := DialTCP(ln.Addr().String(), false, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	err = ch.Send(protocol.EncodeLeftUp())
	assert.True(t, errors.HasCode(err, ErrChannelClosed))

	// Close is idempotent.
	assert.NoError(t, ch.Close())
}

func TestDialTCPFailure(t *testing.T) {
	_, err := DialTCP("127.0.0.1:1", false, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrDialFailed))
}
