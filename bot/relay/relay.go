// Package relay is the host side of the transport to the input relay: it
// owns the serial (or TCP, for the simulator) connection, writes encoded
// command frames, and drains the relay's free-text diagnostic stream into
// the log. Diagnostics are never parsed as protocol data; the command
// channel is strictly host to relay.
package relay

import (
	"bufio"
	"sync"

	"github.com/rs/zerolog"
)

// Channel is the capability the rest of the host needs: deliver one encoded
// frame. Implementations are not safe for concurrent Send; the architecture
// funnels all writes through a single owner instead of locking here.
type Channel interface {
	Send(frame []byte) error
	Close() error
}

// diagnosticListener pumps relay output lines into the logger until the
// stream ends. Used by both the serial and TCP channels.
func diagnosticListener(r *bufio.Scanner, logger zerolog.Logger, done *sync.WaitGroup) {
	defer done.Done()
	log := logger.With().Str("component", "relay-device").Logger()
	for r.Scan() {
		line := r.Text()
		if line == "" {
			continue
		}
		log.Debug().Msg(line)
	}
	if err := r.Err(); err != nil {
		log.Debug().Err(err).Msg("Diagnostic stream ended")
	}
}
