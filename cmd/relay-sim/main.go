// relay-sim stands in for the Arduino relay during development: it speaks
// the same framing protocol over TCP, runs the same dispatch stack the
// firmware reference implements, and writes what it would have done back
// to the client as free-text diagnostic lines.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/downd/fishingcv/bot/device"
	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/utils"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7421", "listen address")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("component", "relay-sim").Logger()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", *addr).Msg("Failed to listen")
	}
	logger.Info().Str("addr", *addr).Msg("Relay simulator listening")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info().Msg("Shutting down...")
		cancel()
		listener.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error().Err(err).Msg("Accept failed")
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			serveConn(ctx, conn, logger)
		}()
	}

	wg.Wait()
	logger.Info().Msg("Relay simulator stopped")
}

// serveConn runs the full device stack against one client. Diagnostics go
// back over the same connection, like the hardware's serial prints.
func serveConn(ctx context.Context, conn net.Conn, logger zerolog.Logger) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	logger = logger.With().Str("client_id", utils.GenerateULIDString()).Logger()
	logger.Info().Str("client", remote).Msg("Client connected")

	// The client sees plain text lines, the firmware diagnostic format.
	deviceLog := zerolog.New(zerolog.ConsoleWriter{
		Out:     conn,
		NoColor: true,
	}).With().Timestamp().Logger()

	registry := protocol.NewRegistry(deviceLog)
	dispatcher := device.NewDispatcher(device.NewLogActuator(deviceLog), deviceLog)
	if !dispatcher.Register(registry) {
		logger.Error().Str("client", remote).Msg("Handler registration failed")
		return
	}
	decoder := protocol.NewDecoder(registry, deviceLog)

	// Unblock the read loop when the simulator shuts down.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	loop := device.NewLoop(decoder, deviceLog)
	if err := loop.Run(ctx, conn); err != nil && ctx.Err() == nil {
		logger.Warn().Err(err).Str("client", remote).Msg("Client loop ended")
	}

	stats := decoder.Stats()
	logger.Info().
		Str("client", remote).
		Uint64("dispatched", stats.Dispatched).
		Uint64("unknown_command", stats.UnknownCommand).
		Uint64("size_mismatch", stats.SizeMismatch).
		Msg("Client disconnected")
}
