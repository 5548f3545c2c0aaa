package relay

import (
	"bufio"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/downd/fishingcv/bot/protocol"
	"github.com/downd/fishingcv/pkg/errors"
)

// ArduinoVID is the USB vendor id the port discovery matches by default
// (0x2341, the Arduino boards the relay firmware runs on).
const ArduinoVID = "2341"

// SerialConfig configures the serial channel.
type SerialConfig struct {
	// Port is the device path. Empty means discover by VID.
	Port string
	// VID is the USB vendor id (hex, no prefix) used for discovery.
	VID string
	// BaudRate of the line; the firmware expects protocol.DefaultBaudRate.
	BaudRate int
	// LogDevice enables the diagnostic listener goroutine.
	LogDevice bool
}

// DefaultSerialConfig returns the settings the stock firmware uses.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		VID:      ArduinoVID,
		BaudRate: protocol.DefaultBaudRate,
	}
}

// SerialChannel sends frames over a serial port and optionally drains the
// relay's diagnostic lines.
type SerialChannel struct {
	port     serial.Port
	logger   zerolog.Logger
	listener sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// OpenSerial opens (discovering the port first if needed) the serial
// channel. The input buffer is flushed so stale relay output from a
// previous session is not misattributed.
func OpenSerial(cfg SerialConfig, logger zerolog.Logger) (*SerialChannel, error) {
	log := logger.With().Str("component", "relay").Logger()

	portName := cfg.Port
	if portName == "" {
		discovered, err := DiscoverPort(cfg.VID)
		if err != nil {
			return nil, err
		}
		portName = discovered
	}

	baud := cfg.BaudRate
	if baud == 0 {
		baud = protocol.DefaultBaudRate
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(ErrPortOpenFailed, err, "failed to open %s", portName).
			AddContext("baud_rate", strconv.Itoa(baud))
	}
	if err := port.ResetInputBuffer(); err != nil {
		log.Warn().Err(err).Msg("Could not flush input buffer")
	}

	ch := &SerialChannel{port: port, logger: log}
	if cfg.LogDevice {
		ch.listener.Add(1)
		go diagnosticListener(bufio.NewScanner(port), log, &ch.listener)
	}

	log.Info().Str("port", portName).Int("baud_rate", baud).Msg("Connected to input relay")
	return ch, nil
}

// Send writes one encoded frame in a single write call.
func (c *SerialChannel) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New(ErrChannelClosed, "serial channel is closed")
	}

	n, err := c.port.Write(frame)
	if err != nil {
		return errors.Wrap(ErrWriteFailed, err, "serial write failed")
	}
	if n != len(frame) {
		return errors.Newf(ErrShortWrite, "wrote %d of %d bytes", n, len(frame))
	}
	return nil
}

// Close closes the port and waits for the diagnostic listener to drain.
func (c *SerialChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.port.Close()
	c.listener.Wait()
	return err
}

// DiscoverPort returns the first serial port whose USB vendor id matches.
func DiscoverPort(vid string) (string, error) {
	if vid == "" {
		vid = ArduinoVID
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", errors.Wrap(ErrPortDiscoveryFailed, err, "failed to enumerate serial ports")
	}
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, vid) {
			return p.Name, nil
		}
	}
	return "", errors.Newf(ErrPortNotFound, "no serial port with VID %s", vid)
}

// ListPorts returns all detected serial ports with their USB identity,
// flagging the ones that match the given VID.
func ListPorts(vid string) ([]PortInfo, error) {
	if vid == "" {
		vid = ArduinoVID
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, errors.Wrap(ErrPortDiscoveryFailed, err, "failed to enumerate serial ports")
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, PortInfo{
			Name:    p.Name,
			IsUSB:   p.IsUSB,
			VID:     p.VID,
			PID:     p.PID,
			IsRelay: p.IsUSB && strings.EqualFold(p.VID, vid),
		})
	}
	return infos, nil
}

// PortInfo describes one detected serial port.
type PortInfo struct {
	Name    string
	IsUSB   bool
	VID     string
	PID     string
	IsRelay bool
}
