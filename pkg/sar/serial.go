package sar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the rate of the kit's USB-UART bridge.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default depth of the results channel.
	DefaultBufferSize = 16

	// triggerCommand starts one conversion group on the board.
	triggerCommand = "T\n"
)

// Serial drives the converter on a board over a serial line.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	results   chan GroupResult
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewSerial creates a device on the given port. A zero baud rate or buffer
// size selects the default.
func NewSerial(port string, baudRate, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		results:   make(chan GroupResult, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns the names of the available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the serial port and starts reading conversion groups.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.done = make(chan struct{})
	d.connected = true

	// Start reading results in a goroutine
	go d.readResults()

	return nil
}

// Close closes the connection and stops reading results.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop the reading goroutine
	d.cancel()

	// Closing the port unblocks a pending read
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
	}

	// The reader owns the results channel and closes it on its way out
	<-d.done
	d.conn = nil
	d.connected = false

	return nil
}

// Results returns the channel delivering conversion groups.
func (d *Serial) Results() <-chan GroupResult {
	return d.results
}

// Configure sends the channel configuration to the board.
func (d *Serial) Configure(cfg ChannelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(encodeConfigure(cfg))); err != nil {
		return fmt.Errorf("failed to send configure command: %w", err)
	}

	return nil
}

// Trigger asks the board to start one conversion group.
func (d *Serial) Trigger() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(triggerCommand)); err != nil {
		return fmt.Errorf("failed to send trigger command: %w", err)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// encodeConfigure builds a configure command line.
// Format: C,<count>,<shift>,<R|L>,<U|S>
// Example: C,4,2,R,U
func encodeConfigure(cfg ChannelConfig) string {
	align := "R"
	if cfg.Alignment == AlignLeft {
		align = "L"
	}
	sign := "U"
	if cfg.SignExtension == SignSigned {
		sign = "S"
	}
	return fmt.Sprintf("C,%d,%d,%s,%s\n", cfg.AverageCount, cfg.RightShift, align, sign)
}

// readResults reads lines from the serial port and parses them into
// GroupResults.
func (d *Serial) readResults() {
	defer close(d.done)
	defer close(d.results)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readResults: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			res, err := parseResult(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			// Send result to channel (non-blocking)
			select {
			case d.results <- res:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Results channel full, dropping conversion group")
			}
		}
	}
}

// parseResult parses a conversion group line from the board.
// Format: R,<cause>,<ref>,<raw>
// Example: R,1,1117,2048
func parseResult(line string) (GroupResult, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return GroupResult{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	if parts[0] != "R" {
		return GroupResult{}, fmt.Errorf("unexpected record type %q", parts[0])
	}

	// Parse the interrupt cause bitmask
	cause, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return GroupResult{}, fmt.Errorf("invalid cause: %w", err)
	}

	// Parse the band gap reference code (always right aligned unsigned)
	ref, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return GroupResult{}, fmt.Errorf("invalid reference code: %w", err)
	}
	if ref > MaxCode {
		return GroupResult{}, fmt.Errorf("reference code out of range: %d (max %d)", ref, MaxCode)
	}

	// Parse the potentiometer result. Left aligned results use the full 16
	// bits, so only the integer width is checked.
	raw, err := strconv.ParseUint(parts[3], 10, 16)
	if err != nil {
		return GroupResult{}, fmt.Errorf("invalid result value: %w", err)
	}

	return GroupResult{
		Ref:   uint16(ref),
		Raw:   uint16(raw),
		Cause: Cause(cause),
	}, nil
}
