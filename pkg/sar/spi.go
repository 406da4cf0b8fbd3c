package sar

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// DefaultSamplePeriod paces accumulator reads on the SPI backend so the
// update rate stays readable.
const DefaultSamplePeriod = time.Millisecond

// SPI drives an MCP3208 converter over SPI. The chip has no accumulator or
// result formatting of its own, so averaging, alignment and sign extension
// run in the driver, per trigger: the reference channel is read once and
// the potentiometer channel AverageCount times.
type SPI struct {
	portName     string
	potChannel   int
	refChannel   int
	samplePeriod time.Duration
	bufSize      int

	port spi.PortCloser
	conn spi.Conn

	results chan GroupResult
	trigger chan struct{}
	done    chan struct{}

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	channel   ChannelConfig
}

// Ensure SPI implements Device.
var _ Device = (*SPI)(nil)

// NewSPI creates a device reading the given converter channels on the given
// SPI port. An empty port name selects the first available port. A zero
// sample period or buffer size selects the default.
func NewSPI(portName string, potChannel, refChannel int, samplePeriod time.Duration, bufSize int) *SPI {
	if samplePeriod == 0 {
		samplePeriod = DefaultSamplePeriod
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SPI{
		portName:     portName,
		potChannel:   potChannel,
		refChannel:   refChannel,
		samplePeriod: samplePeriod,
		bufSize:      bufSize,
		results:      make(chan GroupResult, bufSize),
		trigger:      make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		channel:      ChannelConfig{AverageCount: 1},
	}
}

// Connect initializes the host drivers, opens the SPI port and starts
// serving conversion triggers.
func (d *SPI) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	if d.potChannel < 0 || d.potChannel > 7 || d.refChannel < 0 || d.refChannel > 7 {
		return fmt.Errorf("converter channels must be in [0,7], got pot %d ref %d", d.potChannel, d.refChannel)
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize host drivers: %w", err)
	}

	port, err := spireg.Open(d.portName)
	if err != nil {
		return fmt.Errorf("failed to open SPI port %q: %w", d.portName, err)
	}

	// 1 MHz is within the MCP3208 rating at 2.7V
	conn, err := port.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return fmt.Errorf("failed to connect to converter: %w", err)
	}

	d.port = port
	d.conn = conn
	d.done = make(chan struct{})
	d.connected = true

	go d.convert()

	return nil
}

// Close stops the conversion goroutine and releases the SPI port.
func (d *SPI) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()
	<-d.done

	if err := d.port.Close(); err != nil {
		log.Printf("Error closing SPI port: %v", err)
	}
	d.port = nil
	d.conn = nil
	d.connected = false

	return nil
}

// Results returns the channel delivering conversion groups.
func (d *SPI) Results() <-chan GroupResult {
	return d.results
}

// Configure programs the potentiometer channel processing.
func (d *SPI) Configure(cfg ChannelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	d.channel = cfg

	return nil
}

// Trigger starts one conversion group. A trigger arriving while a group is
// converting is absorbed.
func (d *SPI) Trigger() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	select {
	case d.trigger <- struct{}{}:
	default:
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *SPI) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// convert serves conversion triggers until the device is closed. A bus
// error is treated as fatal: the results channel is closed and the caller
// decides how to halt.
func (d *SPI) convert() {
	defer close(d.done)
	defer close(d.results)

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.trigger:
			res, ok, err := d.convertGroup()
			if err != nil {
				log.Printf("Conversion failed, stopping: %v", err)
				return
			}
			if !ok {
				// Closed mid-group
				return
			}

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

// convertGroup reads the reference once and accumulates the potentiometer
// channel per the current configuration.
func (d *SPI) convertGroup() (GroupResult, bool, error) {
	d.mu.RLock()
	cc := d.channel
	d.mu.RUnlock()

	ref, err := d.readCode(d.refChannel)
	if err != nil {
		return GroupResult{}, false, err
	}

	var sum uint32
	for i := uint16(0); i < cc.AverageCount; i++ {
		if !d.sleep(d.samplePeriod) {
			return GroupResult{}, false, nil
		}
		code, err := d.readCode(d.potChannel)
		if err != nil {
			return GroupResult{}, false, err
		}
		sum += uint32(code)
	}

	code := AverageCodes(sum, cc.RightShift)

	return GroupResult{
		Ref:   ref,
		Raw:   FormatCode(code, cc.Alignment, cc.SignExtension),
		Cause: CauseGroupDone,
	}, true, nil
}

// readCode reads one 12-bit code from a converter channel.
// Frame: start bit, single-ended mode, 3 channel bits, then 12 data bits.
func (d *SPI) readCode(channel int) (uint16, error) {
	tx := []byte{0x06 | byte(channel>>2), byte(channel << 6), 0}
	rx := make([]byte, 3)
	if err := d.conn.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("failed to read channel %d: %w", channel, err)
	}

	return uint16(rx[1]&0x0F)<<8 | uint16(rx[2]), nil
}

// sleep waits for d unless the device is closed first.
func (d *SPI) sleep(dur time.Duration) bool {
	if dur <= 0 {
		return true
	}
	select {
	case <-time.After(dur):
		return true
	case <-d.ctx.Done():
		return false
	}
}
