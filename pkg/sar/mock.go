package sar

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/config"
)

// Mock simulates the converter and the demo board wiring: a potentiometer
// wandering across the rail on the group channel and the band gap reference
// on a second channel.
type Mock struct {
	cfg *config.MockConfig

	results chan GroupResult
	trigger chan struct{}
	done    chan struct{}

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	channel   ChannelConfig

	start time.Time
}

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}

	bufSize := cfg.Buffer
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		results: make(chan GroupResult, bufSize),
		trigger: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		channel: ChannelConfig{AverageCount: 1},
	}
}

// Connect simulates powering up the converter.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.start = time.Now()
	m.done = make(chan struct{})

	// Start serving conversion triggers
	go m.convert()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	<-m.done
	m.connected = false

	return nil
}

// Results returns the channel delivering conversion groups.
func (m *Mock) Results() <-chan GroupResult {
	return m.results
}

// Configure programs the potentiometer channel (simulated).
func (m *Mock) Configure(cfg ChannelConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	m.channel = cfg

	return nil
}

// Trigger starts one conversion group. A trigger arriving while a group is
// already converting is absorbed, like a software trigger on busy hardware.
func (m *Mock) Trigger() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}

	select {
	case m.trigger <- struct{}{}:
	default:
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// convert serves conversion triggers until the device is closed.
func (m *Mock) convert() {
	defer close(m.done)
	defer close(m.results)

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.trigger:
			res, ok := m.convertGroup()
			if !ok {
				// Closed mid-group
				return
			}

			select {
			case m.results <- res:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Results channel full, dropping conversion group")
			}
		}
	}
}

// convertGroup runs one conversion group against the current channel
// configuration.
func (m *Mock) convertGroup() (GroupResult, bool) {
	m.mu.RLock()
	cc := m.channel
	m.mu.RUnlock()

	if !m.sleep(m.cfg.ConversionDelay) {
		return GroupResult{}, false
	}

	var sum uint32
	for i := uint16(0); i < cc.AverageCount; i++ {
		if !m.sleep(m.cfg.SamplePeriod) {
			return GroupResult{}, false
		}
		sum += uint32(m.potCode(time.Now()))
	}

	code := AverageCodes(sum, cc.RightShift)

	return GroupResult{
		Ref:   m.cfg.RefCode,
		Raw:   FormatCode(code, cc.Alignment, cc.SignExtension),
		Cause: CauseGroupDone,
	}, true
}

// sleep waits for d unless the device is closed first.
func (m *Mock) sleep(d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-m.ctx.Done():
		return false
	}
}

// potCode synthesizes one potentiometer sample: a slow sweep across the
// rail plus a little noise, quantized to a 12-bit code.
func (m *Mock) potCode(now time.Time) uint16 {
	elapsed := float32(now.Sub(m.start).Seconds())

	period := float32(m.cfg.WanderPeriod.Seconds())
	mv := float32(m.cfg.PotMV) + float32(m.cfg.WanderMV)*math32.Sin(2*math32.Pi*elapsed/period)

	// Add noise
	noise := (math32.Sin(elapsed*937) + math32.Cos(elapsed*1213)) *
		float32(m.cfg.NoiseMV) * 0.5
	mv += noise

	// Convert to a conversion code (12-bit, 0-4095)
	val := mv / float32(m.cfg.VRefMV) * MaxCode
	if val < 0 {
		val = 0
	} else if val > MaxCode {
		val = MaxCode
	}

	return uint16(val)
}
