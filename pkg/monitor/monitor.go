package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/config"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/console"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/result"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/sar"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/scope"
)

// keyCtrlC is what raw mode delivers for Ctrl-C.
const keyCtrlC = 0x03

// ErrDeviceStopped is returned when the device closes its results channel
// while the monitor still expects conversion groups.
var ErrDeviceStopped = errors.New("device stopped delivering results")

// Settings is the user-selectable processing state.
type Settings struct {
	Format       result.Format
	AverageCount result.AverageCount
}

// Monitor owns the conversion loop: it programs the device, consumes
// completed conversion groups, renders the status block and starts the next
// group.
type Monitor struct {
	dev        sar.Device
	screen     *console.Screen
	trace      *scope.Trace // nil disables the history line
	traceWidth int
	bandgapMV  uint32

	pending    Settings // selected by key presses, takes effect next group
	active     Settings // what the converter is programmed with
	configured bool     // the converter has been programmed at least once
}

// New creates a monitor driving dev. The initial settings, band gap voltage
// and display options come from cfg.
func New(dev sar.Device, screen *console.Screen, cfg *config.Config) (*Monitor, error) {
	format, err := result.ParseFormat(cfg.ADC.Format)
	if err != nil {
		return nil, err
	}

	count := result.AverageCount(cfg.ADC.AverageCount)
	if !count.Valid() {
		return nil, fmt.Errorf("average count %d is not a power of two in [%d,%d]",
			cfg.ADC.AverageCount, result.MinAverageCount, result.MaxAverageCount)
	}

	m := &Monitor{
		dev:        dev,
		screen:     screen,
		traceWidth: cfg.Display.TraceWidth,
		bandgapMV:  cfg.ADC.BandgapMV,
		pending: Settings{
			Format:       format,
			AverageCount: count,
		},
	}
	if cfg.Display.Trace {
		m.trace = scope.NewTrace(scope.DefaultDepth)
	}

	return m, nil
}

// Apply programs the device with s, records it as active and triggers the
// next conversion group. Reprogramming is skipped when s already matches
// the active configuration; the trigger always fires.
func (m *Monitor) Apply(s Settings) error {
	if !m.configured || s != m.active {
		if err := m.dev.Configure(channelConfig(s)); err != nil {
			return fmt.Errorf("failed to configure channel: %w", err)
		}
	}
	m.active = s
	m.configured = true

	if err := m.dev.Trigger(); err != nil {
		return fmt.Errorf("failed to trigger conversion: %w", err)
	}

	return nil
}

// HandleKey updates the pending settings for one key press. Unknown keys
// are ignored. The new settings take effect when the conversion group in
// flight completes.
func (m *Monitor) HandleKey(key byte) {
	switch key {
	case 'a':
		m.pending.AverageCount = m.pending.AverageCount.Halve()
	case 'd':
		m.pending.AverageCount = m.pending.AverageCount.Double()
	case 's':
		m.pending.Format = m.pending.Format.Next()
	}
}

// HandleResult renders one completed conversion group and starts the next
// one with the settings pending at this moment. The raw value is
// interpreted with the settings the group was converted under, never the
// pending ones.
func (m *Monitor) HandleResult(r sar.GroupResult) error {
	if r.Cause != sar.CauseGroupDone {
		// Overflowed or cancelled groups are not processed
		return nil
	}

	view := console.View{
		Format:       m.active.Format.String(),
		AverageCount: int(m.active.AverageCount),
		Raw:          r.Raw,
	}

	code := result.Transform(r.Raw, m.active.Format)
	mv, err := result.Millivolts(code, r.Ref, m.bandgapMV)
	if err == nil {
		view.Millivolts = mv
		view.VoltageValid = true
		if m.trace != nil {
			m.trace.Push(mv)
		}
	}
	if m.trace != nil {
		view.Trace = m.trace.Render(m.traceWidth)
	}

	if err := m.screen.Status(view); err != nil {
		return fmt.Errorf("failed to update display: %w", err)
	}

	return m.Apply(m.pending)
}

// Run paints the screen, programs the initial settings and then serves
// results and key presses until the context is cancelled, a quit key
// arrives or the device stops. Everything runs on the calling goroutine, so
// a result is always fully processed before the next key press is looked
// at.
func (m *Monitor) Run(ctx context.Context, keys <-chan byte) error {
	if err := m.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}

	if err := m.Apply(m.pending); err != nil {
		return err
	}

	results := m.dev.Results()

	for {
		select {
		case <-ctx.Done():
			return nil

		case key, ok := <-keys:
			if !ok {
				// Key source closed; keep serving results
				keys = nil
				continue
			}
			if key == 'q' || key == keyCtrlC {
				return nil
			}
			m.HandleKey(key)

		case r, ok := <-results:
			if !ok {
				return ErrDeviceStopped
			}
			if err := m.HandleResult(r); err != nil {
				return err
			}
		}
	}
}

// channelConfig maps display settings to the converter channel programming.
func channelConfig(s Settings) sar.ChannelConfig {
	cc := sar.ChannelConfig{
		AverageCount: uint16(s.AverageCount),
		RightShift:   s.AverageCount.Shift(),
	}

	switch s.Format {
	case result.FormatSignedRight:
		cc.Alignment = sar.AlignRight
		cc.SignExtension = sar.SignSigned
	case result.FormatLeft:
		cc.Alignment = sar.AlignLeft
		cc.SignExtension = sar.SignUnsigned
	default:
		cc.Alignment = sar.AlignRight
		cc.SignExtension = sar.SignUnsigned
	}

	return cc
}
