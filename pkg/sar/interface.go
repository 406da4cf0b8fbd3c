package sar

// Device is a SAR converter sampling the band gap reference and the
// potentiometer channel as one group (real or mocked).
type Device interface {
	Connect() error
	Close() error
	// Configure programs the potentiometer channel. It does not start a
	// conversion.
	Configure(cfg ChannelConfig) error
	// Trigger starts a single conversion group.
	Trigger() error
	// Results delivers completed conversion groups.
	Results() <-chan GroupResult
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

// Ensure SPI implements Device.
var _ Device = (*SPI)(nil)
