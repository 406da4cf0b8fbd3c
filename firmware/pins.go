//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1 // Delay between averaged potentiometer samples in milliseconds

	// Conversion group limits
	MAX_AVERAGE_COUNT = 256 // Highest supported averaging depth (power of two)

	// Result interrupt causes reported on the wire
	CAUSE_GROUP_DONE = 1

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// ADC pins
	PIN_POT = machine.A1 // Potentiometer wiper
	PIN_REF = machine.A2 // Reference divider tap (stands in for the internal bandgap)

	// Serial configuration
	// Baud rate calculation: Result format "R,<cause>,<ref>,<raw>\n"
	// Example: "R,1,4095,65535\n" = ~16 bytes max per line
	// Host retriggers per result, worst case ~500 groups/sec * 16 bytes/line = 8,000 bytes/sec
	// UART 8N1: 10 bits/byte = 80,000 baud minimum
	// 115200 provides ~1.4x headroom (11,520 bytes/sec max / 8,000 bytes/sec required)
	UART_BAUD_RATE = 115200
)
