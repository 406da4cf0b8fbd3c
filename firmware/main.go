//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcPot machine.ADC
	adcRef machine.ADC
	uart   = machine.UART0

	// Channel configuration from the last C command
	averageCount uint16 = 1
	rightShift   uint8
	alignLeft    bool
	signExtend   bool

	// Set by a T command, cleared when the group runs. Triggers arriving
	// while a group is converting collapse into a single pending one.
	triggerPending bool

	// Serial buffer for reading command lines
	serialBuffer [24]byte
	serialPos    int
	serialDrop   bool
)

func main() {
	// Configure ADC pins and set up ADCs with 12-bit resolution
	PIN_POT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_REF.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcPot = machine.ADC{Pin: PIN_POT}
	adcRef = machine.ADC{Pin: PIN_REF}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcPot.Configure(adcConfig)
	adcRef.Configure(adcConfig)

	// Configure UART for the command protocol
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Main loop
	for {
		// Check for serial input (non-blocking)
		processSerial()

		if triggerPending {
			triggerPending = false
			convertGroup()
		}

		// Small delay to prevent tight loop
		time.Sleep(100 * time.Microsecond)
	}
}

// convertGroup samples the reference once, accumulates averageCount
// potentiometer samples and prints one result line.
func convertGroup() {
	ref := readCode(adcRef)

	var sum uint32
	for i := uint16(0); i < averageCount; i++ {
		if i > 0 {
			time.Sleep(SAMPLE_INTERVAL_MS * time.Millisecond)
		}
		sum += uint32(readCode(adcPot))
	}
	raw := formatCode(uint16(sum >> rightShift))

	// Output format: "R,<cause>,<ref>,<raw>\n"
	// Example: "R,1,1117,2048\n"
	print("R,")
	print(CAUSE_GROUP_DONE)
	print(",")
	print(ref)
	print(",")
	print(raw)
	print("\n")
}

// readCode reads one sample as a right aligned 12-bit code. Get scales
// results to 16 bits regardless of the configured resolution.
func readCode(adc machine.ADC) uint16 {
	return adc.Get() >> (16 - ADC_RESOLUTION)
}

// formatCode applies the configured alignment and sign extension the way
// the SAR result register would.
func formatCode(code uint16) uint16 {
	code &= 0x0FFF
	if alignLeft {
		return code << 4
	}
	if signExtend {
		return uint16(int16(code) - 0x800)
	}
	return code
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 0 && !serialDrop {
				processCommand(serialBuffer[:serialPos])
			}
			// Reset buffer regardless of length
			serialPos = 0
			serialDrop = false
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			// Line too long - drop it wholesale
			serialDrop = true
		}
	}
}

// processCommand handles one command line: "T" triggers a conversion group,
// "C,<count>,<shift>,<R|L>,<U|S>" reconfigures the channel. Malformed
// commands are ignored.
func processCommand(line []byte) {
	switch line[0] {
	case 'T':
		if len(line) == 1 {
			triggerPending = true
		}
	case 'C':
		applyConfigure(line)
	}
}

func applyConfigure(line []byte) {
	pos := 1

	count, ok := parseField(line, &pos)
	if !ok || count == 0 || count > MAX_AVERAGE_COUNT || count&(count-1) != 0 {
		return
	}
	shift, ok := parseField(line, &pos)
	if !ok || uint32(1)<<shift != count {
		return
	}
	align, ok := parseLetter(line, &pos)
	if !ok || (align != 'R' && align != 'L') {
		return
	}
	sign, ok := parseLetter(line, &pos)
	if !ok || (sign != 'U' && sign != 'S') {
		return
	}
	if pos != len(line) {
		return
	}

	averageCount = uint16(count)
	rightShift = uint8(shift)
	alignLeft = align == 'L'
	signExtend = sign == 'S'
}

// parseField consumes ",<decimal>" at *pos.
func parseField(line []byte, pos *int) (uint32, bool) {
	i := *pos
	if i >= len(line) || line[i] != ',' {
		return 0, false
	}
	i++

	start := i
	var value uint32
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		value = value*10 + uint32(line[i]-'0')
		if value > 0xFFFF {
			return 0, false
		}
		i++
	}
	if i == start {
		return 0, false
	}
	*pos = i
	return value, true
}

// parseLetter consumes ",<letter>" at *pos.
func parseLetter(line []byte, pos *int) (byte, bool) {
	i := *pos
	if i+1 >= len(line) || line[i] != ',' {
		return 0, false
	}
	*pos = i + 2
	return line[i+1], true
}
