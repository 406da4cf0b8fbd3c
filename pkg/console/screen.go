package console

import (
	"fmt"
	"io"
	"strings"
)

// banner is the demo greeting, key help included.
const banner = "****************** Code Example: SAR ADC Various Processing of Conversion Result ******************\r\n" +
	"Press 'a' key to decrease the average count:\r\n" +
	"    [256 -> 128 -> 64 -> 32 -> 16 -> 8 -> 4 -> 2 -> 1]\r\n" +
	"Press 'd' key to increase the average count:\r\n" +
	"    [1 -> 2 -> 4 -> 8 -> 16 -> 32 -> 64 -> 128 -> 256]\r\n" +
	"Press 's' key to change the output format:\r\n" +
	"    [(Unsigned/Right Aligned) -> (Signed/Right Aligned) -> (Left Aligned) -> (Unsigned/Right Aligned)...]\r\n" +
	"Press 'q' key to quit.\r\n" +
	"\n"

// View is one rendered status update.
type View struct {
	Format       string
	AverageCount int
	Raw          uint16
	Millivolts   uint32
	VoltageValid bool
	Trace        string // optional history line, empty hides it
}

// Screen repaints a fixed status block in place using ANSI cursor motion.
type Screen struct {
	w     io.Writer
	lines int // status lines painted by the last update
}

// NewScreen creates a screen writing to w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Init clears the terminal, prints the banner and hides the cursor.
func (s *Screen) Init() error {
	_, err := fmt.Fprint(s.w, ClearScreen, banner, HideCursor)
	return err
}

// Status repaints the status block and leaves the cursor back at its start
// so the next update overwrites it. Every line is erased to the end so a
// shorter value leaves no stale characters behind.
func (s *Screen) Status(v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Output format: %s%s\r\n", v.Format, eraseLine)
	fmt.Fprintf(&b, "Average count: %d%s\r\n", v.AverageCount, eraseLine)
	fmt.Fprintf(&b, "Conversion result raw value: 0x%04X%s\r\n", v.Raw, eraseLine)
	if v.VoltageValid {
		fmt.Fprintf(&b, "Potentiometer voltage: %dmV%s\r\n", v.Millivolts, eraseLine)
	} else {
		fmt.Fprintf(&b, "Potentiometer voltage: ----mV%s\r\n", eraseLine)
	}

	lines := 4
	if v.Trace != "" {
		fmt.Fprintf(&b, "%s%s\r\n", v.Trace, eraseLine)
		lines = 5
	}

	b.WriteString(CursorUp(lines))
	s.lines = lines

	_, err := io.WriteString(s.w, b.String())
	return err
}

// Close moves the cursor below the status block and makes it visible again.
func (s *Screen) Close() error {
	var b strings.Builder
	if s.lines > 0 {
		b.WriteString(CursorDown(s.lines))
	}
	b.WriteString(ShowCursor)

	_, err := io.WriteString(s.w, b.String())
	return err
}
