package result

import (
	"fmt"
	"strings"
)

// Format selects how the SAR hardware aligns and sign-extends a conversion
// result, and how the host post-processes it for display.
type Format int32

const (
	// FormatUnsignedRight keeps the 12-bit code right aligned and unsigned.
	FormatUnsignedRight Format = iota
	// FormatSignedRight sign-extends the code around mid-scale.
	FormatSignedRight
	// FormatLeft places the 12-bit code in the upper bits of the 16-bit result.
	FormatLeft

	formatCount
)

// Display names are padded to equal width so that switching to a shorter
// name fully overwrites the previous one on the terminal.
var formatNames = [formatCount]string{
	"Unsigned/Right Aligned",
	"Signed/Right Aligned  ",
	"Left Aligned          ",
}

func (f Format) String() string {
	if !f.Valid() {
		return "Unknown"
	}
	return formatNames[f]
}

// Next returns the format selected by the next press of the format key.
// The last format wraps around to the first.
func (f Format) Next() Format {
	n := f + 1
	if n >= formatCount {
		n = FormatUnsignedRight
	}
	return n
}

// Valid reports whether f is one of the defined formats.
func (f Format) Valid() bool {
	return f >= 0 && f < formatCount
}

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unsigned-right", "unsigned":
		return FormatUnsignedRight, nil
	case "signed-right", "signed":
		return FormatSignedRight, nil
	case "left":
		return FormatLeft, nil
	}
	return FormatUnsignedRight, fmt.Errorf("unknown output format %q (valid: unsigned-right, signed-right, left)", s)
}
