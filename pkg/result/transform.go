package result

import "errors"

const (
	// BandGapMV is the nominal band gap reference voltage in millivolts.
	BandGapMV = 900

	// codeMask keeps the low 12 bits of a conversion result.
	codeMask = 0xFFF
	// midScale is the offset between offset-binary and sign-extended codes.
	midScale = 0x800
)

// ErrZeroReference reports a band gap reference code of zero, which would
// make the voltage conversion divide by zero.
var ErrZeroReference = errors.New("band gap reference code is zero")

// Transform converts a raw conversion result delivered in format f into the
// right aligned unsigned code the voltage conversion expects.
//
// Unsigned right aligned results are already in that shape. Signed right
// aligned results are offset-binary remapped: the sign bit (bit 11) is
// folded back so that mid-scale becomes zero. Left aligned results are
// shifted back down by four bits.
func Transform(raw uint16, f Format) uint16 {
	switch f {
	case FormatSignedRight:
		code := raw & codeMask
		if code&midScale != 0 {
			return code - midScale
		}
		return code + midScale
	case FormatLeft:
		return (raw >> 4) & codeMask
	default:
		return raw
	}
}

// Millivolts converts a right aligned unsigned code into millivolts using
// the measured band gap channel code as the reference.
func Millivolts(code, ref uint16, bandgapMV uint32) (uint32, error) {
	if ref == 0 {
		return 0, ErrZeroReference
	}
	return uint32(code) * bandgapMV / uint32(ref), nil
}
