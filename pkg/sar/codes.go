package sar

import "fmt"

const (
	// ResolutionBits is the converter resolution.
	ResolutionBits = 12
	// MaxCode is the largest right aligned conversion code.
	MaxCode = 0xFFF

	// midScale is subtracted from a code when sign extension is enabled.
	midScale = 0x800
)

// Alignment selects where the 12-bit code sits in the 16-bit result field.
type Alignment uint8

const (
	AlignRight Alignment = iota
	AlignLeft
)

func (a Alignment) String() string {
	if a == AlignLeft {
		return "left"
	}
	return "right"
}

// SignExtension selects whether right aligned results are sign extended
// around mid-scale.
type SignExtension uint8

const (
	SignUnsigned SignExtension = iota
	SignSigned
)

func (s SignExtension) String() string {
	if s == SignSigned {
		return "signed"
	}
	return "unsigned"
}

// Cause is the bitmask of events that completed a conversion group.
type Cause uint32

const (
	// CauseGroupDone signals a fully converted group.
	CauseGroupDone Cause = 1 << iota
	// CauseGroupOverflow signals a result overwritten before it was read.
	CauseGroupOverflow
	// CauseGroupCancelled signals a group aborted by reconfiguration.
	CauseGroupCancelled
)

// ChannelConfig describes how the converter samples and formats the
// potentiometer channel.
type ChannelConfig struct {
	AverageCount  uint16 // conversions accumulated per result, power of two in [1,256]
	RightShift    uint8  // log2(AverageCount), divides the accumulated sum
	Alignment     Alignment
	SignExtension SignExtension
}

// Validate checks that the averaging fields describe a configuration the
// accumulator can realize.
func (c ChannelConfig) Validate() error {
	if c.AverageCount < 1 || c.AverageCount > 256 || c.AverageCount&(c.AverageCount-1) != 0 {
		return fmt.Errorf("average count %d is not a power of two in [1,256]", c.AverageCount)
	}
	if uint16(1)<<c.RightShift != c.AverageCount {
		return fmt.Errorf("right shift %d does not divide by average count %d", c.RightShift, c.AverageCount)
	}
	return nil
}

// GroupResult is one completed conversion group.
type GroupResult struct {
	Ref   uint16 // band gap reference code, always right aligned unsigned
	Raw   uint16 // potentiometer result as presented by the result register
	Cause Cause
}

// AverageCodes turns an accumulated sum of codes back into a single code.
func AverageCodes(sum uint32, rightShift uint8) uint16 {
	return uint16(sum >> rightShift)
}

// FormatCode presents a right aligned unsigned 12-bit code the way the
// result register would under the given alignment and sign extension.
func FormatCode(code uint16, a Alignment, s SignExtension) uint16 {
	code &= MaxCode
	if a == AlignLeft {
		return code << 4
	}
	if s == SignSigned {
		return uint16(int16(code) - midScale)
	}
	return code
}
