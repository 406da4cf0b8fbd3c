package sar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/result"
)

func TestChannelConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ChannelConfig
		wantErr bool
	}{
		{
			name: "single conversion",
			cfg:  ChannelConfig{AverageCount: 1, RightShift: 0},
		},
		{
			name: "deepest averaging",
			cfg:  ChannelConfig{AverageCount: 256, RightShift: 8},
		},
		{
			name: "mid ladder",
			cfg:  ChannelConfig{AverageCount: 16, RightShift: 4},
		},
		{
			name:    "zero count",
			cfg:     ChannelConfig{AverageCount: 0, RightShift: 0},
			wantErr: true,
		},
		{
			name:    "not a power of two",
			cfg:     ChannelConfig{AverageCount: 3, RightShift: 1},
			wantErr: true,
		},
		{
			name:    "count above maximum",
			cfg:     ChannelConfig{AverageCount: 512, RightShift: 9},
			wantErr: true,
		},
		{
			name:    "shift does not match count",
			cfg:     ChannelConfig{AverageCount: 4, RightShift: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAverageCodes(t *testing.T) {
	tests := []struct {
		name  string
		sum   uint32
		shift uint8
		want  uint16
	}{
		{name: "single conversion", sum: 2048, shift: 0, want: 2048},
		{name: "four conversions", sum: 4 * 1000, shift: 2, want: 1000},
		{name: "remainder truncates", sum: 4*1000 + 3, shift: 2, want: 1000},
		{name: "full scale times 256", sum: 256 * 0xFFF, shift: 8, want: 0xFFF},
		{name: "zero", sum: 0, shift: 8, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageCodes(tt.sum, tt.shift))
		})
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name string
		code uint16
		a    Alignment
		s    SignExtension
		want uint16
	}{
		{name: "unsigned right is identity", code: 0xABC, a: AlignRight, s: SignUnsigned, want: 0xABC},
		{name: "unsigned right full scale", code: 0xFFF, a: AlignRight, s: SignUnsigned, want: 0xFFF},
		{name: "signed right zero", code: 0x000, a: AlignRight, s: SignSigned, want: 0xF800},
		{name: "signed right below mid scale", code: 0x7FF, a: AlignRight, s: SignSigned, want: 0xFFFF},
		{name: "signed right mid scale", code: 0x800, a: AlignRight, s: SignSigned, want: 0x0000},
		{name: "signed right full scale", code: 0xFFF, a: AlignRight, s: SignSigned, want: 0x07FF},
		{name: "left zero", code: 0x000, a: AlignLeft, s: SignUnsigned, want: 0x0000},
		{name: "left full scale", code: 0xFFF, a: AlignLeft, s: SignUnsigned, want: 0xFFF0},
		{name: "left mid scale", code: 0x800, a: AlignLeft, s: SignUnsigned, want: 0x8000},
		{name: "upper bits masked first", code: 0xF123, a: AlignRight, s: SignUnsigned, want: 0x123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCode(tt.code, tt.a, tt.s))
		})
	}
}

// Post-processing on the host must recover the original right aligned
// unsigned code from every presentation the result register can produce.
func TestFormatCodeTransformRoundTrip(t *testing.T) {
	combos := []struct {
		format result.Format
		a      Alignment
		s      SignExtension
	}{
		{format: result.FormatUnsignedRight, a: AlignRight, s: SignUnsigned},
		{format: result.FormatSignedRight, a: AlignRight, s: SignSigned},
		{format: result.FormatLeft, a: AlignLeft, s: SignUnsigned},
	}

	for _, combo := range combos {
		for code := uint16(0); code <= MaxCode; code++ {
			raw := FormatCode(code, combo.a, combo.s)
			got := result.Transform(raw, combo.format)
			require.Equal(t, code, got, "format %v code 0x%03X", combo.format, code)
		}
	}
}

func TestAlignmentString(t *testing.T) {
	assert.Equal(t, "right", AlignRight.String())
	assert.Equal(t, "left", AlignLeft.String())
}

func TestSignExtensionString(t *testing.T) {
	assert.Equal(t, "unsigned", SignUnsigned.String())
	assert.Equal(t, "signed", SignSigned.String())
}
