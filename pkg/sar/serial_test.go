package sar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    GroupResult
		wantErr bool
	}{
		{
			name: "valid group done",
			line: "R,1,1117,2048",
			want: GroupResult{
				Ref:   1117,
				Raw:   2048,
				Cause: CauseGroupDone,
			},
			wantErr: false,
		},
		{
			name: "valid with overflow flagged",
			line: "R,3,1117,2048",
			want: GroupResult{
				Ref:   1117,
				Raw:   2048,
				Cause: CauseGroupDone | CauseGroupOverflow,
			},
			wantErr: false,
		},
		{
			name: "valid left aligned full scale",
			line: "R,1,1117,65520",
			want: GroupResult{
				Ref:   1117,
				Raw:   0xFFF0,
				Cause: CauseGroupDone,
			},
			wantErr: false,
		},
		{
			name: "valid zero codes",
			line: "R,1,1,0",
			want: GroupResult{
				Ref:   1,
				Raw:   0,
				Cause: CauseGroupDone,
			},
			wantErr: false,
		},
		{
			name:    "invalid - wrong number of fields",
			line:    "R,1,1117",
			wantErr: true,
		},
		{
			name:    "invalid - too many fields",
			line:    "R,1,1117,2048,extra",
			wantErr: true,
		},
		{
			name:    "invalid - wrong record type",
			line:    "X,1,1117,2048",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric cause",
			line:    "R,done,1117,2048",
			wantErr: true,
		},
		{
			name:    "invalid - non-numeric reference",
			line:    "R,1,ref,2048",
			wantErr: true,
		},
		{
			name:    "invalid - reference out of range",
			line:    "R,1,4096,2048",
			wantErr: true,
		},
		{
			name:    "invalid - result too wide",
			line:    "R,1,1117,70000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResult(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEncodeConfigure(t *testing.T) {
	tests := []struct {
		name string
		cfg  ChannelConfig
		want string
	}{
		{
			name: "single unsigned right",
			cfg:  ChannelConfig{AverageCount: 1, RightShift: 0, Alignment: AlignRight, SignExtension: SignUnsigned},
			want: "C,1,0,R,U\n",
		},
		{
			name: "averaged signed right",
			cfg:  ChannelConfig{AverageCount: 4, RightShift: 2, Alignment: AlignRight, SignExtension: SignSigned},
			want: "C,4,2,R,S\n",
		},
		{
			name: "deepest left aligned",
			cfg:  ChannelConfig{AverageCount: 256, RightShift: 8, Alignment: AlignLeft, SignExtension: SignUnsigned},
			want: "C,256,8,L,U\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encodeConfigure(tt.cfg))
		})
	}
}

func TestNewSerial(t *testing.T) {
	dev := NewSerial("COM3", 115200, 32)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 32, dev.bufSize)
	assert.NotNil(t, dev.results)
	assert.False(t, dev.IsConnected())
}

func TestNewSerial_Defaults(t *testing.T) {
	dev := NewSerial("COM3", 0, 0)
	assert.NotNil(t, dev)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_CommandsRequireConnection(t *testing.T) {
	dev := NewSerial("COM3", 0, 0)

	err := dev.Configure(ChannelConfig{AverageCount: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")

	err = dev.Trigger()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestSerial_ConfigureRejectsInvalid(t *testing.T) {
	dev := NewSerial("COM3", 0, 0)

	// Validation runs before the connection check
	err := dev.Configure(ChannelConfig{AverageCount: 3, RightShift: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "power of two")
}
