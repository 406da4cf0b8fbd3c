package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "mock", cfg.Device)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 0, cfg.SPI.PotChannel)
	assert.Equal(t, 1, cfg.SPI.RefChannel)
	assert.Equal(t, uint32(900), cfg.ADC.BandgapMV)
	assert.Equal(t, "unsigned-right", cfg.ADC.Format)
	assert.Equal(t, 1, cfg.ADC.AverageCount)
	assert.True(t, cfg.Display.Trace)
	assert.Equal(t, 48, cfg.Display.TraceWidth)
	assert.Equal(t, uint16(1117), cfg.Mock.RefCode)
	assert.Equal(t, 20*time.Second, cfg.Mock.WanderPeriod)
	assert.Equal(t, 15*time.Millisecond, cfg.Mock.ConversionDelay)
	assert.Equal(t, 16, cfg.Mock.Buffer)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "mock", cfg.Device)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
device: serial

serial:
  port: "/dev/ttyACM0"
  baud: 230400

spi:
  port: "SPI0.0"
  pot_channel: 2
  ref_channel: 3
  sample_period: 2ms

adc:
  bandgap_mv: 1200
  format: signed-right
  average_count: 32

display:
  trace: false
  trace_width: 64

mock:
  vref_mv: 5000
  pot_mv: 2500
  ref_code: 983
  wander_period: 5s
  conversion_delay: 1ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "serial", cfg.Device)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 230400, cfg.Serial.Baud)
	assert.Equal(t, "SPI0.0", cfg.SPI.Port)
	assert.Equal(t, 2, cfg.SPI.PotChannel)
	assert.Equal(t, 3, cfg.SPI.RefChannel)
	assert.Equal(t, 2*time.Millisecond, cfg.SPI.SamplePeriod)
	assert.Equal(t, uint32(1200), cfg.ADC.BandgapMV)
	assert.Equal(t, "signed-right", cfg.ADC.Format)
	assert.Equal(t, 32, cfg.ADC.AverageCount)
	assert.False(t, cfg.Display.Trace)
	assert.Equal(t, 64, cfg.Display.TraceWidth)
	assert.Equal(t, float64(5000), cfg.Mock.VRefMV)
	assert.Equal(t, float64(2500), cfg.Mock.PotMV)
	assert.Equal(t, uint16(983), cfg.Mock.RefCode)
	assert.Equal(t, 5*time.Second, cfg.Mock.WanderPeriod)
	assert.Equal(t, time.Millisecond, cfg.Mock.ConversionDelay)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, "mock", cfg.Device)                     // default
	assert.Equal(t, 115200, cfg.Serial.Baud)                // default
	assert.Equal(t, uint32(900), cfg.ADC.BandgapMV)         // default
	assert.Equal(t, "unsigned-right", cfg.ADC.Format)       // default
	assert.True(t, cfg.Display.Trace)                       // default
	assert.Equal(t, uint16(1117), cfg.Mock.RefCode)         // default
	assert.Equal(t, time.Millisecond, cfg.SPI.SamplePeriod) // default
	assert.Equal(t, 16, cfg.Mock.Buffer)                    // default
}

// An explicit false must survive loading even though the default is true.
func TestLoad_TraceDisabled(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("display:\n  trace: false\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.False(t, cfg.Display.Trace)
	assert.Equal(t, 48, cfg.Display.TraceWidth) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Device = "serial"
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.ADC.AverageCount = 64

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "serial", loaded.Device)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 64, loaded.ADC.AverageCount)
}
