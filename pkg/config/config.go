package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Device  string        `yaml:"device"` // mock, serial or spi
	Serial  SerialConfig  `yaml:"serial"`
	SPI     SPIConfig     `yaml:"spi"`
	ADC     ADCConfig     `yaml:"adc"`
	Display DisplayConfig `yaml:"display"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// SPIConfig contains SPI converter configuration.
type SPIConfig struct {
	Port         string        `yaml:"port"`          // empty selects the first available port
	PotChannel   int           `yaml:"pot_channel"`   // converter channel wired to the potentiometer
	RefChannel   int           `yaml:"ref_channel"`   // converter channel wired to the reference
	SamplePeriod time.Duration `yaml:"sample_period"` // pacing between accumulator reads
}

// ADCConfig contains conversion parameters.
type ADCConfig struct {
	BandgapMV    uint32 `yaml:"bandgap_mv"`    // band gap reference voltage in millivolts
	Format       string `yaml:"format"`        // unsigned-right, signed-right or left
	AverageCount int    `yaml:"average_count"` // initial averaging, power of two in [1,256]
}

// DisplayConfig contains terminal display configuration.
type DisplayConfig struct {
	Trace      bool `yaml:"trace"`       // show the voltage history line
	TraceWidth int  `yaml:"trace_width"` // sparkline width in characters
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	VRefMV          float64       `yaml:"vref_mv"`          // full scale voltage (mV)
	PotMV           float64       `yaml:"pot_mv"`           // potentiometer center voltage (mV)
	WanderMV        float64       `yaml:"wander_mv"`        // sweep amplitude around the center (mV)
	NoiseMV         float64       `yaml:"noise_mv"`         // noise level (mV)
	RefCode         uint16        `yaml:"ref_code"`         // band gap channel code
	WanderPeriod    time.Duration `yaml:"wander_period"`    // time for one full sweep
	SamplePeriod    time.Duration `yaml:"sample_period"`    // time per accumulated sample
	ConversionDelay time.Duration `yaml:"conversion_delay"` // fixed time per conversion group
	Buffer          int           `yaml:"buffer"`           // results channel buffer size
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Device: "mock",
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			Baud: 115200,
		},
		SPI: SPIConfig{
			Port:         "",
			PotChannel:   0,
			RefChannel:   1,
			SamplePeriod: time.Millisecond,
		},
		ADC: ADCConfig{
			BandgapMV:    900,
			Format:       "unsigned-right",
			AverageCount: 1,
		},
		Display: DisplayConfig{
			Trace:      true,
			TraceWidth: 48,
		},
		Mock: MockConfig{
			VRefMV:          3300,
			PotMV:           1650,
			WanderMV:        1200,
			NoiseMV:         8,
			RefCode:         1117, // 900mV against a 3300mV full scale
			WanderPeriod:    20 * time.Second,
			SamplePeriod:    time.Millisecond,
			ConversionDelay: 15 * time.Millisecond,
			Buffer:          16,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Device == "" {
		c.Device = def.Device
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.SPI.SamplePeriod == 0 {
		c.SPI.SamplePeriod = def.SPI.SamplePeriod
	}

	if c.ADC.BandgapMV == 0 {
		c.ADC.BandgapMV = def.ADC.BandgapMV
	}
	if c.ADC.Format == "" {
		c.ADC.Format = def.ADC.Format
	}
	if c.ADC.AverageCount == 0 {
		c.ADC.AverageCount = def.ADC.AverageCount
	}

	if c.Display.TraceWidth == 0 {
		c.Display.TraceWidth = def.Display.TraceWidth
	}

	if c.Mock.VRefMV == 0 {
		c.Mock.VRefMV = def.Mock.VRefMV
	}
	if c.Mock.PotMV == 0 {
		c.Mock.PotMV = def.Mock.PotMV
	}
	if c.Mock.WanderMV == 0 {
		c.Mock.WanderMV = def.Mock.WanderMV
	}
	if c.Mock.RefCode == 0 {
		c.Mock.RefCode = def.Mock.RefCode
	}
	if c.Mock.WanderPeriod == 0 {
		c.Mock.WanderPeriod = def.Mock.WanderPeriod
	}
	if c.Mock.SamplePeriod == 0 {
		c.Mock.SamplePeriod = def.Mock.SamplePeriod
	}
	if c.Mock.ConversionDelay == 0 {
		c.Mock.ConversionDelay = def.Mock.ConversionDelay
	}
	if c.Mock.Buffer == 0 {
		c.Mock.Buffer = def.Mock.Buffer
	}
}
