package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/config"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/console"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/monitor"
	"github.com/Infineon/mtb-example-ce240997-adc-processing-result/pkg/sar"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use the mocked device regardless of configuration")
		deviceFlag = flag.String("device", "", "Device backend override (mock, serial or spi)")
		formatFlag = flag.String("format", "", "Initial output format override (unsigned-right, signed-right or left)")
		countFlag  = flag.Int("count", 0, "Initial average count override (power of two, 1-256)")
		traceFlag  = flag.Bool("trace", true, "Show the voltage history line")
		portsFlag  = flag.Bool("ports", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *portsFlag {
		listPorts()
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if *mockFlag {
		cfg.Device = "mock"
	}
	if *formatFlag != "" {
		cfg.ADC.Format = *formatFlag
	}
	if *countFlag > 0 {
		cfg.ADC.AverageCount = *countFlag
	}
	flag.Visit(func(f *flag.Flag) {
		// Only an explicitly given -trace overrides the configuration
		if f.Name == "trace" {
			cfg.Display.Trace = *traceFlag
		}
	})

	dev, err := newDevice(cfg)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}

	if err := dev.Connect(); err != nil {
		log.Fatalf("Failed to initialize %s device: %v", cfg.Device, err)
	}

	screen := console.NewScreen(os.Stdout)
	mon, err := monitor.New(dev, screen, cfg)
	if err != nil {
		dev.Close()
		log.Fatalf("Failed to create monitor: %v", err)
	}

	// In raw mode Ctrl-C arrives as a key press; the signals cover SIGTERM
	// and the cooked-mode interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Raw mode delivers key presses byte by byte, without echo
	var restore func() error
	stdin := int(os.Stdin.Fd())
	if console.IsTerminal(stdin) {
		restore, err = console.Raw(stdin)
		if err != nil {
			stop()
			dev.Close()
			log.Fatalf("Failed to configure terminal: %v", err)
		}
	}

	keys := console.Keys(ctx, os.Stdin)

	runErr := mon.Run(ctx, keys)

	// Wind down in reverse order, the terminal last so errors print cleanly
	stop()
	if err := dev.Close(); err != nil {
		log.Printf("Error closing device: %v", err)
	}
	if err := screen.Close(); err != nil {
		log.Printf("Error releasing display: %v", err)
	}
	if restore != nil {
		if err := restore(); err != nil {
			log.Printf("Error restoring terminal: %v", err)
		}
	}

	if runErr != nil {
		log.Fatalf("Monitor stopped: %v", runErr)
	}
}

// newDevice builds the configured device backend.
func newDevice(cfg *config.Config) (sar.Device, error) {
	switch strings.ToLower(cfg.Device) {
	case "mock":
		return sar.NewMock(&cfg.Mock), nil
	case "serial":
		return sar.NewSerial(cfg.Serial.Port, cfg.Serial.Baud, 0), nil
	case "spi":
		return sar.NewSPI(cfg.SPI.Port, cfg.SPI.PotChannel, cfg.SPI.RefChannel, cfg.SPI.SamplePeriod, 0), nil
	}
	return nil, fmt.Errorf("unknown device %q (valid: mock, serial, spi)", cfg.Device)
}

// listPorts prints the available serial ports.
func listPorts() {
	ports, err := sar.Ports()
	if err != nil {
		log.Fatalf("Failed to list serial ports: %v", err)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, port := range ports {
		fmt.Println(port)
	}
}
