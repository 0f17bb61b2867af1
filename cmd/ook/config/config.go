package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"ookmodem/pkg/device"
	"ookmodem/pkg/layers"
	"ookmodem/pkg/modem"
)

const (
	DeviceFile     = "file"
	DeviceLoopback = "loopback"
)

type Config struct {
	Device struct {
		Kind       string  `yaml:"kind"`
		Input      string  `yaml:"input"`
		Output     string  `yaml:"output"`
		SampleRate float64 `yaml:"sample_rate"` // pacing, 0 runs as fast as possible
		BlockSize  int     `yaml:"block_size"`
		Noise      int     `yaml:"noise"`
		Seed       uint64  `yaml:"seed"`
	} `yaml:"device"`

	Modem struct {
		SampleRate   float64 `yaml:"sample_rate"`
		CarrierFreq  float64 `yaml:"carrier_freq"`
		Amplitude    float64 `yaml:"amplitude"`
		SymbolLength int     `yaml:"symbol_length"`
		PauseLength  int     `yaml:"pause_length"`
	} `yaml:"modem"`

	Receiver struct {
		Sync           string        `yaml:"sync"`
		MinThreshold   float64       `yaml:"min_threshold"`
		CaptureTime    time.Duration `yaml:"capture_time"`
		MinTokenLength int           `yaml:"min_token_length"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"receiver"`

	Capture struct {
		Pcap string `yaml:"pcap"` // strftime pattern, empty disables
	} `yaml:"capture"`

	Metrics struct {
		Listen string `yaml:"listen"` // e.g. ":9100", empty disables
	} `yaml:"metrics"`

	// message symbol -> codeword
	Encoding modem.CodeTable `yaml:"encoding"`
	// codeword -> message symbol, the inverse of Encoding when empty
	Decoding modem.CodeTable `yaml:"decoding"`
}

// Default returns the parameters of a 433.92 MHz HackRF capture at 2 MS/s
// with 350 us symbols.
func Default() *Config {
	var c Config
	c.Device.Kind = DeviceFile

	c.Modem.SampleRate = 2e6
	c.Modem.CarrierFreq = 200e3
	c.Modem.Amplitude = modem.DefaultAmplitude
	c.Modem.SymbolLength = 700
	c.Modem.PauseLength = 7000

	c.Receiver.Sync = "100000000"
	c.Receiver.MinThreshold = 1.5
	c.Receiver.CaptureTime = 500 * time.Millisecond
	c.Receiver.MinTokenLength = layers.DefaultMinTokenLength

	encoding, _ := modem.NewCodeTable(
		modem.Entry{Key: "1", Value: "1110"},
		modem.Entry{Key: "0", Value: "1000"},
	)
	c.Encoding = *encoding
	return &c
}

// LoadConfig reads filename over the defaults and validates the result.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Device.Kind == DeviceFile || c.Device.Kind == DeviceLoopback,
		"device.kind: unknown device %q", c.Device.Kind)
	check(c.Device.BlockSize >= 0 && c.Device.BlockSize%2 == 0,
		"device.block_size: %d is not a non-negative even number", c.Device.BlockSize)
	check(c.Device.Noise >= 0, "device.noise: %d is negative", c.Device.Noise)

	check(c.Modem.SampleRate > 0, "modem.sample_rate: must be positive")
	check(c.Modem.CarrierFreq > 0, "modem.carrier_freq: must be positive")
	check(c.Modem.SymbolLength > 0, "modem.symbol_length: must be positive")
	check(c.Modem.PauseLength >= 0, "modem.pause_length: must not be negative")

	check(c.Receiver.Sync != "" && strings.Trim(c.Receiver.Sync, "01") == "",
		"receiver.sync: %q is not a bit string", c.Receiver.Sync)
	check(c.Receiver.MinThreshold >= 0, "receiver.min_threshold: must not be negative")
	check(c.Receiver.CaptureTime > 0, "receiver.capture_time: must be positive")
	check(c.Receiver.MinTokenLength >= 0, "receiver.min_token_length: must not be negative")

	check(c.Encoding.Len() > 0, "encoding: table is empty")
	if c.Decoding.Len() > 0 {
		_, err := modem.NewDecodeTable(c.Decoding.Entries()...)
		check(err == nil, "decoding: %v", err)
	}

	return errors.Join(errs...)
}

// CaptureLength is the number of IQ values covering Receiver.CaptureTime.
func (c *Config) CaptureLength() int {
	samples := int(math.Round(c.Modem.SampleRate * c.Receiver.CaptureTime.Seconds()))
	return 2 * samples
}

// DecodeTable returns Decoding, or the inverse of Encoding when Decoding is
// empty.
func (c *Config) DecodeTable() (*modem.CodeTable, error) {
	if c.Decoding.Len() > 0 {
		return modem.NewDecodeTable(c.Decoding.Entries()...)
	}
	inverse, err := c.Encoding.Inverse()
	if err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}
	return modem.NewDecodeTable(inverse.Entries()...)
}

func CreateModulator(c *Config, logger *log.Logger) (*modem.Modulator, error) {
	return modem.NewModulator(modem.ModulatorConfig{
		SampleRate:   c.Modem.SampleRate,
		CarrierFreq:  c.Modem.CarrierFreq,
		Amplitude:    c.Modem.Amplitude,
		SymbolLength: c.Modem.SymbolLength,
		PauseLength:  c.Modem.PauseLength,
		Logger:       prefixed(logger, "modulation"),
	})
}

func CreateDemodulator(c *Config, logger *log.Logger) (*modem.Demodulator, error) {
	det, err := modem.NewDetector(modem.DetectorConfig{
		SampleRate:   c.Modem.SampleRate,
		SymbolLength: c.Modem.SymbolLength,
		MinThreshold: c.Receiver.MinThreshold,
		Logger:       prefixed(logger, "demodulation"),
	})
	if err != nil {
		return nil, err
	}

	table, err := c.DecodeTable()
	if err != nil {
		return nil, err
	}

	return &modem.Demodulator{
		Detector: det,
		Sync:     c.Receiver.Sync,
		Table:    table,
		Logger:   prefixed(logger, "demodulation"),
	}, nil
}

// CreateDevice builds the configured front end. A file device replays its
// input and then enough silence to complete a capture started near the end.
func CreateDevice(c *Config, logger *log.Logger) (device.Device, error) {
	switch c.Device.Kind {
	case DeviceFile:
		block := c.Device.BlockSize
		if block == 0 {
			block = device.BufferSize
		}
		return &device.File{
			Input:      c.Device.Input,
			Output:     c.Device.Output,
			SampleRate: c.Device.SampleRate,
			BlockSize:  block,
			Trailer:    c.CaptureLength()/block + 1,
			Logger:     prefixed(logger, "device"),
		}, nil
	case DeviceLoopback:
		return &device.Loopback{
			SampleRate: c.Device.SampleRate,
			BlockSize:  c.Device.BlockSize,
			Noise:      c.Device.Noise,
			Seed:       c.Device.Seed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown device %q", c.Device.Kind)
	}
}

// CreateNetwork simulates one shared medium for the given number of nodes,
// all hearing each other, paced and disturbed like the loopback device.
func CreateNetwork(c *Config, nodes int) (*device.Network[string], []device.Device, error) {
	network := &device.Network[string]{
		SampleRate: c.Device.SampleRate,
		BlockSize:  c.Device.BlockSize,
		Noise:      c.Device.Noise,
		Seed:       c.Device.Seed,
		Config:     make(device.NetworkConfig[string], nodes),
	}
	for i := range network.Config {
		network.Config[i].In = "air"
		network.Config[i].Out = "air"
	}
	devices, err := network.Build()
	if err != nil {
		return nil, nil, err
	}
	return network, devices, nil
}

func CreatePhysicalLayer(c *Config, dev device.Device, reg prometheus.Registerer, logger *log.Logger) (*layers.PhysicalLayer, error) {
	mod, err := CreateModulator(c, logger)
	if err != nil {
		return nil, err
	}
	demod, err := CreateDemodulator(c, logger)
	if err != nil {
		return nil, err
	}

	return &layers.PhysicalLayer{
		Device:         dev,
		Modulator:      mod,
		Demodulator:    demod,
		CaptureLength:  c.CaptureLength(),
		MinTokenLength: c.Receiver.MinTokenLength,
		Timeout:        c.Receiver.Timeout,
		Logger:         prefixed(logger, "physical"),
		Metrics:        layers.NewMetrics(reg),
	}, nil
}

func CreateDataLinkLayer(c *Config, dev device.Device, reg prometheus.Registerer, logger *log.Logger) (*layers.DataLinkLayer, error) {
	p, err := CreatePhysicalLayer(c, dev, reg, logger)
	if err != nil {
		return nil, err
	}
	return &layers.DataLinkLayer{PhysicalLayer: p, Encoding: &c.Encoding}, nil
}

// prefixed keeps nil loggers nil so components fall back to their defaults.
func prefixed(logger *log.Logger, prefix string) *log.Logger {
	if logger == nil {
		return nil
	}
	return logger.WithPrefix(prefix)
}
