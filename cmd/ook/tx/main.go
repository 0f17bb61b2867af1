package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"ookmodem/cmd/ook/config"
	"ookmodem/pkg/device"
	"ookmodem/pkg/layers"
	"ookmodem/pkg/modem"
)

func main() {
	var configFile = pflag.StringP("config", "c", "config.yml", "Configuration file.")
	var message = pflag.StringP("message", "m", "", "Message to encode and frame behind the synchronization pattern.")
	var packet = pflag.StringP("packet", "p", "", "Raw packet over '1', '0' and 'p', sent as is.")
	var output = pflag.StringP("output", "o", "", "Recording to write, overrides device.output. A .zst suffix compresses.")
	var repeat = pflag.IntP("repeat", "r", 1, "Number of times the packet is sent.")
	var level = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn or error.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - write an OOK transmit recording.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "The recording is raw int8 I/Q, ready for hackrf_transfer -t.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, err := config.NewLogger("tx", *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *output != "" {
		cfg.Device.Output = *output
	}
	if cfg.Device.Output == "" {
		logger.Fatal("no output recording, set --output or device.output")
	}

	mod, err := config.CreateModulator(cfg, logger)
	if err != nil {
		logger.Fatal("creating modulator", "err", err)
	}

	switch {
	case *message != "" && *packet != "":
		logger.Fatal("--message and --packet are exclusive")
	case *message != "":
		*packet = layers.Frame(cfg.Receiver.Sync, *message, &cfg.Encoding)
	case *packet == "":
		logger.Fatal("nothing to send, set --message or --packet")
	}

	iq, err := mod.Generate(strings.Repeat(*packet, max(*repeat, 1)))
	var unknown *modem.UnknownSymbolError
	if errors.As(err, &unknown) {
		logger.Warn("packet has unknown symbols", "err", err)
	} else if err != nil {
		logger.Fatal("generating waveform", "err", err)
	}

	if err := device.WriteIQ(cfg.Device.Output, iq); err != nil {
		logger.Fatal("writing recording", "err", err)
	}
	logger.Info("recording written",
		"file", cfg.Device.Output,
		"packet", *packet,
		"samples", len(iq)/2,
		"seconds", float64(len(iq)/2)/cfg.Modem.SampleRate,
	)
}
