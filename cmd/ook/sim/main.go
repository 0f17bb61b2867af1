package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"ookmodem/cmd/ook/config"
	"ookmodem/pkg/async"
)

func main() {
	var configFile = pflag.StringP("config", "c", "config.yml", "Configuration file.")
	var message = pflag.StringP("message", "m", "10110010", "Message sent on every round.")
	var rounds = pflag.IntP("count", "n", 3, "Number of messages sent.")
	var noise = pflag.Int("noise", -1, "Noise amplitude of the medium, overrides device.noise.")
	var timeout = pflag.DurationP("timeout", "t", 10*time.Second, "Time allowed for each message to arrive.")
	var level = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn or error.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - send messages between two simulated nodes.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Both nodes share one noisy medium configured by the device section,\n")
		fmt.Fprintf(os.Stderr, "which checks modem and receiver settings without a radio.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, err := config.NewLogger("sim", *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *noise >= 0 {
		cfg.Device.Noise = *noise
	}

	lost, err := run(cfg, logger, *message, *rounds, *timeout)
	if err != nil {
		logger.Fatal("simulation stopped", "err", err)
	}
	if lost > 0 {
		logger.Error("messages lost", "lost", lost, "sent", *rounds)
		os.Exit(1)
	}
}

// run sends message rounds times from one node to the other and returns
// how many did not arrive intact.
func run(cfg *config.Config, logger *log.Logger, message string, rounds int, timeout time.Duration) (int, error) {
	network, devices, err := config.CreateNetwork(cfg, 2)
	if err != nil {
		return 0, err
	}
	defer network.Join()

	tx, err := config.CreateDataLinkLayer(cfg, devices[0], nil, logger.WithPrefix("tx"))
	if err != nil {
		return 0, err
	}
	rx, err := config.CreateDataLinkLayer(cfg, devices[1], nil, logger.WithPrefix("rx"))
	if err != nil {
		return 0, err
	}
	if err := tx.Open(); err != nil {
		return 0, err
	}
	defer tx.Close()
	if err := rx.Open(); err != nil {
		return 0, err
	}
	defer rx.Close()

	ctx, stop := async.Interrupt(context.Background())
	defer stop()

	lost := 0
	for i := range rounds {
		if err := tx.Send(message); err != nil {
			return lost, err
		}

		recvCtx, cancel := context.WithTimeout(ctx, timeout)
		got, err := rx.Receive(recvCtx)
		cancel()
		switch {
		case ctx.Err() != nil:
			return lost, nil
		case err != nil:
			logger.Warn("no message", "round", i, "err", err)
			lost++
		case got != message:
			logger.Warn("corrupted message", "round", i, "got", got)
			lost++
		default:
			fmt.Println(i, got)
		}
	}
	return lost, nil
}
