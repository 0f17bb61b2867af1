package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"ookmodem/cmd/ook/config"
	"ookmodem/pkg/async"
	"ookmodem/pkg/capture"
	"ookmodem/pkg/device"
	"ookmodem/pkg/layers"
)

func main() {
	var configFile = pflag.StringP("config", "c", "config.yml", "Configuration file.")
	var input = pflag.StringP("input", "i", "", "Recording to decode, overrides device.input.")
	var pcapPattern = pflag.StringP("pcap", "w", "", "Write packets to a pcap file, strftime pattern. Overrides capture.pcap.")
	var listen = pflag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9100. Overrides metrics.listen.")
	var count = pflag.IntP("count", "n", 0, "Exit after this many packets, 0 for no limit.")
	var level = pflag.StringP("log-level", "l", "info", "Log level: debug, info, warn or error.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - decode OOK packets.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Packets are printed to stdout, one line each, tokens in hex.\n")
		fmt.Fprintf(os.Stderr, "Press Enter or Ctrl-C to stop.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, err := config.NewLogger("rx", *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *input != "" {
		cfg.Device.Input = *input
	}
	if *pcapPattern != "" {
		cfg.Capture.Pcap = *pcapPattern
	}
	if *listen != "" {
		cfg.Metrics.Listen = *listen
	}

	if err := run(cfg, logger, *count); err != nil {
		logger.Fatal("receiver stopped", "err", err)
	}
}

func run(cfg *config.Config, logger *log.Logger, count int) error {
	ctx, stop := async.Interrupt(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}

		serving := async.Job(srv.ListenAndServe)
		defer func() {
			srv.Shutdown(context.Background())
			for _, err := range async.Wait(serving) {
				if !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server", "err", err)
				}
			}
		}()
		logger.Info("serving metrics", "addr", cfg.Metrics.Listen)
	}

	var pcap *capture.PcapWriter
	if cfg.Capture.Pcap != "" {
		var err error
		if pcap, err = capture.OpenPcapFile(cfg.Capture.Pcap, time.Now()); err != nil {
			return err
		}
		defer pcap.Close()
		logger.Info("writing packets", "file", pcap.Name())
	}

	dev, err := config.CreateDevice(cfg, logger)
	if err != nil {
		return err
	}
	layer, err := config.CreatePhysicalLayer(cfg, dev, reg, logger)
	if err != nil {
		return err
	}
	if err := layer.Open(); err != nil {
		return err
	}
	defer layer.Close()

	var finished <-chan struct{}
	file, ok := dev.(*device.File)
	if ok && file.Input != "" {
		finished = file.Done()
	}

	logger.Info("waiting for packets", "capture", cfg.CaptureLength())
	received := 0
	handle := func(pkt layers.Packet) bool {
		received++
		fmt.Println(format(pkt))
		if pcap != nil {
			if err := pcap.WritePacket(pkt); err != nil {
				logger.Error("writing pcap", "err", err)
			}
		}
		return count > 0 && received >= count
	}

	for {
		select {
		case pkt := <-layer.ReceiveAsync():
			if handle(pkt) {
				return nil
			}
		case <-finished:
			if err := layer.Flush(ctx); err != nil {
				return err
			}
			for {
				select {
				case pkt := <-layer.ReceiveAsync():
					if handle(pkt) {
						return nil
					}
				default:
					if err := file.Err(); err != nil {
						return err
					}
					logger.Info("recording finished", "packets", received)
					return nil
				}
			}
		case <-ctx.Done():
			logger.Info("stopping", "packets", received)
			return nil
		}
	}
}

// format renders pkt as its ID followed by each token, bit strings in hex.
func format(pkt layers.Packet) string {
	fields := []string{pkt.Time.Format(time.RFC3339Nano), pkt.ID.String()}
	for _, token := range pkt.Tokens {
		if v, ok := new(big.Int).SetString(token, 2); ok {
			fields = append(fields, "0x"+v.Text(16))
		} else {
			fields = append(fields, fmt.Sprintf("%q", token))
		}
	}
	return strings.Join(fields, " ")
}
