package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/exp/rand"

	"ookmodem/cmd/ook/config"
	"ookmodem/pkg/layers"
	"ookmodem/pkg/modem"
)

func main() {
	var alphabet = pflag.StringP("alphabet", "a", "01", "Symbols of the sequence.")
	var order = pflag.IntP("order", "n", 8, "Length of the words covered by the sequence.")
	var random = pflag.IntP("random", "r", 0, "Print this many random symbols instead of a de Bruijn sequence.")
	var seed = pflag.Uint64P("seed", "s", 1, "Seed for --random.")
	var frame = pflag.BoolP("frame", "f", false, "Frame the payload as a packet using the configuration.")
	var configFile = pflag.StringP("config", "c", "config.yml", "Configuration file, used with --frame.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - print test payloads.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "A binary de Bruijn sequence of order 8 holds every byte value once,\n")
		fmt.Fprintf(os.Stderr, "which exercises every codeword of a remote in a single transmission.\n")
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, err := config.NewLogger("debruijn", "warn")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var payload string
	if *random > 0 {
		payload = randomString(rand.New(rand.NewSource(*seed)), *alphabet, *random)
	} else if payload, err = modem.DeBruijnString(*alphabet, *order); err != nil {
		logger.Fatal("de Bruijn sequence", "err", err)
	}

	if *frame {
		cfg, err := config.LoadConfig(*configFile)
		if err != nil {
			logger.Fatal("loading config", "err", err)
		}
		payload = layers.Frame(cfg.Receiver.Sync, payload, &cfg.Encoding)
	}

	fmt.Println(payload)
}

func randomString(r *rand.Rand, alphabet string, n int) string {
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return ""
	}

	var sb strings.Builder
	for range n {
		sb.WriteRune(symbols[r.Intn(len(symbols))])
	}
	return sb.String()
}
