package layers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "ook"

// Metrics counts what the physical layer sees. The zero value is not usable;
// build it with NewMetrics.
type Metrics struct {
	Blocks             prometheus.Counter
	Triggers           prometheus.Counter
	Captures           prometheus.Counter
	Packets            prometheus.Counter
	PreambleMisses     prometheus.Counter
	InsufficientSignal prometheus.Counter
	UnknownSymbols     prometheus.Counter
	Threshold          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		Blocks:             counter("blocks_total", "IQ blocks received from the device"),
		Triggers:           counter("triggers_total", "Idle blocks that started a capture"),
		Captures:           counter("captures_total", "Captures run through the receive pipeline"),
		Packets:            counter("packets_total", "Packets accepted"),
		PreambleMisses:     counter("preamble_misses_total", "Captures without the synchronization pattern"),
		InsufficientSignal: counter("insufficient_signal_total", "Blocks and captures below the minimum threshold"),
		UnknownSymbols:     counter("unknown_symbols_total", "Packet characters skipped by the modulator"),
		Threshold: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "threshold",
			Help:      "Detection threshold of the last capture",
		}),
	}
}
