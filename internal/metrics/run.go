// Package metrics records per-run Prometheus metrics and writes them for the
// node exporter textfile collector.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// registry holds only mlcsnap metrics so the textfile carries no Go runtime
// series.
var registry = prometheus.NewRegistry()

var (
	runsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlcsnap",
		Name:      "runs_total",
		Help:      "Completed runs by command and result",
	}, []string{"command", "result"})

	runDuration = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mlcsnap",
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the last run",
	}, []string{"command"})

	runTimestamp = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mlcsnap",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	}, []string{"command"})

	payloadBytes = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mlcsnap",
		Name:      "payload_bytes",
		Help:      "Pixel payload bytes moved by the last run",
	}, []string{"command"})

	layerInfo = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mlcsnap",
		Subsystem: "layer",
		Name:      "info",
		Help:      "Layer handled by the last run",
	}, []string{"device", "layer", "format", "width", "height"})
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// RecordRun counts a finished run of command started at start.
func RecordRun(command string, start time.Time, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	now := time.Now()
	runsTotal.WithLabelValues(command, result).Inc()
	runDuration.WithLabelValues(command).Set(now.Sub(start).Seconds())
	runTimestamp.WithLabelValues(command).Set(float64(now.Unix()))
}

// SetPayloadBytes records the payload size moved by command.
func SetPayloadBytes(command string, n int64) {
	payloadBytes.WithLabelValues(command).Set(float64(n))
}

// SetLayer records which layer the run worked on. Earlier layers are
// dropped so only one series remains.
func SetLayer(dev int, layer, format string, width, height int) {
	layerInfo.Reset()
	layerInfo.WithLabelValues(strconv.Itoa(dev), layer, format, strconv.Itoa(width), strconv.Itoa(height)).Set(1)
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Gatherer exposes the metrics registry.
func Gatherer() prometheus.Gatherer {
	return registry
}
