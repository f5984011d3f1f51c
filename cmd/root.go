// Package cmd implements the mlcsnap command line.
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/mlcsnap/internal/config"
	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/metrics"
	"github.com/smazurov/mlcsnap/internal/mlc"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"mlcsnap.toml"`

	// DRM settings
	DrmDriver string `help:"DRM driver used to find the display card" default:"nexell" toml:"drm.driver" env:"DRM_DRIVER"`
	DrmCard   string `help:"DRM card path, skips the driver lookup" toml:"drm.card" env:"DRM_CARD"`

	// Register access
	MlcMem   string `help:"Physical memory device" default:"/dev/mem" toml:"mlc.mem" env:"MLC_MEM"`
	Mlc0Base uint64 `help:"Physical base of the MLC0 registers" default:"0xc0102000" toml:"mlc.mlc0_base" env:"MLC0_BASE"`
	Mlc1Base uint64 `help:"Physical base of the MLC1 registers" default:"0xc0102400" toml:"mlc.mlc1_base" env:"MLC1_BASE"`

	// Metrics
	MetricsTextfile string `help:"Write run metrics to this node exporter textfile" toml:"metrics.textfile" env:"METRICS_TEXTFILE"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
}

// bases returns the register base of every device.
func (o *Options) bases() [mlc.Devices]uint64 {
	return [mlc.Devices]uint64{o.Mlc0Base, o.Mlc1Base}
}

// NewRootCmd builds the mlcsnap command tree around opts.
func NewRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:   "mlcsnap",
		Short: "Capture and replay display layers of Nexell SoCs",
		Long: `mlcsnap saves the registers and pixel memory of one MLC display layer to a
snapshot file, and puts a snapshot back on screen through a DRM plane.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(opts, cmd); err != nil {
				return err
			}
			initLogging(opts)
			return nil
		},
	}

	if err := config.BindFlags(root.PersistentFlags(), opts); err != nil {
		panic(err)
	}

	root.AddCommand(
		CreateCaptureCmd(opts),
		CreateReplayCmd(opts),
		CreatePrintCmd(opts),
		CreateInspectCmd(opts),
		CreateExportCmd(opts),
		CreateVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	opts := &Options{}
	if err := NewRootCmd(opts).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func initLogging(opts *Options) {
	cfg := config.LoadLoggingConfig(opts.Config)
	cfg.Level = opts.LoggingLevel
	cfg.Format = opts.LoggingFormat
	logging.Initialize(cfg)
}

// finish records the run and writes the metrics textfile when configured.
// A textfile failure is logged and never changes the command result.
func finish(opts *Options, command string, start time.Time, err error) error {
	metrics.RecordRun(command, start, err)
	if opts.MetricsTextfile == "" {
		return err
	}
	if werr := metrics.WriteTextfile(opts.MetricsTextfile); werr != nil {
		logging.GetLogger("main").Warn("Failed to write metrics", "error", werr)
	}
	return err
}

// parseDevice parses and validates an MLC device index.
func parseDevice(s string) (int, error) {
	dev, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("device %q: %w", s, mlc.ErrInvalidDevice)
	}
	return dev, mlc.ValidateDevice(dev)
}

// parseLayer accepts a layer index or its name (rgb0, rgb1, video).
func parseLayer(s string) (mlc.Layer, error) {
	for l := mlc.LayerRGB0; l <= mlc.LayerVideo; l++ {
		if s == l.String() {
			return l, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("layer %q: %w", s, mlc.ErrInvalidLayer)
	}
	if err := mlc.ValidateLayer(n); err != nil {
		return 0, err
	}
	return mlc.Layer(n), nil
}
