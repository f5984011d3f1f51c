package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/metrics"
	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/internal/snapshot"
)

// CreateCaptureCmd creates the capture command.
func CreateCaptureCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <device> <layer> <file>",
		Short: "Save one layer's registers and pixels to a snapshot file",
		Long: `Reads the register window of MLC <device> and writes <file>: a header with
every register followed by the pixel memory of <layer> (rgb0, rgb1, video or
0-2), one plane after another.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start := time.Now()
			defer func() { err = finish(opts, "capture", start, err) }()

			dev, err := parseDevice(args[0])
			if err != nil {
				return err
			}
			layer, err := parseLayer(args[1])
			if err != nil {
				return err
			}
			return runCapture(cmd.OutOrStdout(), opts, dev, layer, args[2])
		},
	}
}

func runCapture(out io.Writer, opts *Options, dev int, layer mlc.Layer, path string) error {
	logger := logging.GetLogger("capture")

	hw, err := openHardware(opts, dev)
	if err != nil {
		return err
	}
	defer hw.Close()

	regs, err := hw.registers.Snapshot(dev)
	if err != nil {
		return err
	}
	st, err := mlc.Decode(regs, layer)
	if err != nil {
		return fmt.Errorf("mlc.%d %s: %w", dev, layer, err)
	}
	if !st.Enabled {
		logger.Warn("Layer is disabled, capturing anyway", "device", dev, "layer", layer.String())
	}

	hdr, err := snapshot.NewHeader(dev, int(layer), regs)
	if err != nil {
		return err
	}

	g := st.Geometry
	payload := mlc.PayloadSize(st.Planes)
	fmt.Fprintf(out, "capture mlc.%d %s: %s(0x%x) %dbpp %dx%d at %d,%d -> %s\n",
		dev, layer, st.Format.Name(st.Layer, st.BPP), uint32(st.Format), st.BPP,
		g.SrcWidth, g.SrcHeight, g.X, g.Y, path)
	for i, p := range st.Planes {
		logger.Debug("Plane", "index", i, "address", fmt.Sprintf("0x%08x", p.Address), "pitch", p.Pitch, "rows", p.Rows)
	}

	var progress io.Writer
	if bar := newProgress(int64(snapshot.HeaderSize+payload), "capture"); bar != nil {
		defer bar.Close()
		progress = bar
	}

	n, err := snapshot.Create(path, hdr, hw, progress)
	if err != nil {
		return err
	}

	metrics.SetPayloadBytes("capture", int64(payload))
	metrics.SetLayer(dev, layer.String(), st.Format.Name(st.Layer, st.BPP), g.SrcWidth, g.SrcHeight)
	logger.Info("Snapshot written", "path", path, "bytes", n, "planes", len(st.Planes))
	return nil
}
