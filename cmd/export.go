package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/mlcsnap/internal/format"
	"github.com/smazurov/mlcsnap/internal/imageconv"
	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/metrics"
	"github.com/smazurov/mlcsnap/internal/snapshot"
)

// CreateExportCmd creates the export command.
func CreateExportCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file> <out.bmp>",
		Short: "Convert the pixels of a snapshot to a BMP image",
		Long: `Decodes the payload of <file> at its source size and writes it to <out.bmp>.
YUV layers are converted to RGB.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start := time.Now()
			defer func() { err = finish(opts, "export", start, err) }()
			return runExport(args[0], args[1])
		},
	}
}

func runExport(path, out string) error {
	file, err := snapshot.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	st := file.State
	dev, layer := int(file.Header.Device), file.Header.LayerID()
	f, err := format.FromHardware(st.Layer, st.Format, st.BPP)
	if err != nil {
		return fmt.Errorf("mlc.%d %s: %w", dev, layer, err)
	}

	if bar := newProgress(int64(file.PayloadSize()), "export"); bar != nil {
		defer bar.Close()
		file.Progress = bar
	}
	planes, err := file.ReadPlanes()
	if err != nil {
		return err
	}

	g := st.Geometry
	img, err := imageconv.ToImage(f, g.SrcWidth, g.SrcHeight, planes)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	if err := imageconv.WriteBMP(w, img); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close image: %w", err)
	}

	metrics.SetPayloadBytes("export", int64(file.PayloadSize()))
	metrics.SetLayer(dev, layer.String(), f.String(), g.SrcWidth, g.SrcHeight)
	logging.GetLogger("export").Info("Image written", "path", out, "format", f.String(),
		"size", fmt.Sprintf("%dx%d", g.SrcWidth, g.SrcHeight))
	return nil
}
