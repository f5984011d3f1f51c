package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smazurov/mlcsnap/internal/format"
	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/internal/snapshot"
)

// snapshotReport is the machine readable description of a snapshot.
type snapshotReport struct {
	File     string        `yaml:"file"`
	Device   int           `yaml:"device"`
	Layer    string        `yaml:"layer"`
	Enabled  bool          `yaml:"enabled"`
	Hardware string        `yaml:"hardware_format"`
	BPP      int           `yaml:"bpp"`
	Format   string        `yaml:"format,omitempty"`
	FourCC   string        `yaml:"fourcc,omitempty"`
	Geometry geometryInfo  `yaml:"geometry"`
	Planes   []planeReport `yaml:"planes"`
	Payload  payloadReport `yaml:"payload"`
}

type geometryInfo struct {
	X         int `yaml:"x"`
	Y         int `yaml:"y"`
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	SrcWidth  int `yaml:"src_width"`
	SrcHeight int `yaml:"src_height"`
	// ScaledWidth is derived from the horizontal scaler, not the stride.
	ScaledWidth int    `yaml:"scaled_width,omitempty"`
	HScale      uint32 `yaml:"hscale,omitempty"`
	VScale      uint32 `yaml:"vscale,omitempty"`
}

type planeReport struct {
	Address string `yaml:"address"`
	Pitch   int    `yaml:"pitch"`
	Rows    int    `yaml:"rows"`
}

type payloadReport struct {
	Expected int   `yaml:"expected"`
	Stored   int64 `yaml:"stored"`
}

func newSnapshotReport(path string, file *snapshot.File) snapshotReport {
	st := file.State
	g := st.Geometry
	r := snapshotReport{
		File:     path,
		Device:   int(file.Header.Device),
		Layer:    st.Layer.String(),
		Enabled:  st.Enabled,
		Hardware: st.Format.Name(st.Layer, st.BPP),
		BPP:      st.BPP,
		Geometry: geometryInfo{
			X: g.X, Y: g.Y, Width: g.Width, Height: g.Height,
			SrcWidth: g.SrcWidth, SrcHeight: g.SrcHeight,
		},
		Payload: payloadReport{Expected: file.PayloadSize(), Stored: file.StoredPayload()},
	}
	if g.HScale.Enabled {
		r.Geometry.HScale = g.HScale.Factor
		r.Geometry.ScaledWidth = g.ScaledWidth()
	}
	if g.VScale.Enabled {
		r.Geometry.VScale = g.VScale.Factor
	}
	if f, err := format.FromHardware(st.Layer, st.Format, st.BPP); err == nil {
		r.Format = f.String()
		r.FourCC = f.FourCC().String()
	}
	for _, p := range st.Planes {
		r.Planes = append(r.Planes, planeReport{Address: fmt.Sprintf("0x%08x", p.Address), Pitch: p.Pitch, Rows: p.Rows})
	}
	return r
}

// CreateInspectCmd creates the inspect command.
func CreateInspectCmd(opts *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the registers saved in a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start := time.Now()
			defer func() { err = finish(opts, "inspect", start, err) }()

			file, err := snapshot.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			switch output {
			case "text":
				return writeInspectText(cmd.OutOrStdout(), args[0], file)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(newSnapshotReport(args[0], file)); err != nil {
					return fmt.Errorf("encode report: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output %q (text, yaml)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, yaml)")
	return cmd
}

func writeInspectText(w io.Writer, path string, file *snapshot.File) error {
	hdr := file.Header
	if _, err := fmt.Fprintf(w, "FILE  - %s\nMLC.%d - Layer.%d\n\n", path, hdr.Device, hdr.Layer); err != nil {
		return err
	}
	return mlc.Dump(w, int(hdr.Device), &hdr.Registers)
}
