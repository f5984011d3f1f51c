package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/mlcsnap/internal/binder"
	"github.com/smazurov/mlcsnap/internal/format"
	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/metrics"
	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/internal/snapshot"
	"github.com/smazurov/mlcsnap/pkg/linuxdrm"
)

// display is an open DRM card.
type display interface {
	binder.Device
	Enumerate() (*linuxdrm.Resources, error)
	Path() string
	Close() error
}

type replayOptions struct {
	noGamma bool
	hold    bool
}

// CreateReplayCmd creates the replay command.
func CreateReplayCmd(opts *Options) *cobra.Command {
	var ro replayOptions

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Show a snapshot on the display it was captured from",
		Long: `Loads <file> into a new framebuffer, shows it on the DRM plane serving the
captured layer and restores the saved blending and color properties. The
plane stays up until Enter is pressed, then everything is torn down.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start := time.Now()
			defer func() { err = finish(opts, "replay", start, err) }()
			return runReplay(cmd, opts, ro, args[0])
		},
	}

	cmd.Flags().BoolVarP(&ro.noGamma, "no-gamma", "g", false, "Turn gamma correction off while the snapshot is shown")
	cmd.Flags().BoolVar(&ro.hold, "hold", true, "Keep the plane up until Enter is pressed")
	return cmd
}

func runReplay(cmd *cobra.Command, opts *Options, ro replayOptions, path string) (err error) {
	logger := logging.GetLogger("replay")
	out := cmd.OutOrStdout()

	file, err := snapshot.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	hdr, st := file.Header, file.State
	dev, layer := int(hdr.Device), hdr.LayerID()
	f, err := format.FromHardware(st.Layer, st.Format, st.BPP)
	if err != nil {
		return fmt.Errorf("mlc.%d %s: %w", dev, layer, err)
	}
	if stored, want := file.StoredPayload(), int64(file.PayloadSize()); stored < want {
		logger.Warn("Snapshot payload is short", "path", path, "stored", stored, "expected", want)
	}

	hw, err := openHardware(opts, dev)
	if err != nil {
		return err
	}
	defer hw.Close()

	card, err := openDisplay(opts)
	if err != nil {
		return err
	}
	defer card.Close()

	res, err := card.Enumerate()
	if err != nil {
		return err
	}
	target, err := binder.Resolve(res, dev, layer)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "set mlc.%d %s -> crtc.%d plane.%d\n", dev, layer, target.CrtcID, target.PlaneID)

	g := st.Geometry
	fmt.Fprintf(out, "src %dx%d %dbpp, %s(0x%x) - %s(%s)\n",
		g.SrcWidth, g.SrcHeight, st.BPP, st.Format.Name(st.Layer, st.BPP), uint32(st.Format), f, f.FourCC())

	if bar := newProgress(int64(file.PayloadSize()), "replay"); bar != nil {
		defer bar.Close()
		file.Progress = bar
	}

	binding, err := binder.Bind(card, res, target, binder.RequestFor(f, g, file.LoadInto))
	if err != nil {
		return err
	}
	defer func() {
		if rerr := binding.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	logger.Info("Snapshot shown", "card", card.Path(), "plane", binding.PlaneID, "fb", binding.FBID)

	window, err := hw.registers.Window(dev)
	if err != nil {
		return err
	}
	n := mlc.ApplyProperties(window, &hdr.Registers, mlc.ApplyOptions{GammaOff: ro.noGamma})
	logger.Debug("Applied saved properties", "layers", n, "gamma_off", ro.noGamma)

	metrics.SetPayloadBytes("replay", int64(file.PayloadSize()))
	metrics.SetLayer(dev, layer.String(), f.String(), g.SrcWidth, g.SrcHeight)

	if ro.hold {
		waitForEnter(cmd.InOrStdin(), out, "Press Enter to remove the layer\n")
	}
	return nil
}
