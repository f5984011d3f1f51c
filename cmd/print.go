package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/mlcsnap/internal/mlc"
)

// CreatePrintCmd creates the print command.
func CreatePrintCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "print <device> [layer]",
		Short: "Print the live registers of an MLC",
		Long: `Prints the register window of MLC <device>. With [layer] only that layer is
printed, otherwise every layer plus the top-level controls.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			start := time.Now()
			defer func() { err = finish(opts, "print", start, err) }()

			dev, err := parseDevice(args[0])
			if err != nil {
				return err
			}
			layer := mlc.Layer(-1)
			if len(args) == 2 {
				if layer, err = parseLayer(args[1]); err != nil {
					return err
				}
			}

			hw, err := openHardware(opts, dev)
			if err != nil {
				return err
			}
			defer hw.Close()

			regs, err := hw.registers.Snapshot(dev)
			if err != nil {
				return err
			}
			if layer.Valid() {
				return mlc.DumpLayer(cmd.OutOrStdout(), dev, layer, regs)
			}
			return mlc.Dump(cmd.OutOrStdout(), dev, regs)
		},
	}
}
