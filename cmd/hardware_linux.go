//go:build linux

package cmd

import (
	"errors"
	"fmt"

	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/pkg/linuxdrm"
	"github.com/smazurov/mlcsnap/pkg/physmem"
)

// hardware is the register window of one MLC plus access to the pixel
// memory it scans out from.
type hardware struct {
	mem       *physmem.Memory
	registers *mlc.Registry
}

// openHardware maps the registers of device dev.
func openHardware(opts *Options, dev int) (*hardware, error) {
	mem, err := physmem.Open(opts.MlcMem)
	if err != nil {
		return nil, err
	}

	base := opts.bases()[dev]
	region, err := mem.Map(base, mlc.RegistersSize)
	if err != nil {
		mem.Close()
		return nil, err
	}

	registers := mlc.NewRegistry()
	if err := registers.Register(dev, region); err != nil {
		mem.Close()
		return nil, err
	}

	logging.GetLogger("mlc").Debug("Mapped register window",
		"device", dev, "base", fmt.Sprintf("0x%08x", base), "size", mlc.RegistersSize)
	return &hardware{mem: mem, registers: registers}, nil
}

// Plane maps the memory of one pixel plane.
func (h *hardware) Plane(spec mlc.PlaneSpec) ([]byte, error) {
	region, err := h.mem.Map(uint64(spec.Address), spec.Size())
	if err != nil {
		return nil, err
	}
	return region.Bytes(), nil
}

func (h *hardware) Close() error {
	return errors.Join(h.registers.Close(), h.mem.Close())
}

// openDisplay opens the configured card, or the first card of the
// configured driver.
func openDisplay(opts *Options) (display, error) {
	var (
		dev *linuxdrm.Device
		err error
	)
	if opts.DrmCard != "" {
		dev, err = linuxdrm.Open(opts.DrmCard)
	} else {
		dev, err = linuxdrm.OpenDriver(opts.DrmDriver)
	}
	if err != nil {
		return nil, err
	}
	return dev, nil
}
