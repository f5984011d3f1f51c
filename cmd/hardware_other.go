//go:build !linux

package cmd

import (
	"errors"
	"runtime"

	"github.com/smazurov/mlcsnap/internal/mlc"
)

var errUnsupportedPlatform = errors.New("register and display access requires linux, running on " + runtime.GOOS)

type hardware struct {
	registers *mlc.Registry
}

func openHardware(*Options, int) (*hardware, error) {
	return nil, errUnsupportedPlatform
}

func (h *hardware) Plane(mlc.PlaneSpec) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func (h *hardware) Close() error {
	return nil
}

func openDisplay(*Options) (display, error) {
	return nil, errUnsupportedPlatform
}
