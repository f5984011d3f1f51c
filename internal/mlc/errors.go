package mlc

import "errors"

// Configuration errors. They are wrapped with the device, layer or register
// value that triggered them.
var (
	ErrInvalidDevice = errors.New("invalid mlc device")
	ErrInvalidLayer  = errors.New("invalid mlc layer")
	ErrGeometry      = errors.New("invalid layer geometry")
	ErrNotMapped     = errors.New("register window not mapped")
)
