// Package snapshot reads and writes layer snapshot files: a fixed 1024-byte
// header holding the signature, the device and layer ids and the full MLC
// register image, followed by the raw pixel payload of the layer.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/smazurov/mlcsnap/internal/mlc"
)

const (
	// HeaderSize is the size of the header and the offset of the payload.
	HeaderSize = 1024

	// PayloadOffset is where pixel data starts.
	PayloadOffset = HeaderSize

	registersOffset = 0x10
)

// Signature opens every snapshot file.
var Signature = [4]byte{'M', 'L', 'C', '\n'}

var (
	ErrBadSignature = errors.New("not a layer snapshot: bad signature")
	ErrShortPayload = errors.New("snapshot payload truncated")
)

// Header is the fixed part of a snapshot file.
type Header struct {
	Device    int32
	Layer     int32
	Registers mlc.Registers
}

// NewHeader validates the ids and builds a header for regs.
func NewHeader(dev, layer int, regs *mlc.Registers) (*Header, error) {
	if err := mlc.ValidateDevice(dev); err != nil {
		return nil, err
	}
	if err := mlc.ValidateLayer(layer); err != nil {
		return nil, err
	}
	return &Header{Device: int32(dev), Layer: int32(layer), Registers: *regs}, nil
}

// LayerID returns the layer as an mlc.Layer.
func (h *Header) LayerID() mlc.Layer {
	return mlc.Layer(h.Layer)
}

// MarshalBinary encodes the header into exactly HeaderSize bytes.
func (h *Header) MarshalBinary() ([]byte, error) {
	regs, err := h.Registers.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Signature[:])
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.Device))
	binary.LittleEndian.PutUint32(buf[8:], uint32(h.Layer))
	// 12:16 reserved, zero
	copy(buf[registersOffset:], regs)
	return buf, nil
}

// UnmarshalBinary decodes a header. The signature is checked before any
// other field is looked at.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("snapshot header too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[0:4], Signature[:]) {
		return fmt.Errorf("%w: %q", ErrBadSignature, data[0:4])
	}

	var regs mlc.Registers
	if err := regs.UnmarshalBinary(data[registersOffset : registersOffset+mlc.RegistersSize]); err != nil {
		return err
	}
	h.Device = int32(binary.LittleEndian.Uint32(data[4:]))
	h.Layer = int32(binary.LittleEndian.Uint32(data[8:]))
	h.Registers = regs
	return nil
}

// ReadHeader reads and validates a header from r. Device and layer ids are
// range checked after the signature.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// A short file cannot hold a signature either.
			if !bytes.Equal(buf[0:4], Signature[:]) {
				return nil, ErrBadSignature
			}
			return nil, fmt.Errorf("snapshot header truncated: %w", err)
		}
		return nil, fmt.Errorf("failed to read snapshot header: %w", err)
	}

	h := &Header{}
	if err := h.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	if err := mlc.ValidateDevice(int(h.Device)); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	if err := mlc.ValidateLayer(int(h.Layer)); err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	return h, nil
}
