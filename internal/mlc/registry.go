package mlc

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// Window is word access to a mapped MLC register window. Offsets are byte
// offsets and must be 4-byte aligned.
type Window interface {
	Read32(off int) uint32
	Write32(off int, v uint32)
	Len() int
}

// MemWindow is a Window over plain memory, used for register images that are
// not backed by hardware.
type MemWindow struct {
	buf []byte
}

// NewMemWindow returns a zeroed window of RegistersSize bytes.
func NewMemWindow() *MemWindow {
	return &MemWindow{buf: make([]byte, RegistersSize)}
}

// MemWindowFrom returns a window holding a copy of regs.
func MemWindowFrom(regs *Registers) (*MemWindow, error) {
	data, err := regs.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &MemWindow{buf: data}, nil
}

func (m *MemWindow) Read32(off int) uint32 {
	return binary.LittleEndian.Uint32(m.buf[off:])
}

func (m *MemWindow) Write32(off int, v uint32) {
	binary.LittleEndian.PutUint32(m.buf[off:], v)
}

func (m *MemWindow) Len() int {
	return len(m.buf)
}

// Bytes returns the backing memory.
func (m *MemWindow) Bytes() []byte {
	return m.buf
}

// ReadRegisters copies the window word by word into a register image.
func ReadRegisters(w Window) (*Registers, error) {
	if w.Len() < RegistersSize {
		return nil, fmt.Errorf("register window too small: %d < %d bytes", w.Len(), RegistersSize)
	}
	buf := make([]byte, RegistersSize)
	for off := 0; off < RegistersSize; off += 4 {
		binary.LittleEndian.PutUint32(buf[off:], w.Read32(off))
	}
	regs := &Registers{}
	if err := regs.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return regs, nil
}

// Registry maps MLC device indices to their register windows. Windows that
// also implement io.Closer are closed by Close.
type Registry struct {
	mu      sync.Mutex
	windows map[int]Window
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[int]Window)}
}

// Register attaches w as the window of device dev.
func (r *Registry) Register(dev int, w Window) error {
	if err := ValidateDevice(dev); err != nil {
		return err
	}
	if w.Len() < RegistersSize {
		return fmt.Errorf("mlc.%d: register window too small: %d bytes", dev, w.Len())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.windows[dev]; exists {
		return fmt.Errorf("mlc.%d: window already registered", dev)
	}
	r.windows[dev] = w
	return nil
}

// Window returns the window of device dev.
func (r *Registry) Window(dev int) (Window, error) {
	if err := ValidateDevice(dev); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[dev]
	if !ok {
		return nil, fmt.Errorf("mlc.%d: %w", dev, ErrNotMapped)
	}
	return w, nil
}

// Snapshot reads the live register image of device dev.
func (r *Registry) Snapshot(dev int) (*Registers, error) {
	w, err := r.Window(dev)
	if err != nil {
		return nil, err
	}
	return ReadRegisters(w)
}

// Close releases every registered window.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for dev, w := range r.windows {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("mlc.%d: %w", dev, err)
			}
		}
		delete(r.windows, dev)
	}
	return firstErr
}

// ValidateDevice checks that dev names an existing MLC.
func ValidateDevice(dev int) error {
	if dev < 0 || dev >= Devices {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidDevice, dev, Devices)
	}
	return nil
}

// ValidateLayer checks that layer names an existing layer.
func ValidateLayer(layer int) error {
	if !Layer(layer).Valid() {
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidLayer, layer, Layers)
	}
	return nil
}
