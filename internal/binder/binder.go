// Package binder shows a layer surface on a DRM plane and tears it down
// again.
package binder

import (
	"errors"
	"fmt"

	"github.com/smazurov/mlcsnap/internal/format"
	"github.com/smazurov/mlcsnap/internal/layout"
	"github.com/smazurov/mlcsnap/internal/logging"
	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/pkg/linuxdrm"
)

// Device is the set of DRM calls used to bind a plane. *linuxdrm.Device
// implements it.
type Device interface {
	CreateDumb(width, height, bpp uint32) (linuxdrm.DumbBuffer, error)
	MapDumb(b linuxdrm.DumbBuffer) ([]byte, error)
	Unmap(mem []byte) error
	DestroyDumb(handle uint32) error
	AddFB2(fb *linuxdrm.FB2) (uint32, error)
	RmFB(id uint32) error
	DirtyFB(id uint32) error
	SetCrtc(cfg *linuxdrm.CrtcConfig) error
	SetPlane(cfg *linuxdrm.PlaneConfig) error
	DisablePlane(planeID uint32) error
}

// Target is the crtc, connector and preferred plane serving one MLC layer.
type Target struct {
	Device int
	Layer  mlc.Layer

	CrtcID uint32
	Pipe   int
	// CrtcActive is set when the crtc already scans out a mode.
	CrtcActive bool
	// ConnectorID is zero when the card has no dev-th connector. A mode set
	// is impossible then, but an active crtc can still take a plane.
	ConnectorID uint32
	// EncoderID is the connector's current encoder; zero means the
	// connector is not lit.
	EncoderID uint32
	// PlaneID is zero when no plane has the layer's affinity.
	PlaneID uint32
	Mode    *linuxdrm.ModeInfo
}

// Resolve maps device dev and layer to DRM objects: the dev-th crtc, the
// layer-th plane that can be routed to crtc dev and, when present, the dev-th
// connector. A missing connector only matters once a mode set is needed.
func Resolve(res *linuxdrm.Resources, dev int, layer mlc.Layer) (Target, error) {
	t := Target{Device: dev, Layer: layer}
	if err := mlc.ValidateDevice(dev); err != nil {
		return t, err
	}
	if err := mlc.ValidateLayer(int(layer)); err != nil {
		return t, err
	}

	if dev >= len(res.Crtcs) {
		return t, newError(ErrCodeNoCrtc, fmt.Sprintf("device %d: %d crtcs", dev, len(res.Crtcs)), nil)
	}
	t.CrtcID = res.Crtcs[dev].ID
	t.CrtcActive = res.Crtcs[dev].ModeValid
	t.Pipe = dev

	n := 0
	for i := range res.Planes {
		if !res.Planes[i].CompatibleWith(dev) {
			continue
		}
		if n == int(layer) {
			t.PlaneID = res.Planes[i].ID
			break
		}
		n++
	}

	if dev < len(res.Connectors) {
		conn := &res.Connectors[dev]
		t.ConnectorID = conn.ID
		t.EncoderID = conn.EncoderID
		if len(conn.Modes) > 0 {
			mode := conn.Modes[0]
			t.Mode = &mode
		}
	}
	return t, nil
}

// NeedsModeSet reports whether the output must be lit before a plane can be
// shown on it.
func (t Target) NeedsModeSet() bool {
	return t.EncoderID == 0 && !t.CrtcActive
}

// SelectPlane returns the first plane that matches t.PlaneID (any plane when
// zero), supports cc, can be routed to the target crtc and is idle or already
// on that crtc.
func SelectPlane(res *linuxdrm.Resources, t Target, cc format.FourCC) (uint32, error) {
	pipe := res.CrtcIndex(t.CrtcID)
	if pipe < 0 {
		return 0, newError(ErrCodeNoCrtc, fmt.Sprintf("crtc %d not found", t.CrtcID), nil)
	}

	for i := range res.Planes {
		p := &res.Planes[i]
		if t.PlaneID != 0 && p.ID != t.PlaneID {
			continue
		}
		if !p.SupportsFormat(uint32(cc)) {
			continue
		}
		if p.CompatibleWith(pipe) && (p.CrtcID == 0 || p.CrtcID == t.CrtcID) {
			return p.ID, nil
		}
	}
	return 0, newError(ErrCodeNoPlane, fmt.Sprintf("%s on crtc %d", cc, t.CrtcID), ErrNoPlane)
}

// Request describes the image to show.
type Request struct {
	Format format.Format
	// Source image size.
	Width, Height int
	// On-screen rectangle.
	X, Y         int
	CrtcW, CrtcH int
	// Fill writes the pixels into the freshly mapped planes.
	Fill func(planes []layout.Plane) error
}

// RequestFor builds a request that places the source image of g at its
// decoded on-screen rectangle.
func RequestFor(f format.Format, g mlc.Geometry, fill func([]layout.Plane) error) Request {
	return Request{
		Format: f,
		Width:  g.SrcWidth,
		Height: g.SrcHeight,
		X:      g.X,
		Y:      g.Y,
		CrtcW:  g.Width,
		CrtcH:  g.Height,
		Fill:   fill,
	}
}

// Binding is a surface shown on a plane. Release undoes it.
type Binding struct {
	PlaneID uint32
	CrtcID  uint32
	FBID    uint32
	Surface *layout.Surface

	dev          Device
	planeEnabled bool
	released     bool
}

// Bind allocates a surface, fills it, wraps it in a framebuffer, lights the
// output if needed and shows the framebuffer on a plane. On failure every
// acquired resource is released before returning.
func Bind(dev Device, res *linuxdrm.Resources, t Target, req Request) (_ *Binding, err error) {
	log := logging.GetLogger("binder")
	d := req.Format.Descriptor()

	planeID, err := SelectPlane(res, t, d.FourCC)
	if err != nil {
		return nil, err
	}
	log.Info("Binding overlay plane",
		"plane", planeID, "crtc", t.CrtcID, "format", d.Name,
		"src", fmt.Sprintf("%dx%d", req.Width, req.Height))

	b := &Binding{PlaneID: planeID, CrtcID: t.CrtcID, dev: dev}
	defer func() {
		if err != nil {
			if rerr := b.Release(); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
	}()

	b.Surface, err = layout.NewSurface(dumbAllocator{dev}, req.Format, req.Width, req.Height)
	if err != nil {
		return nil, newError(ErrCodeAlloc, fmt.Sprintf("%s %dx%d", d.Name, req.Width, req.Height), err)
	}

	if req.Fill != nil {
		if err = req.Fill(b.Surface.Planes()); err != nil {
			return nil, newError(ErrCodeFill, d.Name, err)
		}
	}

	l := b.Surface.Layout
	b.FBID, err = dev.AddFB2(&linuxdrm.FB2{
		Width:       uint32(req.Width),
		Height:      uint32(req.Height),
		PixelFormat: uint32(d.FourCC),
		Handles:     l.Handles,
		Pitches:     l.Pitches,
		Offsets:     l.Offsets,
	})
	if err != nil {
		return nil, newError(ErrCodeAddFB, fmt.Sprintf("%s %dx%d", d.Name, req.Width, req.Height), err)
	}

	if t.NeedsModeSet() {
		if err = lightOutput(dev, t, b.FBID); err != nil {
			return nil, err
		}
	}

	err = dev.SetPlane(&linuxdrm.PlaneConfig{
		PlaneID: planeID,
		CrtcID:  t.CrtcID,
		FBID:    b.FBID,
		CrtcX:   int32(req.X),
		CrtcY:   int32(req.Y),
		CrtcW:   uint32(req.CrtcW),
		CrtcH:   uint32(req.CrtcH),
		SrcW:    uint32(req.Width) << 16,
		SrcH:    uint32(req.Height) << 16,
	})
	if err != nil {
		return nil, newError(ErrCodeSetPlane, fmt.Sprintf("plane %d crtc %d", planeID, t.CrtcID), err)
	}
	b.planeEnabled = true

	log.Debug("Plane enabled",
		"plane", planeID, "fb", b.FBID,
		"crtc_rect", fmt.Sprintf("%d,%d %dx%d", req.X, req.Y, req.CrtcW, req.CrtcH))
	return b, nil
}

func lightOutput(dev Device, t Target, fbID uint32) error {
	if t.ConnectorID == 0 {
		return newError(ErrCodeNoConnector, fmt.Sprintf("device %d crtc %d", t.Device, t.CrtcID), nil)
	}
	if t.Mode == nil {
		return newError(ErrCodeNoMode, fmt.Sprintf("connector %d", t.ConnectorID), nil)
	}
	logging.GetLogger("binder").Info("Setting mode",
		"crtc", t.CrtcID, "connector", t.ConnectorID, "mode", t.Mode.ModeName())

	err := dev.SetCrtc(&linuxdrm.CrtcConfig{
		CrtcID:     t.CrtcID,
		FBID:       fbID,
		Connectors: []uint32{t.ConnectorID},
		Mode:       t.Mode,
	})
	if err != nil {
		return newError(ErrCodeSetCrtc, fmt.Sprintf("crtc %d connector %d", t.CrtcID, t.ConnectorID), err)
	}
	// Not every driver implements dirty tracking.
	_ = dev.DirtyFB(fbID)
	return nil
}

// Release disables the plane, removes the framebuffer and destroys the
// surface, in that order. Every step is attempted even if an earlier one
// fails. Calling Release again is a no-op.
func (b *Binding) Release() error {
	if b == nil || b.released {
		return nil
	}
	b.released = true

	var errs []error
	if b.planeEnabled {
		if err := b.dev.DisablePlane(b.PlaneID); err != nil {
			errs = append(errs, fmt.Errorf("disable plane %d: %w", b.PlaneID, err))
		}
		b.planeEnabled = false
	}
	if b.FBID != 0 {
		if err := b.dev.RmFB(b.FBID); err != nil {
			errs = append(errs, fmt.Errorf("remove fb %d: %w", b.FBID, err))
		}
	}
	if b.Surface != nil {
		if err := b.Surface.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return newError(ErrCodeRelease, fmt.Sprintf("plane %d", b.PlaneID), errors.Join(errs...))
	}
	return nil
}

// dumbAllocator backs layout surfaces with DRM dumb buffers.
type dumbAllocator struct {
	dev Device
}

func (a dumbAllocator) CreateBuffer(width, height, bpp int) (layout.Buffer, error) {
	db, err := a.dev.CreateDumb(uint32(width), uint32(height), uint32(bpp))
	if err != nil {
		return layout.Buffer{}, err
	}
	return layout.Buffer{Handle: db.Handle, Pitch: int(db.Pitch), Size: int(db.Size)}, nil
}

func (a dumbAllocator) MapBuffer(b layout.Buffer) ([]byte, error) {
	return a.dev.MapDumb(linuxdrm.DumbBuffer{Handle: b.Handle, Pitch: uint32(b.Pitch), Size: uint64(b.Size)})
}

func (a dumbAllocator) UnmapBuffer(mem []byte) error {
	return a.dev.Unmap(mem)
}

func (a dumbAllocator) DestroyBuffer(handle uint32) error {
	return a.dev.DestroyDumb(handle)
}
