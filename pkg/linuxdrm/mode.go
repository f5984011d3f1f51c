//go:build linux

package linuxdrm

import (
	"fmt"
	"runtime"
	"unsafe"
)

// Enumerate reads every crtc, encoder, connector and plane of the card.
// Universal planes are requested so primary and cursor planes are listed
// too.
func (d *Device) Enumerate() (*Resources, error) {
	// Older kernels reject the cap; overlay planes are still listed then.
	_ = d.SetClientCap(ClientCapUniversalPlanes, 1)

	var res drmModeCardRes
	if err := ioctl(d.fd, drmIoctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETRESOURCES: %w", err)
	}

	fbs := make([]uint32, res.countFbs)
	crtcs := make([]uint32, res.countCrtcs)
	connectors := make([]uint32, res.countConnectors)
	encoders := make([]uint32, res.countEncoders)
	res.fbIDPtr = ptr(fbs)
	res.crtcIDPtr = ptr(crtcs)
	res.connectorIDPtr = ptr(connectors)
	res.encoderIDPtr = ptr(encoders)

	err := ioctl(d.fd, drmIoctlModeGetResources, unsafe.Pointer(&res))
	runtime.KeepAlive(fbs)
	runtime.KeepAlive(crtcs)
	runtime.KeepAlive(connectors)
	runtime.KeepAlive(encoders)
	if err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETRESOURCES: %w", err)
	}

	out := &Resources{
		MinWidth:  res.minWidth,
		MaxWidth:  res.maxWidth,
		MinHeight: res.minHeight,
		MaxHeight: res.maxHeight,
	}

	for _, id := range crtcs[:min(len(crtcs), int(res.countCrtcs))] {
		c, err := d.GetCrtc(id)
		if err != nil {
			return nil, err
		}
		out.Crtcs = append(out.Crtcs, *c)
	}
	for _, id := range encoders[:min(len(encoders), int(res.countEncoders))] {
		e, err := d.GetEncoder(id)
		if err != nil {
			return nil, err
		}
		out.Encoders = append(out.Encoders, *e)
	}
	for _, id := range connectors[:min(len(connectors), int(res.countConnectors))] {
		c, err := d.GetConnector(id)
		if err != nil {
			return nil, err
		}
		out.Connectors = append(out.Connectors, *c)
	}

	planeIDs, err := d.GetPlaneResources()
	if err != nil {
		return nil, err
	}
	for _, id := range planeIDs {
		p, err := d.GetPlane(id)
		if err != nil {
			return nil, err
		}
		out.Planes = append(out.Planes, *p)
	}

	return out, nil
}

// GetCrtc returns the current state of a crtc.
func (d *Device) GetCrtc(id uint32) (*Crtc, error) {
	arg := drmModeCrtc{crtcID: id}
	if err := ioctl(d.fd, drmIoctlModeGetCrtc, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETCRTC %d: %w", id, err)
	}
	return &Crtc{
		ID:        arg.crtcID,
		FBID:      arg.fbID,
		X:         arg.x,
		Y:         arg.y,
		GammaSize: arg.gammaSize,
		ModeValid: arg.modeValid != 0,
		Mode:      arg.mode,
	}, nil
}

// SetCrtc programs a mode and routes the crtc to the given connectors.
func (d *Device) SetCrtc(cfg *CrtcConfig) error {
	arg := drmModeCrtc{
		setConnectorsPtr: ptr(cfg.Connectors),
		countConnectors:  uint32(len(cfg.Connectors)),
		crtcID:           cfg.CrtcID,
		fbID:             cfg.FBID,
		x:                cfg.X,
		y:                cfg.Y,
	}
	if cfg.Mode != nil {
		arg.mode = *cfg.Mode
		arg.modeValid = 1
	}

	err := ioctl(d.fd, drmIoctlModeSetCrtc, unsafe.Pointer(&arg))
	runtime.KeepAlive(cfg.Connectors)
	if err != nil {
		return fmt.Errorf("DRM_IOCTL_MODE_SETCRTC %d: %w", cfg.CrtcID, err)
	}
	return nil
}

// GetEncoder returns an encoder.
func (d *Device) GetEncoder(id uint32) (*Encoder, error) {
	arg := drmModeGetEncoder{encoderID: id}
	if err := ioctl(d.fd, drmIoctlModeGetEncoder, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETENCODER %d: %w", id, err)
	}
	return &Encoder{
		ID:             arg.encoderID,
		Type:           arg.encoderType,
		CrtcID:         arg.crtcID,
		PossibleCrtcs:  arg.possibleCrtcs,
		PossibleClones: arg.possibleClones,
	}, nil
}

// GetConnector returns a connector with its modes and encoders. Properties
// are not fetched.
func (d *Device) GetConnector(id uint32) (*Connector, error) {
	arg := drmModeGetConnector{connectorID: id}
	if err := ioctl(d.fd, drmIoctlModeGetConnector, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETCONNECTOR %d: %w", id, err)
	}

	modes := make([]ModeInfo, arg.countModes)
	encoders := make([]uint32, arg.countEncoders)
	arg.modesPtr = ptr(modes)
	arg.encodersPtr = ptr(encoders)
	arg.countProps = 0
	arg.propsPtr = 0
	arg.propValuesPtr = 0

	err := ioctl(d.fd, drmIoctlModeGetConnector, unsafe.Pointer(&arg))
	runtime.KeepAlive(modes)
	runtime.KeepAlive(encoders)
	if err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETCONNECTOR %d: %w", id, err)
	}

	return &Connector{
		ID:         arg.connectorID,
		EncoderID:  arg.encoderID,
		Type:       arg.connectorType,
		TypeID:     arg.connectorTypeID,
		Connection: arg.connection,
		MMWidth:    arg.mmWidth,
		MMHeight:   arg.mmHeight,
		Subpixel:   arg.subpixel,
		Modes:      modes[:min(len(modes), int(arg.countModes))],
		Encoders:   encoders[:min(len(encoders), int(arg.countEncoders))],
	}, nil
}

// GetPlaneResources returns the ids of all planes.
func (d *Device) GetPlaneResources() ([]uint32, error) {
	var arg drmModeGetPlaneRes
	if err := ioctl(d.fd, drmIoctlModeGetPlaneResource, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETPLANERESOURCES: %w", err)
	}

	ids := make([]uint32, arg.countPlanes)
	arg.planeIDPtr = ptr(ids)
	err := ioctl(d.fd, drmIoctlModeGetPlaneResource, unsafe.Pointer(&arg))
	runtime.KeepAlive(ids)
	if err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETPLANERESOURCES: %w", err)
	}
	return ids[:min(len(ids), int(arg.countPlanes))], nil
}

// GetPlane returns a plane with its supported formats.
func (d *Device) GetPlane(id uint32) (*Plane, error) {
	arg := drmModeGetPlane{planeID: id}
	if err := ioctl(d.fd, drmIoctlModeGetPlane, unsafe.Pointer(&arg)); err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETPLANE %d: %w", id, err)
	}

	formats := make([]uint32, arg.countFormatTypes)
	arg.formatTypePtr = ptr(formats)
	err := ioctl(d.fd, drmIoctlModeGetPlane, unsafe.Pointer(&arg))
	runtime.KeepAlive(formats)
	if err != nil {
		return nil, fmt.Errorf("DRM_IOCTL_MODE_GETPLANE %d: %w", id, err)
	}

	return &Plane{
		ID:            arg.planeID,
		CrtcID:        arg.crtcID,
		FBID:          arg.fbID,
		PossibleCrtcs: arg.possibleCrtcs,
		GammaSize:     arg.gammaSize,
		Formats:       formats[:min(len(formats), int(arg.countFormatTypes))],
	}, nil
}

// SetPlane shows a framebuffer on a plane. A zero FBID disables the plane.
func (d *Device) SetPlane(cfg *PlaneConfig) error {
	arg := *cfg
	if err := ioctl(d.fd, drmIoctlModeSetPlane, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("DRM_IOCTL_MODE_SETPLANE %d: %w", cfg.PlaneID, err)
	}
	return nil
}

// DisablePlane detaches any framebuffer from a plane.
func (d *Device) DisablePlane(planeID uint32) error {
	return d.SetPlane(&PlaneConfig{PlaneID: planeID})
}

// AddFB2 registers a framebuffer and returns its id.
func (d *Device) AddFB2(fb *FB2) (uint32, error) {
	arg := drmModeFBCmd2{
		width:       fb.Width,
		height:      fb.Height,
		pixelFormat: fb.PixelFormat,
		flags:       fb.Flags,
		handles:     fb.Handles,
		pitches:     fb.Pitches,
		offsets:     fb.Offsets,
		modifier:    fb.Modifier,
	}
	if err := ioctl(d.fd, drmIoctlModeAddFB2, unsafe.Pointer(&arg)); err != nil {
		return 0, fmt.Errorf("DRM_IOCTL_MODE_ADDFB2: %w", err)
	}
	return arg.fbID, nil
}

// RmFB removes a framebuffer.
func (d *Device) RmFB(id uint32) error {
	arg := id
	if err := ioctl(d.fd, drmIoctlModeRmFB, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("DRM_IOCTL_MODE_RMFB %d: %w", id, err)
	}
	return nil
}

// DirtyFB flushes a whole framebuffer on drivers that need it.
func (d *Device) DirtyFB(id uint32) error {
	arg := drmModeFBDirtyCmd{fbID: id}
	if err := ioctl(d.fd, drmIoctlModeDirtyFB, unsafe.Pointer(&arg)); err != nil {
		return fmt.Errorf("DRM_IOCTL_MODE_DIRTYFB %d: %w", id, err)
	}
	return nil
}
