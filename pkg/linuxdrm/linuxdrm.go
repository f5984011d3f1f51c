// Package linuxdrm provides pure Go bindings to the Linux DRM/KMS mode
// setting API: resource enumeration, dumb buffers, framebuffers, crtc mode
// set and legacy plane updates.
//
// This package does not use cgo. Struct layouts match the kernel uapi
// headers on amd64, arm64 and arm and are checked at compile time.
//
// # Opening a card
//
// Open a card by path or find it by driver name:
//
//	dev, err := linuxdrm.OpenDriver("nexell")
//	defer dev.Close()
//
// # Enumeration
//
// Enumerate returns every crtc, encoder, connector and plane:
//
//	res, _ := dev.Enumerate()
//	for _, p := range res.Planes {
//	    fmt.Printf("plane %d crtcs 0x%x\n", p.ID, p.PossibleCrtcs)
//	}
//
// # Scanout
//
// Create a dumb buffer, map it, wrap it in a framebuffer with AddFB2 and
// show it with SetPlane. Release in reverse order.
package linuxdrm
