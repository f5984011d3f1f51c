// Package mlc models the register window of the Multi-Layer Controller, the
// display compositor of Nexell SoCs.
//
// A controller blends two RGB layers and one video (YUV) layer over a
// background color. Its state is captured as a byte-exact Registers image and
// decoded on demand into per-layer geometry, hardware pixel format and the
// list of planes the hardware fetches. Live windows are reached through a
// Registry of Window implementations, so the same code runs against /dev/mem
// mappings and in-memory images.
package mlc
