package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"

	"github.com/smazurov/mlcsnap/internal/mlc"
	"github.com/smazurov/mlcsnap/internal/snapshot"
)

type memSource map[uint32][]byte

func (m memSource) Plane(spec mlc.PlaneSpec) ([]byte, error) {
	return m[spec.Address], nil
}

// writeSnapshot stores a 16x4 ARGB8888 capture of mlc.1 rgb1 placed at 8,2.
func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()

	regs := &mlc.Registers{}
	regs.RGB[1] = mlc.RGBLayer{
		LeftRight: 8<<16 | 23,
		TopBottom: 2<<16 | 5,
		Control:   uint32(mlc.RGBFmtA8R8G8B8) | mlc.FieldLayerEnb.Mask(),
		HStride:   4,
		VStride:   64,
		Address:   0x80000000,
	}
	hdr, err := snapshot.NewHeader(1, int(mlc.LayerRGB1), regs)
	if err != nil {
		t.Fatalf("NewHeader() failed: %v", err)
	}

	pixels := make([]byte, 64*4)
	for i := 0; i < len(pixels); i += 4 {
		copy(pixels[i:], []byte{0x00, 0x00, 0xff, 0xff})
	}

	path := filepath.Join(dir, "layer.raw")
	if _, err := snapshot.Create(path, hdr, memSource{0x80000000: pixels}, nil); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return path
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	opts := &Options{}
	root := NewRootCmd(opts)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestInspectText(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir)

	out, err := execute(t, dir, "inspect", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"FILE  - " + path, "MLC.1 - Layer.1", "MLC.1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestInspectYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir)

	out, err := execute(t, dir, "inspect", "--output", "yaml", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var report snapshotReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to parse report: %v\n%s", err, out)
	}
	if report.Device != 1 || report.Layer != "rgb1" {
		t.Errorf("Expected mlc.1 rgb1, got mlc.%d %s", report.Device, report.Layer)
	}
	if report.Format != "ARGB8888" || report.FourCC != "AR24" {
		t.Errorf("Expected ARGB8888/AR24, got %s/%s", report.Format, report.FourCC)
	}
	g := report.Geometry
	if g.X != 8 || g.Y != 2 || g.SrcWidth != 16 || g.SrcHeight != 4 {
		t.Errorf("Geometry = %+v, want 16x4 at 8,2", g)
	}
	if len(report.Planes) != 1 || report.Planes[0].Address != "0x80000000" || report.Planes[0].Pitch != 64 {
		t.Errorf("Planes = %+v", report.Planes)
	}
	if report.Payload.Expected != 256 || report.Payload.Stored != 256 {
		t.Errorf("Payload = %+v, want 256/256", report.Payload)
	}
}

func TestInspectVideoLayer(t *testing.T) {
	dir := t.TempDir()

	// 16x8 YUV420 source shown 32 wide through a 0.5 horizontal scale.
	regs := &mlc.Registers{}
	regs.YUV = mlc.YUVLayer{
		LeftRight: 31,
		TopBottom: 7,
		Control:   uint32(mlc.YUVFmt420) | mlc.FieldLayerEnb.Mask(),
		VStride:   16,
		Address:   0x90000000,
		AddressCb: 0x90100000,
		AddressCr: 0x90200000,
		VStrideCb: 8,
		VStrideCr: 8,
		HScale:    3<<28 | 1024,
	}
	hdr, err := snapshot.NewHeader(0, int(mlc.LayerVideo), regs)
	if err != nil {
		t.Fatalf("NewHeader() failed: %v", err)
	}
	src := memSource{
		0x90000000: make([]byte, 16*8),
		0x90100000: make([]byte, 8*4),
		0x90200000: make([]byte, 8*4),
	}
	path := filepath.Join(dir, "video.raw")
	if _, err := snapshot.Create(path, hdr, src, nil); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	out, err := execute(t, dir, "inspect", "--output", "yaml", path)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var report snapshotReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to parse report: %v\n%s", err, out)
	}
	if report.Hardware != "YUV420" || report.Format != "YUV420" {
		t.Errorf("Expected YUV420, got %s/%s", report.Hardware, report.Format)
	}
	g := report.Geometry
	if g.Width != 32 || g.SrcWidth != 16 || g.HScale != 1024 || g.ScaledWidth != 16 {
		t.Errorf("Geometry = %+v, want 32 wide, 16 source, scaled width 16", g)
	}
	if len(report.Planes) != 3 {
		t.Errorf("Expected 3 planes, got %d", len(report.Planes))
	}
}

func TestInspectRejectsUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir)

	if _, err := execute(t, dir, "inspect", "--output", "xml", path); err == nil {
		t.Error("Expected error for unknown output")
	}
}

func TestInspectBadSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.raw")
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, 2048), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, dir, "inspect", path)
	if !errors.Is(err, snapshot.ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature, got %v", err)
	}
}

func TestExportBMP(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir)
	out := filepath.Join(dir, "layer.bmp")

	if _, err := execute(t, dir, "export", path, out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("Failed to open image: %v", err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("bmp.Decode() failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 4 {
		t.Errorf("Image size = %dx%d, want 16x4", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(3, 3).RGBA()
	if r>>8 != 0xff || g != 0 || b != 0 {
		t.Errorf("Pixel (3,3) = %d,%d,%d, want red", r>>8, g>>8, b>>8)
	}
}

func TestMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir)
	prom := filepath.Join(dir, "mlcsnap.prom")

	if _, err := execute(t, dir, "--metrics-textfile", prom, "export", path, filepath.Join(dir, "out.bmp")); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("Expected metrics textfile: %v", err)
	}
	for _, want := range []string{
		`mlcsnap_runs_total{command="export",result="success"}`,
		`mlcsnap_payload_bytes{command="export"} 256`,
		`layer="rgb1"`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in textfile, got:\n%s", want, data)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"print bad device", []string{"print", "2"}, mlc.ErrInvalidDevice},
		{"print bad layer", []string{"print", "0", "3"}, mlc.ErrInvalidLayer},
		{"capture bad device", []string{"capture", "x", "0", filepath.Join(dir, "a.raw")}, mlc.ErrInvalidDevice},
		{"capture bad layer", []string{"capture", "0", "overlay", filepath.Join(dir, "a.raw")}, mlc.ErrInvalidLayer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dir, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := execute(t, dir, "replay", filepath.Join(dir, "missing.raw")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected missing snapshot error, got %v", err)
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in   string
		want mlc.Layer
	}{
		{"0", mlc.LayerRGB0},
		{"rgb1", mlc.LayerRGB1},
		{"2", mlc.LayerVideo},
		{"video", mlc.LayerVideo},
	}
	for _, tt := range tests {
		got, err := parseLayer(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseLayer(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "mlcsnap ") {
		t.Errorf("Expected version line, got %q", out)
	}
}
