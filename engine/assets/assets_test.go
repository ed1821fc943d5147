package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
)

func solid(size int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter() error = %v", err)
	}
	if _, err := enc.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newServer(t *testing.T, opts ...ServerBuilderOption) Server {
	t.Helper()
	s := NewServer(opts...)
	t.Cleanup(s.Release)
	return s
}

func TestLoadFormats(t *testing.T) {
	red := color.RGBA{R: 200, G: 20, B: 40, A: 255}
	img := solid(4, red)

	pngData := encodePNG(t, img)
	var bmpBuf, jpegBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatalf("bmp.Encode() error = %v", err)
	}
	if err := jpeg.Encode(&jpegBuf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}

	fsys := fstest.MapFS{
		"red.png":     {Data: pngData},
		"red.png.zst": {Data: compress(t, pngData)},
		"red.bmp":     {Data: bmpBuf.Bytes()},
		"red.jpg":     {Data: jpegBuf.Bytes()},
	}
	s := newServer(t, WithFS(fsys))

	tests := []struct {
		path string
		tol  int
	}{
		{path: "red.png"},
		{path: "red.png.zst"},
		{path: "red.bmp"},
		{path: "red.jpg", tol: 8},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			h := s.Load(tt.path)
			if err := h.Wait(waitCtx(t)); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			if h.State() != StateLoaded {
				t.Fatalf("State() = %v", h.State())
			}
			got, err := h.Image()
			if err != nil {
				t.Fatalf("Image() error = %v", err)
			}
			if got.Rect.Dx() != 4 || got.Rect.Dy() != 4 {
				t.Fatalf("size = %v, want 4x4", got.Rect)
			}
			c := got.RGBAAt(2, 1)
			if !near(c.R, red.R, tt.tol) || !near(c.G, red.G, tt.tol) || !near(c.B, red.B, tt.tol) || c.A != 255 {
				t.Errorf("pixel = %v, want %v", c, red)
			}
		})
	}
}

func TestLoadFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.png":  {Data: []byte("not a png")},
		"sprite.gif":  {Data: []byte("GIF89a")},
		"broken.webp": {Data: []byte("RIFF")},
	}
	s := newServer(t, WithFS(fsys))

	for _, path := range []string{"missing.png", "broken.png", "sprite.gif", "broken.webp"} {
		t.Run(path, func(t *testing.T) {
			h := s.Load(path)
			if err := h.Wait(waitCtx(t)); !errors.Is(err, gpu.ErrMissingResource) {
				t.Errorf("Wait() error = %v, want ErrMissingResource", err)
			}
			if h.State() != StateFailed {
				t.Errorf("State() = %v, want failed", h.State())
			}
		})
	}
}

func TestLoadIsCached(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: encodePNG(t, solid(2, color.RGBA{A: 255}))}}
	s := newServer(t, WithFS(fsys))

	a := s.Load("a.png")
	b := s.Load("a.png")
	if a != b {
		t.Error("Load() returned a second handle for the same path")
	}
	got, ok := s.Get("a.png")
	if !ok || got != a {
		t.Error("Get() did not return the cached handle")
	}
	if _, ok := s.Get("b.png"); ok {
		t.Error("Get() found a path never loaded")
	}
}

func TestLoadAfterRelease(t *testing.T) {
	s := NewServer(WithFS(fstest.MapFS{}))
	s.Release()
	h := s.Load("late.png")
	if h.State() != StateFailed {
		t.Errorf("State() = %v, want failed", h.State())
	}
}

func TestServerWaitJoinsErrors(t *testing.T) {
	fsys := fstest.MapFS{"ok.png": {Data: encodePNG(t, solid(2, color.RGBA{A: 255}))}}
	s := newServer(t, WithFS(fsys))

	err := s.Wait(waitCtx(t), s.Load("ok.png"), s.Load("gone.png"))
	if !errors.Is(err, gpu.ErrMissingResource) {
		t.Errorf("Wait() error = %v, want ErrMissingResource", err)
	}
	if err := s.Wait(waitCtx(t), s.Load("ok.png")); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestResample(t *testing.T) {
	green := color.RGBA{G: 180, A: 255}
	got := Resample(solid(2, green), 8)
	if got.Rect.Dx() != 8 || got.Rect.Dy() != 8 {
		t.Fatalf("size = %v, want 8x8", got.Rect)
	}
	for _, p := range []image.Point{{0, 0}, {3, 4}, {7, 7}} {
		c := got.RGBAAt(p.X, p.Y)
		if !near(c.G, green.G, 2) || !near(c.A, 255, 2) {
			t.Errorf("pixel %v = %v, want %v", p, c, green)
		}
	}

	kept := Resample(solid(3, green), 0)
	if kept.Rect.Dx() != 3 || kept.Stride != 12 {
		t.Errorf("Resample(0) = %v stride %d, want 3x3 stride 12", kept.Rect, kept.Stride)
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"a.png":     true,
		"A.PNG":     true,
		"a.jpeg":    true,
		"a.webp":    true,
		"a.bmp.zst": true,
		"a.gif":     false,
		"a.zst":     false,
		"no_ext":    false,
		"dir/b.jpg": true,
		"b.tar.zst": false,
	}
	for name, want := range tests {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

// gatedFS blocks every Open until the gate is closed.
type gatedFS struct {
	fs.FS
	gate chan struct{}
}

func (g gatedFS) Open(name string) (fs.File, error) {
	<-g.gate
	return g.FS.Open(name)
}

func spriteFS(t *testing.T, size int) (fstest.MapFS, []string, []color.RGBA) {
	t.Helper()
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	paths := []string{"blue_idle.png", "blue_attack.png", "red_idle.png", "red_attack.png.zst"}
	fsys := fstest.MapFS{}
	for i, p := range paths {
		data := encodePNG(t, solid(size, colors[i]))
		if i == 3 {
			data = compress(t, data)
		}
		fsys[p] = &fstest.MapFile{Data: data}
	}
	return fsys, paths, colors
}

func TestSpriteSheetWaitsForImages(t *testing.T) {
	fsys, paths, colors := spriteFS(t, 4)
	gate := make(chan struct{})
	s := newServer(t, WithFS(gatedFS{FS: fsys, gate: gate}), WithSize(4))

	sheet, err := NewSpriteSheet(s, paths...)
	if err != nil {
		t.Fatalf("NewSpriteSheet() error = %v", err)
	}
	t.Cleanup(sheet.Release)
	dev := soft_backend.NewDevice()

	if _, err := sheet.SpriteTexture(dev); !errors.Is(err, gpu.ErrNotReady) {
		t.Fatalf("SpriteTexture() while loading error = %v, want ErrNotReady", err)
	}

	close(gate)
	if err := s.Wait(waitCtx(t), sheet.Handles()...); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	tex, err := sheet.SpriteTexture(dev)
	if err != nil {
		t.Fatalf("SpriteTexture() error = %v", err)
	}
	size := tex.Size()
	if size.Width != 4 || size.Height != 4 || size.Layers != SpriteLayers {
		t.Fatalf("size = %+v", size)
	}
	st := tex.(*soft_backend.Texture)
	for layer, c := range colors {
		got := st.LoadFloat(1, 2, uint32(layer))
		want := [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
		if got != want {
			t.Errorf("layer %d = %v, want %v", layer, got, want)
		}
	}

	again, err := sheet.SpriteTexture(dev)
	if err != nil || again != tex {
		t.Errorf("second SpriteTexture() = %v, %v, want the same texture", again, err)
	}
	if n := dev.Allocations("unit_sprite_sheet"); n != 1 {
		t.Errorf("Allocations() = %d, want 1", n)
	}
}

func TestSpriteSheetResamples(t *testing.T) {
	fsys, paths, _ := spriteFS(t, 2)
	s := newServer(t, WithFS(fsys), WithSize(8))
	sheet, err := NewSpriteSheet(s, paths...)
	if err != nil {
		t.Fatalf("NewSpriteSheet() error = %v", err)
	}
	t.Cleanup(sheet.Release)
	if err := s.Wait(waitCtx(t), sheet.Handles()...); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	tex, err := sheet.SpriteTexture(soft_backend.NewDevice())
	if err != nil {
		t.Fatalf("SpriteTexture() error = %v", err)
	}
	if size := tex.Size(); size.Width != 8 || size.Height != 8 {
		t.Errorf("size = %+v, want 8x8", size)
	}
}

func TestSpriteSheetMissingLayer(t *testing.T) {
	fsys, paths, _ := spriteFS(t, 4)
	delete(fsys, paths[2])
	s := newServer(t, WithFS(fsys), WithSize(4))

	sheet, err := NewSpriteSheet(s, paths...)
	if err != nil {
		t.Fatalf("NewSpriteSheet() error = %v", err)
	}
	_ = s.Wait(waitCtx(t), sheet.Handles()...)
	if _, err := sheet.SpriteTexture(soft_backend.NewDevice()); !errors.Is(err, gpu.ErrMissingResource) {
		t.Errorf("SpriteTexture() error = %v, want ErrMissingResource", err)
	}
}

func TestNewSpriteSheetRejects(t *testing.T) {
	fsys, paths, _ := spriteFS(t, 4)
	tests := []struct {
		name  string
		size  uint32
		paths []string
	}{
		{name: "too few layers", size: 4, paths: paths[:3]},
		{name: "unsized server", size: 0, paths: paths},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, WithFS(fsys), WithSize(tt.size))
			if _, err := NewSpriteSheet(s, tt.paths...); err == nil {
				t.Error("NewSpriteSheet() succeeded")
			}
		})
	}
}
