package soft_backend

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Surface is an offscreen stand-in for a window surface. Every Acquire returns the same texture.
type Surface struct {
	mu       sync.Mutex
	device   *Device
	format   gpu.TextureFormat
	texture  *Texture
	presents int
}

var _ gpu.Surface = &Surface{}

// NewSurface creates a surface of the given size in BGRA8Unorm.
//
// Parameters:
//   - device: the device the surface texture is created on
//   - width, height: the surface size in pixels
//
// Returns:
//   - *Surface: the surface
func NewSurface(device *Device, width, height int) *Surface {
	s := &Surface{device: device, format: gpu.TextureFormatBGRA8Unorm}
	s.Configure(width, height)
	return s
}

func (s *Surface) Format() gpu.TextureFormat {
	return s.format
}

func (s *Surface) Configure(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		s.texture = nil
		return
	}
	t, err := newTexture(&gpu.TextureDescriptor{
		Label:  "surface",
		Format: s.format,
		Size:   gpu.Extent{Width: uint32(width), Height: uint32(height), Layers: 1},
		Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageCopySrc,
	})
	if err != nil {
		s.texture = nil
		return
	}
	s.texture = t
}

func (s *Surface) Acquire() (gpu.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texture == nil {
		return nil, fmt.Errorf("surface not configured: %w", gpu.ErrNotReady)
	}
	return s.texture, nil
}

func (s *Surface) Present() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presents++
}

// Presents returns the number of presented frames.
func (s *Surface) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Image converts the last presented frame to an 8 bit RGBA image.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	t := s.texture
	s.mu.Unlock()
	if t == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	size := t.Size()
	img := image.NewRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
	for y := uint32(0); y < size.Height; y++ {
		for x := uint32(0); x < size.Width; x++ {
			f := t.LoadFloat(x, y, 0)
			img.SetRGBA(int(x), int(y), color.RGBA{
				R: to8(f[0]), G: to8(f[1]), B: to8(f[2]), A: to8(f[3]),
			})
		}
	}
	return img
}

func to8(f float32) uint8 {
	return uint8(clamp01(f)*255 + 0.5)
}
