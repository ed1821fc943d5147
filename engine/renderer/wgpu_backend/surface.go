package wgpu_backend

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface presents frames to a window through a WebGPU surface.
type Surface struct {
	mu sync.Mutex

	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device

	format      gpu.TextureFormat
	nativeFmt   wgpu.TextureFormat
	alphaMode   wgpu.CompositeAlphaMode
	presentMode wgpu.PresentMode

	width, height int
	current       *Texture
}

var _ gpu.Surface = &Surface{}

func newSurface(surface *wgpu.Surface, adapter *wgpu.Adapter, device *wgpu.Device, mode gpu.PresentMode) *Surface {
	s := &Surface{
		surface:     surface,
		adapter:     adapter,
		device:      device,
		presentMode: presentMode(mode),
		format:      gpu.TextureFormatBGRA8Unorm,
		nativeFmt:   wgpu.TextureFormatBGRA8Unorm,
	}

	// Prefer a non-sRGB format the engine knows; the tonemap pass encodes gamma itself.
	capabilities := surface.GetCapabilities(adapter)
	for _, wf := range capabilities.Formats {
		f, ok := engineFormat(wf)
		if !ok {
			continue
		}
		s.format, s.nativeFmt = f, wf
		if f == gpu.TextureFormatBGRA8Unorm || f == gpu.TextureFormatRGBA8Unorm {
			break
		}
	}
	if len(capabilities.AlphaModes) > 0 {
		s.alphaMode = capabilities.AlphaModes[0]
	}
	return s
}

func (s *Surface) Format() gpu.TextureFormat {
	return s.format
}

func (s *Surface) Configure(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	if width <= 0 || height <= 0 {
		return
	}
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.nativeFmt,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: s.presentMode,
		AlphaMode:   s.alphaMode,
	})
}

func (s *Surface) Acquire() (gpu.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width <= 0 || s.height <= 0 {
		return nil, fmt.Errorf("surface minimized: %w", gpu.ErrNotReady)
	}
	if s.current != nil {
		return nil, fmt.Errorf("previous frame not presented: %w", gpu.ErrNotReady)
	}

	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("surface texture: %w: %w", gpu.ErrNotReady, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("surface view: %w", err)
	}
	s.current = &Texture{
		label:   "surface",
		format:  s.format,
		size:    gpu.Extent{Width: uint32(s.width), Height: uint32(s.height), Layers: 1},
		texture: tex,
		view:    view,
	}
	return s.current, nil
}

func (s *Surface) Present() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.surface.Present()
	s.current.release()
	s.current = nil
}

func (s *Surface) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.release()
		s.current = nil
	}
	s.surface.Release()
}
