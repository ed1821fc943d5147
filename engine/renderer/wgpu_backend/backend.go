// Package wgpu_backend implements the gpu device contract on WebGPU through cogentcore/webgpu.
package wgpu_backend

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Backend owns the WebGPU instance, adapter, device and, when rendering to a window, the surface.
type Backend struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *Device
	surface  *Surface

	forceFallbackAdapter bool
	presentMode          gpu.PresentMode
	width, height        int
	released             bool
}

var _ renderer.RendererBackend = &Backend{}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithForceFallbackAdapter requests the software fallback adapter.
func WithForceFallbackAdapter(force bool) BackendOption {
	return func(b *Backend) {
		b.forceFallbackAdapter = force
	}
}

// WithPresentMode sets how frames are presented. Defaults to vsync.
func WithPresentMode(mode gpu.PresentMode) BackendOption {
	return func(b *Backend) {
		b.presentMode = mode
	}
}

// WithSurfaceSize sets the size the surface is first configured with.
func WithSurfaceSize(width, height int) BackendOption {
	return func(b *Backend) {
		b.width = width
		b.height = height
	}
}

// NewBackend creates a WebGPU device, and a surface when surfaceDescriptor is not nil.
//
// Parameters:
//   - surfaceDescriptor: the window's surface descriptor, or nil to render offscreen
//   - opts: variadic list of BackendOption functions
//
// Returns:
//   - *Backend: the backend with a configured surface
//   - error: error if no adapter or device could be obtained
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, opts ...BackendOption) (*Backend, error) {
	runtime.LockOSThread()
	b := &Backend{presentMode: gpu.PresentModeVSync}
	for _, opt := range opts {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	var surface *wgpu.Surface
	if surfaceDescriptor != nil {
		surface = b.instance.CreateSurface(surfaceDescriptor)
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		b.instance.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-swarm device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = &Device{device: device, queue: device.GetQueue()}

	if surface != nil {
		b.surface = newSurface(surface, adapter, device, b.presentMode)
		b.surface.Configure(b.width, b.height)
		logger.Logger().Info("surface configured", "format", b.surface.Format(), "width", b.width, "height", b.height)
	}
	return b, nil
}

func (b *Backend) Device() gpu.Device {
	return b.device
}

func (b *Backend) Surface() gpu.Surface {
	// A nil *Surface must not become a non-nil interface.
	if b.surface == nil {
		return nil
	}
	return b.surface
}

func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	if b.surface != nil {
		b.surface.release()
	}
	b.device.queue.Release()
	b.device.device.Release()
	b.adapter.Release()
	b.instance.Release()
}
