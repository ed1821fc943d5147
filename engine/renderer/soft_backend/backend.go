package soft_backend

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"

// Backend pairs a CPU device with an optional offscreen surface.
type Backend struct {
	device  *Device
	surface *Surface
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithSurface gives the backend an offscreen surface of the given size.
func WithSurface(width, height int) BackendOption {
	return func(b *Backend) {
		b.surface = NewSurface(b.device, width, height)
	}
}

// WithDeviceOptions applies options to the backend's device.
func WithDeviceOptions(opts ...DeviceOption) BackendOption {
	return func(b *Backend) {
		for _, opt := range opts {
			opt(b.device)
		}
	}
}

// NewBackend creates a CPU backend.
//
// Parameters:
//   - opts: variadic list of BackendOption functions
//
// Returns:
//   - *Backend: the backend
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{device: NewDevice()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Device() gpu.Device {
	return b.device
}

func (b *Backend) Surface() gpu.Surface {
	if b.surface == nil {
		return nil
	}
	return b.surface
}

// SoftDevice returns the concrete device for kernel registration and pass inspection.
func (b *Backend) SoftDevice() *Device {
	return b.device
}

// SoftSurface returns the concrete surface, or nil.
func (b *Backend) SoftSurface() *Surface {
	return b.surface
}

func (b *Backend) Release() {}
