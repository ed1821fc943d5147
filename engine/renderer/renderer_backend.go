package renderer

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU backend used for headless runs.
	BackendTypeSoftware
)

// ParseBackendType maps a configuration name ("wgpu" or "software") to a backend type.
func ParseBackendType(name string) (RendererBackendType, bool) {
	switch name {
	case "wgpu", "":
		return BackendTypeWGPU, true
	case "software", "soft":
		return BackendTypeSoftware, true
	default:
		return BackendTypeWGPU, false
	}
}

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// RendererBackend is what the Renderer needs from a backend: a device to record on and,
// when rendering to a window, a surface to present to.
type RendererBackend interface {
	// Device returns the backend's device.
	//
	// Returns:
	//   - gpu.Device: the device
	Device() gpu.Device

	// Surface returns the presentable surface, or nil when the backend renders offscreen.
	//
	// Returns:
	//   - gpu.Surface: the surface or nil
	Surface() gpu.Surface

	// Release frees the device and surface.
	Release()
}
