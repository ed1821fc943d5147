package bind

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"

// LinearSampler creates a clamped sampler with linear filtering.
func LinearSampler(device gpu.Device) (gpu.Sampler, error) {
	return device.CreateSampler(&gpu.SamplerDescriptor{
		Label:       "linear_sampler",
		AddressMode: gpu.AddressModeClampToEdge,
		MagFilter:   gpu.FilterModeLinear,
		MinFilter:   gpu.FilterModeLinear,
	})
}

// NearestSampler creates a clamped sampler with nearest filtering.
func NearestSampler(device gpu.Device) (gpu.Sampler, error) {
	return device.CreateSampler(&gpu.SamplerDescriptor{
		Label:       "nearest_sampler",
		AddressMode: gpu.AddressModeClampToEdge,
		MagFilter:   gpu.FilterModeNearest,
		MinFilter:   gpu.FilterModeNearest,
	})
}
