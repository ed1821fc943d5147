// Package bind holds the stateless helpers every render node uses to describe its resources:
// bind group layout entries, samplers, uniform buffers, pass attachments and the two pipeline
// shapes the engine renders with (full screen triangle and opaque geometry).
package bind

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"

const (
	// ViewUniformSize is the byte size of the per-view uniform block.
	ViewUniformSize = 224

	// GlobalsUniformSize is the byte size of the globals uniform block.
	GlobalsUniformSize = 16
)

const vertexFragment = gpu.ShaderStageVertex | gpu.ShaderStageFragment

// TextureEntry is a sampled texture layout entry visible to both stages.
func TextureEntry(binding uint32, dim gpu.TextureViewDimension, sampleType gpu.TextureSampleType) gpu.BindGroupLayoutEntry {
	return gpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: vertexFragment,
		Texture:    &gpu.TextureBindingLayout{SampleType: sampleType, ViewDimension: dim},
	}
}

// FloatTexture is a filterable float texture entry.
func FloatTexture(binding uint32, dim gpu.TextureViewDimension) gpu.BindGroupLayoutEntry {
	return TextureEntry(binding, dim, gpu.TextureSampleTypeFloat)
}

// UintTexture is an unsigned integer texture entry.
func UintTexture(binding uint32, dim gpu.TextureViewDimension) gpu.BindGroupLayoutEntry {
	return TextureEntry(binding, dim, gpu.TextureSampleTypeUint)
}

// SintTexture is a signed integer texture entry.
func SintTexture(binding uint32, dim gpu.TextureViewDimension) gpu.BindGroupLayoutEntry {
	return TextureEntry(binding, dim, gpu.TextureSampleTypeSint)
}

// DepthTexture is a depth texture entry.
func DepthTexture(binding uint32, dim gpu.TextureViewDimension) gpu.BindGroupLayoutEntry {
	return TextureEntry(binding, dim, gpu.TextureSampleTypeDepth)
}

// FilteringSampler is a filtering sampler entry.
func FilteringSampler(binding uint32) gpu.BindGroupLayoutEntry {
	return gpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: vertexFragment,
		Sampler:    &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeFiltering},
	}
}

// NonFilteringSampler is a non-filtering sampler entry.
func NonFilteringSampler(binding uint32) gpu.BindGroupLayoutEntry {
	return gpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: vertexFragment,
		Sampler:    &gpu.SamplerBindingLayout{Type: gpu.SamplerBindingTypeNonFiltering},
	}
}

// Uniform is a uniform buffer entry of at least minSize bytes.
func Uniform(binding uint32, minSize uint64) gpu.BindGroupLayoutEntry {
	return gpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: vertexFragment,
		Buffer:     &gpu.BufferBindingLayout{MinBindingSize: minSize},
	}
}

// ViewUniform is the per-view camera uniform entry.
func ViewUniform(binding uint32) gpu.BindGroupLayoutEntry {
	return Uniform(binding, ViewUniformSize)
}

// GlobalsUniform is the time/frame globals uniform entry.
func GlobalsUniform(binding uint32) gpu.BindGroupLayoutEntry {
	return Uniform(binding, GlobalsUniformSize)
}

// FloatTextureArray is a filterable float 2D array texture entry, used for sprite sheets.
func FloatTextureArray(binding uint32) gpu.BindGroupLayoutEntry {
	return TextureEntry(binding, gpu.TextureViewDimension2DArray, gpu.TextureSampleTypeFloat)
}
