package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// textureFormat rejects formats the engine has no texel layout for.
func textureFormat(f gpu.TextureFormat) (wgpu.TextureFormat, error) {
	if err := gpu.ValidateFormat(f); err != nil {
		return wgpu.TextureFormatUndefined, err
	}
	return f, nil
}

// engineFormat reports whether a surface format reported by the adapter is one the engine renders to.
func engineFormat(wf wgpu.TextureFormat) (gpu.TextureFormat, bool) {
	if gpu.ValidateFormat(wf) != nil || gpu.IsDepth(wf) {
		return gpu.TextureFormatUndefined, false
	}
	return wf, true
}

func viewDimension(d gpu.TextureViewDimension) wgpu.TextureViewDimension {
	if gpu.Is2DArray(d) {
		return wgpu.TextureViewDimension2DArray
	}
	return wgpu.TextureViewDimension2D
}

func mipmapFilterMode(m gpu.FilterMode) wgpu.MipmapFilterMode {
	if m == gpu.FilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func compareFunction(c gpu.CompareFunction) wgpu.CompareFunction {
	if c == gpu.CompareFunctionUndefined {
		return wgpu.CompareFunctionAlways
	}
	return c
}

func loadOp(op gpu.LoadOp) wgpu.LoadOp {
	if op == gpu.LoadOpUndefined {
		return wgpu.LoadOpLoad
	}
	return op
}

func storeOp(op gpu.StoreOp) wgpu.StoreOp {
	if op == gpu.StoreOpUndefined {
		return wgpu.StoreOpStore
	}
	return op
}

func presentMode(m gpu.PresentMode) wgpu.PresentMode {
	if m == gpu.PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// alphaBlending is straight alpha blending for color and additive coverage for alpha.
var alphaBlending = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
	Alpha: wgpu.BlendComponent{
		Operation: wgpu.BlendOperationAdd,
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
	},
}
