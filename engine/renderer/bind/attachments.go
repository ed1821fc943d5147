package bind

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"

// LoadColor keeps the existing contents of tex and stores the pass output.
func LoadColor(tex gpu.Texture) gpu.ColorAttachment {
	return gpu.ColorAttachment{Texture: tex, LoadOp: gpu.LoadOpLoad, StoreOp: gpu.StoreOpStore}
}

// ClearColor clears tex to transparent black before the pass.
func ClearColor(tex gpu.Texture) gpu.ColorAttachment {
	return gpu.ColorAttachment{Texture: tex, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore}
}

// LoadDepth keeps the existing depth of tex.
func LoadDepth(tex gpu.Texture) *gpu.DepthAttachment {
	return &gpu.DepthAttachment{Texture: tex, LoadOp: gpu.LoadOpLoad, StoreOp: gpu.StoreOpStore}
}

// ClearDepth clears tex to 0, the far plane of the reversed-Z depth buffer.
func ClearDepth(tex gpu.Texture) *gpu.DepthAttachment {
	return &gpu.DepthAttachment{Texture: tex, LoadOp: gpu.LoadOpClear, StoreOp: gpu.StoreOpStore, ClearValue: 0}
}
