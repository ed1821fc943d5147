package deferred

import (
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/engine/light"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
)

// RegisterKernels installs CPU versions of the lighting and tonemap shaders on a software device.
//
// Parameters:
//   - dev: the software device
//   - opts: the options the node was created with, so both sides shade alike
func RegisterKernels(dev *soft_backend.Device, opts ...NodeBuilderOption) {
	n := &node{sun: light.NewLight(), background: [3]float32{0.08, 0.11, 0.07}}
	for _, opt := range opts {
		opt(n)
	}
	lightDir, radiance, ambient := n.sun.ToLight(), n.sun.Radiance(), n.sun.Ambient()

	dev.RegisterKernel(LightingPipelineLabel, soft_backend.Fullscreen(
		func(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
			if inv.Texture(102).Load(x, y, 0)[0] == 0 {
				out[0] = soft_backend.Float4(n.background[0], n.background[1], n.background[2], 1)
				return
			}
			texel := inv.Texture(101).Load(x, y, 0)
			albedo := Unpack4x8Unorm(texel[0])
			normal := unpack4x8Snorm(texel[1])
			ndl := normal[0]*lightDir[0] + normal[1]*lightDir[1] + normal[2]*lightDir[2]
			if ndl < 0 {
				ndl = 0
			}
			emissive := math.Float32frombits(texel[2])
			var lit [3]float32
			for i := range lit {
				lit[i] = albedo[i] * (ambient + ndl*(1-ambient)*radiance[i] + emissive)
			}
			out[0] = soft_backend.Float4(lit[0], lit[1], lit[2], 1)
		}))

	dev.RegisterKernel(TonemapPipelineLabel, soft_backend.Fullscreen(
		func(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
			c := inv.Texture(101).LoadFloat(x, y, 0)
			out[0] = soft_backend.Float4(c[0]/(1+c[0]), c[1]/(1+c[1]), c[2]/(1+c[2]), 1)
		}))
}

// PackGBuffer builds a G-buffer texel the way pack_gbuffer does in WGSL.
func PackGBuffer(albedo [4]float32, normal [3]float32, emissive float32, flags uint32) [4]uint32 {
	l := float32(math.Sqrt(float64(normal[0]*normal[0] + normal[1]*normal[1] + normal[2]*normal[2])))
	if l > 0 {
		normal = [3]float32{normal[0] / l, normal[1] / l, normal[2] / l}
	}
	return [4]uint32{
		Pack4x8Unorm(albedo),
		pack4x8Snorm([4]float32{normal[0], normal[1], normal[2], 0}),
		math.Float32bits(emissive),
		flags,
	}
}

// Pack4x8Unorm mirrors the WGSL builtin of the same name.
func Pack4x8Unorm(v [4]float32) uint32 {
	var out uint32
	for i, c := range v {
		c = max(0, min(1, c))
		out |= uint32(math.Floor(float64(c*255+0.5))) << (8 * i)
	}
	return out
}

// Unpack4x8Unorm mirrors the WGSL builtin of the same name.
func Unpack4x8Unorm(p uint32) [4]float32 {
	var out [4]float32
	for i := range out {
		out[i] = float32((p>>(8*i))&0xFF) / 255
	}
	return out
}

func pack4x8Snorm(v [4]float32) uint32 {
	var out uint32
	for i, c := range v {
		c = max(-1, min(1, c))
		out |= uint32(uint8(int8(math.Floor(float64(c*127+0.5))))) << (8 * i)
	}
	return out
}

func unpack4x8Snorm(p uint32) [3]float32 {
	var out [3]float32
	for i := range out {
		out[i] = max(-1, float32(int8(p>>(8*i)))/127)
	}
	return out
}
