package soft_backend

import (
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Kernel executes one draw on the CPU.
type Kernel func(inv *Invocation)

// FragmentFunc computes the outputs of one texel of a full screen pass. out has one entry per
// color target and starts zeroed.
type FragmentFunc func(inv *Invocation, x, y uint32, out [][4]uint32)

// Invocation is the state visible to a kernel: the bound resources and the pass attachments.
type Invocation struct {
	Pipeline      string
	VertexCount   uint32
	InstanceCount uint32
	Targets       []*Texture
	Depth         *Texture

	groups map[uint32]*BindGroup
}

// Texture returns the texture bound at group 0, or nil.
func (inv *Invocation) Texture(binding uint32) *Texture {
	g, ok := inv.groups[0]
	if !ok {
		return nil
	}
	t, _ := g.entries[binding].Texture.(*Texture)
	return t
}

// Uniform returns the bytes of the buffer bound at group 0, or nil.
func (inv *Invocation) Uniform(binding uint32) []byte {
	g, ok := inv.groups[0]
	if !ok {
		return nil
	}
	b, _ := g.entries[binding].Buffer.(*Buffer)
	if b == nil {
		return nil
	}
	return b.Bytes()
}

// Entry returns the raw entry bound at group and binding.
func (inv *Invocation) Entry(group, binding uint32) (gpu.BindGroupEntry, bool) {
	g, ok := inv.groups[group]
	if !ok {
		return gpu.BindGroupEntry{}, false
	}
	e, ok := g.entries[binding]
	return e, ok
}

// Fullscreen turns a per texel function into a kernel for a three vertex full screen draw.
// The function runs once for every texel of the first target and its outputs are stored
// into every target, the way a fragment shader with one output per attachment does.
func Fullscreen(fn FragmentFunc) Kernel {
	return func(inv *Invocation) {
		if len(inv.Targets) == 0 {
			return
		}
		size := inv.Targets[0].Size()
		out := make([][4]uint32, len(inv.Targets))
		for y := uint32(0); y < size.Height; y++ {
			for x := uint32(0); x < size.Width; x++ {
				for i := range out {
					out[i] = [4]uint32{}
				}
				fn(inv, x, y, out)
				for i, t := range inv.Targets {
					t.Store(x, y, 0, out[i])
				}
			}
		}
	}
}

// Float4 encodes a float color as texel channels.
func Float4(r, g, b, a float32) [4]uint32 {
	return [4]uint32{math.Float32bits(r), math.Float32bits(g), math.Float32bits(b), math.Float32bits(a)}
}

// Floats decodes texel channels of a float format.
func Floats(v [4]uint32) [4]float32 {
	return [4]float32{
		math.Float32frombits(v[0]),
		math.Float32frombits(v[1]),
		math.Float32frombits(v[2]),
		math.Float32frombits(v[3]),
	}
}
