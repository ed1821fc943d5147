package minimap

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// RegisterKernels installs CPU versions of the encode and downsample shaders on a software device.
func RegisterKernels(dev *soft_backend.Device) {
	dev.RegisterKernel(EncodePipelineLabel, soft_backend.Fullscreen(encodeTexel))
	dev.RegisterKernel(DownsamplePipelineLabel, soft_backend.Fullscreen(downsampleTexel))
}

func encodeTexel(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
	data := inv.Texture(101)
	attack := inv.Texture(103)

	var counts [4]uint32
	for dy := uint32(0); dy < units.MinimapScale; dy++ {
		for dx := uint32(0); dx < units.MinimapScale; dx++ {
			sx, sy := x*units.MinimapScale+dx, y*units.MinimapScale+dy
			u := units.DecodeUnit(data.Load(sx, sy, 0))
			if !u.Alive() {
				continue
			}
			if u.Team == 0 {
				counts[0]++
			} else {
				counts[1]++
			}
			if u.State == units.StateAttacking || attack.Load(sx, sy, 0)[3] == 1 {
				counts[2]++
			}
			counts[3] = 255
		}
	}
	out[0] = saturate(counts)
}

func downsampleTexel(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
	source := inv.Texture(101)

	var sum [4]uint32
	for dy := uint32(0); dy < units.MinimapScale; dy++ {
		for dx := uint32(0); dx < units.MinimapScale; dx++ {
			texel := source.Load(x*units.MinimapScale+dx, y*units.MinimapScale+dy, 0)
			sum[0] += texel[0]
			sum[1] += texel[1]
			sum[2] += texel[2]
			sum[3] = max(sum[3], texel[3])
		}
	}
	out[0] = saturate(sum)
}

func saturate(v [4]uint32) [4]uint32 {
	for i := range v {
		v[i] = min(v[i], 255)
	}
	return v
}
