package post_process

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

var (
	threatColor = [3]float32{0.8, 0.05, 0.05}
	attackColor = [3]float32{1.0, 0.9, 0.3}
	emptyCell   = [3]float32{0.02, 0.03, 0.02}
)

// RegisterKernels installs a CPU version of the composite shader on a software device.
//
// Parameters:
//   - dev: the software device
//   - opts: the options the node was created with
func RegisterKernels(dev *soft_backend.Device, opts ...NodeBuilderOption) {
	n := newDefaultNode()
	for _, opt := range opts {
		opt(n)
	}

	dev.RegisterKernel(CompositePipelineLabel, func(inv *soft_backend.Invocation) {
		viewProj := viewProjection(inv.Uniform(0))
		threat := Threat(inv.Texture(104), n.threatSaturation)
		markers := n.markers(inv.Texture(105), viewProj, inv)
		soft_backend.Fullscreen(func(inv *soft_backend.Invocation, x, y uint32, out [][4]uint32) {
			out[0] = n.compositeTexel(inv, x, y, threat, markers)
		})(inv)
	})
}

type marker struct {
	screen [2]float32
	color  [3]float32
}

func viewProjection(b []byte) [16]float32 {
	var m [16]float32
	if len(b) < 64 {
		common.Identity(m[:])
		return m
	}
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return m
}

// Threat returns the vignette strength for a coarse minimap level: the attacking unit count
// over saturation, clamped to 1.
//
// Parameters:
//   - coarse: the smallest minimap level
//   - saturation: the attacking count at full strength
//
// Returns:
//   - float32: the strength in [0, 1]
func Threat(coarse *soft_backend.Texture, saturation float32) float32 {
	if coarse == nil {
		return 0
	}
	var attacking uint32
	for _, texel := range coarse.Texels() {
		attacking += texel[2]
	}
	return min(float32(attacking)/saturation, 1)
}

// markers projects every live large unit to the screen once per pass.
func (n *node) markers(large *soft_backend.Texture, viewProj [16]float32, inv *soft_backend.Invocation) []marker {
	if large == nil || len(inv.Targets) == 0 {
		return nil
	}
	size := inv.Targets[0].Size()
	var out []marker
	for y := uint32(0); y < n.large.Height; y++ {
		for x := uint32(0); x < n.large.Width; x++ {
			u := units.DecodeUnit(large.Load(x, y, 0))
			if !u.Alive() {
				continue
			}
			clip := common.TransformPoint(viewProj[:], u.Pos[0], 0, u.Pos[1], 1)
			if clip[3] == 0 {
				continue
			}
			ndc := [2]float32{clip[0] / clip[3], clip[1] / clip[3]}
			out = append(out, marker{
				screen: [2]float32{(ndc[0] + 1) * 0.5 * float32(size.Width), (1 - ndc[1]) * 0.5 * float32(size.Height)},
				color:  teamTint(u.Team),
			})
		}
	}
	return out
}

func (n *node) compositeTexel(inv *soft_backend.Invocation, x, y uint32, threat float32, markers []marker) [4]uint32 {
	dims := inv.Targets[0].Size()
	scene := inv.Texture(101).LoadFloat(x, y, 0)
	color := [3]float32{scene[0], scene[1], scene[2]}

	u := (float32(x) + 0.5) / float32(dims.Width)
	v := (float32(y) + 0.5) / float32(dims.Height)
	d := float32(math.Hypot(float64(u-0.5), float64(v-0.5))) * math.Sqrt2
	edge := max(0, min(1, (d-0.5)*2))
	color = mix(color, threatColor, threat*edge*0.6)

	px, py := float32(x)+0.5, float32(y)+0.5
	for _, m := range markers {
		if float32(math.Hypot(float64(m.screen[0]-px), float64(m.screen[1]-py))) <= n.markerRadius {
			color = m.color
		}
	}

	size := OverlaySize(n.overlaySize, dims.Width, dims.Height)
	if size > 0 && x < size && y >= dims.Height-size {
		fine := inv.Texture(103)
		level := fine.Size()
		lx, ly := x, dims.Height-1-y
		cell := fine.Load(lx*level.Width/size, ly*level.Height/size, 0)
		color = mix(color, MinimapCell(cell), n.overlayOpacity)
	}
	return soft_backend.Float4(color[0], color[1], color[2], scene[3])
}

// OverlaySize returns the edge of the minimap overlay for a screen size.
func OverlaySize(limit, width, height uint32) uint32 {
	return min(limit, min(width, height)/2)
}

// MinimapCell returns the overlay color of a fine minimap texel.
func MinimapCell(t [4]uint32) [3]float32 {
	if t[3] == 0 {
		return emptyCell
	}
	total := t[0] + t[1]
	own, enemy := teamTint(units.PlayerTeam), teamTint(1)
	var c [3]float32
	for i := range c {
		c[i] = (own[i]*float32(t[0]) + enemy[i]*float32(t[1])) / float32(max(total, 1))
	}
	if t[2] > 0 {
		c = mix(c, attackColor, 0.5)
	}
	brightness := 0.4 + 0.6*min(float32(total)/16, 1)
	return [3]float32{c[0] * brightness, c[1] * brightness, c[2] * brightness}
}

func teamTint(team uint32) [3]float32 {
	if team == units.PlayerTeam {
		return [3]float32{0.3, 0.55, 1.0}
	}
	return [3]float32{1.0, 0.35, 0.3}
}

func mix(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}
