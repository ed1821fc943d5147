package soft_backend

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// DrawRecord is one draw call of a submitted pass.
type DrawRecord struct {
	Pipeline      string
	VertexCount   uint32
	InstanceCount uint32
	// Executed is true when a kernel ran for the draw.
	Executed bool
}

// PassRecord is a submitted render pass.
type PassRecord struct {
	Label   string
	Targets []string
	Depth   string
	Draws   []DrawRecord
}

type drawCmd struct {
	pipeline      *RenderPipeline
	groups        map[uint32]*BindGroup
	vertexCount   uint32
	instanceCount uint32
}

type encoder struct {
	device   *Device
	label    string
	passes   []*pass
	open     bool
	finished bool
	released bool
}

func (e *encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) (gpu.RenderPass, error) {
	if e.finished || e.released {
		return nil, errors.New("encoder finished")
	}
	if e.open {
		return nil, fmt.Errorf("pass %q: previous pass not ended", desc.Label)
	}
	p := &pass{encoder: e, label: desc.Label, groups: make(map[uint32]*BindGroup)}
	for i, a := range desc.ColorAttachments {
		t, ok := a.Texture.(*Texture)
		if !ok {
			return nil, fmt.Errorf("pass %q: color attachment %d: %w", desc.Label, i, gpu.ErrMissingResource)
		}
		if gpu.IsDepth(t.format) {
			return nil, fmt.Errorf("pass %q: color attachment %d is a depth texture", desc.Label, i)
		}
		p.colors = append(p.colors, attachment{texture: t, clear: a.LoadOp == gpu.LoadOpClear, color: a.ClearValue})
	}
	if desc.DepthAttachment != nil {
		t, ok := desc.DepthAttachment.Texture.(*Texture)
		if !ok {
			return nil, fmt.Errorf("pass %q: depth attachment: %w", desc.Label, gpu.ErrMissingResource)
		}
		if !gpu.IsDepth(t.format) {
			return nil, fmt.Errorf("pass %q: depth attachment %q is not a depth texture", desc.Label, t.label)
		}
		p.depth = &attachment{texture: t, clear: desc.DepthAttachment.LoadOp == gpu.LoadOpClear, depth: desc.DepthAttachment.ClearValue}
	}
	if len(p.colors) == 0 && p.depth == nil {
		return nil, fmt.Errorf("pass %q: no attachments", desc.Label)
	}
	for i, a := range p.colors {
		if a.texture.size.Width != p.colors[0].texture.size.Width || a.texture.size.Height != p.colors[0].texture.size.Height {
			return nil, fmt.Errorf("pass %q: attachment %d size differs from attachment 0", desc.Label, i)
		}
	}
	e.open = true
	return p, nil
}

func (e *encoder) Finish() (gpu.CommandBuffer, error) {
	if e.open {
		return nil, errors.New("finish with an open pass")
	}
	if e.finished || e.released {
		return nil, errors.New("encoder finished")
	}
	e.finished = true
	e.device.closeEncoder()
	return &commandBuffer{passes: e.passes}, nil
}

func (e *encoder) Release() {
	if e.finished || e.released {
		return
	}
	e.released = true
	e.passes = nil
	e.device.closeEncoder()
}

type attachment struct {
	texture *Texture
	clear   bool
	color   gpu.Color
	depth   float32
}

type pass struct {
	encoder  *encoder
	label    string
	colors   []attachment
	depth    *attachment
	pipeline *RenderPipeline
	groups   map[uint32]*BindGroup
	draws    []drawCmd
	errs     []error
}

func (p *pass) SetPipeline(rp gpu.RenderPipeline) {
	sp, ok := rp.(*RenderPipeline)
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("foreign pipeline %T", rp))
		return
	}
	p.pipeline = sp
}

func (p *pass) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, ok := group.(*BindGroup)
	if !ok {
		p.errs = append(p.errs, fmt.Errorf("foreign bind group %T", group))
		return
	}
	p.groups[index] = g
}

func (p *pass) Draw(vertexCount, instanceCount uint32) {
	if p.pipeline == nil {
		p.errs = append(p.errs, errors.New("draw without a pipeline"))
		return
	}
	groups := make(map[uint32]*BindGroup, len(p.groups))
	for k, v := range p.groups {
		groups[k] = v
	}
	p.draws = append(p.draws, drawCmd{pipeline: p.pipeline, groups: groups, vertexCount: vertexCount, instanceCount: instanceCount})
}

func (p *pass) End() error {
	if !p.encoder.open {
		return fmt.Errorf("pass %q: ended twice", p.label)
	}
	p.encoder.open = false
	for _, d := range p.draws {
		if err := p.checkDraw(d); err != nil {
			p.errs = append(p.errs, err)
		}
	}
	if len(p.errs) > 0 {
		return fmt.Errorf("pass %q: %w", p.label, errors.Join(p.errs...))
	}
	p.encoder.passes = append(p.encoder.passes, p)
	return nil
}

// checkDraw validates a draw against the attachments the way a WebGPU implementation would.
func (p *pass) checkDraw(d drawCmd) error {
	desc := d.pipeline.desc
	if len(desc.Targets) != len(p.colors) {
		return fmt.Errorf("pipeline %q has %d targets, pass has %d", desc.Label, len(desc.Targets), len(p.colors))
	}
	for i, t := range desc.Targets {
		if t.Format != p.colors[i].texture.format {
			return fmt.Errorf("pipeline %q target %d is %s, attachment is %s", desc.Label, i, t.Format, p.colors[i].texture.format)
		}
	}
	if (desc.DepthStencil != nil) != (p.depth != nil) {
		return fmt.Errorf("pipeline %q depth state does not match the pass", desc.Label)
	}
	for i := range desc.Layouts {
		if _, ok := d.groups[uint32(i)]; !ok {
			return fmt.Errorf("pipeline %q: bind group %d not set", desc.Label, i)
		}
	}
	for _, g := range d.groups {
		for _, e := range g.entries {
			for _, a := range p.colors {
				if e.Texture == gpu.Texture(a.texture) {
					return fmt.Errorf("pipeline %q reads attachment %q it writes", desc.Label, a.texture.label)
				}
			}
		}
	}
	return nil
}

type commandBuffer struct {
	passes []*pass
}

func (c *commandBuffer) Release() {}

// execute applies the pass's load operations and runs kernels for its draws.
func (d *Device) execute(p *pass) PassRecord {
	record := PassRecord{Label: p.label}
	for _, a := range p.colors {
		record.Targets = append(record.Targets, a.texture.label)
		if a.clear {
			a.texture.Fill(a.texture.clearValue(a.color))
		}
	}
	if p.depth != nil {
		record.Depth = p.depth.texture.label
		if p.depth.clear {
			p.depth.texture.Fill([4]uint32{math.Float32bits(p.depth.depth)})
		}
	}

	for _, draw := range p.draws {
		dr := DrawRecord{Pipeline: draw.pipeline.desc.Label, VertexCount: draw.vertexCount, InstanceCount: draw.instanceCount}
		if k, ok := d.kernel(dr.Pipeline); ok {
			inv := &Invocation{
				Pipeline:      dr.Pipeline,
				VertexCount:   draw.vertexCount,
				InstanceCount: draw.instanceCount,
				groups:        draw.groups,
			}
			for _, a := range p.colors {
				inv.Targets = append(inv.Targets, a.texture)
			}
			if p.depth != nil {
				inv.Depth = p.depth.texture
			}
			k(inv)
			dr.Executed = true
		}
		record.Draws = append(record.Draws, dr)
	}
	return record
}
