package wgpu_backend

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

type encoder struct {
	encoder *wgpu.CommandEncoder
	open    bool
}

func (e *encoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) (gpu.RenderPass, error) {
	if e.encoder == nil {
		return nil, errors.New("encoder finished")
	}
	if e.open {
		return nil, fmt.Errorf("pass %q: previous pass not ended", desc.Label)
	}

	colors := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		t, ok := a.Texture.(*Texture)
		if !ok || t.view == nil {
			return nil, fmt.Errorf("pass %q: color attachment %d: %w", desc.Label, i, gpu.ErrMissingResource)
		}
		colors[i] = wgpu.RenderPassColorAttachment{
			View:    t.view,
			LoadOp:  loadOp(a.LoadOp),
			StoreOp: storeOp(a.StoreOp),
			ClearValue: a.ClearValue,
		}
	}

	native := &wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: colors,
	}
	if da := desc.DepthAttachment; da != nil {
		t, ok := da.Texture.(*Texture)
		if !ok || t.view == nil {
			return nil, fmt.Errorf("pass %q: depth attachment: %w", desc.Label, gpu.ErrMissingResource)
		}
		native.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            t.view,
			DepthLoadOp:     loadOp(da.LoadOp),
			DepthStoreOp:    storeOp(da.StoreOp),
			DepthClearValue: da.ClearValue,
		}
	}

	e.open = true
	return &pass{owner: e, pass: e.encoder.BeginRenderPass(native), label: desc.Label}, nil
}

func (e *encoder) Finish() (gpu.CommandBuffer, error) {
	if e.open {
		return nil, errors.New("finish with an open pass")
	}
	if e.encoder == nil {
		return nil, errors.New("encoder finished")
	}
	cb, err := e.encoder.Finish(nil)
	e.encoder.Release()
	e.encoder = nil
	if err != nil {
		return nil, fmt.Errorf("finish encoder: %w", err)
	}
	return &commandBuffer{buffer: cb}, nil
}

func (e *encoder) Release() {
	if e.encoder == nil {
		return
	}
	e.encoder.Release()
	e.encoder = nil
}

type pass struct {
	owner *encoder
	pass  *wgpu.RenderPassEncoder
	label string
	err   error
}

func (p *pass) SetPipeline(rp gpu.RenderPipeline) {
	wp, ok := rp.(*RenderPipeline)
	if !ok {
		p.err = errors.Join(p.err, fmt.Errorf("foreign pipeline %T", rp))
		return
	}
	p.pass.SetPipeline(wp.pipeline)
}

func (p *pass) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, ok := group.(*BindGroup)
	if !ok {
		p.err = errors.Join(p.err, fmt.Errorf("foreign bind group %T", group))
		return
	}
	p.pass.SetBindGroup(index, g.group, nil)
}

func (p *pass) Draw(vertexCount, instanceCount uint32) {
	p.pass.Draw(vertexCount, instanceCount, 0, 0)
}

func (p *pass) End() error {
	if !p.owner.open {
		return fmt.Errorf("pass %q: ended twice", p.label)
	}
	p.owner.open = false
	p.pass.End()
	p.pass.Release()
	if p.err != nil {
		return fmt.Errorf("pass %q: %w", p.label, p.err)
	}
	return nil
}

type commandBuffer struct {
	buffer *wgpu.CommandBuffer
}

func (c *commandBuffer) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}
