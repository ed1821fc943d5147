package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is a WebGPU texture together with its default view.
type Texture struct {
	label   string
	format  gpu.TextureFormat
	size    gpu.Extent
	texture *wgpu.Texture
	view    *wgpu.TextureView
	// owned is false for surface textures, which the surface releases on present.
	owned bool
}

var _ gpu.Texture = &Texture{}

func (t *Texture) Label() string {
	return t.label
}

func (t *Texture) Format() gpu.TextureFormat {
	return t.format
}

func (t *Texture) Size() gpu.Extent {
	return t.size
}

func (t *Texture) Release() {
	if !t.owned {
		return
	}
	t.release()
}

func (t *Texture) release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// Sampler wraps a WebGPU sampler.
type Sampler struct {
	sampler *wgpu.Sampler
}

func (s *Sampler) Release() {
	s.sampler.Release()
}

// Buffer wraps a WebGPU buffer.
type Buffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

func (b *Buffer) Release() {
	b.buffer.Release()
}

func (b *Buffer) Size() uint64 {
	return b.size
}

// BindGroupLayout wraps a WebGPU bind group layout.
type BindGroupLayout struct {
	layout *wgpu.BindGroupLayout
}

func (l *BindGroupLayout) Release() {
	l.layout.Release()
}

// BindGroup wraps a WebGPU bind group.
type BindGroup struct {
	group *wgpu.BindGroup
}

func (g *BindGroup) Release() {
	g.group.Release()
}

// RenderPipeline wraps a compiled WebGPU render pipeline.
type RenderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
}

func (p *RenderPipeline) Release() {
	p.pipeline.Release()
}

func (p *RenderPipeline) Label() string {
	return p.label
}
