package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Device implements gpu.Device on a WebGPU device and its queue.
type Device struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ gpu.Device = &Device{}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	format, err := textureFormat(desc.Format)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	layers := max(desc.Size.Layers, 1)
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}

	aspect := wgpu.TextureAspectAll
	if gpu.IsDepth(desc.Format) {
		aspect = wgpu.TextureAspectDepthOnly
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          format,
		Dimension:       viewDimension(desc.ViewDimension),
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          aspect,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %q view: %w", desc.Label, err)
	}
	return &Texture{
		label:   desc.Label,
		format:  desc.Format,
		size:    gpu.Extent{Width: desc.Size.Width, Height: desc.Size.Height, Layers: layers},
		texture: tex,
		view:    view,
		owned:   true,
	}, nil
}

func (d *Device) WriteTexture(tex gpu.Texture, layer uint32, data []byte) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("write texture: foreign texture %T", tex)
	}
	if layer >= t.size.Layers {
		return fmt.Errorf("texture %q: layer %d out of range", t.label, layer)
	}
	bpt := gpu.BytesPerTexel(t.format)
	if want := int(t.size.Width * t.size.Height * bpt); len(data) != want {
		return fmt.Errorf("texture %q: got %d bytes, want %d", t.label, len(data), want)
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.size.Width * bpt,
			RowsPerImage: t.size.Height,
		},
		&wgpu.Extent3D{
			Width:              t.size.Width,
			Height:             t.size.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	address := desc.AddressMode
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     desc.MagFilter,
		MinFilter:     desc.MinFilter,
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler %q: %w", desc.Label, err)
	}
	return &Sampler{sampler: s}, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("buffer %q: %w", desc.Label, err)
	}
	return &Buffer{buffer: b, size: desc.Size}, nil
}

func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("write buffer: foreign buffer %T", buf)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("write buffer: %d bytes at %d overflows %d", len(data), offset, b.size)
	}
	d.queue.WriteBuffer(b.buffer, offset, data)
	return nil
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: e.Visibility,
		}
		switch {
		case e.Texture != nil:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    e.Texture.SampleType,
				ViewDimension: viewDimension(e.Texture.ViewDimension),
			}
		case e.Buffer != nil:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: e.Buffer.MinBindingSize,
			}
		case e.Sampler != nil:
			entry.Sampler = wgpu.SamplerBindingLayout{
				Type: e.Sampler.Type,
			}
		default:
			return nil, fmt.Errorf("layout %q binding %d: no resource kind", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", desc.Label, err)
	}
	return &BindGroupLayout{layout: l}, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: foreign layout %T", desc.Label, desc.Layout)
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Texture != nil:
			t, ok := e.Texture.(*Texture)
			if !ok || t.view == nil {
				return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, e.Binding, gpu.ErrMissingResource)
			}
			entry.TextureView = t.view
		case e.Buffer != nil:
			b, ok := e.Buffer.(*Buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: foreign buffer %T", desc.Label, e.Binding, e.Buffer)
			}
			entry.Buffer = b.buffer
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case e.Sampler != nil:
			s, ok := e.Sampler.(*Sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q binding %d: foreign sampler %T", desc.Label, e.Binding, e.Sampler)
			}
			entry.Sampler = s.sampler
		}
		entries = append(entries, entry)
	}
	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %q: %w", desc.Label, err)
	}
	return &BindGroup{group: g}, nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Vertex.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.Vertex.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q vertex module: %w", desc.Label, err)
	}
	defer vs.Release()

	fragmentSource := desc.Fragment.Source
	fs := vs
	if fragmentSource != desc.Vertex.Source {
		fs, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          desc.Fragment.Label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentSource},
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline %q fragment module: %w", desc.Label, err)
		}
		defer fs.Release()
	}

	layouts := make([]*wgpu.BindGroupLayout, len(desc.Layouts))
	for i, l := range desc.Layouts {
		bl, ok := l.(*BindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: layout %d is foreign %T", desc.Label, i, l)
		}
		layouts[i] = bl.layout
	}
	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q layout: %w", desc.Label, err)
	}
	defer pipelineLayout.Release()

	targets := make([]wgpu.ColorTargetState, len(desc.Targets))
	for i, t := range desc.Targets {
		format, err := textureFormat(t.Format)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q target %d: %w", desc.Label, i, err)
		}
		targets[i] = wgpu.ColorTargetState{
			Format:    format,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
		if t.Blend {
			blend := alphaBlending
			targets[i].Blend = &blend
		}
	}

	var depth *wgpu.DepthStencilState
	if ds := desc.DepthStencil; ds != nil {
		format, err := textureFormat(ds.Format)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q depth: %w", desc.Label, err)
		}
		depth = &wgpu.DepthStencilState{
			Format:            format,
			DepthWriteEnabled: ds.DepthWriteEnabled,
			DepthCompare:      compareFunction(ds.DepthCompare),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  desc.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depth,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	return &RenderPipeline{label: desc.Label, pipeline: created}, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("command encoder %q: %w", label, err)
	}
	return &encoder{encoder: enc}, nil
}

func (d *Device) Submit(buffers ...gpu.CommandBuffer) {
	native := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		if cb, ok := b.(*commandBuffer); ok && cb.buffer != nil {
			native = append(native, cb.buffer)
		}
	}
	if len(native) > 0 {
		d.queue.Submit(native...)
	}
}
