// Package soft_backend implements the gpu device contract on the CPU.
//
// Full screen passes whose pipeline label has a registered Kernel are executed by running the
// kernel in Go; every other draw is only recorded. Submitted passes are kept as PassRecords so
// tests can assert exactly what a frame recorded. The backend also drives headless runs.
package soft_backend

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Device is the CPU implementation of gpu.Device. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	kernels       map[string]Kernel
	failPipelines map[string]error

	passes   []PassRecord
	submits  int
	encoders int
	live     map[string]int
}

var _ gpu.Device = &Device{}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithKernel registers k for pipelines labelled label.
func WithKernel(label string, k Kernel) DeviceOption {
	return func(d *Device) {
		d.kernels[label] = k
	}
}

// NewDevice creates a CPU device.
//
// Parameters:
//   - opts: variadic list of DeviceOption functions
//
// Returns:
//   - *Device: the device
func NewDevice(opts ...DeviceOption) *Device {
	d := &Device{
		kernels:       make(map[string]Kernel),
		failPipelines: make(map[string]error),
		live:          make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterKernel registers k for pipelines labelled label, replacing any previous kernel.
func (d *Device) RegisterKernel(label string, k Kernel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kernels[label] = k
}

// FailPipeline makes CreateRenderPipeline fail with err for label.
func (d *Device) FailPipeline(label string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failPipelines[label] = err
}

// Passes returns the passes submitted since the last ResetPasses.
func (d *Device) Passes() []PassRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]PassRecord, len(d.passes))
	copy(out, d.passes)
	return out
}

// ResetPasses forgets the recorded passes.
func (d *Device) ResetPasses() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passes = d.passes[:0]
}

// Submits returns the number of Submit calls.
func (d *Device) Submits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submits
}

// Allocations returns the number of textures created with label.
func (d *Device) Allocations(label string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live[label]
}

func (d *Device) CreateTexture(desc *gpu.TextureDescriptor) (gpu.Texture, error) {
	t, err := newTexture(desc)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.live[desc.Label]++
	d.mu.Unlock()
	return t, nil
}

func (d *Device) WriteTexture(tex gpu.Texture, layer uint32, data []byte) error {
	t, ok := tex.(*Texture)
	if !ok {
		return fmt.Errorf("write texture: foreign texture %T", tex)
	}
	return t.write(layer, data)
}

func (d *Device) CreateSampler(desc *gpu.SamplerDescriptor) (gpu.Sampler, error) {
	return &Sampler{desc: *desc}, nil
}

func (d *Device) CreateBuffer(desc *gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q: zero size", desc.Label)
	}
	return &Buffer{label: desc.Label, data: make([]byte, desc.Size)}, nil
}

func (d *Device) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return fmt.Errorf("write buffer: foreign buffer %T", buf)
	}
	return b.write(offset, data)
}

func (d *Device) CreateBindGroupLayout(desc *gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	for _, e := range desc.Entries {
		n := 0
		if e.Texture != nil {
			n++
		}
		if e.Buffer != nil {
			n++
		}
		if e.Sampler != nil {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("layout %q binding %d: exactly one resource kind required", desc.Label, e.Binding)
		}
	}
	return &BindGroupLayout{desc: *desc}, nil
}

func (d *Device) CreateBindGroup(desc *gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: foreign layout %T", desc.Label, desc.Layout)
	}
	entries := make(map[uint32]gpu.BindGroupEntry, len(desc.Entries))
	for _, e := range desc.Entries {
		entries[e.Binding] = e
	}
	for _, le := range layout.desc.Entries {
		e, ok := entries[le.Binding]
		if !ok {
			return nil, fmt.Errorf("bind group %q: binding %d not provided", desc.Label, le.Binding)
		}
		if err := checkEntry(le, e); err != nil {
			return nil, fmt.Errorf("bind group %q binding %d: %w", desc.Label, le.Binding, err)
		}
		delete(entries, le.Binding)
	}
	for binding := range entries {
		return nil, fmt.Errorf("bind group %q: binding %d not in layout %q", desc.Label, binding, layout.desc.Label)
	}

	bg := &BindGroup{label: desc.Label, entries: make(map[uint32]gpu.BindGroupEntry, len(desc.Entries))}
	for _, e := range desc.Entries {
		bg.entries[e.Binding] = e
	}
	return bg, nil
}

func checkEntry(le gpu.BindGroupLayoutEntry, e gpu.BindGroupEntry) error {
	switch {
	case le.Texture != nil:
		if e.Texture == nil {
			return fmt.Errorf("texture expected")
		}
		got := gpu.SampleTypeOf(e.Texture.Format())
		want := le.Texture.SampleType
		if want == gpu.TextureSampleTypeUnfilterableFloat && got == gpu.TextureSampleTypeFloat {
			return nil
		}
		if got != want {
			return fmt.Errorf("texture %q format %s does not match the layout sample type", e.Texture.Label(), e.Texture.Format())
		}
		if !gpu.Is2DArray(le.Texture.ViewDimension) && e.Texture.Size().Layers > 1 {
			return fmt.Errorf("texture %q has %d layers bound as 2d", e.Texture.Label(), e.Texture.Size().Layers)
		}
	case le.Buffer != nil:
		if e.Buffer == nil {
			return fmt.Errorf("buffer expected")
		}
		if e.Buffer.Size() < le.Buffer.MinBindingSize {
			return fmt.Errorf("buffer of %d bytes below minimum %d", e.Buffer.Size(), le.Buffer.MinBindingSize)
		}
	case le.Sampler != nil:
		if e.Sampler == nil {
			return fmt.Errorf("sampler expected")
		}
	}
	return nil
}

func (d *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	d.mu.Lock()
	failErr, fail := d.failPipelines[desc.Label]
	d.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, failErr)
	}
	if len(desc.Targets) == 0 {
		return nil, fmt.Errorf("pipeline %q: no color targets", desc.Label)
	}
	return &RenderPipeline{desc: *desc}, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	d.mu.Lock()
	d.encoders++
	d.mu.Unlock()
	return &encoder{device: d, label: label}, nil
}

// OpenEncoders returns the number of encoders neither finished nor released.
func (d *Device) OpenEncoders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.encoders
}

func (d *Device) closeEncoder() {
	d.mu.Lock()
	d.encoders--
	d.mu.Unlock()
}

func (d *Device) Submit(buffers ...gpu.CommandBuffer) {
	d.mu.Lock()
	d.submits++
	d.mu.Unlock()

	for _, b := range buffers {
		cb, ok := b.(*commandBuffer)
		if !ok {
			continue
		}
		for _, p := range cb.passes {
			record := d.execute(p)
			d.mu.Lock()
			d.passes = append(d.passes, record)
			d.mu.Unlock()
		}
	}
}

func (d *Device) kernel(label string) (Kernel, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k, ok := d.kernels[label]
	return k, ok
}

// Sampler is a CPU sampler. Kernels sample with nearest filtering regardless of its filters.
type Sampler struct {
	desc gpu.SamplerDescriptor
}

func (s *Sampler) Release() {}

// Buffer is a CPU buffer.
type Buffer struct {
	mu    sync.RWMutex
	label string
	data  []byte
}

func (b *Buffer) Release() {}

func (b *Buffer) Size() uint64 {
	return uint64(len(b.data))
}

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *Buffer) write(offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("buffer %q: write of %d bytes at %d overflows %d", b.label, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// BindGroupLayout is a CPU bind group layout.
type BindGroupLayout struct {
	desc gpu.BindGroupLayoutDescriptor
}

func (l *BindGroupLayout) Release() {}

// BindGroup is a CPU bind group.
type BindGroup struct {
	label   string
	entries map[uint32]gpu.BindGroupEntry
}

func (g *BindGroup) Release() {}

// RenderPipeline is a CPU render pipeline; it is only a label and a descriptor.
type RenderPipeline struct {
	desc gpu.RenderPipelineDescriptor
}

func (p *RenderPipeline) Release() {}

func (p *RenderPipeline) Label() string {
	return p.desc.Label
}
