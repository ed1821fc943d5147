// Package gpu defines the backend neutral device contract the renderer records against.
//
// Two backends implement it: the WebGPU backend used for on-screen rendering, and a CPU backend that
// executes full screen passes with Go kernels for headless runs and tests. Everything above this
// package (caches, frame graph, simulation stages) only ever talks to these interfaces.
package gpu

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNotReady is returned when a resource is still being prepared asynchronously.
	ErrNotReady = errors.New("gpu resource not ready")

	// ErrMissingResource is returned when an expected upstream resource is absent.
	ErrMissingResource = errors.New("gpu resource missing")
)

// The value types below are the WebGPU ones. Descriptors stay local because they reference the
// backend neutral handle interfaces instead of wgpu objects.
type (
	TextureUsage         = wgpu.TextureUsage
	TextureSampleType    = wgpu.TextureSampleType
	TextureViewDimension = wgpu.TextureViewDimension
	ShaderStage          = wgpu.ShaderStage
	BufferUsage          = wgpu.BufferUsage
	FilterMode           = wgpu.FilterMode
	AddressMode          = wgpu.AddressMode
	SamplerBindingType   = wgpu.SamplerBindingType
	LoadOp               = wgpu.LoadOp
	StoreOp              = wgpu.StoreOp
	CompareFunction      = wgpu.CompareFunction
	CullMode             = wgpu.CullMode

	// Color is a linear RGBA clear value.
	Color = wgpu.Color
)

const (
	TextureUsageCopySrc          = wgpu.TextureUsageCopySrc
	TextureUsageCopyDst          = wgpu.TextureUsageCopyDst
	TextureUsageTextureBinding   = wgpu.TextureUsageTextureBinding
	TextureUsageRenderAttachment = wgpu.TextureUsageRenderAttachment

	TextureSampleTypeUndefined         = wgpu.TextureSampleTypeUndefined
	TextureSampleTypeFloat             = wgpu.TextureSampleTypeFloat
	TextureSampleTypeUnfilterableFloat = wgpu.TextureSampleTypeUnfilterableFloat
	TextureSampleTypeUint              = wgpu.TextureSampleTypeUint
	TextureSampleTypeSint              = wgpu.TextureSampleTypeSint
	TextureSampleTypeDepth             = wgpu.TextureSampleTypeDepth

	// TextureViewDimensionUndefined is read as 2D.
	TextureViewDimensionUndefined = wgpu.TextureViewDimensionUndefined
	TextureViewDimension2D        = wgpu.TextureViewDimension2D
	TextureViewDimension2DArray   = wgpu.TextureViewDimension2DArray

	ShaderStageVertex   = wgpu.ShaderStageVertex
	ShaderStageFragment = wgpu.ShaderStageFragment

	BufferUsageUniform = wgpu.BufferUsageUniform
	BufferUsageCopyDst = wgpu.BufferUsageCopyDst
	BufferUsageStorage = wgpu.BufferUsageStorage

	FilterModeNearest = wgpu.FilterModeNearest
	FilterModeLinear  = wgpu.FilterModeLinear

	AddressModeClampToEdge = wgpu.AddressModeClampToEdge
	AddressModeRepeat      = wgpu.AddressModeRepeat

	SamplerBindingTypeUndefined    = wgpu.SamplerBindingTypeUndefined
	SamplerBindingTypeFiltering    = wgpu.SamplerBindingTypeFiltering
	SamplerBindingTypeNonFiltering = wgpu.SamplerBindingTypeNonFiltering

	// LoadOpUndefined is read as LoadOpLoad, StoreOpUndefined as StoreOpStore.
	LoadOpUndefined  = wgpu.LoadOpUndefined
	LoadOpLoad       = wgpu.LoadOpLoad
	LoadOpClear      = wgpu.LoadOpClear
	StoreOpUndefined = wgpu.StoreOpUndefined
	StoreOpStore     = wgpu.StoreOpStore
	StoreOpDiscard   = wgpu.StoreOpDiscard

	CompareFunctionUndefined    = wgpu.CompareFunctionUndefined
	CompareFunctionAlways       = wgpu.CompareFunctionAlways
	CompareFunctionLess         = wgpu.CompareFunctionLess
	CompareFunctionGreaterEqual = wgpu.CompareFunctionGreaterEqual

	CullModeNone  = wgpu.CullModeNone
	CullModeFront = wgpu.CullModeFront
	CullModeBack  = wgpu.CullModeBack
)

// Is2DArray reports whether d selects an array view. Undefined views are 2D.
func Is2DArray(d TextureViewDimension) bool {
	return d == TextureViewDimension2DArray
}

// Extent is a 2D texture size with an optional layer count.
type Extent struct {
	Width, Height, Layers uint32
}

// TextureDescriptor describes a texture to allocate.
type TextureDescriptor struct {
	Label         string
	Format        TextureFormat
	Size          Extent
	Usage         TextureUsage
	ViewDimension TextureViewDimension
}

// SamplerDescriptor describes a sampler to create.
type SamplerDescriptor struct {
	Label        string
	AddressMode  AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

// BufferDescriptor describes a buffer to allocate.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureBindingLayout describes a sampled texture binding.
type TextureBindingLayout struct {
	SampleType    TextureSampleType
	ViewDimension TextureViewDimension
}

// BufferBindingLayout describes a uniform buffer binding.
type BufferBindingLayout struct {
	MinBindingSize uint64
}

// SamplerBindingLayout describes a sampler binding.
type SamplerBindingLayout struct {
	Type SamplerBindingType
}

// BindGroupLayoutEntry describes one binding slot. Exactly one of Texture, Buffer and Sampler is set.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Texture    *TextureBindingLayout
	Buffer     *BufferBindingLayout
	Sampler    *SamplerBindingLayout
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds a resource to a slot. Exactly one of Texture, Buffer and Sampler is set.
type BindGroupEntry struct {
	Binding uint32
	Texture Texture
	Buffer  Buffer
	Sampler Sampler
}

// BindGroupDescriptor describes a bind group to create against a layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ShaderStageDescriptor is one programmable stage of a render pipeline.
type ShaderStageDescriptor struct {
	Label      string
	Source     string
	EntryPoint string
}

// ColorTargetState describes one color output of a render pipeline.
type ColorTargetState struct {
	Format TextureFormat
	Blend  bool
}

// DepthStencilState describes the depth test of a render pipeline.
type DepthStencilState struct {
	Format            TextureFormat
	DepthWriteEnabled bool
	DepthCompare      CompareFunction
}

// RenderPipelineDescriptor describes a render pipeline to compile.
type RenderPipelineDescriptor struct {
	Label        string
	Layouts      []BindGroupLayout
	Vertex       ShaderStageDescriptor
	Fragment     ShaderStageDescriptor
	Targets      []ColorTargetState
	DepthStencil *DepthStencilState
	CullMode     CullMode
}

// ColorAttachment binds a texture as a render pass color output.
type ColorAttachment struct {
	Texture    Texture
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

// DepthAttachment binds a depth texture to a render pass.
type DepthAttachment struct {
	Texture    Texture
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue float32
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
	DepthAttachment  *DepthAttachment
}

// Releaser is implemented by every GPU handle.
type Releaser interface {
	Release()
}

// Texture is an allocated texture together with its default view.
type Texture interface {
	Releaser
	Label() string
	Format() TextureFormat
	Size() Extent
}

// Sampler is a texture sampler.
type Sampler interface {
	Releaser
}

// Buffer is a GPU buffer.
type Buffer interface {
	Releaser
	Size() uint64
}

// BindGroupLayout is a compiled bind group layout.
type BindGroupLayout interface {
	Releaser
}

// BindGroup is a set of resources bound against a layout.
type BindGroup interface {
	Releaser
}

// RenderPipeline is a compiled render pipeline.
type RenderPipeline interface {
	Releaser
	Label() string
}

// CommandBuffer is a finished, submittable list of commands.
type CommandBuffer interface {
	Releaser
}

// RenderPass records draw commands into one set of attachments.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	Draw(vertexCount, instanceCount uint32)
	End() error
}

// CommandEncoder records passes for a single submission.
// Release discards an encoder that will not be finished; it is a no-op after Finish.
type CommandEncoder interface {
	Releaser
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)
	Finish() (CommandBuffer, error)
}

// Device creates resources and accepts work. Implementations must be safe for concurrent use.
type Device interface {
	CreateTexture(desc *TextureDescriptor) (Texture, error)
	WriteTexture(tex Texture, layer uint32, data []byte) error
	CreateSampler(desc *SamplerDescriptor) (Sampler, error)
	CreateBuffer(desc *BufferDescriptor) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc *BindGroupDescriptor) (BindGroup, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Submit(buffers ...CommandBuffer)
}

// Surface is the presentable output of a device.
type Surface interface {
	Format() TextureFormat
	Configure(width, height int)
	Acquire() (Texture, error)
	Present()
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)
