package bind

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
)

const passSource = `
@group(0) @binding(9) var<uniform> globals: vec4<f32>;
@group(0) @binding(101) var unit_data: texture_2d<u32>;

@vertex
fn vertex(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fragment() -> @location(0) vec4<u32> {
    return textureLoad(unit_data, vec2<i32>(0, 0), 0);
}
`

func passShader(t *testing.T) shader.Shader {
	t.Helper()
	s, err := shader.NewShader("bind_test", passSource, shader.WithValidation(false))
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	return s
}

func TestNewLayoutRejectsDuplicates(t *testing.T) {
	dev := soft_backend.NewDevice()
	_, err := NewLayout(dev, "dup", UintTexture(101, gpu.TextureViewDimension2D), GlobalsUniform(101))
	if err == nil || !strings.Contains(err.Error(), "duplicate binding 101") {
		t.Fatalf("NewLayout() error = %v", err)
	}
}

func TestNewBindGroup(t *testing.T) {
	dev := soft_backend.NewDevice()
	layout, err := NewLayout(dev, "units", GlobalsUniform(9), UintTexture(101, gpu.TextureViewDimension2D))
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	tex, _ := dev.CreateTexture(&gpu.TextureDescriptor{Label: "data", Format: gpu.TextureFormatRGBA32Uint, Size: gpu.Extent{Width: 2, Height: 2}})
	buf, err := UniformBuffer(dev, "globals", make([]byte, 16))
	if err != nil {
		t.Fatalf("UniformBuffer() error = %v", err)
	}

	if _, err := NewBindGroup(dev, "ok", layout, Buffer(9, buf), Texture(101, tex)); err != nil {
		t.Errorf("NewBindGroup() error = %v", err)
	}

	_, err = NewBindGroup(dev, "missing", layout, Buffer(9, buf), Texture(101, nil))
	if !errors.Is(err, gpu.ErrMissingResource) {
		t.Errorf("NewBindGroup() with nil texture error = %v, want ErrMissingResource", err)
	}

	_, err = NewBindGroup(dev, "short", layout, Buffer(9, buf))
	if err == nil || errors.Is(err, gpu.ErrMissingResource) {
		t.Errorf("NewBindGroup() with too few entries error = %v", err)
	}
}

func TestAlignUniform(t *testing.T) {
	tests := []struct {
		in, want uint64
	}{
		{0, 16}, {1, 16}, {16, 16}, {17, 32}, {224, 224}, {32, 32},
	}
	for _, tt := range tests {
		if got := AlignUniform(tt.in); got != tt.want {
			t.Errorf("AlignUniform(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPipelineFactories(t *testing.T) {
	dev := soft_backend.NewDevice()
	layout, err := NewLayout(dev, "units", GlobalsUniform(9), UintTexture(101, gpu.TextureViewDimension2D))
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	s := passShader(t)

	full, err := FullscreenTriPipeline("evaluate", s, []Layout{layout}, gpu.TextureFormatRGBA32Uint)
	if err != nil {
		t.Fatalf("FullscreenTriPipeline() error = %v", err)
	}
	if desc := full.Descriptor(); desc.DepthStencil != nil || desc.Targets[0].Blend {
		t.Errorf("fullscreen descriptor = %+v, want no depth and no blend", desc)
	}

	opaque, err := OpaquePipeline("draw", s, []Layout{layout}, gpu.TextureFormatRGBA32Uint)
	if err != nil {
		t.Fatalf("OpaquePipeline() error = %v", err)
	}
	desc := opaque.Descriptor()
	if desc.DepthStencil == nil || desc.DepthStencil.DepthCompare != gpu.CompareFunctionGreaterEqual || !desc.DepthStencil.DepthWriteEnabled {
		t.Errorf("opaque depth state = %+v", desc.DepthStencil)
	}
	if desc.CullMode != gpu.CullModeNone {
		t.Errorf("CullMode = %v, want none", desc.CullMode)
	}

	wrong, err := NewLayout(dev, "wrong", GlobalsUniform(9), FloatTexture(101, gpu.TextureViewDimension2D))
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	if _, err := FullscreenTriPipeline("mismatch", s, []Layout{wrong}, gpu.TextureFormatRGBA32Uint); err == nil {
		t.Error("FullscreenTriPipeline() accepted a float layout for a uint texture")
	}
}

func TestAttachments(t *testing.T) {
	dev := soft_backend.NewDevice()
	tex, _ := dev.CreateTexture(&gpu.TextureDescriptor{Label: "depth", Format: gpu.TextureFormatDepth32Float, Size: gpu.Extent{Width: 1, Height: 1}})
	if a := ClearDepth(tex); a.LoadOp != gpu.LoadOpClear || a.ClearValue != 0 {
		t.Errorf("ClearDepth() = %+v", a)
	}
	if a := LoadDepth(tex); a.LoadOp != gpu.LoadOpLoad {
		t.Errorf("LoadDepth() = %+v", a)
	}
	if a := LoadColor(tex); a.LoadOp != gpu.LoadOpLoad || a.StoreOp != gpu.StoreOpStore {
		t.Errorf("LoadColor() = %+v", a)
	}
}
