package pipeline

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/shader"
)

type fakeLayout struct{}

func (fakeLayout) Release() {}

const testSource = `
@group(0) @binding(101) var unit_data: texture_2d<u32>;

@vertex
fn vertex(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fragment() -> @location(0) vec4<u32> {
    return vec4<u32>(0u, 0u, 0u, 1u);
}
`

func testShader(t *testing.T) shader.Shader {
	t.Helper()
	s, err := shader.NewShader("pipeline_test", testSource, shader.WithValidation(false))
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	return s
}

func unitLayout() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "unit_layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 101, Texture: &gpu.TextureBindingLayout{SampleType: gpu.TextureSampleTypeUint}},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	s := testShader(t)

	tests := []struct {
		name    string
		opts    []PipelineBuilderOption
		wantErr string
	}{
		{
			name: "fullscreen",
			opts: []PipelineBuilderOption{
				WithShader(s),
				WithLayout(unitLayout(), fakeLayout{}),
				WithColorTarget(gpu.TextureFormatRGBA32Uint),
			},
		},
		{
			name:    "no shader",
			opts:    []PipelineBuilderOption{WithColorTarget(gpu.TextureFormatRGBA32Uint)},
			wantErr: "no shader set",
		},
		{
			name:    "no targets",
			opts:    []PipelineBuilderOption{WithShader(s), WithLayout(unitLayout(), fakeLayout{})},
			wantErr: "no color targets",
		},
		{
			name: "depth as color",
			opts: []PipelineBuilderOption{
				WithShader(s),
				WithLayout(unitLayout(), fakeLayout{}),
				WithColorTarget(gpu.TextureFormatDepth32Float),
			},
			wantErr: "used as a color target",
		},
		{
			name: "missing layout",
			opts: []PipelineBuilderOption{
				WithShader(s),
				WithColorTarget(gpu.TextureFormatRGBA32Uint),
			},
			wantErr: "binds group 0",
		},
		{
			name: "color depth format",
			opts: []PipelineBuilderOption{
				WithShader(s),
				WithLayout(unitLayout(), fakeLayout{}),
				WithColorTarget(gpu.TextureFormatRGBA32Uint),
				WithDepthTestEnabled(true),
				WithDepthFormat(gpu.TextureFormatRGBA8Unorm),
			},
			wantErr: "not a depth format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline("test", tt.opts...)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("NewPipeline() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPipeline() error = %v", err)
			}
			if p.PipelineKey() != "test" {
				t.Errorf("PipelineKey() = %q", p.PipelineKey())
			}
		})
	}
}

func TestDescriptor(t *testing.T) {
	p, err := NewPipeline("unit_material",
		WithShader(testShader(t)),
		WithLayout(unitLayout(), fakeLayout{}),
		WithColorTarget(gpu.TextureFormatRGBA32Uint),
		WithColorTarget(gpu.TextureFormatR8Uint),
		WithDepthTestEnabled(true),
		WithDepthWriteEnabled(true),
	)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	desc := p.Descriptor()
	if desc.Label != "unit_material" {
		t.Errorf("Label = %q", desc.Label)
	}
	if desc.Vertex.EntryPoint != "vertex" || desc.Fragment.EntryPoint != "fragment" {
		t.Errorf("entry points = %q/%q", desc.Vertex.EntryPoint, desc.Fragment.EntryPoint)
	}
	if len(desc.Layouts) != 1 || len(desc.Targets) != 2 {
		t.Fatalf("layouts = %d, targets = %d", len(desc.Layouts), len(desc.Targets))
	}
	for i, target := range desc.Targets {
		if target.Blend {
			t.Errorf("target %d is blended", i)
		}
	}
	if desc.DepthStencil == nil {
		t.Fatal("DepthStencil is nil")
	}
	if desc.DepthStencil.DepthCompare != gpu.CompareFunctionGreaterEqual {
		t.Errorf("DepthCompare = %v, want GreaterEqual", desc.DepthStencil.DepthCompare)
	}
	if !desc.DepthStencil.DepthWriteEnabled || desc.DepthStencil.Format != gpu.TextureFormatDepth32Float {
		t.Errorf("DepthStencil = %+v", desc.DepthStencil)
	}
}
