package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestFormatLayout(t *testing.T) {
	tests := []struct {
		name       string
		format     TextureFormat
		bytes      uint32
		sampleType TextureSampleType
		depth      bool
	}{
		{"rgba32uint", TextureFormatRGBA32Uint, 16, TextureSampleTypeUint, false},
		{"rgba8uint", TextureFormatRGBA8Uint, 4, TextureSampleTypeUint, false},
		{"r8uint", TextureFormatR8Uint, 1, TextureSampleTypeUint, false},
		{"rgba8unorm", TextureFormatRGBA8Unorm, 4, TextureSampleTypeFloat, false},
		{"bgra8unorm srgb", TextureFormatBGRA8UnormSrgb, 4, TextureSampleTypeFloat, false},
		{"rgba16float", TextureFormatRGBA16Float, 8, TextureSampleTypeFloat, false},
		{"depth32float", TextureFormatDepth32Float, 4, TextureSampleTypeDepth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesPerTexel(tt.format); got != tt.bytes {
				t.Errorf("BytesPerTexel = %d, want %d", got, tt.bytes)
			}
			if got := SampleTypeOf(tt.format); got != tt.sampleType {
				t.Errorf("SampleTypeOf = %v, want %v", got, tt.sampleType)
			}
			if got := IsDepth(tt.format); got != tt.depth {
				t.Errorf("IsDepth = %v, want %v", got, tt.depth)
			}
			if err := ValidateFormat(tt.format); err != nil {
				t.Errorf("ValidateFormat: %v", err)
			}
		})
	}
}

func TestUnsupportedFormats(t *testing.T) {
	for _, f := range []TextureFormat{TextureFormatUndefined, wgpu.TextureFormatRG11B10Ufloat, wgpu.TextureFormatDepth24Plus} {
		if err := ValidateFormat(f); err == nil {
			t.Errorf("ValidateFormat(%v) accepted an unsupported format", f)
		}
		if BytesPerTexel(f) != 0 {
			t.Errorf("BytesPerTexel(%v) = %d, want 0", f, BytesPerTexel(f))
		}
	}
}

// Backends hand these values to the native API without translation.
func TestValuesAreNativeCodes(t *testing.T) {
	if TextureFormatRGBA32Uint != wgpu.TextureFormatRGBA32Uint {
		t.Errorf("format code %d differs from native %d", TextureFormatRGBA32Uint, wgpu.TextureFormatRGBA32Uint)
	}
	if TextureUsageRenderAttachment|TextureUsageTextureBinding != wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding {
		t.Error("texture usage flags differ from native flags")
	}
	if ShaderStageFragment != wgpu.ShaderStageFragment {
		t.Error("shader stage differs from native stage")
	}
}

func TestViewDimensionDefaultsTo2D(t *testing.T) {
	tests := []struct {
		dim  TextureViewDimension
		want bool
	}{
		{TextureViewDimensionUndefined, false},
		{TextureViewDimension2D, false},
		{TextureViewDimension2DArray, true},
	}

	for _, tt := range tests {
		if got := Is2DArray(tt.dim); got != tt.want {
			t.Errorf("Is2DArray(%v) = %v, want %v", tt.dim, got, tt.want)
		}
	}
}
