package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureFormat identifies the texel layout of a texture, using the WebGPU format codes. Only the
// formats the engine actually renders to or samples from are supported; backends reject anything
// else at creation time.
type TextureFormat = wgpu.TextureFormat

const (
	TextureFormatUndefined      = wgpu.TextureFormatUndefined
	TextureFormatRGBA32Uint     = wgpu.TextureFormatRGBA32Uint
	TextureFormatRGBA8Uint      = wgpu.TextureFormatRGBA8Uint
	TextureFormatR8Uint         = wgpu.TextureFormatR8Uint
	TextureFormatRGBA8Unorm     = wgpu.TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb = wgpu.TextureFormatRGBA8UnormSrgb
	TextureFormatBGRA8Unorm     = wgpu.TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb = wgpu.TextureFormatBGRA8UnormSrgb
	TextureFormatRGBA16Float    = wgpu.TextureFormatRGBA16Float
	TextureFormatDepth32Float   = wgpu.TextureFormatDepth32Float
)

// BytesPerTexel returns the size of one texel of f in bytes, or 0 for an unsupported format.
func BytesPerTexel(f TextureFormat) uint32 {
	switch f {
	case TextureFormatRGBA32Uint:
		return 16
	case TextureFormatRGBA16Float:
		return 8
	case TextureFormatRGBA8Uint, TextureFormatRGBA8Unorm, TextureFormatRGBA8UnormSrgb,
		TextureFormatBGRA8Unorm, TextureFormatBGRA8UnormSrgb, TextureFormatDepth32Float:
		return 4
	case TextureFormatR8Uint:
		return 1
	default:
		return 0
	}
}

// SampleTypeOf reports how shaders read f.
func SampleTypeOf(f TextureFormat) TextureSampleType {
	switch f {
	case TextureFormatRGBA32Uint, TextureFormatRGBA8Uint, TextureFormatR8Uint:
		return TextureSampleTypeUint
	case TextureFormatDepth32Float:
		return TextureSampleTypeDepth
	case TextureFormatUndefined:
		return TextureSampleTypeUndefined
	default:
		return TextureSampleTypeFloat
	}
}

// IsDepth reports whether f is a depth format.
func IsDepth(f TextureFormat) bool {
	return f == TextureFormatDepth32Float
}

// ValidateFormat returns an error for formats no backend can allocate.
func ValidateFormat(f TextureFormat) error {
	if BytesPerTexel(f) == 0 {
		return fmt.Errorf("unsupported texture format %s", f)
	}
	return nil
}
