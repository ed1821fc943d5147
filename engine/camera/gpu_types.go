package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUViewUniformSource is the canonical WGSL definition of the View struct.
// Matches GPUViewUniform layout exactly (224 bytes, WGSL uniform aligned).
//
//go:embed assets/view.wgsl
var GPUViewUniformSource string

// GPUViewUniform is the GPU-aligned representation of the per-view uniform buffer.
// Matches the WGSL View struct layout exactly (see GPUViewUniformSource).
// Size: 224 bytes.
type GPUViewUniform struct {
	ViewProj        [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	InverseViewProj [16]float32 // offset  64: inverse of ViewProj (mat4x4<f32>)
	View            [16]float32 // offset 128: world to view matrix (mat4x4<f32>)
	WorldPosition   [3]float32  // offset 192: world-space camera position (vec3<f32>)
	Scale           float32     // offset 204: orthographic world units per pixel
	Viewport        [4]float32  // offset 208: viewport origin and size in pixels (vec4<f32>)
}

// Size returns the size of the GPUViewUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (224)
func (g *GPUViewUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUViewUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf[0:], g.ViewProj[:])
	putFloats(buf[64:], g.InverseViewProj[:])
	putFloats(buf[128:], g.View[:])
	putFloats(buf[192:], g.WorldPosition[:])
	binary.LittleEndian.PutUint32(buf[204:], math.Float32bits(g.Scale))
	putFloats(buf[208:], g.Viewport[:])
	return buf
}

func putFloats(dst []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
