package soft_backend

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Texture is a CPU texture. Every texel is stored as four 32 bit channels: integer formats
// keep the integer value, float and normalized formats keep float32 bits.
type Texture struct {
	mu       sync.RWMutex
	label    string
	format   gpu.TextureFormat
	size     gpu.Extent
	texels   [][4]uint32
	released bool
}

var _ gpu.Texture = &Texture{}

func newTexture(desc *gpu.TextureDescriptor) (*Texture, error) {
	if err := gpu.ValidateFormat(desc.Format); err != nil {
		return nil, err
	}
	size := desc.Size
	if size.Layers == 0 {
		size.Layers = 1
	}
	if size.Width == 0 || size.Height == 0 {
		return nil, fmt.Errorf("texture %q: zero size %dx%d", desc.Label, size.Width, size.Height)
	}
	return &Texture{
		label:  desc.Label,
		format: desc.Format,
		size:   size,
		texels: make([][4]uint32, int(size.Width)*int(size.Height)*int(size.Layers)),
	}, nil
}

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
	t.mu.Lock()
	defer t.mu.Unlock()
	t.released = true
}

// Released reports whether Release was called.
func (t *Texture) Released() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.released
}

func (t *Texture) index(x, y, layer uint32) (int, bool) {
	if x >= t.size.Width || y >= t.size.Height || layer >= t.size.Layers {
		return 0, false
	}
	return int(layer)*int(t.size.Width)*int(t.size.Height) + int(y)*int(t.size.Width) + int(x), true
}

// Load returns the raw channels of a texel. Out of range coordinates read zero, like a
// textureLoad with robust buffer access.
func (t *Texture) Load(x, y, layer uint32) [4]uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index(x, y, layer)
	if !ok {
		return [4]uint32{}
	}
	return t.texels[i]
}

// LoadFloat returns the channels of a float or normalized texel as floats.
func (t *Texture) LoadFloat(x, y, layer uint32) [4]float32 {
	v := t.Load(x, y, layer)
	return [4]float32{
		math.Float32frombits(v[0]),
		math.Float32frombits(v[1]),
		math.Float32frombits(v[2]),
		math.Float32frombits(v[3]),
	}
}

// Store writes a texel, truncating the channels to what the format holds.
func (t *Texture) Store(x, y, layer uint32, v [4]uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index(x, y, layer)
	if !ok {
		return
	}
	t.texels[i] = t.encode(v)
}

// StoreFloat writes a float texel. Normalized formats are clamped to [0, 1].
func (t *Texture) StoreFloat(x, y, layer uint32, v [4]float32) {
	t.Store(x, y, layer, [4]uint32{
		math.Float32bits(v[0]),
		math.Float32bits(v[1]),
		math.Float32bits(v[2]),
		math.Float32bits(v[3]),
	})
}

// SampleNearest samples layer at normalized coordinates with nearest filtering and clamping.
func (t *Texture) SampleNearest(u, v float32, layer uint32) [4]float32 {
	x := clampCoord(u, t.size.Width)
	y := clampCoord(v, t.size.Height)
	return t.LoadFloat(x, y, layer)
}

func clampCoord(c float32, n uint32) uint32 {
	i := int(math.Floor(float64(c * float32(n))))
	if i < 0 {
		return 0
	}
	if i >= int(n) {
		return n - 1
	}
	return uint32(i)
}

// Fill sets every texel to v.
func (t *Texture) Fill(v [4]uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v = t.encode(v)
	for i := range t.texels {
		t.texels[i] = v
	}
}

// Texels returns a copy of every texel, layer by layer, row by row.
func (t *Texture) Texels() [][4]uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][4]uint32, len(t.texels))
	copy(out, t.texels)
	return out
}

func (t *Texture) encode(v [4]uint32) [4]uint32 {
	switch t.format {
	case gpu.TextureFormatRGBA8Uint:
		return [4]uint32{v[0] & 0xFF, v[1] & 0xFF, v[2] & 0xFF, v[3] & 0xFF}
	case gpu.TextureFormatR8Uint:
		return [4]uint32{v[0] & 0xFF, 0, 0, 0}
	case gpu.TextureFormatDepth32Float:
		return [4]uint32{v[0], 0, 0, 0}
	case gpu.TextureFormatRGBA8Unorm, gpu.TextureFormatRGBA8UnormSrgb,
		gpu.TextureFormatBGRA8Unorm, gpu.TextureFormatBGRA8UnormSrgb:
		for c := range v {
			v[c] = math.Float32bits(clamp01(math.Float32frombits(v[c])))
		}
		return v
	default:
		return v
	}
}

func clamp01(f float32) float32 {
	if f != f || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// clearValue converts a pass clear color to the texel encoding of the format.
func (t *Texture) clearValue(c gpu.Color) [4]uint32 {
	if gpu.SampleTypeOf(t.format) == gpu.TextureSampleTypeUint {
		return [4]uint32{uint32(c.R), uint32(c.G), uint32(c.B), uint32(c.A)}
	}
	return [4]uint32{
		math.Float32bits(float32(c.R)),
		math.Float32bits(float32(c.G)),
		math.Float32bits(float32(c.B)),
		math.Float32bits(float32(c.A)),
	}
}

// write decodes tightly packed texel bytes of one layer.
func (t *Texture) write(layer uint32, data []byte) error {
	bpt := int(gpu.BytesPerTexel(t.format))
	count := int(t.size.Width) * int(t.size.Height)
	if len(data) != count*bpt {
		return fmt.Errorf("texture %q: got %d bytes, want %d", t.label, len(data), count*bpt)
	}
	if layer >= t.size.Layers {
		return fmt.Errorf("texture %q: layer %d out of range", t.label, layer)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	base := int(layer) * count
	for i := 0; i < count; i++ {
		px := data[i*bpt : (i+1)*bpt]
		var v [4]uint32
		switch t.format {
		case gpu.TextureFormatRGBA32Uint:
			for c := 0; c < 4; c++ {
				v[c] = binary.LittleEndian.Uint32(px[c*4:])
			}
		case gpu.TextureFormatRGBA8Uint:
			v = [4]uint32{uint32(px[0]), uint32(px[1]), uint32(px[2]), uint32(px[3])}
		case gpu.TextureFormatR8Uint:
			v[0] = uint32(px[0])
		case gpu.TextureFormatRGBA8Unorm, gpu.TextureFormatRGBA8UnormSrgb:
			for c := 0; c < 4; c++ {
				v[c] = math.Float32bits(float32(px[c]) / 255)
			}
		case gpu.TextureFormatBGRA8Unorm, gpu.TextureFormatBGRA8UnormSrgb:
			order := [4]int{2, 1, 0, 3}
			for c := 0; c < 4; c++ {
				v[c] = math.Float32bits(float32(px[order[c]]) / 255)
			}
		case gpu.TextureFormatRGBA16Float:
			for c := 0; c < 4; c++ {
				v[c] = math.Float32bits(halfToFloat(binary.LittleEndian.Uint16(px[c*2:])))
			}
		case gpu.TextureFormatDepth32Float:
			v[0] = binary.LittleEndian.Uint32(px)
		}
		t.texels[base+i] = v
	}
	return nil
}

// halfToFloat converts an IEEE 754 binary16 value.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h & 0x3FF)
	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// subnormal
		f := float32(mant) / 1024 * float32(math.Pow(2, -14))
		if sign != 0 {
			return -f
		}
		return f
	case exp == 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | mant<<13)
	default:
		return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
	}
}
