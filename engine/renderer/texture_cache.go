package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// textureEvictAge is the number of frames an entry may go unused before Update frees it.
const textureEvictAge = 3

// textureKey identifies interchangeable allocations.
type textureKey struct {
	label  string
	format gpu.TextureFormat
	size   gpu.Extent
	usage  gpu.TextureUsage
	dim    gpu.TextureViewDimension
}

type textureEntry struct {
	texture  gpu.Texture
	lastUsed uint64
	taken    bool
}

// TextureCache hands out textures keyed by label, format and size. An allocation is reused
// across frames as long as it is requested again, which is what keeps persistent simulation
// state alive: the same label yields the same physical texture every frame. Two requests for
// the same key within one frame get distinct textures.
type TextureCache struct {
	mu      sync.Mutex
	device  gpu.Device
	frame   uint64
	entries map[textureKey][]*textureEntry
}

// NewTextureCache creates an empty cache allocating from device.
//
// Parameters:
//   - device: the device textures are allocated on
//
// Returns:
//   - *TextureCache: the cache
func NewTextureCache(device gpu.Device) *TextureCache {
	return &TextureCache{
		device:  device,
		entries: make(map[textureKey][]*textureEntry),
	}
}

// Get returns a texture matching desc, reusing an allocation not yet taken this frame.
//
// Parameters:
//   - desc: the texture description; Label, Format and Size form the cache key
//
// Returns:
//   - gpu.Texture: the texture
//   - error: an error if the format is unsupported or allocation fails
func (c *TextureCache) Get(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if err := gpu.ValidateFormat(desc.Format); err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	if desc.Size.Layers == 0 {
		desc.Size.Layers = 1
	}
	key := textureKey{label: desc.Label, format: desc.Format, size: desc.Size, usage: desc.Usage, dim: desc.ViewDimension}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries[key] {
		if !e.taken {
			e.taken = true
			e.lastUsed = c.frame
			return e.texture, nil
		}
	}

	tex, err := c.device.CreateTexture(&desc)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	c.entries[key] = append(c.entries[key], &textureEntry{texture: tex, lastUsed: c.frame, taken: true})
	logger.Logger().Debug("texture allocated", "label", desc.Label, "format", desc.Format.String(),
		"width", desc.Size.Width, "height", desc.Size.Height)
	return tex, nil
}

// Update ends the frame: every entry becomes available again and entries unused for
// more than textureEvictAge frames are released.
func (c *TextureCache) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, list := range c.entries {
		kept := list[:0]
		for _, e := range list {
			if c.frame-e.lastUsed >= textureEvictAge {
				e.texture.Release()
				logger.Logger().Debug("texture evicted", "label", key.label)
				continue
			}
			e.taken = false
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(c.entries, key)
		} else {
			c.entries[key] = kept
		}
	}
	c.frame++
}

// Len returns the number of live allocations.
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}

// Release frees every allocation.
func (c *TextureCache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, list := range c.entries {
		for _, e := range list {
			e.texture.Release()
		}
	}
	clear(c.entries)
}
