package assets

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
)

// SpriteLayers is the number of layers of a unit sprite sheet, ordered team 0 idle, team 0
// attacking, team 1 idle, team 1 attacking.
const SpriteLayers = 4

// SpriteSheet builds the unit sprite texture array from four images loaded by a Server. It
// implements units.SpriteSource.
type SpriteSheet struct {
	mu sync.Mutex

	size    uint32
	layers  []*Handle
	texture gpu.Texture
}

var _ units.SpriteSource = &SpriteSheet{}

// NewSpriteSheet starts loading the four layer images of a sprite sheet.
//
// Parameters:
//   - server: the asset server the images are loaded with; its Size must be non zero
//   - paths: one image per layer in SpriteLayers order
//
// Returns:
//   - *SpriteSheet: the sheet, whose texture is created once every layer has loaded
//   - error: error if the layer count or the server size is wrong
func NewSpriteSheet(server Server, paths ...string) (*SpriteSheet, error) {
	if len(paths) != SpriteLayers {
		return nil, fmt.Errorf("sprite sheet needs %d images, got %d", SpriteLayers, len(paths))
	}
	if server.Size() == 0 {
		return nil, fmt.Errorf("sprite sheet needs a server that resamples to a fixed size")
	}
	s := &SpriteSheet{size: server.Size()}
	for _, p := range paths {
		s.layers = append(s.layers, server.Load(p))
	}
	return s, nil
}

// Handles returns the layer handles in layer order.
func (s *SpriteSheet) Handles() []*Handle {
	return s.layers
}

func (s *SpriteSheet) SpriteTexture(device gpu.Device) (gpu.Texture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texture != nil {
		return s.texture, nil
	}

	pixels := make([][]byte, len(s.layers))
	for i, h := range s.layers {
		img, err := h.Image()
		if err != nil {
			return nil, fmt.Errorf("sprite layer %d: %w", i, err)
		}
		if uint32(img.Rect.Dx()) != s.size || uint32(img.Rect.Dy()) != s.size {
			return nil, fmt.Errorf("sprite layer %d is %dx%d, want %d: %w", i, img.Rect.Dx(), img.Rect.Dy(), s.size, gpu.ErrMissingResource)
		}
		pixels[i] = img.Pix
	}

	tex, err := device.CreateTexture(&gpu.TextureDescriptor{
		Label:         "unit_sprite_sheet",
		Format:        gpu.TextureFormatRGBA8Unorm,
		Size:          gpu.Extent{Width: s.size, Height: s.size, Layers: SpriteLayers},
		Usage:         gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
		ViewDimension: gpu.TextureViewDimension2DArray,
	})
	if err != nil {
		return nil, fmt.Errorf("create sprite sheet: %w", err)
	}
	for layer, data := range pixels {
		if err := device.WriteTexture(tex, uint32(layer), data); err != nil {
			tex.Release()
			return nil, fmt.Errorf("upload sprite layer %d: %w", layer, err)
		}
	}
	s.texture = tex
	return tex, nil
}

// Release frees the sprite texture if it was created.
func (s *SpriteSheet) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texture != nil {
		s.texture.Release()
		s.texture = nil
	}
}
