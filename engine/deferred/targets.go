// Package deferred owns the per-view render targets of the deferred renderer: the G-buffer,
// lighting id and reversed-Z depth textures geometry nodes draw into, and the main color
// textures lighting resolves into and post-processing ping-pongs between.
package deferred

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

const (
	// GBufferFormat packs albedo, normal, emissive and flags into one texel.
	GBufferFormat = gpu.TextureFormatRGBA32Uint
	// LightingIDFormat marks texels covered by lit geometry; 0 is background.
	LightingIDFormat = gpu.TextureFormatR8Uint
	// DepthFormat is the reversed-Z depth buffer format. It is cleared to 0 (far).
	DepthFormat = gpu.TextureFormatDepth32Float
	// MainFormat is the HDR main color format.
	MainFormat = gpu.TextureFormatRGBA16Float
)

// LightingIDLit is the lighting id geometry writes for shaded texels.
const LightingIDLit = 1

// ViewTargets are the render targets of one view for the current frame.
type ViewTargets struct {
	GBuffer    gpu.Texture
	LightingID gpu.Texture
	Depth      gpu.Texture

	main    [2]gpu.Texture
	current int
}

// Main returns the main color texture holding the latest result.
func (t *ViewTargets) Main() gpu.Texture {
	return t.main[t.current]
}

// PostProcessWrite returns the current main texture as the source and the other one as the
// destination, then makes the destination current. Every post-process pass calls it once.
//
// Returns:
//   - source: the texture to read
//   - destination: the texture to write, current after the call
func (t *ViewTargets) PostProcessWrite() (source, destination gpu.Texture) {
	source = t.main[t.current]
	t.current = 1 - t.current
	return source, t.main[t.current]
}

func targetDesc(base string, format gpu.TextureFormat, width, height uint32) gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Label:  base,
		Format: format,
		Size:   gpu.Extent{Width: width, Height: height, Layers: 1},
		Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding,
	}
}

// acquireTargets takes the view's targets from the texture cache.
func acquireTargets(cache *renderer.TextureCache, view *renderer.ViewContext) (*ViewTargets, error) {
	width, height := view.Size()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("view %d has zero size: %w", view.ID(), gpu.ErrNotReady)
	}

	get := func(base string, format gpu.TextureFormat) (gpu.Texture, error) {
		tex, err := cache.Get(targetDesc(view.Label(base), format, width, height))
		if err != nil {
			return nil, fmt.Errorf("deferred target %s: %w: %w", base, gpu.ErrMissingResource, err)
		}
		return tex, nil
	}

	t := &ViewTargets{}
	var err error
	if t.GBuffer, err = get("gbuffer", GBufferFormat); err != nil {
		return nil, err
	}
	if t.LightingID, err = get("lighting_id", LightingIDFormat); err != nil {
		return nil, err
	}
	if t.Depth, err = get("depth", DepthFormat); err != nil {
		return nil, err
	}
	if t.main[0], err = get("main_a", MainFormat); err != nil {
		return nil, err
	}
	if t.main[1], err = get("main_b", MainFormat); err != nil {
		return nil, err
	}
	return t, nil
}
