package units

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Textures are the simulation textures of one view with their roles for the current frame.
//
// Data, Attack and Large are double buffered: Read holds the state the previous simulated frame
// wrote and Write receives this frame's state. Scratch receives the Evaluate output before Update
// finalizes it into Data.Write.
type Textures struct {
	Data    renderer.DoubleBuffered
	Attack  renderer.DoubleBuffered
	Large   renderer.DoubleBuffered
	Scratch gpu.Texture
}

// Current returns the newest state: the Write side when the simulation ran this frame and the
// Read side when it was skipped.
//
// Parameters:
//   - view: the view owning the textures
//
// Returns:
//   - data: the small unit state
//   - attack: the attack map
//   - large: the large unit state
func (t *Textures) Current(view *renderer.ViewContext) (data, attack, large gpu.Texture) {
	if view.Simulated() {
		return t.Data.Write, t.Attack.Write, t.Large.Write
	}
	return t.Data.Read, t.Attack.Read, t.Large.Read
}

// MinimapChain is the coarse occupancy pyramid the minimap stage publishes on a view. Level 0
// reduces the unit grid by MinimapScale, each further level reduces the previous one again.
// Until the minimap generate stage runs in a frame, the levels hold the previous frame's result.
type MinimapChain struct {
	Levels [MinimapLevels]gpu.Texture
}

func stateDesc(format gpu.TextureFormat, width, height uint32) gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Format: format,
		Size:   gpu.Extent{Width: width, Height: height, Layers: 1},
		Usage:  gpu.TextureUsageRenderAttachment | gpu.TextureUsageTextureBinding | gpu.TextureUsageCopyDst,
	}
}

// AcquireTextures takes the simulation textures of a view from the cache and binds their roles
// by the view's parity. The allocations are persistent: the same labels yield the same textures
// every frame.
//
// Parameters:
//   - cache: the renderer's texture cache
//   - view: the view being simulated
//   - large: the large unit grid size
//
// Returns:
//   - *Textures: the textures with roles bound
//   - error: a wrapped gpu.ErrMissingResource when an allocation failed
func AcquireTextures(cache *renderer.TextureCache, view *renderer.ViewContext, large LargeGrid) (*Textures, error) {
	var (
		t   Textures
		err error
	)
	t.Data, err = renderer.AcquireDoubleBuffered(cache, view, "unit_data", stateDesc(DataFormat, DataWidth, DataHeight))
	if err != nil {
		return nil, missing("unit data", err)
	}
	t.Attack, err = renderer.AcquireDoubleBuffered(cache, view, "unit_attack", stateDesc(AttackFormat, DataWidth, DataHeight))
	if err != nil {
		return nil, missing("attack map", err)
	}
	t.Large, err = renderer.AcquireDoubleBuffered(cache, view, "large_unit_data", stateDesc(DataFormat, large.Width, large.Height))
	if err != nil {
		return nil, missing("large unit data", err)
	}
	scratch := stateDesc(DataFormat, DataWidth, DataHeight)
	scratch.Label = view.Label("unit_eval")
	t.Scratch, err = cache.Get(scratch)
	if err != nil {
		return nil, missing("evaluate scratch", err)
	}
	return &t, nil
}

func missing(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, gpu.ErrMissingResource, err)
}
