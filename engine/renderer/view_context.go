package renderer

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// ViewID is the stable identifier of a view. It is part of every cached resource label of the view.
type ViewID uint32

// ViewContext is the per-view state a frame's stages read and publish into.
//
// Besides size and camera uniform it carries the simulation step counter, whose parity selects
// the read and write roles of every double buffered texture, and a set of typed components
// through which stages hand resources to later stages (units publish their textures, the
// minimap publishes its chain). Components are reset by the stage that owns them every frame.
type ViewContext struct {
	mu sync.Mutex

	id     ViewID
	width  uint32
	height uint32

	step      uint64
	simulated bool

	uniform       *camera.GPUViewUniform
	uniformBuffer gpu.Buffer

	components map[reflect.Type]any
}

// NewViewContext creates the context of a view.
//
// Parameters:
//   - id: the stable view identifier
//   - width, height: the render target size in pixels
//
// Returns:
//   - *ViewContext: the view context at step 0
func NewViewContext(id ViewID, width, height uint32) *ViewContext {
	return &ViewContext{
		id:         id,
		width:      width,
		height:     height,
		uniform:    &camera.GPUViewUniform{},
		components: make(map[reflect.Type]any),
	}
}

func (v *ViewContext) ID() ViewID {
	return v.id
}

func (v *ViewContext) Size() (width, height uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

// Resize changes the render target size. Size dependent textures are reallocated by the cache.
func (v *ViewContext) Resize(width, height uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
}

// Label returns base suffixed with the view id, e.g. "unit_data_a_view0".
func (v *ViewContext) Label(base string) string {
	return fmt.Sprintf("%s_view%d", base, v.id)
}

// Step returns the number of frames the view's simulation has advanced.
func (v *ViewContext) Step() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.step
}

// Parity returns step % 2. At parity 0 the A allocation of every pair is read and B is written.
func (v *ViewContext) Parity() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return int(v.step % 2)
}

// MarkSimulated records that this frame's simulation passes were recorded.
func (v *ViewContext) MarkSimulated() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.simulated = true
}

// Simulated reports whether MarkSimulated was called this frame.
func (v *ViewContext) Simulated() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.simulated
}

// EndFrame advances the step counter when the simulation ran this frame. A skipped frame
// leaves the parity unchanged so the next frame reads the last written state again.
func (v *ViewContext) EndFrame() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.simulated {
		v.step++
	}
	v.simulated = false
}

// SetUniform stores the camera uniform uploaded for this view.
func (v *ViewContext) SetUniform(u *camera.GPUViewUniform) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if u != nil {
		v.uniform = u
	}
}

// Uniform returns the camera uniform of this view.
func (v *ViewContext) Uniform() *camera.GPUViewUniform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.uniform
}

// UniformBuffer returns the buffer the camera uniform was uploaded to this frame.
func (v *ViewContext) UniformBuffer() gpu.Buffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.uniformBuffer
}

func (v *ViewContext) beginFrame(uniformBuffer gpu.Buffer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.uniformBuffer = uniformBuffer
	v.simulated = false
}

// SetComponent stores value on the view, replacing any component of the same type.
func SetComponent[T any](v *ViewContext, value *T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.components[reflect.TypeFor[T]()] = value
}

// GetComponent returns the component of type T, or gpu.ErrMissingResource when absent.
//
// Parameters:
//   - v: the view to read
//
// Returns:
//   - *T: the component
//   - error: a wrapped gpu.ErrMissingResource if the view carries no T
func GetComponent[T any](v *ViewContext) (*T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c, ok := v.components[reflect.TypeFor[T]()]
	if !ok {
		return nil, fmt.Errorf("view %d component %s: %w", v.id, reflect.TypeFor[T](), gpu.ErrMissingResource)
	}
	return c.(*T), nil
}

// RemoveComponent deletes the component of type T if present.
func RemoveComponent[T any](v *ViewContext) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.components, reflect.TypeFor[T]())
}

// DoubleBuffered is one logical buffer of a view bound to its roles for the current frame.
type DoubleBuffered struct {
	Read  gpu.Texture
	Write gpu.Texture
}

// AcquireDoubleBuffered takes the two physical allocations "<base>_a" and "<base>_b" of a
// logical buffer from the cache and assigns roles by the view's parity: A is read on even
// steps and written on odd ones.
//
// Parameters:
//   - cache: the texture cache
//   - view: the view owning the buffer
//   - base: the logical buffer name
//   - desc: the texture description; its Label is replaced
//
// Returns:
//   - DoubleBuffered: the pair with Read and Write set
//   - error: an allocation error, or an error if the cache handed out one texture for both
func AcquireDoubleBuffered(cache *TextureCache, view *ViewContext, base string, desc gpu.TextureDescriptor) (DoubleBuffered, error) {
	desc.Label = view.Label(base + "_a")
	a, err := cache.Get(desc)
	if err != nil {
		return DoubleBuffered{}, err
	}
	desc.Label = view.Label(base + "_b")
	b, err := cache.Get(desc)
	if err != nil {
		return DoubleBuffered{}, err
	}
	if a == b {
		return DoubleBuffered{}, fmt.Errorf("double buffer %q: both roles resolved to one texture", base)
	}
	if view.Parity() == 0 {
		return DoubleBuffered{Read: a, Write: b}, nil
	}
	return DoubleBuffered{Read: b, Write: a}, nil
}
