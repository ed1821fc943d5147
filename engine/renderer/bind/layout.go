package bind

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// layout is the implementation of the Layout interface.
type layout struct {
	desc   gpu.BindGroupLayoutDescriptor
	handle gpu.BindGroupLayout
}

// Layout is a compiled bind group layout that remembers the descriptor it was created from,
// so pipelines can check their shaders against it and nodes can build groups for it.
type Layout interface {
	// Descriptor returns the descriptor the layout was created from.
	//
	// Returns:
	//   - gpu.BindGroupLayoutDescriptor: the layout descriptor
	Descriptor() gpu.BindGroupLayoutDescriptor

	// Handle returns the compiled device layout.
	//
	// Returns:
	//   - gpu.BindGroupLayout: the compiled layout
	Handle() gpu.BindGroupLayout

	// Release releases the compiled layout.
	Release()
}

var _ Layout = &layout{}

// NewLayout compiles a bind group layout on the device.
// Duplicate binding indices are rejected since no backend accepts them.
//
// Parameters:
//   - device: the device to compile on
//   - label: the debug label of the layout
//   - entries: the binding slots of the layout
//
// Returns:
//   - Layout: the compiled layout
//   - error: an error if the entries are invalid or compilation fails
func NewLayout(device gpu.Device, label string, entries ...gpu.BindGroupLayoutEntry) (Layout, error) {
	seen := make(map[uint32]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Binding]; dup {
			return nil, fmt.Errorf("layout %q: duplicate binding %d", label, e.Binding)
		}
		seen[e.Binding] = struct{}{}
	}

	desc := gpu.BindGroupLayoutDescriptor{Label: label, Entries: entries}
	handle, err := device.CreateBindGroupLayout(&desc)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", label, err)
	}
	return &layout{desc: desc, handle: handle}, nil
}

func (l *layout) Descriptor() gpu.BindGroupLayoutDescriptor {
	return l.desc
}

func (l *layout) Handle() gpu.BindGroupLayout {
	return l.handle
}

func (l *layout) Release() {
	if l.handle != nil {
		l.handle.Release()
		l.handle = nil
	}
}

// Texture binds a texture to a slot.
func Texture(binding uint32, tex gpu.Texture) gpu.BindGroupEntry {
	return gpu.BindGroupEntry{Binding: binding, Texture: tex}
}

// Buffer binds a buffer to a slot.
func Buffer(binding uint32, buf gpu.Buffer) gpu.BindGroupEntry {
	return gpu.BindGroupEntry{Binding: binding, Buffer: buf}
}

// Sampler binds a sampler to a slot.
func Sampler(binding uint32, s gpu.Sampler) gpu.BindGroupEntry {
	return gpu.BindGroupEntry{Binding: binding, Sampler: s}
}

// NewBindGroup creates a bind group for the layout. An entry with no resource, which happens when
// an upstream texture or buffer has not been produced yet, yields gpu.ErrMissingResource so the
// calling node can skip its work for the frame.
//
// Parameters:
//   - device: the device to create on
//   - label: the debug label of the group
//   - l: the layout the group satisfies
//   - entries: one resource per layout entry
//
// Returns:
//   - gpu.BindGroup: the created bind group
//   - error: gpu.ErrMissingResource for a nil resource, or a creation error
func NewBindGroup(device gpu.Device, label string, l Layout, entries ...gpu.BindGroupEntry) (gpu.BindGroup, error) {
	for _, e := range entries {
		if isNil(e) {
			return nil, fmt.Errorf("bind group %q binding %d: %w", label, e.Binding, gpu.ErrMissingResource)
		}
	}
	if len(entries) != len(l.Descriptor().Entries) {
		return nil, fmt.Errorf("bind group %q: %d entries for a %d entry layout", label, len(entries), len(l.Descriptor().Entries))
	}
	return device.CreateBindGroup(&gpu.BindGroupDescriptor{Label: label, Layout: l.Handle(), Entries: entries})
}

func isNil(e gpu.BindGroupEntry) bool {
	switch {
	case e.Texture != nil:
		return false
	case e.Buffer != nil:
		return false
	case e.Sampler != nil:
		return false
	default:
		return true
	}
}
