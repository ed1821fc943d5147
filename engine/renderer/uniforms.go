package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

type uniformSlot struct {
	buffer gpu.Buffer
	used   bool
}

// UniformArena uploads small POD values for use within the current frame.
// One buffer is kept per label and rewritten on every upload, so a label must only be
// uploaded once per frame.
type UniformArena struct {
	mu     sync.Mutex
	device gpu.Device
	slots  map[string]*uniformSlot
}

// NewUniformArena creates an arena allocating on device.
func NewUniformArena(device gpu.Device) *UniformArena {
	return &UniformArena{device: device, slots: make(map[string]*uniformSlot)}
}

// Upload serializes value and writes it into the buffer for label, creating or growing it as needed.
//
// Parameters:
//   - label: the buffer label, unique per frame
//   - value: the value to upload
//
// Returns:
//   - gpu.Buffer: the buffer holding value
//   - error: an error if allocation or upload fails
func (a *UniformArena) Upload(label string, value bind.Marshaler) (gpu.Buffer, error) {
	data := value.Marshal()

	a.mu.Lock()
	defer a.mu.Unlock()

	slot, ok := a.slots[label]
	if ok && slot.buffer.Size() >= bind.AlignUniform(uint64(len(data))) {
		if err := a.device.WriteBuffer(slot.buffer, 0, data); err != nil {
			return nil, fmt.Errorf("uniform %q: %w", label, err)
		}
		slot.used = true
		return slot.buffer, nil
	}
	if ok {
		slot.buffer.Release()
	}

	buf, err := bind.UniformBuffer(a.device, label, data)
	if err != nil {
		delete(a.slots, label)
		return nil, err
	}
	a.slots[label] = &uniformSlot{buffer: buf, used: true}
	return buf, nil
}

// Trim releases buffers that were not uploaded since the previous Trim.
func (a *UniformArena) Trim() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for label, slot := range a.slots {
		if !slot.used {
			slot.buffer.Release()
			delete(a.slots, label)
			continue
		}
		slot.used = false
	}
}

// Len returns the number of live buffers.
func (a *UniformArena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.slots)
}

// Release frees every buffer.
func (a *UniformArena) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, slot := range a.slots {
		slot.buffer.Release()
	}
	clear(a.slots)
}
