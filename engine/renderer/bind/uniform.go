package bind

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
)

// Marshaler is implemented by host structs that mirror a WGSL uniform block.
// Marshal must return the std140 compatible byte layout the shader declares.
type Marshaler interface {
	Marshal() []byte
}

// UniformBuffer creates a uniform buffer sized for data and uploads it.
//
// Parameters:
//   - device: the device to allocate on
//   - label: the debug label of the buffer
//   - data: the bytes to upload, padded up to a multiple of 16 bytes
//
// Returns:
//   - gpu.Buffer: the uploaded buffer
//   - error: an error if allocation or upload fails
func UniformBuffer(device gpu.Device, label string, data []byte) (gpu.Buffer, error) {
	buf, err := device.CreateBuffer(&gpu.BufferDescriptor{
		Label: label,
		Size:  AlignUniform(uint64(len(data))),
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("uniform %q: %w", label, err)
	}
	if err := device.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("uniform %q: %w", label, err)
	}
	return buf, nil
}

// AlignUniform rounds size up to the 16 byte uniform alignment, with a minimum of 16.
func AlignUniform(size uint64) uint64 {
	if size == 0 {
		return 16
	}
	return (size + 15) &^ 15
}
