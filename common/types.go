// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// Layers are stored back to back, each Width*Height*4 bytes long.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of one layer in pixels.
	Width uint32
	// Height is the height of one layer in pixels.
	Height uint32
	// Layers is the number of array layers packed into Pixels. Zero is treated as one.
	Layers uint32
}

// LayerCount returns the number of layers, treating zero as one.
func (t TextureStagingData) LayerCount() uint32 {
	return max(t.Layers, 1)
}

// LayerSize returns the byte length of one layer.
func (t TextureStagingData) LayerSize() int {
	return int(t.Width) * int(t.Height) * 4
}

// Layer returns the pixel bytes of the given layer.
//
// Parameters:
//   - i: the zero-based layer index
//
// Returns:
//   - []byte: the layer's pixels
//   - error: an error if the layer is out of range or the pixel buffer is short
func (t TextureStagingData) Layer(i uint32) ([]byte, error) {
	if i >= t.LayerCount() {
		return nil, fmt.Errorf("layer %d out of range, texture has %d layers", i, t.LayerCount())
	}
	size := t.LayerSize()
	start := int(i) * size
	if start+size > len(t.Pixels) {
		return nil, fmt.Errorf("texture pixels too short for layer %d: have %d bytes, need %d", i, len(t.Pixels), start+size)
	}
	return t.Pixels[start : start+size], nil
}
