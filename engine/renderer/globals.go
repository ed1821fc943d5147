package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
)

//go:embed assets/globals.wgsl
var globalsSource string

//go:embed assets/fullscreen.wgsl
var fullscreenSource string

// GPUGlobals mirrors the WGSL Globals struct bound at binding 9 of every pass.
type GPUGlobals struct {
	Time       float32
	DeltaTime  float32
	FrameCount uint32
	Padding    uint32
}

// Size returns the byte size of the uniform block.
func (g GPUGlobals) Size() int {
	return 16
}

func (g GPUGlobals) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.DeltaTime))
	binary.LittleEndian.PutUint32(buf[8:], g.FrameCount)
	binary.LittleEndian.PutUint32(buf[12:], g.Padding)
	return buf
}

// CommonIncludes returns the WGSL includes every engine shader may reference:
// `view` (the camera uniform), `globals`, and `fullscreen` (the full screen triangle vertex stage).
func CommonIncludes() map[string]string {
	return map[string]string{
		"view":       camera.GPUViewUniformSource,
		"globals":    globalsSource,
		"fullscreen": fullscreenSource,
	}
}
