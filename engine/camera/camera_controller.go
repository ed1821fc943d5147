package camera

import (
	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/input"
)

// CameraController owns the positional state of an orthographic camera: translation, yaw,
// pitch, projection scale and the damped pan velocity. Camera reads from the controller
// and computes view/projection matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p common.Vec3)

	// Yaw returns the horizontal heading in radians. Zero looks down +Z.
	Yaw() float32

	// Pitch returns the vertical angle in radians. Negative looks down.
	Pitch() float32

	// Scale returns the orthographic scale in world units per pixel.
	Scale() float32

	// SetScale sets the orthographic scale, clamped to the zoom bounds.
	//
	// Parameters:
	//   - scale: world units per pixel
	SetScale(scale float32)

	// Velocity returns the current pan velocity in pixels per second along the camera's right, up
	// and zoom axes.
	Velocity() common.Vec3

	// Axes returns the camera's right, up and forward unit vectors.
	//
	// Returns:
	//   - right, up, forward: camera-local axes in world space
	Axes() (right, up, forward common.Vec3)

	// Update advances the controller by dt seconds using one frame of input.
	// Movement keys set the velocity to walk or run speed; without movement input the velocity
	// decays by the friction factor. The mouse wheel and modifier drag change the scale.
	//
	// Parameters:
	//   - dt: frame time in seconds
	//   - in: the frame's input snapshot
	Update(dt float32, in input.Snapshot)
}
