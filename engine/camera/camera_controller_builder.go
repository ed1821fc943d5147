package camera

import "github.com/Carmen-Shannon/oxy-swarm/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - p: world-space coordinates
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(p common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = p
	}
}

// WithOrientation sets the initial yaw and pitch.
//
// Parameters:
//   - yaw: horizontal heading in radians
//   - pitch: vertical angle in radians, negative looks down
//
// Returns:
//   - CameraControllerOption: functional option to set the orientation
func WithOrientation(yaw, pitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw = yaw
		cc.pitch = pitch
	}
}

// WithScale sets the initial orthographic scale.
//
// Parameters:
//   - scale: world units per pixel
//
// Returns:
//   - CameraControllerOption: functional option to set the scale
func WithScale(scale float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.scale = scale
	}
}

// WithSpeeds sets the walk and run pan speeds in pixels per second.
//
// Parameters:
//   - walk: speed without the run key
//   - run: speed with the run key held
//
// Returns:
//   - CameraControllerOption: functional option to set the speeds
func WithSpeeds(walk, run float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.walkSpeed = walk
		cc.runSpeed = run
	}
}

// WithFriction sets the per-frame velocity decay applied without movement input, clamped to [0, 1].
//
// Parameters:
//   - friction: fraction of velocity removed each frame
//
// Returns:
//   - CameraControllerOption: functional option to set friction
func WithFriction(friction float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.friction = friction
	}
}

// WithZoomBounds sets the minimum and maximum orthographic scale.
//
// Parameters:
//   - min: smallest scale (closest zoom)
//   - max: largest scale (farthest zoom)
//
// Returns:
//   - CameraControllerOption: functional option to set zoom bounds
func WithZoomBounds(min, max float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minZoom = min
		cc.maxZoom = max
	}
}

// WithScrollSpeed sets the per-line scale factor of the mouse wheel.
//
// Parameters:
//   - speed: each wheel line scales by (1 + speed)
//
// Returns:
//   - CameraControllerOption: functional option to set scroll speed
func WithScrollSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.scrollSpeed = speed
	}
}

// WithMouseSensitivity sets the mouse drag pan sensitivity.
//
// Parameters:
//   - sensitivity: multiplier for mouse movement
//
// Returns:
//   - CameraControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}
