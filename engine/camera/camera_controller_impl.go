package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/input"
)

var worldUp = common.Vec3{0, 1, 0}

// cameraControllerImpl is the orthographic pan/zoom controller.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	yaw      float32
	pitch    float32
	scale    float32
	velocity common.Vec3

	walkSpeed      float32
	runSpeed       float32
	friction       float32
	minZoom        float32
	maxZoom        float32
	scrollSpeed    float32
	sensitivity    float32
	clickZoomSpeed float32

	// mouseToggled latches free mouse panning, flipped by KeyM
	mouseToggled bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orthographic controller looking down at the battlefield
// from the south-west at 45 degrees.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:             &sync.Mutex{},
		position:       common.Vec3{-94, 495, -94},
		yaw:            float32(math.Pi / 4),
		pitch:          -float32(math.Pi / 4),
		scale:          0.03,
		walkSpeed:      1000,
		runSpeed:       2000,
		friction:       0.5,
		minZoom:        0.001,
		maxZoom:        0.5,
		scrollSpeed:    0.12,
		sensitivity:    1.251,
		clickZoomSpeed: 1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.scale = clamp(cc.scale, cc.minZoom, cc.maxZoom)
	return cc
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// axes computes right, up and forward from yaw and pitch. Caller must hold the mutex.
func (cc *cameraControllerImpl) axes() (right, up, forward common.Vec3) {
	cp := float32(math.Cos(float64(cc.pitch)))
	sp := float32(math.Sin(float64(cc.pitch)))
	cy := float32(math.Cos(float64(cc.yaw)))
	sy := float32(math.Sin(float64(cc.yaw)))

	forward = common.Vec3{cp * sy, sp, cp * cy}
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward)
	return right, up, forward
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(p common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) Scale() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.scale
}

func (cc *cameraControllerImpl) SetScale(scale float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.scale = clamp(scale, cc.minZoom, cc.maxZoom)
}

func (cc *cameraControllerImpl) Velocity() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.velocity
}

func (cc *cameraControllerImpl) Axes() (right, up, forward common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.axes()
}

func (cc *cameraControllerImpl) Update(dt float32, in input.Snapshot) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	var axis common.Vec3
	if in.Pressed(common.KeyW) {
		axis[1] += 1
	}
	if in.Pressed(common.KeyS) {
		axis[1] -= 1
	}
	if in.Pressed(common.KeyD) {
		axis[0] += 1
	}
	if in.Pressed(common.KeyA) {
		axis[0] -= 1
	}
	if in.Pressed(common.KeyE) {
		axis[2] += 1
	}
	if in.Pressed(common.KeyQ) {
		axis[2] -= 1
	}
	if in.JustPressed(common.KeyM) {
		cc.mouseToggled = !cc.mouseToggled
	}

	if axis != (common.Vec3{}) {
		speed := cc.walkSpeed
		if in.Pressed(common.KeyLeftShift) {
			speed = cc.runSpeed
		}
		cc.velocity = axis.Normalize().Scale(speed)
	} else {
		cc.velocity = cc.velocity.Scale(1 - clamp(cc.friction, 0, 1))
		if cc.velocity.Dot(cc.velocity) < 1e-6 {
			cc.velocity = common.Vec3{}
		}
	}

	// pan speeds are in pixels, scale converts them to world units
	prevScale := cc.scale
	right, up, _ := cc.axes()
	zoomModifier := in.Pressed(common.KeyLeftControl)
	if !zoomModifier {
		delta := right.Scale(cc.velocity[0] * dt).Add(up.Scale(cc.velocity[1] * dt))
		cc.position = cc.position.Add(delta.Scale(prevScale))
	}

	left := in.ButtonPressed(common.MouseButtonLeft)
	var mouseDelta [2]float32
	if in.ButtonPressed(common.MouseButtonMiddle) ||
		(left && in.Pressed(common.KeyLeftShift)) ||
		(left && zoomModifier) ||
		cc.mouseToggled {
		mouseDelta = in.MouseDelta
	}

	if in.Scroll > 0 {
		cc.scale /= float32(math.Pow(float64(1+cc.scrollSpeed), float64(in.Scroll)))
	} else if in.Scroll < 0 {
		cc.scale *= float32(math.Pow(float64(1+cc.scrollSpeed), float64(-in.Scroll)))
	}
	if zoomModifier && left {
		cc.scale *= 1 + (-mouseDelta[0]+mouseDelta[1])*0.002*cc.clickZoomSpeed
		mouseDelta = [2]float32{}
	}
	cc.scale += cc.velocity[2] * 0.0000005 * float32(math.Sqrt(float64(cc.scale)))
	cc.scale = clamp(cc.scale, cc.minZoom, cc.maxZoom)

	if mouseDelta != ([2]float32{}) {
		// dragging right moves the view left, window y grows downward
		delta := right.Scale(-cc.sensitivity * mouseDelta[0]).Add(up.Scale(cc.sensitivity * mouseDelta[1]))
		cc.position = cc.position.Add(delta.Scale(prevScale))
	}
}
