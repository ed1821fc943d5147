package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	// viewport is the pixel size of the render target this camera draws into
	viewport [2]float32

	near float32
	far  float32

	viewMatrix                  [16]float32
	projectionMatrix            [16]float32
	viewProjectionMatrix        [16]float32
	inverseViewProjectionMatrix [16]float32

	position common.Vec3
	scale    float32
	right    common.Vec3
	up       common.Vec3
	forward  common.Vec3

	controller CameraController
}

// Camera is an orthographic camera with a reversed-Z projection. It reads position, orientation
// and scale from an attached CameraController each frame via Update() and turns them into
// matrices, the per-view GPU uniform, and cursor rays.
type Camera interface {
	// Viewport returns the render target size in pixels.
	//
	// Returns:
	//   - width, height: viewport size in pixels
	Viewport() (width, height float32)

	// SetViewport sets the render target size in pixels and recomputes matrices.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	SetViewport(width, height float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	ViewProjectionMatrix() [16]float32

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Update reads the controller state and recomputes matrices.
	// Should be called once per frame after the controller has been updated.
	Update()

	// ViewportToRay converts a cursor position into a world-space ray. For an orthographic
	// camera every ray shares the camera's forward direction; the origin is the point on the
	// camera plane under the cursor.
	//
	// Parameters:
	//   - x, y: cursor position in pixels, origin top left
	//
	// Returns:
	//   - common.Ray: the world-space ray
	//   - bool: false if the viewport has no area
	ViewportToRay(x, y float32) (common.Ray, bool)

	// Uniform builds the GPU view uniform for the current state.
	//
	// Returns:
	//   - *GPUViewUniform: the uniform ready for upload
	Uniform() *GPUViewUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new orthographic Camera. A controller must be attached via
// SetController or WithController before position data is available.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		viewport: [2]float32{1280, 720},
		near:     0,
		far:      2000,
		scale:    1,
	}
	common.Identity(c.viewMatrix[:])
	common.Identity(c.projectionMatrix[:])
	common.Identity(c.viewProjectionMatrix[:])
	common.Identity(c.inverseViewProjectionMatrix[:])
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Viewport() (width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport[0], c.viewport[1]
}

func (c *cameraImpl) SetViewport(width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = [2]float32{width, height}
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) ViewportToRay(x, y float32) (common.Ray, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := c.viewport[0], c.viewport[1]
	if w <= 0 || h <= 0 {
		return common.Ray{}, false
	}
	ndcX := 2*x/w - 1
	ndcY := 1 - 2*y/h
	halfW := w * 0.5 * c.scale
	halfH := h * 0.5 * c.scale

	origin := c.position.
		Add(c.right.Scale(ndcX * halfW)).
		Add(c.up.Scale(ndcY * halfH))
	return common.Ray{Origin: origin, Direction: c.forward}, true
}

func (c *cameraImpl) Uniform() *GPUViewUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &GPUViewUniform{
		ViewProj:        c.viewProjectionMatrix,
		InverseViewProj: c.inverseViewProjectionMatrix,
		View:            c.viewMatrix,
		WorldPosition:   c.position,
		Scale:           c.scale,
		Viewport:        [4]float32{0, 0, c.viewport[0], c.viewport[1]},
	}
}

// updateMatrices recalculates the view, projection, view-projection and inverse matrices from the
// controller. It keeps the previous matrices when no controller is attached. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}

	c.position = c.controller.Position()
	c.scale = c.controller.Scale()
	c.right, c.up, c.forward = c.controller.Axes()

	target := c.position.Add(c.forward)
	common.LookAt(c.viewMatrix[:],
		c.position[0], c.position[1], c.position[2],
		target[0], target[1], target[2],
		c.up[0], c.up[1], c.up[2],
	)

	halfW := c.viewport[0] * 0.5 * c.scale
	halfH := c.viewport[1] * 0.5 * c.scale
	common.Orthographic(c.projectionMatrix[:], -halfW, halfW, -halfH, halfH, c.near, c.far)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Invert4(c.inverseViewProjectionMatrix[:], c.viewProjectionMatrix[:])
}
