// Package light describes the directional sun that shades the deferred lighting resolve.
package light

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	direction [3]float32
	color     [3]float32
	intensity float32
	ambient   float32
}

// Light is a directional light with no position. It lights every G-buffer texel uniformly with
// no attenuation, plus a constant ambient term so faces turned away from it stay readable.
//
// The deferred node bakes the light into its lighting shader when the node is created; changes
// made afterwards only affect nodes created later.
type Light interface {
	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// ToLight returns the normalized direction from a surface towards the light, the vector
	// normals are dotted with.
	ToLight() [3]float32

	// Color returns the RGB color of the light.
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Radiance returns the color scaled by the intensity.
	//
	// Returns:
	//   - [3]float32: the light's contribution at full incidence
	Radiance() [3]float32

	// Ambient returns the fraction of albedo every lit texel receives regardless of its normal.
	//
	// Returns:
	//   - float32: the ambient factor in [0, 1]
	Ambient() float32

	// SetDirection sets the direction of the light and normalizes it. A zero vector is ignored.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier. Negative values clamp to zero.
	SetIntensity(intensity float32)

	// SetAmbient sets the ambient factor, clamped to [0, 1].
	SetAmbient(ambient float32)
}

var _ Light = &lightImpl{}

// NewLight creates the sun with the demo's defaults: white, intensity 1, ambient 0.35, shining
// down and away from the camera's default corner.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction: normalize3(-1, -2, -1.5),
		color:     [3]float32{1, 1, 1},
		intensity: 1,
		ambient:   0.35,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) ToLight() [3]float32 {
	return [3]float32{-l.direction[0], -l.direction[1], -l.direction[2]}
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Radiance() [3]float32 {
	return [3]float32{l.color[0] * l.intensity, l.color[1] * l.intensity, l.color[2] * l.intensity}
}

func (l *lightImpl) Ambient() float32 {
	return l.ambient
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	if d := normalize3(x, y, z); d != [3]float32{} {
		l.direction = d
	}
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetAmbient(ambient float32) {
	l.ambient = min(max(ambient, 0), 1)
}
