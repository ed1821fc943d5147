package common

import "math"

// parallelEpsilon is the smallest |dot(normal, direction)| treated as a real crossing.
const parallelEpsilon = 1e-6

// Vec3 is a plain three component vector used for ray and plane math.
type Vec3 [3]float32

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Normalize returns v scaled to unit length, or v unchanged if it has zero length.
func (v Vec3) Normalize() Vec3 {
	l := float32(math.Sqrt(float64(v.Dot(v))))
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Ray is a half-line starting at Origin and extending along Direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// Plane is an infinite plane through Point with the given Normal.
type Plane struct {
	Point  Vec3
	Normal Vec3
}

// GroundPlane is the y=0 world plane that units live on.
var GroundPlane = Plane{Normal: Vec3{0, 1, 0}}

// RayPlaneIntersection intersects a ray with a plane.
// A ray running parallel to the plane, or one whose hit lies behind the ray origin, reports no intersection.
//
// Parameters:
//   - ray: the ray to cast
//   - plane: the plane to intersect
//
// Returns:
//   - Vec3: the intersection point, zero when there is no hit
//   - bool: true if the ray hits the plane in front of its origin
func RayPlaneIntersection(ray Ray, plane Plane) (Vec3, bool) {
	denom := plane.Normal.Dot(ray.Direction)
	if float32(math.Abs(float64(denom))) < parallelEpsilon {
		return Vec3{}, false
	}
	t := plane.Point.Sub(ray.Origin).Dot(plane.Normal) / denom
	if t < 0 {
		return Vec3{}, false
	}
	return ray.Origin.Add(ray.Direction.Scale(t)), true
}
