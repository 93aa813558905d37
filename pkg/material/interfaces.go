package material

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// Material interface for surfaces that can scatter rays.
// Implementations are immutable and shared read-only across render workers.
type Material interface {
	// Scatter decides whether rayIn continues after hitting the surface.
	// A false result means the ray was absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation core.Vec3 // Color attenuation
	Scattered   core.Ray  // The scattered ray
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit surface normal, always opposing the incoming ray
	Material  Material  // Material of the hit object
	T         float32   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal is assumed to have unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
