package integrator

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use; all per-call randomness
// comes from the sampler.
type Integrator interface {
	// RayColor computes the linear color carried back along ray
	RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler) core.Color
}

var _ Integrator = (*PathTracingIntegrator)(nil)
