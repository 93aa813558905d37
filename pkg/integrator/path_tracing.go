package integrator

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance for secondary rays.
// It keeps reflected/refracted rays from re-hitting their own origin surface.
const ShadowAcneEpsilon = 0.001

// Background is the vertical sky gradient returned for rays that escape the scene
type Background struct {
	Top    core.Vec3 // Color looking straight up
	Bottom core.Vec3 // Color looking straight down
}

// DefaultBackground returns the white-to-pale-blue sky
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color for a ray direction
func (b Background) Color(direction core.Vec3) core.Vec3 {
	unitDirection := direction.Normalize()

	// Map y from [-1,1] to [0,1]
	a := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-a)*bottom + a*top
	return b.Bottom.Multiply(1.0 - a).Add(b.Top.Multiply(a))
}

// IntegratorConfig contains the path tracing configuration
type IntegratorConfig struct {
	MaxDepth   int        // Maximum number of ray bounces
	Background Background // Sky gradient for escaping rays
}

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config IntegratorConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config IntegratorConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// MaxDepth returns the configured bounce budget
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.config.MaxDepth
}

// RayColor computes the color for a single camera ray.
// The bounce recursion is unrolled into a loop that carries the product of
// attenuations; the result is that product times the sky color of the escaping
// ray, or black when the path is absorbed or runs out of bounces.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler) core.Color {
	throughput := core.NewVec3(1, 1, 1)
	searchInterval := core.NewInterval(ShadowAcneEpsilon, math32.Inf(1))

	for depth := pt.config.MaxDepth; depth > 0; depth-- {
		hit, isHit := world.Hit(ray, searchInterval)
		if !isHit {
			return core.ColorFromVec3(throughput.MultiplyVec(pt.config.Background.Color(ray.Direction)))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Black
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce budget exhausted, no more light is gathered
	return core.Black
}
