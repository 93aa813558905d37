package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	// Get1D returns a uniform value in [0, 1)
	Get1D() float32
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float32 in [0, 1)
func (r *RandomSampler) Get1D() float32 {
	return r.random.Float32()
}

// RandomRange returns a uniform value in [min, max)
func RandomRange(sampler Sampler, min, max float32) float32 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVec3Range returns a vector with each component uniform in [min, max)
func RandomVec3Range(sampler Sampler, min, max float32) Vec3 {
	return NewVec3(
		RandomRange(sampler, min, max),
		RandomRange(sampler, min, max),
		RandomRange(sampler, min, max),
	)
}

// RandomInUnitSphere generates a random point strictly inside the unit sphere
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVec3Range(sampler, -1, 1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector generates a uniformly distributed unit vector
func RandomUnitVector(sampler Sampler) Vec3 {
	for {
		p := RandomInUnitSphere(sampler)
		// Reject points so close to the origin that normalizing loses precision
		if p.LengthSquared() > 1e-12 {
			return p.Normalize()
		}
	}
}

// RandomInUnitDisk generates a random point in the unit disk on the z=0 plane (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		p := NewVec3(RandomRange(sampler, -1, 1), RandomRange(sampler, -1, 1), 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}
