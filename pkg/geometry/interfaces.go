package geometry

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// Hittable is anything a ray can intersect
type Hittable interface {
	// Hit reports the nearest intersection whose t lies strictly inside rayT
	Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
}
