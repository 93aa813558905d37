package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

// NewMaterialsScene lines up two rows of spheres: metals with increasing fuzz
// in front, glass with increasing index of refraction behind
func NewMaterialsScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		Center:        core.NewVec3(0, 1.5, 5),
		LookAt:        core.NewVec3(0, 0.3, -0.5),
		Up:            core.NewVec3(0, 1, 0),
		Width:         600,
		AspectRatio:   16.0 / 9.0,
		VFov:          35.0,
		FocusDistance: 5.0,
	}, cameraOverrides)

	s := newScene("materials", cameraConfig, renderer.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	})

	s.Add(geometry.NewSphere(core.NewVec3(0, -1000.4, 0), 1000, material.NewLambertian(core.NewVec3(0.6, 0.6, 0.55))))

	const count = 5
	const spacing = 1.0
	for k := 0; k < count; k++ {
		x := (float32(k) - (count-1)/2.0) * spacing
		t := float32(k) / float32(count-1)

		s.Add(
			geometry.NewSphere(core.NewVec3(x, 0, 0.5), 0.4, material.NewMetal(core.NewVec3(0.8, 0.8, 0.85), t)),
			geometry.NewSphere(core.NewVec3(x, 0, -1), 0.4, material.NewDielectric(1.0+t)),
		)
	}

	return s
}
