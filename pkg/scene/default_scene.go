package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

// NewDefaultScene creates the reference scene: three spheres on a large ground
// sphere, with a hollow glass sphere on the left
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.DefaultCameraConfig(), cameraOverrides)

	s := newScene("default", cameraConfig, renderer.SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	})

	// Create materials
	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialLeft := material.NewDielectric(1.5)
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, materialGround),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialLeft),
		// Negative radius flips the normals inward, making the glass sphere hollow
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.4, materialLeft),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, materialRight),
	)

	return s
}
