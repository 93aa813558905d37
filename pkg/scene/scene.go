package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.HittableList // Objects in the scene
	Background     integrator.Background  // Sky gradient for escaping rays
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
}

var _ renderer.Scene = (*Scene)(nil)

// newScene creates an empty scene with the default sky and the given camera.
// The sampling size follows the camera's image dimensions.
func newScene(name string, cameraConfig renderer.CameraConfig, sampling renderer.SamplingConfig) *Scene {
	sampling.Width = cameraConfig.Width
	sampling.Height = cameraConfig.ImageHeight()

	return &Scene{
		Name:           name,
		World:          geometry.NewHittableList(),
		Background:     integrator.DefaultBackground(),
		CameraConfig:   cameraConfig,
		SamplingConfig: sampling,
	}
}

// mergeCamera applies the first override, if any, to the scene's default camera
func mergeCamera(defaults renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) == 0 {
		return defaults
	}
	return renderer.MergeCameraConfig(defaults, overrides[0])
}

// Add appends objects to the scene's world
func (s *Scene) Add(objects ...geometry.Hittable) {
	for _, object := range objects {
		s.World.Add(object)
	}
}

// GetObjectCount returns the number of top-level objects in the scene
func (s *Scene) GetObjectCount() int {
	return s.World.Len()
}

// GetCameraConfig returns the scene camera
func (s *Scene) GetCameraConfig() renderer.CameraConfig {
	return s.CameraConfig
}

// GetWorld returns the aggregate of every object in the scene
func (s *Scene) GetWorld() geometry.Hittable {
	return s.World
}

// GetBackground returns the sky gradient
func (s *Scene) GetBackground() integrator.Background {
	return s.Background
}

// GetSamplingConfig returns the scene's preferred sampling settings
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}
