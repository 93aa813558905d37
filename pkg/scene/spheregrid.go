package scene

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

// SphereGridSeed seeds the jitter and material choice of the sphere grid
const SphereGridSeed = 42

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float32) core.Vec3 {
	hRad := core.DegreesToRadians(h)

	// OKLCH to OKLAB
	a := c * math32.Cos(hRad)
	b := c * math32.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a field of small spheres with jittered positions
// and randomly chosen materials around three large feature spheres
func NewSphereGridScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := mergeCamera(renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         600,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		DefocusAngle:  0.6,
		FocusDistance: 10.0,
	}, cameraOverrides)

	s := newScene("sphere-grid", cameraConfig, renderer.SamplingConfig{
		SamplesPerPixel: 50,
		MaxDepth:        50,
	})

	random := rand.New(rand.NewSource(SphereGridSeed))

	// Ground
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	const gridSize = 11
	const radius = 0.2
	avoid := core.NewVec3(4, 0.2, 0)

	for i := -gridSize; i < gridSize; i++ {
		for j := -gridSize; j < gridSize; j++ {
			center := core.NewVec3(
				float32(i)+0.9*random.Float32(),
				radius,
				float32(j)+0.9*random.Float32(),
			)

			// Keep the space in front of the large metal sphere clear
			if center.Subtract(avoid).Length() <= 0.9 {
				continue
			}

			// Hue sweeps across the grid, chroma down it
			hue := float32(i+gridSize) / float32(2*gridSize) * 360
			chroma := 0.05 + 0.2*float32(j+gridSize)/float32(2*gridSize)
			color := oklchToRGB(0.65, chroma, hue)

			var mat material.Material
			switch choice := random.Float32(); {
			case choice < 0.8:
				mat = material.NewLambertian(color.MultiplyVec(color))
			case choice < 0.95:
				mat = material.NewMetal(color.Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5)), 0.5*random.Float32())
			default:
				mat = material.NewDielectric(1.5)
			}

			s.Add(geometry.NewSphere(center, radius, mat))
		}
	}

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	return s
}
