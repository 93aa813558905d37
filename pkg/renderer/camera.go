package renderer

import (
	"github.com/chewxy/math32"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	Width         int       // Image width in pixels
	Height        int       // Image height in pixels (0 = derive from AspectRatio)
	AspectRatio   float32   // Aspect ratio used when Height is 0
	VFov          float32   // Vertical field of view in degrees
	DefocusAngle  float32   // Variation angle of rays through each pixel in degrees (0 = pinhole)
	FocusDistance float32   // Distance from camera center to the plane of perfect focus
}

// DefaultCameraConfig returns the camera used by the reference scene
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         800,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		DefocusAngle:  10.0,
		FocusDistance: 3.4,
	}
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if override.Center != zero {
		result.Center = override.Center
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.Width != 0 {
		result.Width = override.Width
		// A fixed base height follows the new width so the aspect is kept
		if override.Height == 0 && base.Height > 0 && base.Width > 0 {
			result.Height = scaleHeight(base.Width, base.Height, override.Width)
		}
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}

// scaleHeight returns the height matching newWidth at the aspect of width x height
func scaleHeight(width, height, newWidth int) int {
	return max(1, int(math32.Round(float32(height)*float32(newWidth)/float32(width))))
}

// ImageHeight returns the configured height, deriving it from the aspect ratio when unset
func (c CameraConfig) ImageHeight() int {
	if c.Height > 0 {
		return c.Height
	}
	if c.AspectRatio <= 0 {
		return c.Width
	}
	return max(1, int(float32(c.Width)/c.AspectRatio))
}

// Camera generates rays for rendering.
// It is immutable after construction and safe for concurrent use.
type Camera struct {
	config        CameraConfig
	width, height int

	center         core.Vec3
	pixel00Loc     core.Vec3 // Location of pixel (0, 0)
	pixelDeltaU    core.Vec3 // Offset to the pixel to the right
	pixelDeltaV    core.Vec3 // Offset to the pixel below
	u, v, w        core.Vec3 // Camera frame basis vectors
	viewportHeight float32
	defocusDiskU   core.Vec3 // Defocus disk horizontal radius
	defocusDiskV   core.Vec3 // Defocus disk vertical radius
}

// NewCamera creates a camera from configuration
func NewCamera(config CameraConfig) *Camera {
	if config.Up == (core.Vec3{}) {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.FocusDistance <= 0 {
		config.FocusDistance = config.LookAt.Subtract(config.Center).Length()
	}

	width := max(1, config.Width)
	height := config.ImageHeight()

	theta := core.DegreesToRadians(config.VFov)
	h := math32.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * (float32(width) / float32(height))

	// Orthonormal basis: w points backwards, u right, v up
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float32(width))
	pixelDeltaV := viewportV.Divide(float32(height))

	viewportUpperLeft := config.Center.
		Subtract(w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	pixel00Loc := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	defocusRadius := config.FocusDistance * math32.Tan(core.DegreesToRadians(config.DefocusAngle/2))

	return &Camera{
		config:         config,
		width:          width,
		height:         height,
		center:         config.Center,
		pixel00Loc:     pixel00Loc,
		pixelDeltaU:    pixelDeltaU,
		pixelDeltaV:    pixelDeltaV,
		u:              u,
		v:              v,
		w:              w,
		viewportHeight: viewportHeight,
		defocusDiskU:   u.Multiply(defocusRadius),
		defocusDiskV:   v.Multiply(defocusRadius),
	}
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.width
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.height
}

// ViewportHeight returns the height of the viewport in world units
func (c *Camera) ViewportHeight() float32 {
	return c.viewportHeight
}

// GetCameraForward returns the direction the camera looks along
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// PixelCenter returns the world-space center of pixel (i, j) on the focus plane
func (c *Camera) PixelCenter(i, j int) core.Vec3 {
	return c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float32(i))).
		Add(c.pixelDeltaV.Multiply(float32(j)))
}

// GetRay returns a jittered ray through pixel (i, j), originating on the defocus disk
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	pixelSample := c.PixelCenter(i, j).Add(c.sampleSquare(sampler))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// Render averages samples rays through pixel (i, j) and returns the gamma corrected color
func (c *Camera) Render(i, j int, world geometry.Hittable, tracer integrator.Integrator, samples int, sampler core.Sampler) core.Color {
	samples = max(1, samples)

	var r, g, b, a float32
	for s := 0; s < samples; s++ {
		ray := c.GetRay(i, j, sampler)
		color := tracer.RayColor(ray, world, sampler)
		r += color.R
		g += color.G
		b += color.B
		a += color.A
	}

	scale := 1.0 / float32(samples)
	unit := core.NewInterval(0, 1)
	return core.Color{
		R: unit.Clamp(core.LinearToGamma(r * scale)),
		G: unit.Clamp(core.LinearToGamma(g * scale)),
		B: unit.Clamp(core.LinearToGamma(b * scale)),
		A: unit.Clamp(a * scale),
	}
}

// sampleSquare returns a random offset within one pixel's footprint
func (c *Camera) sampleSquare(sampler core.Sampler) core.Vec3 {
	px := sampler.Get1D() - 0.5
	py := sampler.Get1D() - 0.5
	return c.pixelDeltaU.Multiply(px).Add(c.pixelDeltaV.Multiply(py))
}

// defocusDiskSample returns a random point on the camera's defocus disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}
