package renderer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
)

// SamplingConfig contains the image and sampling settings a scene asks for
type SamplingConfig struct {
	Width           int // Image width in pixels
	Height          int // Image height in pixels
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// RenderConfig contains the settings for a single render.
// Zero values fall back to the scene's sampling config, then to defaults.
type RenderConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	NumWorkers      int   // Worker goroutines (0 = DefaultWorkerCount)
	MaxPending      int   // Bound on outstanding pixel tasks (0 = pool default)
	Seed            int64 // Base seed for per-pixel samplers
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	sampling := DefaultSamplingConfig()
	return RenderConfig{
		Width:           sampling.Width,
		Height:          sampling.Height,
		SamplesPerPixel: sampling.SamplesPerPixel,
		MaxDepth:        sampling.MaxDepth,
		Seed:            42,
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCameraConfig() CameraConfig
	GetWorld() geometry.Hittable
	GetBackground() integrator.Background
	GetSamplingConfig() SamplingConfig
}

// pixelSeedStride separates the seed ranges of different base seeds
const pixelSeedStride = 1 << 32

// Raytracer renders a scene into a FrameBuffer using one pool task per pixel
type Raytracer struct {
	scene      Scene
	camera     *Camera
	integrator integrator.Integrator
	config     RenderConfig
	logger     core.Logger
}

// NewRaytracer creates a raytracer for the scene. Unset config fields are
// taken from the scene's sampling config, then from DefaultRenderConfig.
func NewRaytracer(scene Scene, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	config = resolveRenderConfig(config, scene.GetSamplingConfig())

	cameraConfig := scene.GetCameraConfig()
	cameraConfig.Width = config.Width
	cameraConfig.Height = config.Height
	camera := NewCamera(cameraConfig)
	config.Height = camera.Height()

	return &Raytracer{
		scene:  scene,
		camera: camera,
		integrator: integrator.NewPathTracingIntegrator(integrator.IntegratorConfig{
			MaxDepth:   config.MaxDepth,
			Background: scene.GetBackground(),
		}),
		config: config,
		logger: logger,
	}
}

func resolveRenderConfig(config RenderConfig, sampling SamplingConfig) RenderConfig {
	defaults := DefaultRenderConfig()

	pick := func(values ...int) int {
		for _, v := range values {
			if v > 0 {
				return v
			}
		}
		return 0
	}

	widthOverridden := config.Width > 0 && config.Width != sampling.Width
	config.Width = pick(config.Width, sampling.Width, defaults.Width)
	config.SamplesPerPixel = pick(config.SamplesPerPixel, sampling.SamplesPerPixel, defaults.SamplesPerPixel)
	config.MaxDepth = pick(config.MaxDepth, sampling.MaxDepth, defaults.MaxDepth)

	// The scene height only applies at the scene width; otherwise it is
	// scaled with the width, or left to the camera aspect ratio when unknown
	if config.Height <= 0 && sampling.Height > 0 {
		if !widthOverridden {
			config.Height = sampling.Height
		} else if sampling.Width > 0 {
			config.Height = scaleHeight(sampling.Width, sampling.Height, config.Width)
		}
	}
	return config
}

// Config returns the resolved render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Camera returns the camera used for rendering
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// PixelSeed returns the sampler seed for the pixel at flat index
func (rt *Raytracer) PixelSeed(index int) int64 {
	return rt.config.Seed*pixelSeedStride + int64(index)
}

// RenderPixel computes the final color of pixel (x, y) using the given sampler
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) core.Color {
	return rt.camera.Render(x, y, rt.scene.GetWorld(), rt.integrator, rt.config.SamplesPerPixel, sampler)
}

// Render submits one task per pixel to a worker pool, waits for every task to
// finish and returns the completed frame. Each pixel samples from its own
// seeded sampler, so the result does not depend on scheduling.
// Pixels whose task panics are written as FailedPixelColor and counted in stats.
func (rt *Raytracer) Render(ctx context.Context) (*FrameBuffer, RenderStats, error) {
	start := time.Now()
	width, height := rt.camera.Width(), rt.camera.Height()
	frame := NewFrameBuffer(width, height)

	pool := NewWorkerPool(WorkerPoolConfig{
		NumWorkers: rt.config.NumWorkers,
		MaxPending: rt.config.MaxPending,
	}, rt.logger)
	pool.Start()

	rt.logger.Printf("Rendering %dx%d, %d samples/pixel, depth %d, %d workers\n",
		width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth, pool.NumWorkers())

	var rendered, failed atomic.Int64
	var submitErr error

submit:
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if err := pool.Submit(ctx, rt.pixelTask(ctx, frame, x, y, &rendered, &failed)); err != nil {
				submitErr = err
				break submit
			}
		}
	}

	if err := pool.Shutdown(); err != nil {
		rt.logger.Printf("Render finished with failed pixels: %v\n", err)
	}

	stats := RenderStats{
		TotalPixels:  int(rendered.Load()),
		TotalSamples: int(rendered.Load()) * rt.config.SamplesPerPixel,
		FailedPixels: int(failed.Load()),
		Workers:      pool.NumWorkers(),
		Duration:     time.Since(start),
	}

	if submitErr != nil {
		return frame, stats, fmt.Errorf("render interrupted: %w", submitErr)
	}
	if err := ctx.Err(); err != nil {
		return frame, stats, fmt.Errorf("render interrupted: %w", err)
	}

	rt.logger.Printf("Render complete: %s\n", stats)
	return frame, stats, nil
}

// pixelTask builds the task that renders pixel (x, y) into frame
func (rt *Raytracer) pixelTask(ctx context.Context, frame *FrameBuffer, x, y int, rendered, failed *atomic.Int64) Task {
	return func() {
		if ctx.Err() != nil {
			return
		}

		done := false
		defer func() {
			if !done {
				failed.Add(1)
				_ = frame.Set(x, y, FailedPixelColor)
			}
		}()

		sampler := core.NewSeededSampler(rt.PixelSeed(frame.Index(x, y)))
		if err := frame.Set(x, y, rt.RenderPixel(x, y, sampler)); err != nil {
			panic(err)
		}

		rendered.Add(1)
		done = true
	}
}
