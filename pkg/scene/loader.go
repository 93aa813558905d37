package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrInvalidMaterial = errors.New("invalid material")
	ErrInvalidColor    = errors.New("invalid color")
	ErrInvalidSphere   = errors.New("invalid sphere")
)

// Color is a scene file color: either an [r, g, b] array in [0, 1] or a CSS color name
type Color core.Vec3

// UnmarshalJSON accepts [r, g, b] or "name"
func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return fmt.Errorf("%w: unknown color name %q", ErrInvalidColor, name)
		}
		*c = Color{X: float32(rgba.R) / 255, Y: float32(rgba.G) / 255, Z: float32(rgba.B) / 255}
		return nil
	}

	var rgb []float32
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidColor, data)
	}
	if len(rgb) != 3 {
		return fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidColor, len(rgb))
	}
	*c = Color{X: rgb[0], Y: rgb[1], Z: rgb[2]}
	return nil
}

// Vec3 returns the color as a vector
func (c Color) Vec3() core.Vec3 {
	return core.Vec3(c)
}

// CameraFile is the camera section of a scene file. Unset fields keep the default camera's values.
type CameraFile struct {
	Center        *[3]float32 `json:"center,omitempty"`
	LookAt        *[3]float32 `json:"lookAt,omitempty"`
	Up            *[3]float32 `json:"up,omitempty"`
	Width         int         `json:"width,omitempty"`
	Height        int         `json:"height,omitempty"`
	AspectRatio   float32     `json:"aspectRatio,omitempty"`
	VFov          float32     `json:"vfov,omitempty"`
	DefocusAngle  *float32    `json:"defocusAngle,omitempty"`
	FocusDistance float32     `json:"focusDistance,omitempty"`
}

// SamplingFile is the sampling section of a scene file
type SamplingFile struct {
	SamplesPerPixel int `json:"samplesPerPixel,omitempty"`
	MaxDepth        int `json:"maxDepth,omitempty"`
}

// BackgroundFile is the sky gradient section of a scene file
type BackgroundFile struct {
	Top    *Color `json:"top,omitempty"`
	Bottom *Color `json:"bottom,omitempty"`
}

// MaterialFile describes one named material
type MaterialFile struct {
	Type   string  `json:"type"` // lambertian, metal or dielectric
	Albedo *Color  `json:"albedo,omitempty"`
	Fuzz   float32 `json:"fuzz,omitempty"`
	IOR    float32 `json:"ior,omitempty"`
}

// SphereFile places one sphere; a negative radius makes it hollow
type SphereFile struct {
	Center   [3]float32 `json:"center"`
	Radius   float32    `json:"radius"`
	Material string     `json:"material"`
}

// File is the JSON representation of a scene
type File struct {
	Name        string                  `json:"name,omitempty"`
	Description string                  `json:"description,omitempty"`
	Group       string                  `json:"group,omitempty"`
	Camera      CameraFile              `json:"camera"`
	Sampling    SamplingFile            `json:"sampling"`
	Background  BackgroundFile          `json:"background"`
	Materials   map[string]MaterialFile `json:"materials"`
	Spheres     []SphereFile            `json:"spheres"`
}

// LoadScene reads a scene from a JSON file
func LoadScene(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := ParseScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseScene decodes a JSON scene and builds it
func ParseScene(r io.Reader) (*Scene, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var file File
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return file.Build()
}

// Build turns the decoded file into a renderable scene
func (f *File) Build() (*Scene, error) {
	cameraConfig := f.Camera.apply(renderer.DefaultCameraConfig())

	defaults := renderer.DefaultSamplingConfig()
	sampling := renderer.SamplingConfig{
		SamplesPerPixel: defaults.SamplesPerPixel,
		MaxDepth:        defaults.MaxDepth,
	}
	if f.Sampling.SamplesPerPixel > 0 {
		sampling.SamplesPerPixel = f.Sampling.SamplesPerPixel
	}
	if f.Sampling.MaxDepth > 0 {
		sampling.MaxDepth = f.Sampling.MaxDepth
	}

	s := newScene(f.Name, cameraConfig, sampling)
	s.Background = f.Background.toBackground()

	materials, err := f.buildMaterials()
	if err != nil {
		return nil, err
	}

	for i, sphere := range f.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sphere.Material)
		}
		if sphere.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: %w: radius must be non-zero", i, ErrInvalidSphere)
		}
		center := core.NewVec3(sphere.Center[0], sphere.Center[1], sphere.Center[2])
		s.Add(geometry.NewSphere(center, sphere.Radius, mat))
	}

	return s, nil
}

func (f *File) buildMaterials() (map[string]material.Material, error) {
	// Build in name order so errors are reported deterministically
	names := make([]string, 0, len(f.Materials))
	for name := range f.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	materials := make(map[string]material.Material, len(names))
	for _, name := range names {
		mat, err := f.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}
	return materials, nil
}

func (m MaterialFile) build() (material.Material, error) {
	albedo := core.NewVec3(0.5, 0.5, 0.5)
	if m.Albedo != nil {
		albedo = m.Albedo.Vec3()
	}

	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(albedo), nil
	case "metal":
		return material.NewMetal(albedo, m.Fuzz), nil
	case "dielectric", "glass":
		if m.IOR <= 0 {
			return nil, fmt.Errorf("%w: dielectric needs a positive ior", ErrInvalidMaterial)
		}
		return material.NewDielectric(m.IOR), nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidMaterial, m.Type)
	}
}

// apply overlays the fields set in the file onto base
func (c CameraFile) apply(base renderer.CameraConfig) renderer.CameraConfig {
	config := renderer.MergeCameraConfig(base, renderer.CameraConfig{
		Width:         c.Width,
		Height:        c.Height,
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		FocusDistance: c.FocusDistance,
	})

	if c.Center != nil {
		config.Center = core.NewVec3(c.Center[0], c.Center[1], c.Center[2])
	}
	if c.LookAt != nil {
		config.LookAt = core.NewVec3(c.LookAt[0], c.LookAt[1], c.LookAt[2])
	}
	if c.Up != nil {
		config.Up = core.NewVec3(c.Up[0], c.Up[1], c.Up[2])
	}
	if c.DefocusAngle != nil {
		config.DefocusAngle = *c.DefocusAngle
	}
	return config
}

func (b BackgroundFile) toBackground() integrator.Background {
	background := integrator.DefaultBackground()
	if b.Top != nil {
		background.Top = b.Top.Vec3()
	}
	if b.Bottom != nil {
		background.Bottom = b.Bottom.Vec3()
	}
	return background
}
