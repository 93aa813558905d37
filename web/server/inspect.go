package server

import (
	"fmt"
	"net/http"

	"github.com/chewxy/math32"
	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Object    geometry.Hittable // nil if the hit could not be attributed
}

func vec3Array(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	v = v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(v.X*255), int(v.Y*255), int(v.Z*255))
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vec3Array(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractionIndex"] = m.RefractionIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(object geometry.Hittable) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := object.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(geom.Center)
		properties["radius"] = geom.Radius
		properties["hollow"] = geom.Radius < 0
		return "sphere", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts an unjittered pinhole ray through the pixel center and reports the first hit
func inspectPixel(sceneObj *scene.Scene, camera *renderer.Camera, pixelX, pixelY int) InspectResult {
	origin := camera.Config().Center
	ray := core.NewRay(origin, camera.PixelCenter(pixelX, pixelY).Subtract(origin))

	rayT := core.NewInterval(integrator.ShadowAcneEpsilon, math32.Inf(1))
	hit, isHit := sceneObj.World.Hit(ray, rayT)
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The list returns only the record, so find the object that produced it
	for _, object := range sceneObj.World.Objects {
		if objectHit, ok := object.Hit(ray, rayT); ok && objectHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Object: object}
		}
	}
	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	values := c.QueryParams()
	sceneName := values.Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	width, err := parseIntParam(values, "width", 0, minDimension, maxDimension)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}
	height, err := parseIntParam(values, "height", 0, minDimension, maxDimension)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	sceneObj, err := scene.Create(sceneName, renderer.CameraConfig{Width: width, Height: height})
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Unknown scene: "+sceneName)
	}
	camera := renderer.NewCamera(sceneObj.GetCameraConfig())

	if values.Get("x") == "" || values.Get("y") == "" {
		return jsonError(c, http.StatusBadRequest, "Missing pixel coordinates")
	}
	pixelX, err := parseIntParam(values, "x", 0, 0, camera.Width()-1)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Pixel coordinates out of bounds: "+err.Error())
	}
	pixelY, err := parseIntParam(values, "y", 0, 0, camera.Height()-1)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Pixel coordinates out of bounds: "+err.Error())
	}

	result := inspectPixel(sceneObj, camera, pixelX, pixelY)
	if !result.Hit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Object)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec3Array(result.HitRecord.Point),
		Normal:       vec3Array(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
