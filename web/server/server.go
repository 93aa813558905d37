package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/output"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// Request limits shared by the render and inspect endpoints
const (
	minDimension = 1
	maxDimension = 2000
	maxSamples   = 10000
	maxDepth     = 1000
	maxWorkers   = 128
	defaultScene = "default"
)

var _ output.FrameSink = (*Server)(nil)

// Server presents rendered frames over HTTP and renders scenes on request
type Server struct {
	port    int
	echo    *echo.Echo
	console *Console

	mu        sync.RWMutex
	frame     []byte // latest frame, PNG encoded
	frameInfo FrameInfo
	label     string
}

// FrameInfo describes the latest frame held by the server
type FrameInfo struct {
	Scene            string    `json:"scene"`
	Width            int       `json:"width"`
	Height           int       `json:"height"`
	AverageLuminance float64   `json:"averageLuminance"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FrameResponse is the JSON form of the latest frame
type FrameResponse struct {
	FrameInfo
	ImageData string `json:"imageData"` // Base64 encoded PNG
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	s := &Server{
		port:    port,
		echo:    echo.New(),
		console: NewConsole(defaultConsoleSize),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.Use(corsMiddleware)

	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/api/scenes", s.handleScenes)
	s.echo.GET("/api/scene-config", s.handleSceneConfig)
	s.echo.GET("/api/frame", s.handleFrame)
	s.echo.GET("/api/frame.png", s.handleFramePNG)
	s.echo.GET("/api/render", s.handleRender)
	s.echo.POST("/api/render", s.handleRender)
	s.echo.GET("/api/inspect", s.handleInspect)
	s.echo.GET("/api/console", s.handleConsole)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}
		return next(c)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Console returns the server's console history
func (s *Server) Console() *Console {
	return s.console
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// SetLabel names the scene attached to frames uploaded afterwards
func (s *Server) SetLabel(sceneName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = sceneName
}

// Upload replaces the frame being served
func (s *Server) Upload(ctx context.Context, frame *renderer.FrameBuffer) error {
	s.mu.RLock()
	label := s.label
	s.mu.RUnlock()

	_, _, err := s.publish(ctx, label, frame)
	return err
}

// publish encodes the frame and makes it the latest one
func (s *Server) publish(ctx context.Context, label string, frame *renderer.FrameBuffer) ([]byte, FrameInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, FrameInfo{}, err
	}

	data, err := encodePNG(frame.ToImage())
	if err != nil {
		return nil, FrameInfo{}, fmt.Errorf("encode frame: %w", err)
	}
	info := FrameInfo{
		Scene:            label,
		Width:            frame.Width(),
		Height:           frame.Height(),
		AverageLuminance: frame.AverageLuminance(),
		UpdatedAt:        time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = data
	s.frameInfo = info
	return data, info, nil
}

// latestFrame returns the current PNG and its description, or nil before the first upload
func (s *Server) latestFrame() ([]byte, FrameInfo) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.frameInfo
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenes(c echo.Context) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to list scenes: "+err.Error())
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleFramePNG(c echo.Context) error {
	data, _ := s.latestFrame()
	if data == nil {
		return jsonError(c, http.StatusNotFound, "No frame rendered yet")
	}
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/png", data)
}

func (s *Server) handleFrame(c echo.Context) error {
	data, info := s.latestFrame()
	if data == nil {
		return jsonError(c, http.StatusNotFound, "No frame rendered yet")
	}
	return c.JSON(http.StatusOK, FrameResponse{
		FrameInfo: info,
		ImageData: base64.StdEncoding.EncodeToString(data),
	})
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(c echo.Context) error {
	sceneName := c.QueryParam("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := scene.Create(sceneName)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Unknown scene: "+sceneName)
	}

	config := sceneObj.GetSamplingConfig()
	camera := sceneObj.GetCameraConfig()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"vfov":            camera.VFov,
			"defocusAngle":    camera.DefocusAngle,
			"workers":         renderer.DefaultWorkerCount(),
		},
		"limits": map[string]interface{}{
			"width":   map[string]int{"min": minDimension, "max": maxDimension},
			"height":  map[string]int{"min": minDimension, "max": maxDimension},
			"samples": map[string]int{"min": 1, "max": maxSamples},
			"depth":   map[string]int{"min": 1, "max": maxDepth},
			"workers": map[string]int{"min": 1, "max": maxWorkers},
		},
	})
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
