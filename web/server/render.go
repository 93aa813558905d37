package server

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// RenderRequest represents a render request from the client.
// Zero values defer to the scene's own settings.
type RenderRequest struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"samples"`
	MaxDepth        int    `json:"depth"`
	NumWorkers      int    `json:"workers"`
	Seed            int    `json:"seed"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	FailedPixels     int     `json:"failedPixels"`
	Workers          int     `json:"workers"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	ElapsedMs        int64   `json:"elapsedMs"`
}

// RenderResponse is returned once a render has finished
type RenderResponse struct {
	FrameResponse
	Stats   Stats            `json:"stats"`
	Console []ConsoleMessage `json:"console"`
}

// parseRenderRequest parses request parameters
func parseRenderRequest(c echo.Context) (*RenderRequest, error) {
	values := c.QueryParams()
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, minDimension, maxDimension); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if req.NumWorkers, err = parseIntParam(values, "workers", 0, 1, maxWorkers); err != nil {
		return nil, err
	}
	if req.Seed, err = parseIntParam(values, "seed", int(renderer.DefaultRenderConfig().Seed), 0, math.MaxInt32); err != nil {
		return nil, err
	}
	return req, nil
}

// handleRender renders a scene to completion, publishes it as the latest frame and
// returns it together with the render's console output
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
	}

	sceneObj, err := scene.Create(req.Scene, renderer.CameraConfig{Width: req.Width, Height: req.Height})
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "Unknown scene: "+req.Scene)
	}

	renderID := fmt.Sprintf("%s-%d", req.Scene, time.Now().UnixNano())
	consoleChan := make(chan ConsoleMessage, defaultConsoleSize)
	logger := NewWebLogger(renderID, consoleChan)

	raytracer := renderer.NewRaytracer(sceneObj, renderer.RenderConfig{
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
		NumWorkers:      req.NumWorkers,
		Seed:            int64(req.Seed),
	}, logger)

	ctx := c.Request().Context()
	frame, stats, err := raytracer.Render(ctx)
	messages := s.console.Drain(consoleChan)
	if err != nil {
		return jsonError(c, http.StatusServiceUnavailable, fmt.Sprintf("Render error: %v", err))
	}

	data, info, err := s.publish(ctx, req.Scene, frame)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, RenderResponse{
		FrameResponse: FrameResponse{
			FrameInfo: info,
			ImageData: base64.StdEncoding.EncodeToString(data),
		},
		Stats: Stats{
			TotalPixels:      stats.TotalPixels,
			TotalSamples:     stats.TotalSamples,
			FailedPixels:     stats.FailedPixels,
			Workers:          stats.Workers,
			SamplesPerSecond: stats.SamplesPerSecond(),
			ElapsedMs:        stats.Duration.Milliseconds(),
		},
		Console: messages,
	})
}
