package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"sphere grid scene", "sphere-grid", false},
		{"materials scene", "materials", false},

		// Scene files
		{"json scene by name", "json:unit-sphere", false},
		{"json scene by path", "scenes/unit-sphere.json", false},
		{"glass trio", "json:glass-trio", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing json scene", "json:nonexistent", true},
		{"invalid json path", "scenes/nonexistent.json", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := createScene(tt.sceneType)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, scene)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene.CameraConfig.Width <= 0 {
				t.Errorf("Scene camera width should be positive, got %d", scene.CameraConfig.Width)
			}
			if scene.SamplingConfig.Height <= 0 {
				t.Errorf("Scene sampling height should be positive, got %d", scene.SamplingConfig.Height)
			}
			if scene.SamplingConfig.Width <= 0 {
				t.Errorf("Scene sampling width should be positive, got %d", scene.SamplingConfig.Width)
			}
		})
	}
}

func TestSceneDirName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"default", "default"},
		{"json:unit-sphere", "unit-sphere"},
		{"scenes/glass-trio.json", "glass-trio"},
		{"", "scene"},
	}

	for _, tt := range tests {
		if got := sceneDirName(tt.input); got != tt.expected {
			t.Errorf("sceneDirName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRun_WritesPNG(t *testing.T) {
	outDir := t.TempDir()
	err := run(context.Background(), options{
		scene:   "json:unit-sphere",
		width:   16,
		height:  8,
		samples: 1,
		depth:   3,
		workers: 2,
		seed:    renderer.DefaultRenderConfig().Seed,
		outDir:  outDir,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(outDir, "unit-sphere", "render_*.png"))
	if err != nil || len(files) != 1 {
		t.Fatalf("Expected one PNG in the scene directory, got %v (%v)", files, err)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() == 0 {
		t.Errorf("Expected a non-empty PNG, got %v", err)
	}
}

func TestRun_UnknownScene(t *testing.T) {
	if err := run(context.Background(), options{scene: "nonexistent", outDir: t.TempDir()}); err == nil {
		t.Error("Expected an error for an unknown scene")
	}
}
