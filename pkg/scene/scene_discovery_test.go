package scene

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"glass-trio", "Glass Trio"},
		{"unit_sphere", "Unit Sphere"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete_metadata.json",
			content: `{"name": "Glass Room", "description": "Lots of glass", "group": "Glass Scenes"}`,
			expected: SceneInfo{
				ID:          "json:complete_metadata",
				Name:        "Glass Room",
				DisplayName: "Glass Room",
				Description: "Lots of glass",
				Group:       "Glass Scenes",
				Type:        "json",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"spheres": []}`,
			expected: SceneInfo{
				ID:          "json:no_metadata",
				Name:        "No Metadata", // From filename
				DisplayName: "No Metadata",
				Group:       "Scene Files", // Default group
				Type:        "json",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("Failed to write temp file: %v", err)
			}

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": `), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	info, err := ParseSceneMetadata(path)
	if err == nil {
		t.Fatal("Expected an error for truncated JSON")
	}
	if info.ID != "json:broken" {
		t.Errorf("Expected fallback ID json:broken, got %q", info.ID)
	}
}

func TestListAllScenes(t *testing.T) {
	response, err := ListAllScenes()
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}

	if len(response.Groups) == 0 || response.Groups[0].Name != builtInGroup {
		t.Fatalf("Expected %q as the first group, got %+v", builtInGroup, response.Groups)
	}

	expectedScenes := []string{"default", "sphere-grid", "materials"}
	builtIns := response.Groups[0].Scenes
	if len(builtIns) != len(expectedScenes) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIns), len(expectedScenes))
	}
	for i, id := range expectedScenes {
		if i < len(builtIns) && builtIns[i].ID != id {
			t.Errorf("Built-in scene %d = %q, want %q", i, builtIns[i].ID, id)
		}
	}

	for _, group := range response.Groups[1:] {
		for _, info := range group.Scenes {
			if info.Type != "json" || info.FilePath == "" {
				t.Errorf("File scene %q should carry its type and path", info.ID)
			}
		}
	}
}

func TestListScenes_AllCreatable(t *testing.T) {
	ids := ListScenes()
	if !slices.Contains(ids, "default") {
		t.Fatalf("Expected default scene in %v", ids)
	}

	small := renderer.CameraConfig{Width: 32}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			s, err := Create(id, small)
			if err != nil {
				t.Fatalf("Create(%q) error: %v", id, err)
			}
			if s.GetObjectCount() == 0 {
				t.Errorf("Scene %q has no objects", id)
			}
			if s.CameraConfig.Width != 32 || s.SamplingConfig.Width != 32 {
				t.Errorf("Scene %q ignored the width override", id)
			}
		})
	}
}

func TestCreate_Unknown(t *testing.T) {
	for _, name := range []string{"nope", "json:does-not-exist", "missing.json"} {
		if _, err := Create(name); err == nil {
			t.Errorf("Create(%q) should fail", name)
		}
	}
}

func TestCreate_WidthOverrideKeepsAspect(t *testing.T) {
	tests := []struct {
		name     string
		override renderer.CameraConfig
		width    int
		height   int
	}{
		{"file size", renderer.CameraConfig{}, 200, 100},
		{"width only", renderer.CameraConfig{Width: 800}, 800, 400},
		{"width and height", renderer.CameraConfig{Width: 800, Height: 100}, 800, 100},
		{"height only", renderer.CameraConfig{Height: 50}, 200, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Create("json:unit-sphere", tt.override)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if s.CameraConfig.Width != tt.width || s.CameraConfig.ImageHeight() != tt.height {
				t.Errorf("Expected camera %dx%d, got %dx%d", tt.width, tt.height, s.CameraConfig.Width, s.CameraConfig.ImageHeight())
			}
			if s.SamplingConfig.Width != tt.width || s.SamplingConfig.Height != tt.height {
				t.Errorf("Expected sampling %dx%d, got %dx%d", tt.width, tt.height, s.SamplingConfig.Width, s.SamplingConfig.Height)
			}
		})
	}
}
