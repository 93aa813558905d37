package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

const (
	builtInGroup  = "Built-in Scenes"
	fileSceneType = "json"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by Create
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the scene file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtInScene struct {
	info    SceneInfo
	factory func(...renderer.CameraConfig) *Scene
}

var builtInScenes = []builtInScene{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Diffuse, hollow glass and metal spheres on a large ground sphere",
		},
		factory: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "sphere-grid",
			Name:        "Sphere Grid",
			Description: "Jittered grid of small random spheres around three large ones",
		},
		factory: NewSphereGridScene,
	},
	{
		info: SceneInfo{
			ID:          "materials",
			Name:        "Materials",
			Description: "Metal fuzz and glass index of refraction sweeps",
		},
		factory: NewMaterialsScene,
	},
}

// ScenesDirs are searched, in order, for scene files
var ScenesDirs = []string{"scenes", "../scenes", "../../scenes"}

// Create builds a scene by built-in ID, "json:<name>" ID or path to a .json file
func Create(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	for _, builtIn := range builtInScenes {
		if builtIn.info.ID == name {
			return builtIn.factory(cameraOverrides...), nil
		}
	}

	path := name
	if id, ok := strings.CutPrefix(name, fileSceneType+":"); ok {
		found, err := findSceneFile(id)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err := LoadScene(path)
		if err != nil {
			return nil, err
		}
		if len(cameraOverrides) > 0 {
			s.CameraConfig = renderer.MergeCameraConfig(s.CameraConfig, cameraOverrides[0])
			s.SamplingConfig.Width = s.CameraConfig.Width
			s.SamplingConfig.Height = s.CameraConfig.ImageHeight()
		}
		return s, nil
	}

	return nil, fmt.Errorf("unknown scene %q", name)
}

// ListScenes returns the IDs of every scene Create accepts, built-ins first
func ListScenes() []string {
	ids := make([]string, 0, len(builtInScenes))
	for _, builtIn := range builtInScenes {
		ids = append(ids, builtIn.info.ID)
	}

	fileScenes, err := ListFileScenes()
	if err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	for _, info := range fileScenes {
		ids = append(ids, info.ID)
	}
	return ids
}

func findSceneFile(id string) (string, error) {
	for _, dir := range ScenesDirs {
		path := filepath.Join(dir, id+".json")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("scene file %q not found in %v", id, ScenesDirs)
}

// ListFileScenes scans the scenes directory and returns discovered scene files
func ListFileScenes() ([]SceneInfo, error) {
	var scenesDir string
	for _, path := range ScenesDirs {
		if _, err := os.Stat(path); err == nil {
			scenesDir = path
			break
		}
	}

	if scenesDir == "" {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group of a scene file
// without building it. Missing values fall back to the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:          fmt.Sprintf("%s:%s", fileSceneType, nameWithoutExt),
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        fileSceneType,
		FilePath:    filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, fmt.Errorf("read scene: %w", err)
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return info, fmt.Errorf("decode scene header: %w", err)
	}

	if header.Name != "" {
		info.Name = header.Name
		info.DisplayName = header.Name
	}
	if header.Group != "" {
		info.Group = header.Group
	}
	info.Description = header.Description

	return info, nil
}

// ListAllScenes returns both built-in and file scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	allScenes := make([]SceneInfo, 0, len(builtInScenes))
	for _, builtIn := range builtInScenes {
		info := builtIn.info
		info.DisplayName = info.Name
		info.Group = builtInGroup
		info.Type = "builtin"
		allScenes = append(allScenes, info)
	}

	fileScenes, err := ListFileScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	allScenes = append(allScenes, fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, info := range allScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{Name: builtInGroup, Scenes: groupMap[builtInGroup]})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
