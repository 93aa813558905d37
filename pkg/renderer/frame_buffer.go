package renderer

import (
	"fmt"
	"image"
	"sync"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// FailedPixelColor marks pixels whose render task did not complete
var FailedPixelColor = core.NewColor(1, 0, 1)

// FrameBuffer is the shared output image written concurrently by render tasks.
// Pixels are stored row-major at index x + y*width and start out opaque white.
type FrameBuffer struct {
	mu     sync.Mutex
	width  int
	height int
	pixels []core.Color
}

// NewFrameBuffer creates a width*height buffer filled with opaque white
func NewFrameBuffer(width, height int) *FrameBuffer {
	width, height = max(0, width), max(0, height)
	pixels := make([]core.Color, width*height)
	for i := range pixels {
		pixels[i] = core.NewColor(1, 1, 1)
	}
	return &FrameBuffer{width: width, height: height, pixels: pixels}
}

// Width returns the buffer width in pixels
func (fb *FrameBuffer) Width() int {
	return fb.width
}

// Height returns the buffer height in pixels
func (fb *FrameBuffer) Height() int {
	return fb.height
}

// Index returns the flat index of pixel (x, y)
func (fb *FrameBuffer) Index(x, y int) int {
	return x + y*fb.width
}

// Set stores the color of pixel (x, y)
func (fb *FrameBuffer) Set(x, y int, color core.Color) error {
	if !fb.inBounds(x, y) {
		return fmt.Errorf("pixel (%d,%d) outside %dx%d frame", x, y, fb.width, fb.height)
	}

	fb.mu.Lock()
	fb.pixels[fb.Index(x, y)] = color
	fb.mu.Unlock()
	return nil
}

// At returns the color of pixel (x, y), or black when out of bounds
func (fb *FrameBuffer) At(x, y int) core.Color {
	if !fb.inBounds(x, y) {
		return core.Black
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.pixels[fb.Index(x, y)]
}

// Pixels returns a copy of the buffer in row-major order
func (fb *FrameBuffer) Pixels() []core.Color {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]core.Color(nil), fb.pixels...)
}

// ToImage converts the buffer to an 8-bit RGBA image
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	pixels := fb.Pixels()

	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			img.SetRGBA(x, y, pixels[fb.Index(x, y)].ToRGBA())
		}
	}

	return img
}

// AverageLuminance returns the mean Rec. 709 luminance over all pixels
func (fb *FrameBuffer) AverageLuminance() float64 {
	pixels := fb.Pixels()
	if len(pixels) == 0 {
		return 0
	}

	var total float64
	for _, pixel := range pixels {
		total += float64(pixel.Luminance())
	}
	return total / float64(len(pixels))
}

func (fb *FrameBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}
