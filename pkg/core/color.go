package core

import "image/color"

// Color is a linear RGBA color as handed to presentation sinks.
// Alpha is conventionally 1.0.
type Color struct {
	R, G, B, A float32
}

// NewColor creates an opaque color
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1.0}
}

// ColorFromVec3 creates an opaque color from an RGB vector
func ColorFromVec3(v Vec3) Color {
	return Color{R: v.X, G: v.Y, B: v.Z, A: 1.0}
}

// Black is the color returned for absorbed paths
var Black = NewColor(0, 0, 0)

// RGB returns the color channels as a vector
func (c Color) RGB() Vec3 {
	return Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Equals reports exact channel equality
func (c Color) Equals(other Color) bool {
	return c == other
}

// ToRGBA converts the color to 8-bit RGBA, clamping each channel to [0, 1]
func (c Color) ToRGBA() color.RGBA {
	unit := NewInterval(0, 1)
	return color.RGBA{
		R: uint8(255*unit.Clamp(c.R) + 0.5),
		G: uint8(255*unit.Clamp(c.G) + 0.5),
		B: uint8(255*unit.Clamp(c.B) + 0.5),
		A: uint8(255*unit.Clamp(c.A) + 0.5),
	}
}

// Luminance returns the Rec. 709 relative luminance of the color
func (c Color) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}
