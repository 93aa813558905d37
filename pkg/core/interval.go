package core

import "github.com/chewxy/math32"

// Interval is a scalar range used to bound valid hit distances.
// Searches treat Min <= Max as a valid range; EmptyInterval deliberately breaks it.
type Interval struct {
	Min, Max float32
}

// NewInterval creates an interval [min, max]
func NewInterval(min, max float32) Interval {
	return Interval{Min: min, Max: max}
}

// EmptyInterval contains nothing
func EmptyInterval() Interval {
	return Interval{Min: math32.Inf(1), Max: math32.Inf(-1)}
}

// UniverseInterval contains every finite value
func UniverseInterval() Interval {
	return Interval{Min: math32.Inf(-1), Max: math32.Inf(1)}
}

// Size returns Max - Min
func (i Interval) Size() float32 {
	return i.Max - i.Min
}

// Contains reports whether min <= x <= max
func (i Interval) Contains(x float32) bool {
	return i.Min <= x && x <= i.Max
}

// Surrounds reports whether min < x < max
func (i Interval) Surrounds(x float32) bool {
	return i.Min < x && x < i.Max
}

// Clamp limits x to the interval
func (i Interval) Clamp(x float32) float32 {
	if x < i.Min {
		return i.Min
	}
	if x > i.Max {
		return i.Max
	}
	return x
}
