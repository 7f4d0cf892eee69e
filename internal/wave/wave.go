// Package wave models the oscillating water surface the boat and floating
// obstacles ride. The surface is a closed-form travelling sine so every
// subsystem sampling it at the same (x, t) sees the same level, which keeps
// jump landings against a moving water line deterministic and testable.
package wave

import "math"

// Surface describes one travelling wave over screen-space X.
type Surface struct {
	BaseLevel  float64
	Amplitude  float64
	Wavelength float64
	Speed      float64
}

// DefaultSurface returns the tuning used by the live game.
func DefaultSurface() Surface {
	return Surface{
		BaseLevel:  0,
		Amplitude:  0.45,
		Wavelength: 14,
		Speed:      3.2,
	}
}

// HeightAt samples the water level at screen position x and elapsed time t.
// A non-positive wavelength degrades to flat water.
func (s Surface) HeightAt(x, t float64) float64 {
	if s.Wavelength <= 0 || s.Amplitude == 0 {
		return s.BaseLevel
	}
	k := 2 * math.Pi / s.Wavelength
	return s.BaseLevel + s.Amplitude*math.Sin(k*x-s.Speed*t)
}

// SlopeAt samples dHeight/dx at (x, t).
func (s Surface) SlopeAt(x, t float64) float64 {
	if s.Wavelength <= 0 || s.Amplitude == 0 {
		return 0
	}
	k := 2 * math.Pi / s.Wavelength
	return s.Amplitude * k * math.Cos(k*x-s.Speed*t)
}

// TiltAt converts the local slope into a tilt angle in radians, the value a
// renderer applies to anything resting on the surface.
func (s Surface) TiltAt(x, t float64) float64 {
	return math.Atan(s.SlopeAt(x, t))
}
