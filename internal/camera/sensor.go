// Package camera holds the capture collaborators: the frame source the
// scheduler drains and the sensor parameter set the command processor
// mutates. Both are interfaces so the supervisor can run against real
// hardware or the file-backed simulator.
package camera

import "sync"

// Parameter value bounds, matching the OV2640 sensor driver.
const (
	BrightnessMin = -2
	BrightnessMax = 2
	ContrastMin   = -2
	ContrastMax   = 2
	SaturationMin = -2
	SaturationMax = 2
	QualityMin    = 0
	QualityMax    = 63
)

// Params is a snapshot of the sensor parameter set.
type Params struct {
	Brightness int `json:"brightness" toml:"brightness"`
	Contrast   int `json:"contrast" toml:"contrast"`
	Saturation int `json:"saturation" toml:"saturation"`
	Quality    int `json:"quality" toml:"quality"`
}

// Sensor is the parameter-set mutator. Each setter clamps the value to the
// hardware range, applies it, and returns the value actually in effect.
// Applied values stick even when a later field in the same command fails
// validation; there is no rollback at this level.
type Sensor interface {
	SetBrightness(v int) int
	SetContrast(v int) int
	SetSaturation(v int) int
	SetQuality(v int) int
	Status() Params
}

// SimSensor is an in-memory Sensor used on hosts without a camera module
// and in tests.
type SimSensor struct {
	mu     sync.Mutex
	params Params
}

// NewSimSensor creates a simulated sensor with the given initial parameters.
func NewSimSensor(initial Params) *SimSensor {
	s := &SimSensor{}
	s.Apply(initial)
	return s
}

// SetBrightness clamps and applies brightness, returning the applied value.
func (s *SimSensor) SetBrightness(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Brightness = clamp(v, BrightnessMin, BrightnessMax)
	return s.params.Brightness
}

// SetContrast clamps and applies contrast, returning the applied value.
func (s *SimSensor) SetContrast(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Contrast = clamp(v, ContrastMin, ContrastMax)
	return s.params.Contrast
}

// SetSaturation clamps and applies saturation, returning the applied value.
func (s *SimSensor) SetSaturation(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Saturation = clamp(v, SaturationMin, SaturationMax)
	return s.params.Saturation
}

// SetQuality clamps and applies JPEG quality, returning the applied value.
func (s *SimSensor) SetQuality(v int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Quality = clamp(v, QualityMin, QualityMax)
	return s.params.Quality
}

// Status returns the current parameter snapshot.
func (s *SimSensor) Status() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Apply sets all four parameters at once, clamping each. Used for config
// defaults at startup and hot-reload.
func (s *SimSensor) Apply(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = Params{
		Brightness: clamp(p.Brightness, BrightnessMin, BrightnessMax),
		Contrast:   clamp(p.Contrast, ContrastMin, ContrastMax),
		Saturation: clamp(p.Saturation, SaturationMin, SaturationMax),
		Quality:    clamp(p.Quality, QualityMin, QualityMax),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
