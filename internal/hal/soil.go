package hal

import "sync"

// SoilSensor reports calibrated soil moisture as a 0-100 percentage.
type SoilSensor interface {
	ReadPercent() int
}

// RawReader is an analog input returning a raw ADC value.
type RawReader interface {
	ReadRaw() int
}

// SoilCalibration maps raw ADC readings to a moisture percentage.
// DryRaw is the reading in dry air (0%), WetRaw the reading in water (100%).
// Readings outside [PlausibleMin, PlausibleMax] indicate a disconnected or
// failing probe and must not drive the controller into emergency watering.
type SoilCalibration struct {
	DryRaw       int
	WetRaw       int
	PlausibleMin int
	PlausibleMax int
}

// neutralPercent is substituted for implausible readings: the optimal
// midpoint, which triggers neither watering nor shading action.
const neutralPercent = 50

// CalibratedSoilSensor converts raw ADC values from a probe into a clamped
// moisture percentage.
type CalibratedSoilSensor struct {
	source RawReader
	cal    SoilCalibration
}

func NewCalibratedSoilSensor(source RawReader, cal SoilCalibration) *CalibratedSoilSensor {
	return &CalibratedSoilSensor{source: source, cal: cal}
}

func (s *CalibratedSoilSensor) ReadPercent() int {
	raw := s.source.ReadRaw()
	if raw < s.cal.PlausibleMin || raw > s.cal.PlausibleMax {
		return neutralPercent
	}
	span := s.cal.DryRaw - s.cal.WetRaw
	if span <= 0 {
		return neutralPercent
	}
	percent := (s.cal.DryRaw - raw) * 100 / span
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent
}

// SimADC is an in-memory analog input for simulation and tests.
type SimADC struct {
	mu  sync.Mutex
	raw int
}

func NewSimADC(raw int) *SimADC {
	return &SimADC{raw: raw}
}

func (a *SimADC) ReadRaw() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.raw
}

// SetRaw updates the simulated reading.
func (a *SimADC) SetRaw(raw int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raw = raw
}
