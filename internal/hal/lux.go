package hal

import (
	"errors"
	"sync"
)

// LuxSensor is the shared ambient-light sensor (TSL2561-style). Init is
// called at boot and again by the sensor-health check when the sensor has
// been marked unavailable.
type LuxSensor interface {
	Init() error
	Read() (float64, error)
}

// ErrLuxUnavailable is returned when the sensor hardware does not respond.
var ErrLuxUnavailable = errors.New("lux sensor unavailable")

// SimLuxSensor is an in-memory lux sensor with fault injection for tests
// and development runs.
type SimLuxSensor struct {
	mu       sync.Mutex
	lux      float64
	failRead bool
	failInit bool
}

func NewSimLuxSensor(lux float64) *SimLuxSensor {
	return &SimLuxSensor{lux: lux}
}

func (s *SimLuxSensor) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInit {
		return ErrLuxUnavailable
	}
	return nil
}

func (s *SimLuxSensor) Read() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRead {
		return 0, ErrLuxUnavailable
	}
	return s.lux, nil
}

// SetLux updates the simulated reading.
func (s *SimLuxSensor) SetLux(lux float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lux = lux
}

// FailReads makes Read return ErrLuxUnavailable until cleared.
func (s *SimLuxSensor) FailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = fail
}

// FailInit makes Init return ErrLuxUnavailable until cleared.
func (s *SimLuxSensor) FailInit(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failInit = fail
}
