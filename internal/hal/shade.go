package hal

import (
	"sync"
	"time"
)

// ShadeDriver positions the shared shading servo. Deploy and Retract are
// idempotent; an actual move blocks the caller for the full travel time
// (steps × step delay). That blocking behavior is a deliberate simplicity
// trade-off of the control design; a tick-driven ramp can replace this
// implementation without touching decision code.
type ShadeDriver interface {
	Deploy()
	Retract()
	Deployed() bool
	Angle() int
}

// ServoOutput writes an absolute angle to the servo hardware.
type ServoOutput interface {
	WriteAngle(degrees int)
}

// SteppedServo moves the servo one degree at a time with a fixed per-step
// delay for smooth travel.
type SteppedServo struct {
	mu        sync.Mutex
	out       ServoOutput
	angle     int
	retracted int
	deployed  int
	stepDelay time.Duration
}

func NewSteppedServo(out ServoOutput, retractedAngle, deployedAngle int, stepDelay time.Duration) *SteppedServo {
	out.WriteAngle(retractedAngle)
	return &SteppedServo{
		out:       out,
		angle:     retractedAngle,
		retracted: retractedAngle,
		deployed:  deployedAngle,
		stepDelay: stepDelay,
	}
}

func (s *SteppedServo) Deploy()  { s.moveTo(s.deployed) }
func (s *SteppedServo) Retract() { s.moveTo(s.retracted) }

func (s *SteppedServo) Deployed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle == s.deployed
}

func (s *SteppedServo) Angle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}

// moveTo steps monotonically from the current angle to target. No-op when
// already there.
func (s *SteppedServo) moveTo(target int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.angle == target {
		return
	}
	step := 1
	if target < s.angle {
		step = -1
	}
	for s.angle != target {
		s.angle += step
		s.out.WriteAngle(s.angle)
		if s.stepDelay > 0 {
			time.Sleep(s.stepDelay)
		}
	}
}

// SimServo records the angles written to it.
type SimServo struct {
	mu     sync.Mutex
	Writes []int
}

func NewSimServo() *SimServo {
	return &SimServo{}
}

func (s *SimServo) WriteAngle(degrees int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes = append(s.Writes, degrees)
}

// WriteCount returns how many angle writes were issued.
func (s *SimServo) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Writes)
}
