package hal

import (
	"fmt"
	"sync"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

// WaterSystem drives the shared pump and the per-plant solenoid valves.
// The pump/valve invariant is owned here, not by call sites: opening the
// first valve starts the pump, closing the last one stops it. Commands are
// idempotent; repeating the current state issues no hardware transition.
type WaterSystem interface {
	OpenValve(plant int)
	CloseValve(plant int)
	// StopAll force-stops the pump and closes every valve. Used by the
	// safety supervisor.
	StopAll()

	PumpRunning() bool
	PumpStartedMs() uint32
	ValveOpen(plant int) bool
}

// SimWaterSystem is the in-memory pump+valve rig. It records every physical
// transition it would have issued, which doubles as the idempotence probe
// in tests.
type SimWaterSystem struct {
	mu            sync.Mutex
	clock         Clock
	pumpRunning   bool
	pumpStartedMs uint32
	valveOpen     [models.PlantCount]bool

	// Commands holds the physical transitions in order, e.g. "valve0:open".
	Commands []string
}

func NewSimWaterSystem(clock Clock) *SimWaterSystem {
	return &SimWaterSystem{clock: clock}
}

func (w *SimWaterSystem) OpenValve(plant int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.valveOpen[plant] {
		w.valveOpen[plant] = true
		w.Commands = append(w.Commands, fmt.Sprintf("valve%d:open", plant))
	}
	w.startPumpLocked()
}

func (w *SimWaterSystem) CloseValve(plant int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.valveOpen[plant] {
		w.valveOpen[plant] = false
		w.Commands = append(w.Commands, fmt.Sprintf("valve%d:close", plant))
	}
	if !w.anyValveOpenLocked() {
		w.stopPumpLocked()
	}
}

func (w *SimWaterSystem) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopPumpLocked()
	for i := range w.valveOpen {
		if w.valveOpen[i] {
			w.valveOpen[i] = false
			w.Commands = append(w.Commands, fmt.Sprintf("valve%d:close", i))
		}
	}
}

func (w *SimWaterSystem) PumpRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pumpRunning
}

func (w *SimWaterSystem) PumpStartedMs() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pumpStartedMs
}

func (w *SimWaterSystem) ValveOpen(plant int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.valveOpen[plant]
}

func (w *SimWaterSystem) anyValveOpenLocked() bool {
	for i := range w.valveOpen {
		if w.valveOpen[i] {
			return true
		}
	}
	return false
}

func (w *SimWaterSystem) startPumpLocked() {
	if w.pumpRunning {
		return
	}
	w.pumpRunning = true
	w.pumpStartedMs = w.clock.NowMs()
	w.Commands = append(w.Commands, "pump:on")
}

func (w *SimWaterSystem) stopPumpLocked() {
	if !w.pumpRunning {
		return
	}
	w.pumpRunning = false
	w.Commands = append(w.Commands, "pump:off")
}
