package models

// ActuatorState is the shared water/shade apparatus snapshot. It is mutated
// only through the hal driver methods; decision code reads it. The intended
// steady state is pumpRunning ⇔ some valve open, enforced centrally by the
// water-system driver when valves change.
type ActuatorState struct {
	PumpRunning   bool             `json:"pump_running"`
	PumpStartedMs uint32           `json:"-"`
	ValveOpen     [PlantCount]bool `json:"valve_open"`
	ShadeAngle    int              `json:"shade_angle"`
	ShadeDeployed bool             `json:"shade_deployed"`
}

// RainState is the latest rain-sensor reading. No history is kept beyond a
// minimum re-read interval; raw below the configured threshold means rain.
type RainState struct {
	Raw        int    `json:"raw"`
	Raining    bool   `json:"raining"`
	LastReadMs uint32 `json:"-"`
}
