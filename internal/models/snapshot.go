package models

import "time"

// SystemSnapshot is the read-only view served by the monitoring API and the
// websocket stream. It is assembled from the engine's volatile state under
// its lock, so every field belongs to the same tick.
type SystemSnapshot struct {
	Plants        [PlantCount]PlantState `json:"plants"`
	Actuators     ActuatorState          `json:"actuators"`
	Rain          RainState              `json:"rain"`
	Lux           float64                `json:"lux"`
	LuxAvailable  bool                   `json:"lux_available"`
	Weather       WeatherAdvisory        `json:"weather"`
	WeatherOnline bool                   `json:"weather_online"`
	Tick          uint64                 `json:"tick"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
