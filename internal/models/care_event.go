package models

import "time"

// Care event types appended to the journal.
const (
	EventWateringStart   = "WATERING_START"
	EventWateringDone    = "WATERING_DONE"
	EventWateringTimeout = "WATERING_TIMEOUT"
	EventWateringSkip    = "WATERING_SKIP"
	EventSafetyStop      = "SAFETY_STOP"
	EventShadeMove       = "SHADE_MOVE"
	EventSensorFault     = "SENSOR_FAULT"
	EventSensorRecovered = "SENSOR_RECOVERED"
	EventStatus          = "STATUS"
)

// CareEvent is a single journal entry.
type CareEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Metadata   any       `json:"metadata,omitempty"`
}
