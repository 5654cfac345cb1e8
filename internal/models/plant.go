package models

// PlantCount is fixed by the physical build: one pump, two solenoid valves
// and a single shade covering both pots.
const PlantCount = 2

// MoistureBand classifies a soil-moisture percentage. The three bands are
// disjoint and drive both watering and shading decisions.
type MoistureBand string

const (
	BandDry     MoistureBand = "DRY"
	BandOptimal MoistureBand = "OPTIMAL"
	BandWet     MoistureBand = "WET"
)

// ClassifyMoisture maps a moisture percentage onto a band. Values on the
// thresholds fall into OPTIMAL (DRY is strictly below, WET strictly above).
func ClassifyMoisture(percent, dryBelow, wetAbove int) MoistureBand {
	switch {
	case percent < dryBelow:
		return BandDry
	case percent > wetAbove:
		return BandWet
	default:
		return BandOptimal
	}
}

// ShadePreference is a per-plant vote on the shared shade position.
type ShadePreference string

const (
	PreferOpen  ShadePreference = "OPEN"
	PreferShade ShadePreference = "WANT_SHADE"
)

// PlantState is the volatile per-plant state. Moisture is refreshed every
// sensor tick; the watering flag and timestamps are owned by the watering
// state machine (the safety supervisor may preempt them). Timestamps are
// monotonic milliseconds, compared with wraparound-safe unsigned arithmetic.
type PlantState struct {
	Index           int             `json:"index"`
	MoisturePercent int             `json:"moisture_percent"`
	Watering        bool            `json:"watering"`
	ShadePreference ShadePreference `json:"shade_preference"`

	WateringStartedMs     uint32 `json:"-"`
	LastWateringStartedMs uint32 `json:"-"`
	LastWateringEndedMs   uint32 `json:"-"`
	EverWatered           bool   `json:"-"`
}
