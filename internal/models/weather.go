package models

// WeatherAdvisory is the decision-facing view of a forecast fetch: near-term
// rain accumulation over the next two 3-hour blocks plus current conditions.
// It is created whole on each successful fetch and never partially mutated;
// a failed fetch must not replace a previously valid advisory.
type WeatherAdvisory struct {
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPercent int     `json:"humidity_percent"`
	Description     string  `json:"description"`
	Rain3hMm        float64 `json:"rain_3h_mm"`
	Rain6hMm        float64 `json:"rain_6h_mm"`
	FetchedAtMs     uint32  `json:"-"`
	Valid           bool    `json:"valid"`
}
