package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wateringsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantcare_waterings_started_total",
		Help: "Watering episodes started, by plant and trigger reason.",
	}, []string{"plant", "reason"})

	wateringsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantcare_waterings_ended_total",
		Help: "Watering episodes ended, by plant and outcome.",
	}, []string{"plant", "outcome"})

	wateringSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantcare_watering_skips_total",
		Help: "Watering decisions skipped, by plant and reason.",
	}, []string{"plant", "reason"})

	safetyStops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plantcare_safety_stops_total",
		Help: "Pump-wide safety force-stops.",
	})

	shadeMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantcare_shade_moves_total",
		Help: "Physical shade transitions, by resulting position.",
	}, []string{"position"})

	weatherRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantcare_weather_refreshes_total",
		Help: "Weather refresh attempts, by outcome.",
	}, []string{"outcome"})

	moistureGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantcare_soil_moisture_percent",
		Help: "Latest calibrated soil moisture per plant.",
	}, []string{"plant"})

	pumpGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plantcare_pump_running",
		Help: "1 while the pump is running.",
	})

	shadeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plantcare_shade_deployed",
		Help: "1 while the shade is deployed.",
	})
)
