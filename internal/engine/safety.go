package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/notify"
)

// runSafety executes last in every tick and may override anything the
// watering machine decided earlier in the same tick. Pump-wide and
// per-plant ceilings share the duration constant but track independent
// start timestamps.
func (e *Engine) runSafety(ctx context.Context, now uint32) {
	e.enforcePumpCeiling(ctx, now)
	e.enforcePlantCeilings(ctx, now)
	e.checkLuxHealth(ctx, now)
}

// enforcePumpCeiling force-stops everything when the pump has run
// continuously for the maximum duration. Both plants are reset even if only
// one caused the long run: after a hard stop the shared actuator state is
// no longer trusted, so every consumer starts over.
func (e *Engine) enforcePumpCeiling(ctx context.Context, now uint32) {
	if !e.d.Water.PumpRunning() {
		return
	}
	ran := hal.ElapsedMs(now, e.d.Water.PumpStartedMs())
	if ran < e.maxWateringMs {
		return
	}

	e.d.Water.StopAll()
	for i := range e.plants {
		if e.plants[i].Watering {
			e.plants[i].Watering = false
			e.plants[i].LastWateringEndedMs = now
		}
	}

	safetyStops.Inc()
	e.log.Errorw("pump safety stop", "ran_ms", ran)
	e.journal(ctx, models.EventSafetyStop,
		"Pump force-stopped after maximum run time; all valves closed",
		map[string]any{"ran_ms": ran})
	e.d.Notifier.Notify(ctx, notify.SeverityCritical,
		"Pump ran too long - force-stopped all watering")
}

// enforcePlantCeilings stops an individual plant whose episode exceeded the
// maximum duration, independent of the pump-wide check.
func (e *Engine) enforcePlantCeilings(ctx context.Context, now uint32) {
	for i := range e.plants {
		p := &e.plants[i]
		if !p.Watering {
			continue
		}
		ran := hal.ElapsedMs(now, p.WateringStartedMs)
		if ran < e.maxWateringMs {
			continue
		}
		moisture := p.MoisturePercent
		e.stopWatering(i, now)
		wateringsEnded.WithLabelValues(strconv.Itoa(i), "timeout").Inc()
		e.log.Warnw("plant watering safety stop", "plant", i, "ran_ms", ran)
		e.journal(ctx, models.EventWateringTimeout,
			fmt.Sprintf("Plant %d watering force-stopped at duration ceiling (%d%%)", i+1, moisture),
			map[string]any{"plant": i, "moisture": moisture, "ran_ms": ran})
		e.d.Notifier.Notify(ctx, notify.SeverityWarning,
			fmt.Sprintf("Plant %d watering force-stopped after max duration", i+1))
	}
}

// checkLuxHealth runs on its own longer period: re-initialize an
// unavailable sensor, or mark an implausible one unavailable and attempt
// immediate recovery. Notifications fire only on availability transitions.
func (e *Engine) checkLuxHealth(ctx context.Context, now uint32) {
	if e.luxCheckedOnce && hal.ElapsedMs(now, e.lastLuxCheckMs) < e.luxCheckMs {
		return
	}
	e.luxCheckedOnce = true
	e.lastLuxCheckMs = now

	if !e.luxAvailable {
		if err := e.d.Lux.Init(); err != nil {
			e.log.Debugw("lux sensor still unavailable", "err", err)
			return
		}
		e.markLuxRecovered(ctx)
		return
	}

	v, err := e.d.Lux.Read()
	if err != nil || v < 0 || v > e.luxPlausible {
		e.luxAvailable = false
		e.log.Warnw("lux sensor implausible, marking unavailable", "err", err, "lux", v)
		e.journal(ctx, models.EventSensorFault, "Lux sensor unavailable",
			map[string]any{"lux": v})
		e.d.Notifier.Notify(ctx, notify.SeverityWarning, "Lux sensor failed - shading runs without light input")

		if err := e.d.Lux.Init(); err == nil {
			e.markLuxRecovered(ctx)
		}
		return
	}
	e.luxValue = v
}

func (e *Engine) markLuxRecovered(ctx context.Context) {
	e.luxAvailable = true
	e.log.Infow("lux sensor recovered")
	e.journal(ctx, models.EventSensorRecovered, "Lux sensor recovered", nil)
	e.d.Notifier.Notify(ctx, notify.SeverityInfo, "Lux sensor recovered")
}
