package engine

import (
	"context"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

// shadePreference computes one plant's vote from its moisture band, the
// local rain state and the light level. Watering in progress does not relax
// the dry plant's protective stance.
func shadePreference(band models.MoistureBand, raining bool, lux, luxHigh float64) models.ShadePreference {
	switch band {
	case models.BandDry:
		if raining {
			// Leave the dry plant exposed and let the rain water it.
			return models.PreferOpen
		}
		return models.PreferShade
	case models.BandWet:
		if raining {
			// Keep additional water off saturated soil.
			return models.PreferShade
		}
		return models.PreferOpen
	default:
		if raining || lux > luxHigh {
			return models.PreferShade
		}
		return models.PreferOpen
	}
}

// arbitrateShade resolves both plants' votes into the single physical
// position. Priority: a WET plant in rain forces SHADE (root rot beats a
// missed rain or sun window for the other plant); otherwise any SHADE vote
// deploys, and only two OPEN votes retract.
func (e *Engine) arbitrateShade(ctx context.Context, now uint32) {
	_ = now

	raining := e.rainState.Raining
	lux := e.decisionLux()

	anyWetInRain := false
	deploy := false
	for i := range e.plants {
		p := &e.plants[i]
		band := models.ClassifyMoisture(p.MoisturePercent, e.cfg.DryThreshold, e.cfg.WetThreshold)
		pref := shadePreference(band, raining, lux, e.cfg.LuxHighThreshold)
		p.ShadePreference = pref

		if band == models.BandWet && raining {
			anyWetInRain = true
		}
		if pref == models.PreferShade {
			deploy = true
		}
	}
	if anyWetInRain {
		deploy = true
	}

	if deploy == e.d.Shade.Deployed() {
		return
	}

	if deploy {
		e.d.Shade.Deploy()
		shadeMoves.WithLabelValues("deployed").Inc()
	} else {
		e.d.Shade.Retract()
		shadeMoves.WithLabelValues("retracted").Inc()
	}
	position := "retracted"
	if deploy {
		position = "deployed"
	}
	e.log.Infow("shade moved", "position", position, "raining", raining, "lux", lux, "wet_override", anyWetInRain)
	e.journal(ctx, models.EventShadeMove, "Shade "+position,
		map[string]any{"position": position, "raining": raining, "wet_override": anyWetInRain})
}

// decisionLux returns the light level used for shading; without a healthy
// lux sensor the high-light rule simply never fires.
func (e *Engine) decisionLux() float64 {
	if !e.luxAvailable {
		return 0
	}
	return e.luxValue
}
