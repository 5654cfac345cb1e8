package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/notify"
)

// Watering trigger reasons and skip reasons, used in journal metadata and
// metric labels.
const (
	reasonCritical    = "critical_dry"
	reasonBelowTarget = "below_target"

	skipLocalRain      = "local_rain"
	skipForecastSoon   = "forecast_rain_3h"
	skipForecastLater  = "forecast_rain_6h"
	skipCooldownActive = "cooldown"
)

// stepPlant advances one plant's watering state machine. While a plant is
// WATERING no trigger evaluation happens for it; progress is checked
// instead.
func (e *Engine) stepPlant(ctx context.Context, i int, now uint32) {
	p := &e.plants[i]
	if p.Watering {
		e.progressWatering(ctx, i, now)
		return
	}

	// A plant is a watering candidate while below the target level; below
	// the dry threshold it is urgent, below critical it overrides
	// everything.
	if p.MoisturePercent >= e.cfg.TargetThreshold {
		return
	}

	if !e.canWater(p, now) {
		e.log.Debugw("watering gated by cooldown",
			"plant", i,
			"moisture", p.MoisturePercent,
			"since_last_start_ms", hal.ElapsedMs(now, p.LastWateringStartedMs))
		wateringSkips.WithLabelValues(strconv.Itoa(i), skipCooldownActive).Inc()
		return
	}

	// Override-skip evaluation in strict priority order.
	if p.MoisturePercent < e.cfg.CriticalThreshold {
		e.startWatering(ctx, i, now, reasonCritical)
		e.d.Notifier.Notify(ctx, notify.SeverityCritical,
			fmt.Sprintf("Plant %d critically dry at %d%% - watering immediately", i+1, p.MoisturePercent))
		return
	}

	if e.rainState.Raining {
		// Rely on the rain falling right now; no state change.
		e.skipWatering(ctx, i, skipLocalRain, "raining locally")
		return
	}

	if e.d.Weather.Usable(now) {
		adv := e.d.Weather.Advisory()
		if p.MoisturePercent < e.cfg.SafeSkipThreshold && adv.Rain3hMm >= e.cfg.Rain3hSkipMm {
			e.skipWatering(ctx, i, skipForecastSoon,
				fmt.Sprintf("%.1fmm rain expected within 3h", adv.Rain3hMm))
			e.d.Notifier.Notify(ctx, notify.SeverityInfo,
				fmt.Sprintf("Skipping watering for Plant %d: %.1fmm rain expected within 3h", i+1, adv.Rain3hMm))
			return
		}
		if p.MoisturePercent < e.cfg.PreventiveSkipThreshold && adv.Rain6hMm >= e.cfg.Rain6hSkipMm {
			e.skipWatering(ctx, i, skipForecastLater,
				fmt.Sprintf("%.1fmm rain expected within 6h", adv.Rain6hMm))
			e.d.Notifier.Notify(ctx, notify.SeverityInfo,
				fmt.Sprintf("Skipping watering for Plant %d: %.1fmm rain expected within 6h", i+1, adv.Rain6hMm))
			return
		}
	}
	// Offline or stale forecast falls through: watering beats risking
	// drought.

	e.startWatering(ctx, i, now, reasonBelowTarget)
}

// canWater implements the cooldown: the minimum interval is measured from
// the previous watering START, never its end.
func (e *Engine) canWater(p *models.PlantState, now uint32) bool {
	if !p.EverWatered {
		return true
	}
	return hal.ElapsedMs(now, p.LastWateringStartedMs) >= e.minIntervalMs
}

func (e *Engine) startWatering(ctx context.Context, i int, now uint32, reason string) {
	p := &e.plants[i]
	e.d.Water.OpenValve(i)
	p.Watering = true
	p.WateringStartedMs = now
	p.LastWateringStartedMs = now
	p.EverWatered = true

	wateringsStarted.WithLabelValues(strconv.Itoa(i), reason).Inc()
	e.log.Infow("watering started", "plant", i, "moisture", p.MoisturePercent, "reason", reason)
	e.journal(ctx, models.EventWateringStart,
		fmt.Sprintf("Plant %d watering started (%d%%)", i+1, p.MoisturePercent),
		map[string]any{"plant": i, "moisture": p.MoisturePercent, "reason": reason})
}

func (e *Engine) skipWatering(ctx context.Context, i int, reason, detail string) {
	p := &e.plants[i]
	wateringSkips.WithLabelValues(strconv.Itoa(i), reason).Inc()
	e.log.Infow("watering skipped", "plant", i, "moisture", p.MoisturePercent, "reason", reason)
	e.journal(ctx, models.EventWateringSkip,
		fmt.Sprintf("Plant %d watering skipped: %s", i+1, detail),
		map[string]any{"plant": i, "moisture": p.MoisturePercent, "reason": reason})
}

// progressWatering handles the WATERING state: stop at target, or stop on
// the safety duration ceiling.
func (e *Engine) progressWatering(ctx context.Context, i int, now uint32) {
	p := &e.plants[i]

	if p.MoisturePercent >= e.cfg.TargetThreshold {
		elapsed := hal.ElapsedMs(now, p.WateringStartedMs)
		e.stopWatering(i, now)
		wateringsEnded.WithLabelValues(strconv.Itoa(i), "target").Inc()
		e.log.Infow("watering complete", "plant", i, "moisture", p.MoisturePercent, "elapsed_ms", elapsed)
		e.journal(ctx, models.EventWateringDone,
			fmt.Sprintf("Plant %d reached %d%% moisture", i+1, p.MoisturePercent),
			map[string]any{"plant": i, "moisture": p.MoisturePercent, "elapsed_ms": elapsed})
		e.d.Notifier.Notify(ctx, notify.SeveritySuccess,
			fmt.Sprintf("Plant %d watered to %d%% moisture", i+1, p.MoisturePercent))
		return
	}

	if hal.ElapsedMs(now, p.WateringStartedMs) >= e.maxWateringMs {
		moisture := p.MoisturePercent
		e.stopWatering(i, now)
		wateringsEnded.WithLabelValues(strconv.Itoa(i), "timeout").Inc()
		e.log.Warnw("watering hit duration ceiling", "plant", i, "moisture", moisture)
		e.journal(ctx, models.EventWateringTimeout,
			fmt.Sprintf("Plant %d watering stopped at duration ceiling (%d%%)", i+1, moisture),
			map[string]any{"plant": i, "moisture": moisture})
		e.d.Notifier.Notify(ctx, notify.SeverityWarning,
			fmt.Sprintf("Plant %d watering stopped after max duration, moisture only %d%%", i+1, moisture))
	}
}

// stopWatering closes the plant's valve and leaves the pump to the driver:
// it stops when the last valve closes.
func (e *Engine) stopWatering(i int, now uint32) {
	p := &e.plants[i]
	e.d.Water.CloseValve(i)
	p.Watering = false
	p.LastWateringEndedMs = now
}
