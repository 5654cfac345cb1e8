// Package engine implements the plant-care decision core: the per-plant
// watering state machine, shade arbitration, the safety supervisor, and the
// fixed-period control loop that sequences them.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/notify"
	"github.com/Cknrf/intelligent-plant-care-system/internal/repository"
)

// WeatherSource supplies the advisory input to watering decisions.
type WeatherSource interface {
	Refresh(ctx context.Context) bool
	Advisory() models.WeatherAdvisory
	Usable(nowMs uint32) bool
	Offline() bool
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Clock    hal.Clock
	Soil     [models.PlantCount]hal.SoilSensor
	Lux      hal.LuxSensor
	Rain     hal.RainSensor
	Water    hal.WaterSystem
	Shade    hal.ShadeDriver
	Weather  WeatherSource
	Notifier notify.Notifier
	Events   repository.EventRepo
	Log      *logger.Logger
}

// Engine owns all volatile control state. Everything runs on a single
// control goroutine; a tick always runs to completion. The mutex exists
// only so the monitoring API can take consistent snapshots between ticks.
type Engine struct {
	cfg config.CareConfig
	d   Deps
	log *logger.Logger

	mu        sync.RWMutex
	plants    [models.PlantCount]models.PlantState
	rainState models.RainState

	luxValue       float64
	luxAvailable   bool
	luxCheckedOnce bool
	lastLuxCheckMs uint32

	tickCount uint64
	updatedAt time.Time

	// derived millisecond constants
	maxWateringMs  uint32
	minIntervalMs  uint32
	rainDebounceMs uint32
	luxCheckMs     uint32
	luxPlausible   float64

	weatherEveryTicks uint64
	statusEveryTicks  uint64
}

// New builds an engine. weatherRefresh is the advisory refresh period,
// rounded down to a whole number of ticks.
func New(cfg config.CareConfig, sensors config.SensorConfig, weatherRefresh time.Duration, d Deps) *Engine {
	e := &Engine{
		cfg:            cfg,
		d:              d,
		log:            d.Log,
		maxWateringMs:  uint32(cfg.MaxWateringDuration.Milliseconds()),
		minIntervalMs:  uint32(cfg.MinWateringInterval.Milliseconds()),
		rainDebounceMs: uint32(sensors.RainDebounce.Milliseconds()),
		luxCheckMs:     uint32(cfg.LuxCheckInterval.Milliseconds()),
		luxPlausible:   sensors.LuxPlausibleMax,
	}
	for i := range e.plants {
		e.plants[i] = models.PlantState{Index: i, ShadePreference: models.PreferOpen}
	}
	e.weatherEveryTicks = ticksFor(weatherRefresh, cfg.TickInterval)
	e.statusEveryTicks = ticksFor(cfg.StatusInterval, cfg.TickInterval)
	return e
}

func ticksFor(period, tick time.Duration) uint64 {
	if tick <= 0 || period <= tick {
		return 1
	}
	return uint64(period / tick)
}

// Run drives the control loop until ctx is canceled. The sensor refresh,
// both plants' watering decisions, the shade decision and the safety pass
// are sequenced inside one tick so shading always sees the post-decision
// state of the same tick.
func (e *Engine) Run(ctx context.Context) {
	e.bootstrap(ctx)

	t := time.NewTicker(e.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			e.Tick(ctx)
		}
	}
}

// bootstrap initializes the lux sensor and fetches the first advisory so
// the very first decisions are informed.
func (e *Engine) bootstrap(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.d.Lux.Init(); err != nil {
		e.log.Warnw("lux sensor init failed, starting without light input", "err", err)
		e.luxAvailable = false
	} else {
		e.luxAvailable = true
	}
	e.refreshWeather(ctx)
}

// Tick executes one full control cycle.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.d.Clock.NowMs()
	e.tickCount++

	e.readSensors(now)
	for i := range e.plants {
		e.stepPlant(ctx, i, now)
	}
	e.arbitrateShade(ctx, now)
	e.runSafety(ctx, now)

	if e.tickCount%e.weatherEveryTicks == 0 {
		e.refreshWeather(ctx)
	}
	if e.tickCount%e.statusEveryTicks == 0 {
		e.sendStatus(ctx)
	}

	e.updatedAt = time.Now().UTC()
	pumpGauge.Set(boolGauge(e.d.Water.PumpRunning()))
	shadeGauge.Set(boolGauge(e.d.Shade.Deployed()))
}

func (e *Engine) readSensors(now uint32) {
	for i := range e.plants {
		pct := e.d.Soil[i].ReadPercent()
		e.plants[i].MoisturePercent = pct
		moistureGauge.WithLabelValues(strconv.Itoa(i)).Set(float64(pct))
	}

	if e.rainState.LastReadMs == 0 || hal.ElapsedMs(now, e.rainState.LastReadMs) >= e.rainDebounceMs {
		raw, raining := e.d.Rain.Read()
		e.rainState = models.RainState{Raw: raw, Raining: raining, LastReadMs: now}
	}

	if e.luxAvailable {
		if v, err := e.d.Lux.Read(); err == nil {
			e.luxValue = v
		}
	}
}

func (e *Engine) refreshWeather(ctx context.Context) {
	if e.d.Weather.Refresh(ctx) {
		weatherRefreshes.WithLabelValues("ok").Inc()
	} else {
		weatherRefreshes.WithLabelValues("failed").Inc()
	}
}

func (e *Engine) sendStatus(ctx context.Context) {
	adv := e.d.Weather.Advisory()
	weatherPart := "weather offline"
	if adv.Valid {
		weatherPart = fmt.Sprintf("%s %.1f°C", adv.Description, adv.TemperatureC)
	}
	shadePart := "shade retracted"
	if e.d.Shade.Deployed() {
		shadePart = "shade deployed"
	}
	msg := fmt.Sprintf("Status: Plant 1 %d%% | Plant 2 %d%% | %s | %s",
		e.plants[0].MoisturePercent, e.plants[1].MoisturePercent, shadePart, weatherPart)

	e.journal(ctx, models.EventStatus, msg, nil)
	e.d.Notifier.Notify(ctx, notify.SeverityInfo, msg)
}

// Snapshot returns a consistent copy of the control state for the
// monitoring surface.
func (e *Engine) Snapshot() models.SystemSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return models.SystemSnapshot{
		Plants: e.plants,
		Actuators: models.ActuatorState{
			PumpRunning:   e.d.Water.PumpRunning(),
			PumpStartedMs: e.d.Water.PumpStartedMs(),
			ValveOpen:     [models.PlantCount]bool{e.d.Water.ValveOpen(0), e.d.Water.ValveOpen(1)},
			ShadeAngle:    e.d.Shade.Angle(),
			ShadeDeployed: e.d.Shade.Deployed(),
		},
		Rain:          e.rainState,
		Lux:           e.luxValue,
		LuxAvailable:  e.luxAvailable,
		Weather:       e.d.Weather.Advisory(),
		WeatherOnline: !e.d.Weather.Offline(),
		Tick:          e.tickCount,
		UpdatedAt:     e.updatedAt,
	}
}

func (e *Engine) journal(ctx context.Context, typ, msg string, meta any) {
	if e.d.Events == nil {
		return
	}
	if err := e.d.Events.Append(ctx, models.CareEvent{Type: typ, Message: msg, Metadata: meta}); err != nil {
		e.log.Warnw("journal append failed", "err", err, "type", typ)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
