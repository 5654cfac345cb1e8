package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/notify"
)

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) NowMs() uint32 { return c.ms }

func (c *fakeClock) advance(d time.Duration) { c.ms += uint32(d.Milliseconds()) }

type fakeSoil struct {
	pct int
}

func (s *fakeSoil) ReadPercent() int { return s.pct }

type fakeWeather struct {
	adv       models.WeatherAdvisory
	usable    bool
	offline   bool
	refreshOK bool
	refreshes int
}

func (w *fakeWeather) Refresh(ctx context.Context) bool {
	w.refreshes++
	return w.refreshOK
}
func (w *fakeWeather) Advisory() models.WeatherAdvisory { return w.adv }
func (w *fakeWeather) Usable(nowMs uint32) bool         { return w.usable }
func (w *fakeWeather) Offline() bool                    { return w.offline }

type notifyCall struct {
	severity notify.Severity
	message  string
}

type fakeNotifier struct {
	calls []notifyCall
}

func (n *fakeNotifier) Notify(ctx context.Context, severity notify.Severity, message string) {
	n.calls = append(n.calls, notifyCall{severity, message})
}

func (n *fakeNotifier) containing(substr string) []notifyCall {
	var out []notifyCall
	for _, c := range n.calls {
		if strings.Contains(c.message, substr) {
			out = append(out, c)
		}
	}
	return out
}

type fakeEvents struct {
	appendErr error
	events    []models.CareEvent
}

func (f *fakeEvents) Append(ctx context.Context, e models.CareEvent) error {
	f.events = append(f.events, e)
	return f.appendErr
}
func (f *fakeEvents) List(ctx context.Context, from, to time.Time, typ string) ([]models.CareEvent, error) {
	return f.events, nil
}

func (f *fakeEvents) ofType(typ string) []models.CareEvent {
	var out []models.CareEvent
	for _, e := range f.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func ctx() context.Context { return context.Background() }

func defaultCareConfig() config.CareConfig {
	return config.CareConfig{
		DryThreshold:            30,
		WetThreshold:            70,
		TargetThreshold:         40,
		CriticalThreshold:       20,
		SafeSkipThreshold:       30,
		PreventiveSkipThreshold: 40,
		Rain3hSkipMm:            3.0,
		Rain6hSkipMm:            2.0,
		LuxHighThreshold:        50000,
		MinWateringInterval:     30 * time.Minute,
		MaxWateringDuration:     30 * time.Second,
		TickInterval:            10 * time.Second,
		StatusInterval:          30 * time.Minute,
		LuxCheckInterval:        60 * time.Second,
	}
}

func defaultSensorConfig() config.SensorConfig {
	return config.SensorConfig{
		SoilDryRaw:       1023,
		SoilWetRaw:       300,
		SoilPlausibleMin: 150,
		SoilPlausibleMax: 1023,
		RainThreshold:    500,
		RainDebounce:     50 * time.Millisecond,
		LuxPlausibleMax:  120000,
	}
}

// fixture wires an engine to fully simulated hardware. Soil moisture, rain
// and lux are set directly; everything else is observed through the sims.
type fixture struct {
	clock    *fakeClock
	soil     [models.PlantCount]*fakeSoil
	rainADC  *hal.SimADC
	lux      *hal.SimLuxSensor
	water    *hal.SimWaterSystem
	servo    *hal.SimServo
	shade    *hal.SteppedServo
	weather  *fakeWeather
	notifier *fakeNotifier
	events   *fakeEvents
	eng      *Engine
}

func newFixture(t *testing.T, cfg config.CareConfig) *fixture {
	t.Helper()

	f := &fixture{
		clock:    &fakeClock{},
		rainADC:  hal.NewSimADC(700), // dry pad
		lux:      hal.NewSimLuxSensor(10000),
		weather:  &fakeWeather{refreshOK: true},
		notifier: &fakeNotifier{},
		events:   &fakeEvents{},
	}
	for i := range f.soil {
		f.soil[i] = &fakeSoil{pct: 50}
	}
	f.water = hal.NewSimWaterSystem(f.clock)
	f.servo = hal.NewSimServo()
	f.shade = hal.NewSteppedServo(f.servo, 0, 90, 0)

	sensors := defaultSensorConfig()
	f.eng = New(cfg, sensors, 5*time.Minute, Deps{
		Clock:    f.clock,
		Soil:     [models.PlantCount]hal.SoilSensor{f.soil[0], f.soil[1]},
		Lux:      f.lux,
		Rain:     hal.NewThresholdRainSensor(f.rainADC, sensors.RainThreshold),
		Water:    f.water,
		Shade:    f.shade,
		Weather:  f.weather,
		Notifier: f.notifier,
		Events:   f.events,
		Log:      logger.Get(logger.ErrorLevel),
	})
	f.eng.bootstrap(context.Background())
	return f
}

// tick advances the simulated clock by one control period and runs a cycle.
func (f *fixture) tick() {
	f.clock.advance(10 * time.Second)
	f.eng.Tick(context.Background())
}

func TestTick_ReadsSensorsIntoState(t *testing.T) {
	f := newFixture(t, defaultCareConfig())
	f.soil[0].pct = 55
	f.soil[1].pct = 62
	f.rainADC.SetRaw(400) // wet pad
	f.lux.SetLux(22000)

	f.tick()

	snap := f.eng.Snapshot()
	if snap.Plants[0].MoisturePercent != 55 || snap.Plants[1].MoisturePercent != 62 {
		t.Fatalf("moisture not propagated: %+v", snap.Plants)
	}
	if !snap.Rain.Raining || snap.Rain.Raw != 400 {
		t.Fatalf("rain state wrong: %+v", snap.Rain)
	}
	if !snap.LuxAvailable || snap.Lux != 22000 {
		t.Fatalf("lux state wrong: available=%v lux=%v", snap.LuxAvailable, snap.Lux)
	}
	if snap.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", snap.Tick)
	}
}

func TestTick_WeatherRefreshPeriod(t *testing.T) {
	f := newFixture(t, defaultCareConfig())

	// bootstrap already fetched once
	if f.weather.refreshes != 1 {
		t.Fatalf("expected 1 bootstrap refresh, got %d", f.weather.refreshes)
	}

	// 5m refresh at a 10s tick means every 30th tick
	for i := 0; i < 29; i++ {
		f.tick()
	}
	if f.weather.refreshes != 1 {
		t.Fatalf("refresh fired early: %d", f.weather.refreshes)
	}
	f.tick()
	if f.weather.refreshes != 2 {
		t.Fatalf("expected refresh on tick 30, got %d", f.weather.refreshes)
	}
}

func TestSnapshot_ReflectsActuators(t *testing.T) {
	f := newFixture(t, defaultCareConfig())
	f.soil[0].pct = 25 // below target, dry pad, weather not usable

	f.tick()

	snap := f.eng.Snapshot()
	if !snap.Actuators.PumpRunning {
		t.Fatalf("expected pump running")
	}
	if !snap.Actuators.ValveOpen[0] || snap.Actuators.ValveOpen[1] {
		t.Fatalf("expected only valve 0 open: %+v", snap.Actuators.ValveOpen)
	}
	if !snap.Plants[0].Watering {
		t.Fatalf("expected plant 0 watering")
	}
}
