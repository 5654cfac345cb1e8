package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/engine"
	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/handlers"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/notify"
	"github.com/Cknrf/intelligent-plant-care-system/internal/repository"
	"github.com/Cknrf/intelligent-plant-care-system/internal/repository/db"
	"github.com/Cknrf/intelligent-plant-care-system/internal/server"
	"github.com/Cknrf/intelligent-plant-care-system/internal/service"
	"github.com/Cknrf/intelligent-plant-care-system/internal/weather"
)

func main() {
	// load config.yml first; the log level comes from it
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get("info").Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// open the event journal
	database, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(database)
	clock := hal.NewClock()
	eng := buildEngine(cfg, clock, repos, log)
	services := service.NewService(eng, repos)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the control loop
	go eng.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// buildEngine constructs the hardware layer and the control engine. The
// binary ships with simulated hardware; a real deployment swaps in drivers
// that satisfy the same interfaces.
func buildEngine(cfg *config.Config, clock hal.Clock, repos *repository.Repository, log *logger.Logger) *engine.Engine {
	cal := hal.SoilCalibration{
		DryRaw:       cfg.Sensors.SoilDryRaw,
		WetRaw:       cfg.Sensors.SoilWetRaw,
		PlausibleMin: cfg.Sensors.SoilPlausibleMin,
		PlausibleMax: cfg.Sensors.SoilPlausibleMax,
	}

	var soil [models.PlantCount]hal.SoilSensor
	for i := range soil {
		soil[i] = hal.NewCalibratedSoilSensor(hal.NewSimADC(cal.WetRaw), cal)
	}

	rainADC := hal.NewSimADC(cfg.Sensors.RainThreshold + 1) // dry at boot
	deps := engine.Deps{
		Clock: clock,
		Soil:  soil,
		Lux:   hal.NewSimLuxSensor(10000),
		Rain:  hal.NewThresholdRainSensor(rainADC, cfg.Sensors.RainThreshold),
		Water: hal.NewSimWaterSystem(clock),
		Shade: hal.NewSteppedServo(hal.NewSimServo(),
			cfg.Shade.RetractedAngle, cfg.Shade.DeployedAngle, cfg.Shade.StepDelay),
		Weather: weather.NewSource(
			weather.NewClient(cfg.Weather, clock),
			clock,
			uint32(cfg.Weather.StaleAfter.Milliseconds()),
			log,
		),
		Notifier: notify.NewDiscord(cfg.Notify, log),
		Events:   repos.EventRepo,
		Log:      log,
	}
	return engine.New(cfg.Care, cfg.Sensors, cfg.Weather.RefreshInterval, deps)
}

// openDB initializes the SQLite journal using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DBPath
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "plantcare.db")
		path = "plantcare.db"
	}
	return db.InitDB(path)
}

// runHTTPServer runs the monitoring server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop the control loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
