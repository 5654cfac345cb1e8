package weather

import (
	"context"

	"github.com/Cknrf/intelligent-plant-care-system/internal/hal"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

// Fetcher retrieves a fresh advisory from the upstream.
type Fetcher interface {
	Fetch(ctx context.Context) (models.WeatherAdvisory, error)
}

// Source caches the last known-valid advisory across refresh failures. The
// controller stays in offline mode only while no fetch has ever succeeded;
// once an advisory exists it is served until it goes stale, at which point
// the engine's freshness check (not this cache) discounts it.
type Source struct {
	client       Fetcher
	clock        hal.Clock
	log          *logger.Logger
	staleAfterMs uint32

	advisory  models.WeatherAdvisory
	everValid bool
}

func NewSource(client Fetcher, clock hal.Clock, staleAfterMs uint32, log *logger.Logger) *Source {
	return &Source{
		client:       client,
		clock:        clock,
		log:          log,
		staleAfterMs: staleAfterMs,
	}
}

// Refresh attempts a fetch and reports success. On failure the cached
// advisory is kept; the error is logged, never propagated into the control
// loop.
func (s *Source) Refresh(ctx context.Context) bool {
	adv, err := s.client.Fetch(ctx)
	if err != nil {
		if s.everValid {
			s.log.Warnw("weather refresh failed, keeping cached advisory",
				"err", err, "cached_age_ms", hal.ElapsedMs(s.clock.NowMs(), s.advisory.FetchedAtMs))
		} else {
			s.log.Warnw("weather refresh failed, operating offline", "err", err)
		}
		return false
	}
	s.advisory = adv
	s.everValid = true
	s.log.Infow("weather advisory updated",
		"description", adv.Description,
		"temp_c", adv.TemperatureC,
		"rain_3h_mm", adv.Rain3hMm,
		"rain_6h_mm", adv.Rain6hMm)
	return true
}

// Advisory returns the cached advisory (zero value while offline).
func (s *Source) Advisory() models.WeatherAdvisory {
	return s.advisory
}

// Offline reports whether no advisory has ever been valid.
func (s *Source) Offline() bool {
	return !s.everValid
}

// Usable reports whether the cached advisory may inform a watering decision:
// valid, not stale, and not offline.
func (s *Source) Usable(nowMs uint32) bool {
	if s.Offline() || !s.advisory.Valid {
		return false
	}
	return hal.ElapsedMs(nowMs, s.advisory.FetchedAtMs) <= s.staleAfterMs
}
