package service

import (
	"context"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

type MonitoringService struct {
	source StatusSource
}

func NewMonitoringService(source StatusSource) *MonitoringService {
	return &MonitoringService{source: source}
}

// Status returns the engine's current snapshot. Before the first tick the
// snapshot carries a zero UpdatedAt; normalize it so clients always see a
// timestamp.
func (s *MonitoringService) Status(_ context.Context) (models.SystemSnapshot, error) {
	snap := s.source.Snapshot()
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	} else {
		snap.UpdatedAt = snap.UpdatedAt.UTC()
	}
	return snap, nil
}
