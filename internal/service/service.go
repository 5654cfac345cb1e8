package service

import (
	"context"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
	"github.com/Cknrf/intelligent-plant-care-system/internal/repository"
)

// StatusSource provides the live control-state snapshot. Implemented by the
// engine.
type StatusSource interface {
	Snapshot() models.SystemSnapshot
}

// Monitoring exposes the read-only system snapshot.
type Monitoring interface {
	Status(ctx context.Context) (models.SystemSnapshot, error)
}

// EventLog exposes the journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CareEvent, error)
}

// LogFilter selects journal entries by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "" or one of the models.Event* constants
}

// Service aggregates the read services behind the HTTP surface.
type Service struct {
	Monitoring
	EventLog
}

func NewService(status StatusSource, repos *repository.Repository) *Service {
	return &Service{
		Monitoring: NewMonitoringService(status),
		EventLog:   NewEventLogService(repos.EventRepo),
	}
}
