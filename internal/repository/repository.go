package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

// EventRepo is the append-only care-event journal. Control state itself is
// volatile and never persisted; the journal only serves the monitoring API
// and post-hoc inspection.
type EventRepo interface {
	Append(ctx context.Context, e models.CareEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CareEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
