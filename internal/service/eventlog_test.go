package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/models"
)

type fakeEventRepo struct {
	events  []models.CareEvent
	listErr error

	gotFrom time.Time
	gotTo   time.Time
	gotType string
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.CareEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.CareEvent, error) {
	f.gotFrom, f.gotTo, f.gotType = from, to, typ
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func TestEventLog_List_NormalizesFilter(t *testing.T) {
	repo := &fakeEventRepo{}
	s := NewEventLogService(repo)

	loc := time.FixedZone("UTC+5", 5*3600)
	from := time.Date(2026, 5, 1, 15, 0, 0, 0, loc)
	to := time.Date(2026, 5, 1, 18, 0, 0, 0, loc)

	if _, err := s.List(context.Background(), LogFilter{From: from, To: to, Type: " watering_done "}); err != nil {
		t.Fatalf("List: %v", err)
	}

	if repo.gotFrom != from.UTC() || repo.gotTo != to.UTC() {
		t.Fatalf("times not normalized to UTC: %v / %v", repo.gotFrom, repo.gotTo)
	}
	if repo.gotType != "WATERING_DONE" {
		t.Fatalf("type not normalized: %q", repo.gotType)
	}
}

func TestEventLog_List_ZeroTimesPassThrough(t *testing.T) {
	repo := &fakeEventRepo{}
	s := NewEventLogService(repo)

	if _, err := s.List(context.Background(), LogFilter{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !repo.gotFrom.IsZero() || !repo.gotTo.IsZero() || repo.gotType != "" {
		t.Fatalf("zero filter must pass through unchanged")
	}
}

func TestEventLog_List_RejectsInvertedRange(t *testing.T) {
	s := NewEventLogService(&fakeEventRepo{})

	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	if _, err := s.List(context.Background(), LogFilter{From: from, To: to}); !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange, got %v", err)
	}
}

func TestEventLog_List_PropagatesRepoError(t *testing.T) {
	repo := &fakeEventRepo{listErr: errors.New("db down")}
	s := NewEventLogService(repo)

	if _, err := s.List(context.Background(), LogFilter{}); err == nil {
		t.Fatalf("expected repo error")
	}
}
