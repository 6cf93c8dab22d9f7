package vaccination

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GivenUpdate carries the fields recorded when a dose is administered. Only
// ActualDate is mandatory; everything else is optional detail.
type GivenUpdate struct {
	ActualDate     time.Time  `json:"actual_date"`
	BatchNumber    *string    `json:"batch_number,omitempty"`
	HealthWorkerID *uuid.UUID `json:"health_worker_id,omitempty"`
	GeoLat         *float64   `json:"geo_lat,omitempty"`
	GeoLong        *float64   `json:"geo_long,omitempty"`
}

// CreateSchedule persists a freshly generated schedule.
func (s *Service) CreateSchedule(ctx context.Context, records []*Vaccination) error {
	if len(records) == 0 {
		return nil
	}
	return s.repo.CreateBatch(ctx, records)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Vaccination, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByChild(ctx context.Context, childID uuid.UUID) ([]*Vaccination, error) {
	return s.repo.ListByChild(ctx, childID)
}

// RecordGiven moves a scheduled dose to given. The scheduled date and the
// rest of the record stay untouched apart from the fields in upd.
func (s *Service) RecordGiven(ctx context.Context, id uuid.UUID, upd GivenUpdate) (*Vaccination, error) {
	if upd.ActualDate.IsZero() {
		return nil, fmt.Errorf("actual_date is required")
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusScheduled {
		return nil, fmt.Errorf("cannot mark %s dose as given: %w", v.Status, ErrInvalidTransition)
	}

	actual := upd.ActualDate
	v.Status = StatusGiven
	v.ActualDate = &actual
	if upd.BatchNumber != nil {
		v.BatchNumber = upd.BatchNumber
	}
	if upd.HealthWorkerID != nil {
		v.HealthWorkerID = upd.HealthWorkerID
	}
	if upd.GeoLat != nil {
		v.GeoLat = upd.GeoLat
	}
	if upd.GeoLong != nil {
		v.GeoLong = upd.GeoLong
	}
	v.LastUpdated = time.Now().UTC()

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RecordMissed moves a scheduled dose to missed.
func (s *Service) RecordMissed(ctx context.Context, id uuid.UUID) (*Vaccination, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusScheduled {
		return nil, fmt.Errorf("cannot mark %s dose as missed: %w", v.Status, ErrInvalidTransition)
	}

	v.Status = StatusMissed
	v.LastUpdated = time.Now().UTC()

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListDue returns scheduled doses due on or before the given date.
func (s *Service) ListDue(ctx context.Context, before time.Time, limit, offset int) ([]*Vaccination, int, error) {
	return s.repo.ListDue(ctx, before, limit, offset)
}
