package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, v *VaccineDose) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.DoseNumber < 1 {
		return fmt.Errorf("dose_number must be at least 1")
	}
	if v.IntervalDays < 0 {
		return fmt.Errorf("interval_days must not be negative")
	}
	if v.Position < 0 {
		return fmt.Errorf("position must not be negative")
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*VaccineDose, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, v *VaccineDose) error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if v.DoseNumber < 1 {
		return fmt.Errorf("dose_number must be at least 1")
	}
	return s.repo.Update(ctx, v)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListOrdered returns the full catalog in schedule order.
func (s *Service) ListOrdered(ctx context.Context) ([]*VaccineDose, error) {
	return s.repo.ListOrdered(ctx)
}
