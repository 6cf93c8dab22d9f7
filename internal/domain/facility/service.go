package facility

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

func (s *Service) Create(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.Code == "" {
		return fmt.Errorf("code is required")
	}
	// State and LGA feed the registration number prefix, which takes two
	// characters from each.
	if len(f.State) < 2 {
		return fmt.Errorf("state must be at least 2 characters")
	}
	if len(f.LGA) < 2 {
		return fmt.Errorf("lga must be at least 2 characters")
	}
	return s.repo.Create(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) AddVaccinationDay(ctx context.Context, facilityID uuid.UUID, day time.Weekday) error {
	if day < time.Sunday || day > time.Saturday {
		return fmt.Errorf("day_of_week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if _, err := s.repo.GetByID(ctx, facilityID); err != nil {
		return err
	}
	return s.repo.AddVaccinationDay(ctx, facilityID, day)
}

func (s *Service) ListVaccinationDays(ctx context.Context, facilityID uuid.UUID) ([]time.Weekday, error) {
	if _, err := s.repo.GetByID(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.repo.ListVaccinationDays(ctx, facilityID)
}

// NextRegistrationNumber advances the facility counter. Callers registering a
// child run this inside the registration transaction.
func (s *Service) NextRegistrationNumber(ctx context.Context, facilityID uuid.UUID) (int, error) {
	return s.repo.NextRegistrationNumber(ctx, facilityID)
}
