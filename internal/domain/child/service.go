package child

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/immunitrack/immunitrack/internal/domain/catalog"
	"github.com/immunitrack/immunitrack/internal/domain/facility"
	"github.com/immunitrack/immunitrack/internal/domain/vaccination"
)

// TxRunner executes fn inside a database transaction, making the transaction
// visible to repositories through the context. Wired to db.RunInTx in the
// server; tests substitute their own.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo         Repository
	facilities   facility.Repository
	doses        catalog.Repository
	vaccinations vaccination.Repository
	runInTx      TxRunner
}

func NewService(repo Repository, facilities facility.Repository, doses catalog.Repository, vaccinations vaccination.Repository, runInTx TxRunner) *Service {
	return &Service{
		repo:         repo,
		facilities:   facilities,
		doses:        doses,
		vaccinations: vaccinations,
		runInTx:      runInTx,
	}
}

func validSex(s string) bool {
	return s == "male" || s == "female"
}

// Register creates the child and its full vaccination schedule in one
// transaction: advance the facility counter, mint the registry number,
// insert the child, then batch-insert one scheduled dose per catalog entry
// with dates adjusted to the facility calendar. Any failure rolls the whole
// thing back, including the counter increment.
func (s *Service) Register(ctx context.Context, c *Child) error {
	if c.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if !validSex(c.Sex) {
		return fmt.Errorf("sex must be male or female")
	}
	if c.DateOfBirth.IsZero() {
		return fmt.Errorf("date_of_birth is required")
	}
	if c.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date_of_birth cannot be in the future")
	}
	if c.FacilityID == uuid.Nil {
		return fmt.Errorf("facility_id is required")
	}

	return s.runInTx(ctx, func(ctx context.Context) error {
		fac, err := s.facilities.GetByID(ctx, c.FacilityID)
		if err != nil {
			return err
		}

		counter, err := s.facilities.NextRegistrationNumber(ctx, c.FacilityID)
		if err != nil {
			return err
		}
		c.UID = MintUID(fac.State, fac.LGA, fac.Code, counter)

		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}

		days, err := s.facilities.ListVaccinationDays(ctx, c.FacilityID)
		if err != nil {
			return err
		}
		doses, err := s.doses.ListOrdered(ctx)
		if err != nil {
			return err
		}

		schedule := vaccination.GenerateSchedule(c.ID, c.DateOfBirth, days, doses)
		return s.vaccinations.CreateBatch(ctx, schedule)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Child, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUID(ctx context.Context, uid string) (*Child, error) {
	return s.repo.GetByUID(ctx, uid)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Child, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Child, int, error) {
	return s.repo.ListByFacility(ctx, facilityID, limit, offset)
}

// Update changes caregiver details only. Identity fields (name, sex, birth
// date, facility) are fixed at registration.
func (s *Service) Update(ctx context.Context, c *Child) error {
	if c.CaregiverName == "" && c.CaregiverContact == "" && c.CaregiverAddress == "" {
		return fmt.Errorf("nothing to update")
	}
	existing, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if c.CaregiverName == "" {
		c.CaregiverName = existing.CaregiverName
	}
	if c.CaregiverContact == "" {
		c.CaregiverContact = existing.CaregiverContact
	}
	if c.CaregiverAddress == "" {
		c.CaregiverAddress = existing.CaregiverAddress
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
