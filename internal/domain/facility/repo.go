package facility

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a facility does not exist.
var ErrNotFound = errors.New("facility not found")

type Repository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*Facility, error)
	GetByCode(ctx context.Context, code string) (*Facility, error)
	List(ctx context.Context, limit, offset int) ([]*Facility, int, error)

	AddVaccinationDay(ctx context.Context, facilityID uuid.UUID, day time.Weekday) error
	ListVaccinationDays(ctx context.Context, facilityID uuid.UUID) ([]time.Weekday, error)

	// NextRegistrationNumber atomically increments the facility's counter and
	// returns the new value. Implementations must do the increment in a single
	// statement so concurrent registrations never observe the same number.
	NextRegistrationNumber(ctx context.Context, facilityID uuid.UUID) (int, error)
}
