package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a vaccine dose does not exist.
	ErrNotFound = errors.New("vaccine dose not found")
	// ErrDuplicateDose is returned when a (name, dose_number) pair already
	// exists in the catalog.
	ErrDuplicateDose = errors.New("vaccine dose already exists")
)

type Repository interface {
	Create(ctx context.Context, v *VaccineDose) error
	GetByID(ctx context.Context, id uuid.UUID) (*VaccineDose, error)
	Update(ctx context.Context, v *VaccineDose) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListOrdered returns every dose sorted by Position ascending. The
	// schedule generator and the reporting engine both depend on this order.
	ListOrdered(ctx context.Context) ([]*VaccineDose, error)
}
