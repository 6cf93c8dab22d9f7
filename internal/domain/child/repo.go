package child

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a child does not exist.
	ErrNotFound = errors.New("child not found")
	// ErrDuplicateUID is returned when an insert collides with an existing
	// registry number. Registration retries get a fresh counter value.
	ErrDuplicateUID = errors.New("registration number already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Child) error
	GetByID(ctx context.Context, id uuid.UUID) (*Child, error)
	GetByUID(ctx context.Context, uid string) (*Child, error)
	List(ctx context.Context, limit, offset int) ([]*Child, int, error)
	ListByFacility(ctx context.Context, facilityID uuid.UUID, limit, offset int) ([]*Child, int, error)
	Update(ctx context.Context, c *Child) error
	// Delete removes the child; the schema cascades to the vaccination rows.
	Delete(ctx context.Context, id uuid.UUID) error
}
