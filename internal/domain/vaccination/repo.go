package vaccination

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a vaccination record does not exist.
	ErrNotFound = errors.New("vaccination not found")
	// ErrDuplicateSchedule is returned when a batch insert collides with an
	// existing (child, vaccine) row, i.e. the child already has a schedule.
	ErrDuplicateSchedule = errors.New("schedule already exists for child")
	// ErrInvalidTransition is returned on any ledger move other than
	// scheduled->given or scheduled->missed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	// CreateBatch inserts a child's full schedule. All-or-nothing: callers run
	// it inside the registration transaction.
	CreateBatch(ctx context.Context, records []*Vaccination) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vaccination, error)
	Update(ctx context.Context, v *Vaccination) error
	ListByChild(ctx context.Context, childID uuid.UUID) ([]*Vaccination, error)
	ListDue(ctx context.Context, before time.Time, limit, offset int) ([]*Vaccination, int, error)
	ListByStatus(ctx context.Context, status Status) ([]*Vaccination, error)
}
