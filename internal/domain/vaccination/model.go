package vaccination

import (
	"time"

	"github.com/google/uuid"
)

// Status is the ledger state of a scheduled dose.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusGiven     Status = "given"
	StatusMissed    Status = "missed"
)

// Vaccination maps to the vaccination table: one row per (child, dose),
// created up-front at registration and moved through the ledger states as
// the child attends or misses sessions. ScheduledDate is fixed at
// registration and never changes afterwards.
type Vaccination struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ChildID        uuid.UUID  `db:"child_id" json:"child_id"`
	VaccineID      uuid.UUID  `db:"vaccine_id" json:"vaccine_id"`
	VaccineName    string     `db:"-" json:"vaccine_name,omitempty"`
	ScheduledDate  time.Time  `db:"scheduled_date" json:"scheduled_date"`
	ActualDate     *time.Time `db:"actual_date" json:"actual_date,omitempty"`
	Status         Status     `db:"status" json:"status"`
	BatchNumber    *string    `db:"batch_number" json:"batch_number,omitempty"`
	HealthWorkerID *uuid.UUID `db:"health_worker_id" json:"health_worker_id,omitempty"`
	GeoLat         *float64   `db:"geo_lat" json:"geo_lat,omitempty"`
	GeoLong        *float64   `db:"geo_long" json:"geo_long,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	LastUpdated    time.Time  `db:"last_updated" json:"last_updated"`
}

// OnTime reports whether a given dose was administered on or before its
// scheduled date. Only meaningful for given records with an actual date.
func (v *Vaccination) OnTime() bool {
	if v.Status != StatusGiven || v.ActualDate == nil {
		return false
	}
	return !v.ActualDate.After(v.ScheduledDate)
}
