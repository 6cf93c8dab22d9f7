package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility maps to the facility table. Code is the short facility code baked
// into child registration numbers; RegCounter is the per-facility counter
// those numbers are minted from and is only ever advanced atomically in the
// database.
type Facility struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Code       string    `db:"code" json:"code"`
	Ward       string    `db:"ward" json:"ward"`
	LGA        string    `db:"lga" json:"lga"`
	State      string    `db:"state" json:"state"`
	RegCounter int       `db:"reg_counter" json:"reg_counter"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// VaccinationDay maps to the facility_vaccination_day table. A facility with
// no rows runs vaccinations every day.
type VaccinationDay struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	FacilityID uuid.UUID    `db:"facility_id" json:"facility_id"`
	DayOfWeek  time.Weekday `db:"day_of_week" json:"day_of_week"`
}
