package catalog

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// VaccineDose maps to the vaccine_master table. One row per dose of a
// vaccine: "Penta 1" and "Penta 2" are separate rows sharing a series
// prefix. Position is the global total order used when generating a child's
// schedule and when picking the first/last dose of a series.
type VaccineDose struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	DoseNumber   int       `db:"dose_number" json:"dose_number"`
	IntervalDays int       `db:"interval_days" json:"interval_days"`
	Position     int       `db:"position" json:"position"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SeriesPrefix returns the vaccine name with any trailing dose digits and
// surrounding whitespace stripped: "Penta 3" -> "Penta", "OPV0" -> "OPV".
// A name that is all digits is returned unchanged.
func SeriesPrefix(name string) string {
	trimmed := strings.TrimRightFunc(name, func(r rune) bool {
		return unicode.IsDigit(r)
	})
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return strings.TrimSpace(name)
	}
	return trimmed
}

// MatchesSeries reports whether the dose belongs to the named series using a
// case-insensitive substring match on the dose name.
func (v *VaccineDose) MatchesSeries(series string) bool {
	return strings.Contains(strings.ToLower(v.Name), strings.ToLower(series))
}
