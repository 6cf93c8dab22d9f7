package reports

import (
	"errors"

	"github.com/immunitrack/immunitrack/internal/domain/child"
)

var (
	// ErrSeriesNotFound is returned when no catalog dose matches the series.
	ErrSeriesNotFound = errors.New("vaccine series not found")
	// ErrInvalidSeries is returned when a dropout rate is requested for a
	// series with fewer than two doses.
	ErrInvalidSeries = errors.New("series has fewer than two doses")
)

// ComplianceReport summarizes how many administered doses were given on or
// before their scheduled date.
type ComplianceReport struct {
	TotalGiven int     `json:"total_given"`
	OnTime     int     `json:"on_time"`
	Rate       float64 `json:"rate"`
}

// DefaulterEntry is a child with at least one missed dose.
type DefaulterEntry struct {
	Child       *child.Child `json:"child"`
	MissedCount int          `json:"missed_count"`
}

// DropoutReport measures attrition across a multi-dose series: of the
// children who received the first dose, how many never received the last.
type DropoutReport struct {
	Series    string  `json:"series"`
	FirstDose string  `json:"first_dose"`
	LastDose  string  `json:"last_dose"`
	Started   int     `json:"started"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}
