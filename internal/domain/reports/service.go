package reports

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/immunitrack/immunitrack/internal/domain/catalog"
	"github.com/immunitrack/immunitrack/internal/domain/child"
	"github.com/immunitrack/immunitrack/internal/domain/vaccination"
)

// Service computes program indicators from the ledger. All operations are
// read-only.
type Service struct {
	vaccinations vaccination.Repository
	doses        catalog.Repository
	children     child.Repository
}

func NewService(vaccinations vaccination.Repository, doses catalog.Repository, children child.Repository) *Service {
	return &Service{vaccinations: vaccinations, doses: doses, children: children}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ComplianceRate reports the percentage of given doses administered on or
// before their scheduled date. No given doses means 0, not an error.
func (s *Service) ComplianceRate(ctx context.Context) (*ComplianceReport, error) {
	given, err := s.vaccinations.ListByStatus(ctx, vaccination.StatusGiven)
	if err != nil {
		return nil, err
	}

	report := &ComplianceReport{TotalGiven: len(given)}
	for _, v := range given {
		if v.OnTime() {
			report.OnTime++
		}
	}
	if report.TotalGiven > 0 {
		report.Rate = round2(float64(report.OnTime) / float64(report.TotalGiven) * 100)
	}
	return report, nil
}

// Defaulters returns the distinct children with at least one missed dose. A
// child with several missed doses appears once, with the count.
func (s *Service) Defaulters(ctx context.Context) ([]*DefaulterEntry, error) {
	missed, err := s.vaccinations.ListByStatus(ctx, vaccination.StatusMissed)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int)
	for _, v := range missed {
		counts[v.ChildID]++
	}

	entries := make([]*DefaulterEntry, 0, len(counts))
	for childID, n := range counts {
		c, err := s.children.GetByID(ctx, childID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &DefaulterEntry{Child: c, MissedCount: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Child.UID < entries[j].Child.UID
	})
	return entries, nil
}

// DropoutRate computes attrition for one series, matched case-insensitively
// against dose names. The first and last doses are the matching doses with
// the lowest and highest catalog position. Nobody started means 0 dropout.
func (s *Service) DropoutRate(ctx context.Context, series string) (*DropoutReport, error) {
	doses, err := s.doses.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*catalog.VaccineDose
	for _, d := range doses {
		if d.MatchesSeries(series) {
			matched = append(matched, d)
		}
	}
	if len(matched) == 0 {
		return nil, ErrSeriesNotFound
	}
	if len(matched) < 2 {
		return nil, ErrInvalidSeries
	}

	return s.dropoutFor(ctx, series, matched)
}

// AllDropoutRates partitions the catalog into series by trailing-digit
// prefix and computes dropout for every series with at least two doses.
func (s *Service) AllDropoutRates(ctx context.Context) ([]*DropoutReport, error) {
	doses, err := s.doses.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	byPrefix := make(map[string][]*catalog.VaccineDose)
	var order []string
	for _, d := range doses {
		prefix := catalog.SeriesPrefix(d.Name)
		if _, seen := byPrefix[prefix]; !seen {
			order = append(order, prefix)
		}
		byPrefix[prefix] = append(byPrefix[prefix], d)
	}

	var out []*DropoutReport
	for _, prefix := range order {
		group := byPrefix[prefix]
		if len(group) < 2 {
			continue
		}
		report, err := s.dropoutFor(ctx, prefix, group)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

// dropoutFor computes the rate given an ordered group of doses. Doses come
// from ListOrdered, so the first element is the series opener and the last
// the closer.
func (s *Service) dropoutFor(ctx context.Context, series string, group []*catalog.VaccineDose) (*DropoutReport, error) {
	first := group[0]
	last := group[len(group)-1]

	given, err := s.vaccinations.ListByStatus(ctx, vaccination.StatusGiven)
	if err != nil {
		return nil, err
	}

	var started, completed int
	for _, v := range given {
		switch v.VaccineID {
		case first.ID:
			started++
		case last.ID:
			completed++
		}
	}

	report := &DropoutReport{
		Series:    series,
		FirstDose: first.Name,
		LastDose:  last.Name,
		Started:   started,
		Completed: completed,
	}
	if started > 0 {
		report.Rate = round2(float64(started-completed) / float64(started) * 100)
	}
	return report, nil
}
