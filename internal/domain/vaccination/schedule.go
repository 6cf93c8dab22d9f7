package vaccination

import (
	"time"

	"github.com/google/uuid"

	"github.com/immunitrack/immunitrack/internal/domain/catalog"
)

// AdjustToFacilityDay moves a candidate date forward to the facility's next
// vaccination day. An empty day set means the facility vaccinates daily and
// the date is returned unchanged; so is a date already on an allowed
// weekday. Otherwise the next seven days are scanned and the first allowed
// weekday wins. The scan always covers a full week, so the fallback to the
// original date is unreachable for any non-empty day set; it exists so the
// function never returns a zero value. The result is always within
// [date, date+7d] and re-adjusting an adjusted date is a no-op.
func AdjustToFacilityDay(date time.Time, days []time.Weekday) time.Time {
	if len(days) == 0 {
		return date
	}

	allowed := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		allowed[d] = true
	}
	if allowed[date.Weekday()] {
		return date
	}

	for i := 1; i <= 7; i++ {
		candidate := date.AddDate(0, 0, i)
		if allowed[candidate.Weekday()] {
			return candidate
		}
	}
	return date
}

// GenerateSchedule produces one scheduled Vaccination per catalog dose for a
// newly registered child. Doses must already be in catalog order; each
// scheduled date is birth date plus the dose interval, adjusted to the
// facility calendar. The function is pure: persisting the batch is the
// caller's job.
func GenerateSchedule(childID uuid.UUID, birthDate time.Time, days []time.Weekday, doses []*catalog.VaccineDose) []*Vaccination {
	schedule := make([]*Vaccination, 0, len(doses))
	for _, dose := range doses {
		due := birthDate.AddDate(0, 0, dose.IntervalDays)
		schedule = append(schedule, &Vaccination{
			ID:            uuid.New(),
			ChildID:       childID,
			VaccineID:     dose.ID,
			VaccineName:   dose.Name,
			ScheduledDate: AdjustToFacilityDay(due, days),
			Status:        StatusScheduled,
		})
	}
	return schedule
}
