package vaccination

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/immunitrack/immunitrack/internal/domain/catalog"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdjustToFacilityDay_EmptyCalendar(t *testing.T) {
	d := date(2026, 3, 4) // a Wednesday
	if got := AdjustToFacilityDay(d, nil); !got.Equal(d) {
		t.Errorf("expected unchanged date, got %v", got)
	}
}

func TestAdjustToFacilityDay_AlreadyAllowed(t *testing.T) {
	d := date(2026, 3, 4) // Wednesday
	got := AdjustToFacilityDay(d, []time.Weekday{time.Monday, time.Wednesday})
	if !got.Equal(d) {
		t.Errorf("expected unchanged date, got %v", got)
	}
}

func TestAdjustToFacilityDay_MovesForward(t *testing.T) {
	d := date(2026, 3, 4) // Wednesday
	got := AdjustToFacilityDay(d, []time.Weekday{time.Friday})
	want := date(2026, 3, 6)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAdjustToFacilityDay_WrapsWeek(t *testing.T) {
	d := date(2026, 3, 4) // Wednesday; only Tuesday allowed
	got := AdjustToFacilityDay(d, []time.Weekday{time.Tuesday})
	want := date(2026, 3, 10)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAdjustToFacilityDay_WithinBound(t *testing.T) {
	days := []time.Weekday{time.Thursday}
	for i := 0; i < 14; i++ {
		d := date(2026, 1, 1).AddDate(0, 0, i)
		got := AdjustToFacilityDay(d, days)
		diff := got.Sub(d).Hours() / 24
		if diff < 0 || diff > 7 {
			t.Errorf("adjusted date %v is %v days from %v, outside [0,7]", got, diff, d)
		}
		if got.Weekday() != time.Thursday {
			t.Errorf("adjusted date %v is not a Thursday", got)
		}
	}
}

func TestAdjustToFacilityDay_Idempotent(t *testing.T) {
	days := []time.Weekday{time.Monday, time.Thursday}
	d := date(2026, 3, 4)
	once := AdjustToFacilityDay(d, days)
	twice := AdjustToFacilityDay(once, days)
	if !once.Equal(twice) {
		t.Errorf("not idempotent: %v vs %v", once, twice)
	}
}

func testCatalog() []*catalog.VaccineDose {
	return []*catalog.VaccineDose{
		{ID: uuid.New(), Name: "BCG", DoseNumber: 1, IntervalDays: 0, Position: 0},
		{ID: uuid.New(), Name: "OPV 0", DoseNumber: 1, IntervalDays: 0, Position: 1},
		{ID: uuid.New(), Name: "Penta 1", DoseNumber: 1, IntervalDays: 42, Position: 2},
		{ID: uuid.New(), Name: "Penta 2", DoseNumber: 2, IntervalDays: 70, Position: 3},
		{ID: uuid.New(), Name: "Penta 3", DoseNumber: 3, IntervalDays: 98, Position: 4},
		{ID: uuid.New(), Name: "Measles 1", DoseNumber: 1, IntervalDays: 270, Position: 5},
	}
}

func TestGenerateSchedule_OneRecordPerDose(t *testing.T) {
	childID := uuid.New()
	doses := testCatalog()
	schedule := GenerateSchedule(childID, date(2026, 1, 5), nil, doses)

	if len(schedule) != len(doses) {
		t.Fatalf("expected %d records, got %d", len(doses), len(schedule))
	}
	seen := make(map[uuid.UUID]bool)
	for i, v := range schedule {
		if v.ChildID != childID {
			t.Errorf("record %d has wrong child", i)
		}
		if v.Status != StatusScheduled {
			t.Errorf("record %d has status %s, want scheduled", i, v.Status)
		}
		if v.VaccineID != doses[i].ID {
			t.Errorf("record %d out of catalog order", i)
		}
		if seen[v.VaccineID] {
			t.Errorf("record %d duplicates vaccine %s", i, v.VaccineName)
		}
		seen[v.VaccineID] = true
	}
}

func TestGenerateSchedule_IntervalsFromBirthDate(t *testing.T) {
	birth := date(2026, 1, 5) // Monday
	schedule := GenerateSchedule(uuid.New(), birth, nil, testCatalog())

	if !schedule[0].ScheduledDate.Equal(birth) {
		t.Errorf("BCG should fall on birth date, got %v", schedule[0].ScheduledDate)
	}
	wantPenta1 := birth.AddDate(0, 0, 42)
	if !schedule[2].ScheduledDate.Equal(wantPenta1) {
		t.Errorf("Penta 1 expected %v, got %v", wantPenta1, schedule[2].ScheduledDate)
	}
}

func TestGenerateSchedule_AdjustsToCalendar(t *testing.T) {
	birth := date(2026, 1, 5) // Monday
	days := []time.Weekday{time.Wednesday}
	schedule := GenerateSchedule(uuid.New(), birth, days, testCatalog())

	for _, v := range schedule {
		if v.ScheduledDate.Weekday() != time.Wednesday {
			t.Errorf("%s scheduled on %v, want Wednesday", v.VaccineName, v.ScheduledDate.Weekday())
		}
	}
	// BCG due on the Monday birth date moves to Wednesday the same week.
	want := date(2026, 1, 7)
	if !schedule[0].ScheduledDate.Equal(want) {
		t.Errorf("BCG expected %v, got %v", want, schedule[0].ScheduledDate)
	}
}

func TestGenerateSchedule_EmptyCatalog(t *testing.T) {
	schedule := GenerateSchedule(uuid.New(), date(2026, 1, 5), nil, nil)
	if len(schedule) != 0 {
		t.Errorf("expected empty schedule, got %d records", len(schedule))
	}
}
