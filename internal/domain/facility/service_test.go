package facility

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	facilities map[uuid.UUID]*Facility
	days       map[uuid.UUID][]time.Weekday
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		facilities: make(map[uuid.UUID]*Facility),
		days:       make(map[uuid.UUID][]time.Weekday),
	}
}

func (m *mockRepo) Create(_ context.Context, f *Facility) error {
	f.ID = uuid.New()
	m.facilities[f.ID] = f
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Facility, error) {
	f, ok := m.facilities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Facility, error) {
	for _, f := range m.facilities {
		if f.Code == code {
			return f, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Facility, int, error) {
	var items []*Facility
	for _, f := range m.facilities {
		items = append(items, f)
	}
	return items, len(items), nil
}

func (m *mockRepo) AddVaccinationDay(_ context.Context, id uuid.UUID, day time.Weekday) error {
	for _, d := range m.days[id] {
		if d == day {
			return nil
		}
	}
	m.days[id] = append(m.days[id], day)
	return nil
}

func (m *mockRepo) ListVaccinationDays(_ context.Context, id uuid.UUID) ([]time.Weekday, error) {
	return m.days[id], nil
}

func (m *mockRepo) NextRegistrationNumber(_ context.Context, id uuid.UUID) (int, error) {
	f, ok := m.facilities[id]
	if !ok {
		return 0, ErrNotFound
	}
	f.RegCounter++
	return f.RegCounter, nil
}

func testFacility() *Facility {
	return &Facility{Name: "Garki PHC", Code: "01", Ward: "Garki", LGA: "AMAC", State: "FCT"}
}

func TestCreate_Valid(t *testing.T) {
	svc := NewService(newMockRepo())
	f := testFacility()
	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID == uuid.Nil {
		t.Error("expected ID assigned")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	cases := []struct {
		name   string
		mutate func(*Facility)
	}{
		{"missing name", func(f *Facility) { f.Name = "" }},
		{"missing code", func(f *Facility) { f.Code = "" }},
		{"short state", func(f *Facility) { f.State = "F" }},
		{"short lga", func(f *Facility) { f.LGA = "A" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := testFacility()
			tc.mutate(f)
			if err := svc.Create(context.Background(), f); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAddVaccinationDay_InvalidDay(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	f := testFacility()
	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AddVaccinationDay(context.Background(), f.ID, time.Weekday(7)); err == nil {
		t.Error("expected error for day 7")
	}
	if err := svc.AddVaccinationDay(context.Background(), f.ID, time.Weekday(-1)); err == nil {
		t.Error("expected error for day -1")
	}
}

func TestAddVaccinationDay_UnknownFacility(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.AddVaccinationDay(context.Background(), uuid.New(), time.Monday); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNextRegistrationNumber_Monotonic(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	f := testFacility()
	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("create: %v", err)
	}

	for want := 1; want <= 5; want++ {
		n, err := svc.NextRegistrationNumber(context.Background(), f.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != want {
			t.Errorf("expected counter %d, got %d", want, n)
		}
	}
}

func TestListVaccinationDays_EmptyCalendar(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	f := testFacility()
	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("create: %v", err)
	}

	days, err := svc.ListVaccinationDays(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected empty calendar, got %v", days)
	}
}
