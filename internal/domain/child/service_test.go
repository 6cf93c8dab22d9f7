package child

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/immunitrack/immunitrack/internal/domain/catalog"
	"github.com/immunitrack/immunitrack/internal/domain/facility"
	"github.com/immunitrack/immunitrack/internal/domain/vaccination"
)

// testStore backs all the mock repositories so the transaction runner can
// snapshot and restore the whole state, mimicking a rollback.
type testStore struct {
	children     map[uuid.UUID]*Child
	childByUID   map[string]uuid.UUID
	facilities   map[uuid.UUID]*facility.Facility
	days         map[uuid.UUID][]time.Weekday
	doses        []*catalog.VaccineDose
	vaccinations map[uuid.UUID]*vaccination.Vaccination
	failBatch    bool
}

func newTestStore() *testStore {
	return &testStore{
		children:     make(map[uuid.UUID]*Child),
		childByUID:   make(map[string]uuid.UUID),
		facilities:   make(map[uuid.UUID]*facility.Facility),
		days:         make(map[uuid.UUID][]time.Weekday),
		vaccinations: make(map[uuid.UUID]*vaccination.Vaccination),
	}
}

func (s *testStore) snapshot() *testStore {
	snap := newTestStore()
	for k, v := range s.children {
		c := *v
		snap.children[k] = &c
	}
	for k, v := range s.childByUID {
		snap.childByUID[k] = v
	}
	for k, v := range s.facilities {
		f := *v
		snap.facilities[k] = &f
	}
	for k, v := range s.days {
		snap.days[k] = append([]time.Weekday(nil), v...)
	}
	for k, v := range s.vaccinations {
		rec := *v
		snap.vaccinations[k] = &rec
	}
	return snap
}

func (s *testStore) restore(snap *testStore) {
	s.children = snap.children
	s.childByUID = snap.childByUID
	s.facilities = snap.facilities
	s.days = snap.days
	s.vaccinations = snap.vaccinations
}

// runner emulates db.RunInTx: on error, state reverts.
func (s *testStore) runner(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// -- child repository --

type childRepo struct{ s *testStore }

func (r *childRepo) Create(_ context.Context, c *Child) error {
	if _, ok := r.s.childByUID[c.UID]; ok {
		return ErrDuplicateUID
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.children[c.ID] = c
	r.s.childByUID[c.UID] = c.ID
	return nil
}

func (r *childRepo) GetByID(_ context.Context, id uuid.UUID) (*Child, error) {
	c, ok := r.s.children[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *childRepo) GetByUID(_ context.Context, uid string) (*Child, error) {
	id, ok := r.s.childByUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return r.s.children[id], nil
}

func (r *childRepo) List(_ context.Context, limit, offset int) ([]*Child, int, error) {
	var items []*Child
	for _, c := range r.s.children {
		items = append(items, c)
	}
	return items, len(items), nil
}

func (r *childRepo) ListByFacility(_ context.Context, fid uuid.UUID, limit, offset int) ([]*Child, int, error) {
	var items []*Child
	for _, c := range r.s.children {
		if c.FacilityID == fid {
			items = append(items, c)
		}
	}
	return items, len(items), nil
}

func (r *childRepo) Update(_ context.Context, c *Child) error {
	stored, ok := r.s.children[c.ID]
	if !ok {
		return ErrNotFound
	}
	stored.CaregiverName = c.CaregiverName
	stored.CaregiverContact = c.CaregiverContact
	stored.CaregiverAddress = c.CaregiverAddress
	return nil
}

func (r *childRepo) Delete(_ context.Context, id uuid.UUID) error {
	c, ok := r.s.children[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.s.childByUID, c.UID)
	delete(r.s.children, id)
	for vid, v := range r.s.vaccinations {
		if v.ChildID == id {
			delete(r.s.vaccinations, vid)
		}
	}
	return nil
}

// -- facility repository --

type facilityRepo struct{ s *testStore }

func (r *facilityRepo) Create(_ context.Context, f *facility.Facility) error {
	f.ID = uuid.New()
	r.s.facilities[f.ID] = f
	return nil
}

func (r *facilityRepo) GetByID(_ context.Context, id uuid.UUID) (*facility.Facility, error) {
	f, ok := r.s.facilities[id]
	if !ok {
		return nil, facility.ErrNotFound
	}
	return f, nil
}

func (r *facilityRepo) GetByCode(_ context.Context, code string) (*facility.Facility, error) {
	for _, f := range r.s.facilities {
		if f.Code == code {
			return f, nil
		}
	}
	return nil, facility.ErrNotFound
}

func (r *facilityRepo) List(_ context.Context, limit, offset int) ([]*facility.Facility, int, error) {
	return nil, 0, nil
}

func (r *facilityRepo) AddVaccinationDay(_ context.Context, id uuid.UUID, day time.Weekday) error {
	r.s.days[id] = append(r.s.days[id], day)
	return nil
}

func (r *facilityRepo) ListVaccinationDays(_ context.Context, id uuid.UUID) ([]time.Weekday, error) {
	return r.s.days[id], nil
}

func (r *facilityRepo) NextRegistrationNumber(_ context.Context, id uuid.UUID) (int, error) {
	f, ok := r.s.facilities[id]
	if !ok {
		return 0, facility.ErrNotFound
	}
	f.RegCounter++
	return f.RegCounter, nil
}

// -- catalog repository --

type doseRepo struct{ s *testStore }

func (r *doseRepo) Create(_ context.Context, v *catalog.VaccineDose) error {
	v.ID = uuid.New()
	r.s.doses = append(r.s.doses, v)
	return nil
}

func (r *doseRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.VaccineDose, error) {
	for _, d := range r.s.doses {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r *doseRepo) Update(_ context.Context, v *catalog.VaccineDose) error { return nil }
func (r *doseRepo) Delete(_ context.Context, id uuid.UUID) error          { return nil }

func (r *doseRepo) ListOrdered(_ context.Context) ([]*catalog.VaccineDose, error) {
	return r.s.doses, nil
}

// -- vaccination repository --

type vaccinationRepo struct{ s *testStore }

func (r *vaccinationRepo) CreateBatch(_ context.Context, records []*vaccination.Vaccination) error {
	if r.s.failBatch {
		return fmt.Errorf("insert failed")
	}
	for _, v := range records {
		for _, existing := range r.s.vaccinations {
			if existing.ChildID == v.ChildID && existing.VaccineID == v.VaccineID {
				return vaccination.ErrDuplicateSchedule
			}
		}
	}
	for _, v := range records {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
		r.s.vaccinations[v.ID] = v
	}
	return nil
}

func (r *vaccinationRepo) GetByID(_ context.Context, id uuid.UUID) (*vaccination.Vaccination, error) {
	v, ok := r.s.vaccinations[id]
	if !ok {
		return nil, vaccination.ErrNotFound
	}
	return v, nil
}

func (r *vaccinationRepo) Update(_ context.Context, v *vaccination.Vaccination) error { return nil }

func (r *vaccinationRepo) ListByChild(_ context.Context, childID uuid.UUID) ([]*vaccination.Vaccination, error) {
	var items []*vaccination.Vaccination
	for _, v := range r.s.vaccinations {
		if v.ChildID == childID {
			items = append(items, v)
		}
	}
	return items, nil
}

func (r *vaccinationRepo) ListDue(_ context.Context, before time.Time, limit, offset int) ([]*vaccination.Vaccination, int, error) {
	return nil, 0, nil
}

func (r *vaccinationRepo) ListByStatus(_ context.Context, status vaccination.Status) ([]*vaccination.Vaccination, error) {
	return nil, nil
}

// -- fixtures --

func setup(t *testing.T) (*Service, *testStore, uuid.UUID) {
	t.Helper()
	store := newTestStore()
	fac := &facility.Facility{Name: "Garki PHC", Code: "01", Ward: "Garki", LGA: "AMAC", State: "FCT"}
	if err := (&facilityRepo{store}).Create(context.Background(), fac); err != nil {
		t.Fatalf("seed facility: %v", err)
	}
	store.doses = []*catalog.VaccineDose{
		{ID: uuid.New(), Name: "BCG", DoseNumber: 1, IntervalDays: 0, Position: 0},
		{ID: uuid.New(), Name: "Penta 1", DoseNumber: 1, IntervalDays: 42, Position: 1},
		{ID: uuid.New(), Name: "Penta 2", DoseNumber: 2, IntervalDays: 70, Position: 2},
	}

	svc := NewService(&childRepo{store}, &facilityRepo{store}, &doseRepo{store}, &vaccinationRepo{store}, store.runner)
	return svc, store, fac.ID
}

func testChild(facilityID uuid.UUID) *Child {
	return &Child{
		FullName:         "Amina Bello",
		Sex:              "female",
		DateOfBirth:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		PlaceOfBirth:     "Garki",
		CaregiverName:    "Hauwa Bello",
		CaregiverContact: "+2348012345678",
		FacilityID:       facilityID,
	}
}

func TestRegister_MintsUID(t *testing.T) {
	svc, _, facilityID := setup(t)

	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.UID != "FCAM010001" {
		t.Errorf("expected UID FCAM010001, got %s", c.UID)
	}
}

func TestRegister_SequentialUIDs(t *testing.T) {
	svc, _, facilityID := setup(t)

	want := []string{"FCAM010001", "FCAM010002", "FCAM010003"}
	for i, uid := range want {
		c := testChild(facilityID)
		c.FullName = fmt.Sprintf("Child %d", i)
		if err := svc.Register(context.Background(), c); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if c.UID != uid {
			t.Errorf("registration %d: expected %s, got %s", i, uid, c.UID)
		}
	}
}

func TestRegister_CreatesFullSchedule(t *testing.T) {
	svc, store, facilityID := setup(t)

	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.vaccinations) != len(store.doses) {
		t.Fatalf("expected %d scheduled doses, got %d", len(store.doses), len(store.vaccinations))
	}
	for _, v := range store.vaccinations {
		if v.ChildID != c.ID {
			t.Errorf("schedule row for wrong child")
		}
		if v.Status != vaccination.StatusScheduled {
			t.Errorf("expected scheduled status, got %s", v.Status)
		}
	}
}

func TestRegister_AdjustsToFacilityCalendar(t *testing.T) {
	svc, store, facilityID := setup(t)
	store.days[facilityID] = []time.Weekday{time.Wednesday}

	c := testChild(facilityID) // born Monday 2026-01-05
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, v := range store.vaccinations {
		if v.ScheduledDate.Weekday() != time.Wednesday {
			t.Errorf("dose scheduled on %v, want Wednesday", v.ScheduledDate.Weekday())
		}
	}
}

func TestRegister_AtomicRollback(t *testing.T) {
	svc, store, facilityID := setup(t)
	store.failBatch = true

	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err == nil {
		t.Fatal("expected registration to fail")
	}

	if len(store.children) != 0 {
		t.Error("child row survived a failed registration")
	}
	if len(store.vaccinations) != 0 {
		t.Error("vaccination rows survived a failed registration")
	}
	if store.facilities[facilityID].RegCounter != 0 {
		t.Errorf("counter advanced despite rollback: %d", store.facilities[facilityID].RegCounter)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, facilityID := setup(t)
	cases := []struct {
		name   string
		mutate func(*Child)
	}{
		{"missing name", func(c *Child) { c.FullName = "" }},
		{"bad sex", func(c *Child) { c.Sex = "other" }},
		{"zero dob", func(c *Child) { c.DateOfBirth = time.Time{} }},
		{"future dob", func(c *Child) { c.DateOfBirth = time.Now().AddDate(1, 0, 0) }},
		{"missing facility", func(c *Child) { c.FacilityID = uuid.Nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testChild(facilityID)
			tc.mutate(c)
			if err := svc.Register(context.Background(), c); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegister_UnknownFacility(t *testing.T) {
	svc, _, _ := setup(t)
	c := testChild(uuid.New())
	if err := svc.Register(context.Background(), c); !errors.Is(err, facility.ErrNotFound) {
		t.Errorf("expected facility.ErrNotFound, got %v", err)
	}
}

func TestUpdate_CaregiverFieldsOnly(t *testing.T) {
	svc, store, facilityID := setup(t)
	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("register: %v", err)
	}

	upd := &Child{ID: c.ID, CaregiverContact: "+2348099999999"}
	if err := svc.Update(context.Background(), upd); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored := store.children[c.ID]
	if stored.CaregiverContact != "+2348099999999" {
		t.Errorf("contact not updated: %s", stored.CaregiverContact)
	}
	if stored.CaregiverName != "Hauwa Bello" {
		t.Errorf("unset field overwritten: %s", stored.CaregiverName)
	}
	if stored.FullName != "Amina Bello" {
		t.Errorf("identity field changed: %s", stored.FullName)
	}
}

func TestUpdate_NothingToUpdate(t *testing.T) {
	svc, _, facilityID := setup(t)
	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Update(context.Background(), &Child{ID: c.ID}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestDelete_CascadesVaccinations(t *testing.T) {
	svc, store, facilityID := setup(t)
	c := testChild(facilityID)
	if err := svc.Register(context.Background(), c); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.vaccinations) != 0 {
		t.Errorf("expected vaccinations removed with child, %d remain", len(store.vaccinations))
	}
}

func TestMintUID_Format(t *testing.T) {
	if got := MintUID("FCT", "AMAC", "01", 7); got != "FCAM010007" {
		t.Errorf("expected FCAM010007, got %s", got)
	}
	if got := MintUID("lagos", "ikeja", "17", 1234); got != "LAIK171234" {
		t.Errorf("expected LAIK171234, got %s", got)
	}
}
