package agenda

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentio/dentio/internal/domain/directory"
	"github.com/dentio/dentio/internal/domain/treatment"
)

// -- Mock Repositories --

type mockApptRepo struct {
	appts   map[uuid.UUID]*Appointment
	failOn  string
	listErr error
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	if m.failOn == "create" {
		return fmt.Errorf("store rejected create")
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	stored := *a
	m.appts[a.ID] = &stored
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	stored := *a
	return &stored, nil
}

func (m *mockApptRepo) Update(_ context.Context, a *Appointment) error {
	if m.failOn == "update" {
		return fmt.Errorf("store rejected update")
	}
	if _, ok := m.appts[a.ID]; !ok {
		return ErrAppointmentNotFound
	}
	stored := *a
	m.appts[a.ID] = &stored
	return nil
}

func (m *mockApptRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.failOn == "delete" {
		return fmt.Errorf("store rejected delete")
	}
	if _, ok := m.appts[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockApptRepo) List(_ context.Context) ([]*Appointment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*Appointment
	for _, a := range m.appts {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Time < result[j].Time
	})
	return result, nil
}

func (m *mockApptRepo) ListPaged(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockApptRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	all, _ := m.List(ctx)
	var result []*Appointment
	for _, a := range all {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	// Most recent first.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].Time > result[j].Time
	})
	return result, nil
}

type mockDirectory struct {
	patients []*directory.Patient
	doctors  []*directory.Doctor
	err      error
}

func (m *mockDirectory) ListPatients(context.Context) ([]*directory.Patient, error) {
	return m.patients, m.err
}

func (m *mockDirectory) ListDoctors(context.Context) ([]*directory.Doctor, error) {
	return m.doctors, m.err
}

type mockPlanSource struct {
	plans map[uuid.UUID][]treatment.PlanSummary
}

func (m *mockPlanSource) ListByPatient(_ context.Context, patientID uuid.UUID) ([]treatment.PlanSummary, error) {
	return m.plans[patientID], nil
}

type captureNotifier struct {
	messages []string
}

func (n *captureNotifier) Notify(msg string) {
	n.messages = append(n.messages, msg)
}

type serviceFixture struct {
	svc      *Service
	repo     *mockApptRepo
	plans    *mockPlanSource
	notifier *captureNotifier
}

func newServiceFixture() *serviceFixture {
	repo := newMockApptRepo()
	plans := &mockPlanSource{plans: make(map[uuid.UUID][]treatment.PlanSummary)}
	notifier := &captureNotifier{}
	dir := &mockDirectory{
		patients: []*directory.Patient{{ID: uuid.New(), Name: "Ana Torres"}},
		doctors:  []*directory.Doctor{{ID: uuid.New(), Name: "Dra. Elena Ruiz"}},
	}
	return &serviceFixture{
		svc:      NewService(repo, dir, plans, notifier, zerolog.Nop()),
		repo:     repo,
		plans:    plans,
		notifier: notifier,
	}
}

func firstVisitDraft() Draft {
	return Draft{
		Date:         date(2026, time.August, 24),
		Time:         "10:00",
		PatientID:    uuid.New(),
		DoctorID:     uuid.New(),
		IsFirstVisit: true,
	}
}

// ---------- Reload Tests ----------

func TestServiceReload_LoadsSnapshot(t *testing.T) {
	fx := newServiceFixture()
	fx.repo.appts[uuid.New()] = seedAppointment(date(2026, time.August, 24), "09:00", uuid.New())

	fx.svc.Reload(context.Background())

	if len(fx.svc.Appointments()) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(fx.svc.Appointments()))
	}
	if len(fx.svc.Patients()) != 1 {
		t.Errorf("expected 1 patient, got %d", len(fx.svc.Patients()))
	}
	if len(fx.svc.Doctors()) != 1 {
		t.Errorf("expected 1 doctor, got %d", len(fx.svc.Doctors()))
	}
}

func TestServiceReload_LoadFailureDegradesToEmpty(t *testing.T) {
	fx := newServiceFixture()
	fx.repo.appts[uuid.New()] = seedAppointment(date(2026, time.August, 24), "09:00", uuid.New())
	fx.svc.Reload(context.Background())

	fx.repo.listErr = fmt.Errorf("store down")
	fx.svc.Reload(context.Background())

	if len(fx.svc.Appointments()) != 0 {
		t.Error("expected the failed load to degrade to an empty list")
	}
	// Other loads still succeeded.
	if len(fx.svc.Doctors()) != 1 {
		t.Error("expected doctors to survive the appointment load failure")
	}
}

// ---------- Create Tests ----------

func TestServiceCreate_ReloadsAndExposes(t *testing.T) {
	fx := newServiceFixture()

	a, err := fx.svc.Create(context.Background(), firstVisitDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, got := range fx.svc.Appointments() {
		if got.ID == a.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected the created appointment in the reloaded snapshot")
	}
}

func TestServiceCreate_PlanInvariants(t *testing.T) {
	fx := newServiceFixture()
	patientID := uuid.New()
	plan := treatment.PlanSummary{ID: uuid.New(), Name: "Endodoncia", Date: time.Now()}
	fx.plans.plans[patientID] = []treatment.PlanSummary{plan}

	base := Draft{
		Date:      date(2026, time.August, 24),
		Time:      "10:00",
		PatientID: patientID,
		DoctorID:  uuid.New(),
	}

	// Not a first visit but no plan chosen.
	d := base
	d.IsFirstVisit = false
	if _, err := fx.svc.Create(context.Background(), d); !errors.Is(err, ErrPlanRequired) {
		t.Errorf("expected ErrPlanRequired, got %v", err)
	}

	// First visit carrying a plan.
	d = base
	d.IsFirstVisit = true
	d.TreatmentPlanID = &plan.ID
	if _, err := fx.svc.Create(context.Background(), d); !errors.Is(err, ErrPlanOnFirstVisit) {
		t.Errorf("expected ErrPlanOnFirstVisit, got %v", err)
	}

	// Plan belonging to someone else.
	stranger := uuid.New()
	d = base
	d.IsFirstVisit = false
	d.TreatmentPlanID = &stranger
	if _, err := fx.svc.Create(context.Background(), d); !errors.Is(err, ErrPlanWrongPatient) {
		t.Errorf("expected ErrPlanWrongPatient, got %v", err)
	}

	// The valid follow-up.
	d = base
	d.IsFirstVisit = false
	d.TreatmentPlanID = &plan.ID
	if _, err := fx.svc.Create(context.Background(), d); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServiceCreate_FailureNotifies(t *testing.T) {
	fx := newServiceFixture()
	fx.repo.failOn = "create"

	_, err := fx.svc.Create(context.Background(), firstVisitDraft())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(fx.notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(fx.notifier.messages))
	}
}

func TestServiceCreate_ValidationSkipsStore(t *testing.T) {
	fx := newServiceFixture()
	d := firstVisitDraft()
	d.Time = ""

	_, err := fx.svc.Create(context.Background(), d)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(fx.repo.appts) != 0 {
		t.Error("expected nothing persisted")
	}
	if len(fx.notifier.messages) != 0 {
		t.Error("validation failures are inline, not notifications")
	}
}

// ---------- Update / Delete Tests ----------

func TestServiceUpdate_RewritesAndReloads(t *testing.T) {
	fx := newServiceFixture()
	a, err := fx.svc.Create(context.Background(), firstVisitDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := firstVisitDraft()
	d.PatientID = a.PatientID
	d.Time = "12:00"
	updated, err := fx.svc.Update(context.Background(), a.ID, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Time != "12:00" {
		t.Errorf("expected slot moved to 12:00, got %s", updated.Time)
	}

	for _, got := range fx.svc.Appointments() {
		if got.ID == a.ID && got.Time != "12:00" {
			t.Error("expected the snapshot to reflect the update")
		}
	}
}

func TestServiceUpdate_NotFound(t *testing.T) {
	fx := newServiceFixture()
	_, err := fx.svc.Update(context.Background(), uuid.New(), firstVisitDraft())
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestServiceDelete_RemovesFromSnapshot(t *testing.T) {
	fx := newServiceFixture()
	a, err := fx.svc.Create(context.Background(), firstVisitDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := fx.svc.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.svc.Appointments()) != 0 {
		t.Error("expected an empty snapshot after delete")
	}
}

func TestServiceDelete_FailureNotifies(t *testing.T) {
	fx := newServiceFixture()
	a, err := fx.svc.Create(context.Background(), firstVisitDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fx.repo.failOn = "delete"
	if err := fx.svc.Delete(context.Background(), a.ID); err == nil {
		t.Fatal("expected error")
	}
	if len(fx.notifier.messages) != 1 {
		t.Errorf("expected 1 notification, got %d", len(fx.notifier.messages))
	}
}

// ---------- Form Integration ----------

func TestFormSubmitThroughService_ResetAndReload(t *testing.T) {
	fx := newServiceFixture()
	patientID := uuid.New()

	form := fx.svc.NewForm()
	form.SelectPatient(context.Background(), patientID)
	form.SetDate(date(2026, time.August, 24))
	form.SetTime("10:00")
	form.SetDoctor(uuid.New())

	var createdID uuid.UUID
	err := form.Submit(context.Background(), func(ctx context.Context, d Draft) error {
		a, err := fx.svc.Create(ctx, d)
		if err != nil {
			return err
		}
		createdID = a.ID
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if form.State() != FormEmpty {
		t.Errorf("expected the form reset after submit, got %s", form.State())
	}
	found := false
	for _, got := range fx.svc.Appointments() {
		if got.ID == createdID {
			found = true
		}
	}
	if !found {
		t.Error("expected the submitted appointment in the reloaded snapshot")
	}
}

// ---------- Calendar Composition ----------

func TestServiceCalendar_FiltersByDoctor(t *testing.T) {
	fx := newServiceFixture()
	doctorA := uuid.New()
	doctorB := uuid.New()

	d := firstVisitDraft()
	d.DoctorID = doctorA
	if _, err := fx.svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d = firstVisitDraft()
	d.Time = "11:00"
	d.DoctorID = doctorB
	if _, err := fx.svc.Create(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pivot := date(2026, time.August, 24)

	all := fx.svc.Calendar(ZoomWeek, pivot, nil)
	if len(all) != 7 {
		t.Fatalf("expected all 7 week days without a filter, got %d", len(all))
	}

	filtered := fx.svc.Calendar(ZoomWeek, pivot, []uuid.UUID{doctorA})
	if len(filtered) != 1 {
		t.Fatalf("expected only the booked day to survive, got %d days", len(filtered))
	}
	if filtered[0].EventCount() != 1 {
		t.Errorf("expected 1 event for the selected doctor, got %d", filtered[0].EventCount())
	}
}

// ---------- History Ordering ----------

func TestServiceHistory_MostRecentFirst(t *testing.T) {
	fx := newServiceFixture()
	patientID := uuid.New()

	older := firstVisitDraft()
	older.PatientID = patientID
	older.Date = date(2026, time.August, 10)
	if _, err := fx.svc.Create(context.Background(), older); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	newer := firstVisitDraft()
	newer.PatientID = patientID
	newer.Date = date(2026, time.August, 20)
	if _, err := fx.svc.Create(context.Background(), newer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := fx.svc.History(context.Background(), patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if !history[0].Date.After(history[1].Date) {
		t.Error("expected most recent appointment first")
	}
}
