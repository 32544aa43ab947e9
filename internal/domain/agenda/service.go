package agenda

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentio/dentio/internal/domain/directory"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPlanRequired        = errors.New("plan_tratamiento_id is required when not a first visit")
	ErrPlanOnFirstVisit    = errors.New("a first visit cannot reference a treatment plan")
	ErrPlanWrongPatient    = errors.New("treatment plan does not belong to the patient")
)

// Notifier is the user-facing side channel for mutation failures. The
// HTTP layer maps it to a toast; tests capture it directly.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// snapshot is the service's view of the world, replaced wholesale on
// every reload. Readers always see a complete old or new snapshot.
type snapshot struct {
	appointments []*Appointment
	byID         map[uuid.UUID]*Appointment
	patients     []*directory.Patient
	doctors      []*directory.Doctor
}

// Service orchestrates the calendar: it owns the appointment snapshot,
// routes every mutation through the store, and reloads the full set
// after each one instead of patching in place.
type Service struct {
	repo     AppointmentRepository
	dir      Directory
	plans    PlanSource
	notifier Notifier
	log      zerolog.Logger

	mu   sync.RWMutex
	snap snapshot
}

func NewService(repo AppointmentRepository, dir Directory, plans PlanSource, notifier Notifier, log zerolog.Logger) *Service {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &Service{
		repo:     repo,
		dir:      dir,
		plans:    plans,
		notifier: notifier,
		log:      log,
		snap:     snapshot{byID: make(map[uuid.UUID]*Appointment)},
	}
}

// Reload fetches appointments, patients and doctors concurrently; the
// three loads have no ordering dependency. A failed load is logged and
// degrades to an empty list rather than failing the whole refresh. The
// assembled snapshot is swapped in as one unit.
func (s *Service) Reload(ctx context.Context) {
	var (
		wg       sync.WaitGroup
		appts    []*Appointment
		patients []*directory.Patient
		doctors  []*directory.Doctor
		apptErr  error
		patErr   error
		docErr   error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		appts, apptErr = s.repo.List(ctx)
	}()
	go func() {
		defer wg.Done()
		patients, patErr = s.dir.ListPatients(ctx)
	}()
	go func() {
		defer wg.Done()
		doctors, docErr = s.dir.ListDoctors(ctx)
	}()
	wg.Wait()

	if apptErr != nil {
		s.log.Error().Err(apptErr).Msg("loading appointments failed")
		appts = nil
	}
	if patErr != nil {
		s.log.Error().Err(patErr).Msg("loading patients failed")
		patients = nil
	}
	if docErr != nil {
		s.log.Error().Err(docErr).Msg("loading doctors failed")
		doctors = nil
	}

	byID := make(map[uuid.UUID]*Appointment, len(appts))
	for _, a := range appts {
		byID[a.ID] = a
	}

	s.mu.Lock()
	s.snap = snapshot{appointments: appts, byID: byID, patients: patients, doctors: doctors}
	s.mu.Unlock()
}

// Appointments returns the current snapshot's appointment list.
func (s *Service) Appointments() []*Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Appointment, len(s.snap.appointments))
	copy(out, s.snap.appointments)
	return out
}

// Patients returns the current snapshot's patient roster.
func (s *Service) Patients() []*directory.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*directory.Patient, len(s.snap.patients))
	copy(out, s.snap.patients)
	return out
}

// Doctors returns the current snapshot's doctor roster.
func (s *Service) Doctors() []*directory.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*directory.Doctor, len(s.snap.doctors))
	copy(out, s.snap.doctors)
	return out
}

// Calendar builds the visible grid for a zoom level and pivot,
// optionally narrowed to a set of doctors.
func (s *Service) Calendar(zoom Zoom, pivot time.Time, doctorIDs []uuid.UUID) []CalendarDay {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	days := Window(zoom, pivot)
	grid := BuildGrid(days, snap.appointments)
	if len(doctorIDs) == 0 {
		return grid
	}
	selected := make(map[uuid.UUID]struct{}, len(doctorIDs))
	for _, id := range doctorIDs {
		selected[id] = struct{}{}
	}
	return FilterByDoctors(grid, selected, snap.byID)
}

// History is the patient's visit history, most recent first.
func (s *Service) History(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// ListPaged serves the flat appointment listing endpoint.
func (s *Service) ListPaged(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListPaged(ctx, limit, offset)
}

// Get fetches one appointment directly from the store.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// NewForm builds an appointment form wired to this service's sources.
func (s *Service) NewForm() *Form {
	return NewForm(s.repo, s.plans, s.log)
}

// checkPlanInvariant enforces the write-time rule: first visit means no
// plan, and a referenced plan must belong to the draft's patient.
func (s *Service) checkPlanInvariant(ctx context.Context, d Draft) error {
	if d.IsFirstVisit {
		if d.TreatmentPlanID != nil {
			return ErrPlanOnFirstVisit
		}
		return nil
	}
	if d.TreatmentPlanID == nil {
		return ErrPlanRequired
	}
	plans, err := s.plans.ListByPatient(ctx, d.PatientID)
	if err != nil {
		return err
	}
	for _, p := range plans {
		if p.ID == *d.TreatmentPlanID {
			return nil
		}
	}
	return ErrPlanWrongPatient
}

// Create persists a new appointment and reloads the full set. The
// reload runs only after the store confirms the write.
func (s *Service) Create(ctx context.Context, d Draft) (*Appointment, error) {
	if err := validateRequired(d); err != nil {
		return nil, err
	}
	if err := s.checkPlanInvariant(ctx, d); err != nil {
		return nil, err
	}
	a := &Appointment{
		Date:            d.Date,
		Time:            d.Time,
		PatientID:       d.PatientID,
		DoctorID:        d.DoctorID,
		TreatmentPlanID: d.TreatmentPlanID,
		IsFirstVisit:    d.IsFirstVisit,
		Notes:           d.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error().Err(err).Msg("creating appointment failed")
		s.notifier.Notify("no se pudo crear la cita")
		return nil, err
	}
	s.Reload(ctx)
	return a, nil
}

// Update rewrites an existing appointment and reloads the full set.
func (s *Service) Update(ctx context.Context, id uuid.UUID, d Draft) (*Appointment, error) {
	if err := validateRequired(d); err != nil {
		return nil, err
	}
	if err := s.checkPlanInvariant(ctx, d); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	a.Date = d.Date
	a.Time = d.Time
	a.PatientID = d.PatientID
	a.DoctorID = d.DoctorID
	a.TreatmentPlanID = d.TreatmentPlanID
	a.IsFirstVisit = d.IsFirstVisit
	a.Notes = d.Notes
	if err := s.repo.Update(ctx, a); err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("updating appointment failed")
		s.notifier.Notify("no se pudo actualizar la cita")
		return nil, err
	}
	s.Reload(ctx)
	return a, nil
}

// Delete removes an appointment and reloads the full set.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Str("id", id.String()).Msg("deleting appointment failed")
		s.notifier.Notify("no se pudo eliminar la cita")
		return err
	}
	s.Reload(ctx)
	return nil
}
