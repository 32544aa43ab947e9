package agenda

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentio/dentio/internal/domain/treatment"
)

// FormState tracks the appointment dialog's lifecycle.
type FormState int

const (
	FormEmpty FormState = iota
	FormLoading
	FormReady
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormEmpty:
		return "empty"
	case FormLoading:
		return "loading"
	case FormReady:
		return "ready"
	case FormSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// ValidationError reports a missing required field. It is raised before
// anything is sent to the store.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

var (
	ErrFormNotReady = errors.New("form is not ready to submit")
	ErrPlanUnknown  = errors.New("selected plan does not belong to the patient")
)

// HistorySource yields a patient's past appointments for display.
type HistorySource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
}

// SubmitFunc persists a finished draft. Create and edit flows supply
// different implementations.
type SubmitFunc func(ctx context.Context, d Draft) error

// Form drives the create/edit appointment dialog. Selecting a patient
// kicks off two loads, the visit history and the treatment-plan list;
// the first-visit flag is only authoritative once both have settled.
// Each selection bumps a generation counter so a slow load for a
// previously selected patient cannot overwrite newer state.
type Form struct {
	mu      sync.Mutex
	log     zerolog.Logger
	history HistorySource
	plans   PlanSource

	state FormState
	gen   int

	draft     Draft
	editingID *uuid.UUID

	historyLoading bool
	plansLoading   bool

	visitHistory []*Appointment
	planList     []treatment.PlanSummary
}

func NewForm(history HistorySource, plans PlanSource, log zerolog.Logger) *Form {
	return &Form{
		log:     log,
		history: history,
		plans:   plans,
		state:   FormEmpty,
	}
}

// State returns the current lifecycle state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SelectPatient loads the patient's history and plan list concurrently
// and blocks until both settle. Either load failing degrades to an
// empty list so the form stays usable. If another SelectPatient or
// Reset supersedes this one while the loads are in flight, the late
// results are discarded.
func (f *Form) SelectPatient(ctx context.Context, patientID uuid.UUID) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.state = FormLoading
	f.historyLoading = true
	f.plansLoading = true
	f.draft.PatientID = patientID
	f.draft.TreatmentPlanID = nil
	f.visitHistory = nil
	f.planList = nil
	f.mu.Unlock()

	var (
		wg       sync.WaitGroup
		hist     []*Appointment
		histErr  error
		plans    []treatment.PlanSummary
		plansErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		hist, histErr = f.history.ListByPatient(ctx, patientID)
	}()
	go func() {
		defer wg.Done()
		plans, plansErr = f.plans.ListByPatient(ctx, patientID)
	}()
	wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		// A newer selection took over while we were loading.
		return
	}

	if histErr != nil {
		f.log.Error().Err(histErr).Str("patient_id", patientID.String()).Msg("loading visit history failed")
		hist = nil
	}
	if plansErr != nil {
		f.log.Error().Err(plansErr).Str("patient_id", patientID.String()).Msg("loading treatment plans failed")
		plans = nil
	}

	f.visitHistory = hist
	f.planList = plans
	f.historyLoading = false
	f.plansLoading = false
	f.applyFirstVisitRule()
	f.state = FormReady
}

// applyFirstVisitRule derives the first-visit flag from the plan list.
// Callers hold f.mu.
func (f *Form) applyFirstVisitRule() {
	if len(f.planList) == 0 {
		f.draft.IsFirstVisit = true
		f.draft.TreatmentPlanID = nil
		return
	}
	f.draft.IsFirstVisit = false
	if len(f.planList) == 1 && f.draft.TreatmentPlanID == nil {
		id := f.planList[0].ID
		f.draft.TreatmentPlanID = &id
	}
	// With several plans the user has to pick one explicitly.
}

// BeginEdit pre-populates the form from an existing appointment and
// re-derives the plan list for its patient, so the first-visit lock
// behaves exactly as it does in create mode.
func (f *Form) BeginEdit(ctx context.Context, a *Appointment) {
	f.mu.Lock()
	id := a.ID
	f.editingID = &id
	f.draft = Draft{
		Date:            a.Date,
		Time:            a.Time,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		TreatmentPlanID: a.TreatmentPlanID,
		IsFirstVisit:    a.IsFirstVisit,
		Notes:           a.Notes,
	}
	planID := a.TreatmentPlanID
	f.mu.Unlock()

	f.SelectPatient(ctx, a.PatientID)

	// SelectPatient clears the plan choice; restore it when it still
	// belongs to the reloaded list.
	f.mu.Lock()
	defer f.mu.Unlock()
	if planID != nil {
		for _, p := range f.planList {
			if p.ID == *planID {
				f.draft.TreatmentPlanID = planID
				break
			}
		}
	}
	f.applyFirstVisitRule()
}

// Reset returns the form to its initial empty state. Any loads still in
// flight become stale and will be dropped.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state = FormEmpty
	f.draft = Draft{}
	f.editingID = nil
	f.historyLoading = false
	f.plansLoading = false
	f.visitHistory = nil
	f.planList = nil
}

// -- field setters --

func (f *Form) SetDate(d time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Date = d
}

func (f *Form) SetTime(slot string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Time = slot
}

func (f *Form) SetDoctor(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.DoctorID = id
}

func (f *Form) SetNotes(notes string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Notes = &notes
}

// SetPlan picks one of the loaded treatment plans. Choosing a plan that
// is not in the patient's list is rejected.
func (f *Form) SetPlan(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.planList {
		if p.ID == id {
			f.draft.TreatmentPlanID = &p.ID
			return nil
		}
	}
	return ErrPlanUnknown
}

// FirstVisit reports the derived flag and whether it is locked. The
// flag is locked (not user-editable) from the moment a patient is
// selected: during the loads it is not yet authoritative, and after
// them it is fully determined by the plan list.
func (f *Form) FirstVisit() (value, locked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.IsFirstVisit, f.state != FormEmpty
}

// PlanCount is the number of loaded plans, shown next to the disabled
// first-visit checkbox.
func (f *Form) PlanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.planList)
}

// Plans returns the loaded plan list for the dropdown.
func (f *Form) Plans() []treatment.PlanSummary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]treatment.PlanSummary, len(f.planList))
	copy(out, f.planList)
	return out
}

// History returns the loaded visit history, most recent first.
func (f *Form) History() []*Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Appointment, len(f.visitHistory))
	copy(out, f.visitHistory)
	return out
}

// Draft returns a snapshot of the current field values.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// EditingID returns the appointment being edited, or nil in create mode.
func (f *Form) EditingID() *uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID
}

// Validate checks the required fields: date, time, patient, doctor, and
// a plan whenever the visit is not a first visit. It never touches the
// store.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return validateDraft(f.draft)
}

func validateDraft(d Draft) error {
	if err := validateRequired(d); err != nil {
		return err
	}
	if !d.IsFirstVisit && d.TreatmentPlanID == nil {
		return &ValidationError{Field: "plan_tratamiento_id"}
	}
	return nil
}

// validateRequired covers the fields every appointment needs. The plan
// rule is deliberately left out: the service enforces it against the
// patient's actual plans and reports sentinel errors instead.
func validateRequired(d Draft) error {
	if d.Date.IsZero() {
		return &ValidationError{Field: "fecha"}
	}
	if d.Time == "" {
		return &ValidationError{Field: "time"}
	}
	if d.PatientID == uuid.Nil {
		return &ValidationError{Field: "patient_id"}
	}
	if d.DoctorID == uuid.Nil {
		return &ValidationError{Field: "doctor_id"}
	}
	return nil
}

// Submit validates the draft, hands it to the supplied persistence
// function, and on success resets the form to empty. On failure the
// form stays open in its ready state so the user can correct and retry.
func (f *Form) Submit(ctx context.Context, persist SubmitFunc) error {
	f.mu.Lock()
	if f.state != FormReady {
		f.mu.Unlock()
		return ErrFormNotReady
	}
	if err := validateDraft(f.draft); err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = FormSubmitting
	draft := f.draft
	f.mu.Unlock()

	if err := persist(ctx, draft); err != nil {
		f.mu.Lock()
		f.state = FormReady
		f.mu.Unlock()
		return err
	}

	f.Reset()
	return nil
}
