package agenda

import (
	"context"

	"github.com/google/uuid"

	"github.com/dentio/dentio/internal/domain/directory"
	"github.com/dentio/dentio/internal/domain/treatment"
)

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns every appointment; the calendar works off the full
	// set and there is no date-range fetch.
	List(ctx context.Context) ([]*Appointment, error)
	ListPaged(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	// ListByPatient is the patient's visit history, most recent first
	// by date then slot.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
}

// Directory is the slice of the patient/doctor roster the agenda needs.
type Directory interface {
	ListPatients(ctx context.Context) ([]*directory.Patient, error)
	ListDoctors(ctx context.Context) ([]*directory.Doctor, error)
}

// PlanSource yields a patient's treatment plans for the first-visit
// derivation and the plan dropdown.
type PlanSource interface {
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]treatment.PlanSummary, error)
}
