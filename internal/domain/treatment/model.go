// Package treatment exposes treatment plans to the scheduling flow.
// The agenda only needs a thin projection of each plan: enough to fill
// the plan dropdown and to decide whether a patient is on a first visit.
package treatment

import (
	"time"

	"github.com/google/uuid"
)

// Plan maps to the treatment_plan table.
type Plan struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Name      string    `db:"nombre" json:"nombre"`
	Date      time.Time `db:"fecha" json:"fecha"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PlanSummary is the read-only projection consumed by the appointment
// form: it fills the plan dropdown and drives the first-visit toggle.
type PlanSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"nombre"`
	Date time.Time `json:"fecha"`
}

// Summary projects a Plan down to the fields the scheduler cares about.
func (p *Plan) Summary() PlanSummary {
	return PlanSummary{ID: p.ID, Name: p.Name, Date: p.Date}
}
