package agenda

import (
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointment table. Date carries the calendar
// day only; Time is the slot label ("HH:MM"). The *_nombre fields are
// denormalized by the read path for display and are never written back.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Date            time.Time  `db:"fecha" json:"fecha"`
	Time            string     `db:"hora" json:"time"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	TreatmentPlanID *uuid.UUID `db:"plan_tratamiento_id" json:"plan_tratamiento_id,omitempty"`
	IsFirstVisit    bool       `db:"is_first_visit" json:"is_first_visit"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	PatientName     string     `db:"patient_nombre" json:"patient_nombre,omitempty"`
	DoctorName      string     `db:"doctor_nombre" json:"doctor_nombre,omitempty"`
	PlanName        *string    `db:"plan_nombre" json:"plan_nombre,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Draft is what the form submits: the writable subset of Appointment.
type Draft struct {
	Date            time.Time  `json:"fecha"`
	Time            string     `json:"time"`
	PatientID       uuid.UUID  `json:"patient_id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	TreatmentPlanID *uuid.UUID `json:"plan_tratamiento_id,omitempty"`
	IsFirstVisit    bool       `json:"is_first_visit"`
	Notes           *string    `json:"notes,omitempty"`
}

// Event is the calendar's view of one appointment, rebuilt from scratch
// on every grid pass and discarded on reload.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Time         string    `json:"time"`
	Datetime     time.Time `json:"datetime"`
	Patient      string    `json:"patient,omitempty"`
	Doctor       string    `json:"doctor,omitempty"`
	Service      string    `json:"service,omitempty"`
	IsFirstVisit bool      `json:"is_first_visit"`
}

// EventFromAppointment projects an appointment into its calendar event.
func EventFromAppointment(a *Appointment) Event {
	e := Event{
		ID:           a.ID,
		Name:         a.PatientName,
		Time:         a.Time,
		Datetime:     combineDateTime(a.Date, a.Time),
		Patient:      a.PatientName,
		Doctor:       a.DoctorName,
		IsFirstVisit: a.IsFirstVisit,
	}
	if a.PlanName != nil {
		e.Service = *a.PlanName
	}
	return e
}

// SlotEvents is one time slot within a day. Bookable is false for slots
// outside the weekday's working hours; legacy appointments parked there
// are still shown, but nothing new can be scheduled into them.
type SlotEvents struct {
	Time     string  `json:"time"`
	Bookable bool    `json:"bookable"`
	Events   []Event `json:"events"`
}

// CalendarDay groups a day's slots. Derived on every reload, never
// persisted.
type CalendarDay struct {
	Day   time.Time    `json:"day"`
	Slots []SlotEvents `json:"slots"`
}

// EventCount is the total number of events across the day's slots.
func (d CalendarDay) EventCount() int {
	n := 0
	for _, s := range d.Slots {
		n += len(s.Events)
	}
	return n
}

// combineDateTime merges a calendar day and a slot label into a single
// timestamp. Bad labels fall back to midnight.
func combineDateTime(day time.Time, slot string) time.Time {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return truncateToDay(day)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
