package agenda

import "github.com/google/uuid"

// FilterByDoctors prunes the grid down to events whose appointment
// belongs to one of the selected doctors. An empty selection means no
// filtering at all. Days left with zero events disappear from the
// result rather than rendering empty. The input days are never
// mutated; filtered days are fresh values, so applying the same filter
// twice yields the same result.
func FilterByDoctors(days []CalendarDay, selected map[uuid.UUID]struct{}, apptsByID map[uuid.UUID]*Appointment) []CalendarDay {
	if len(selected) == 0 {
		return days
	}

	out := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		slots := make([]SlotEvents, 0, len(day.Slots))
		total := 0
		for _, slot := range day.Slots {
			var kept []Event
			for _, ev := range slot.Events {
				a, ok := apptsByID[ev.ID]
				if !ok {
					continue
				}
				if _, want := selected[a.DoctorID]; want {
					kept = append(kept, ev)
				}
			}
			total += len(kept)
			slots = append(slots, SlotEvents{Time: slot.Time, Bookable: slot.Bookable, Events: kept})
		}
		if total == 0 {
			continue
		}
		out = append(out, CalendarDay{Day: day.Day, Slots: slots})
	}
	return out
}
