package agenda

import (
	"sort"
	"time"
)

// BuildGrid lays appointments out on a day-by-slot grid for the visible
// days. Every working-hours slot appears, bookable, even when empty.
// Appointments that fall outside the day's working hours (legacy data)
// get an extra non-bookable slot appended after the working ones, in
// label order. Two appointments at the same (date, time) both stay in
// that slot's event list; double-booking is displayed, not rejected.
func BuildGrid(days []time.Time, appts []*Appointment) []CalendarDay {
	byDaySlot := make(map[string]map[string][]Event)
	for _, a := range appts {
		key := dateKey(a.Date)
		if byDaySlot[key] == nil {
			byDaySlot[key] = make(map[string][]Event)
		}
		byDaySlot[key][a.Time] = append(byDaySlot[key][a.Time], EventFromAppointment(a))
	}

	grid := make([]CalendarDay, 0, len(days))
	for _, day := range days {
		working := WorkingHours(int(day.Weekday()))
		slotEvents := byDaySlot[dateKey(day)]

		slots := make([]SlotEvents, 0, len(working))
		seen := make(map[string]bool, len(working))
		for _, label := range working {
			slots = append(slots, SlotEvents{
				Time:     label,
				Bookable: true,
				Events:   slotEvents[label],
			})
			seen[label] = true
		}

		var extra []string
		for label := range slotEvents {
			if !seen[label] {
				extra = append(extra, label)
			}
		}
		sort.Strings(extra)
		for _, label := range extra {
			slots = append(slots, SlotEvents{
				Time:     label,
				Bookable: false,
				Events:   slotEvents[label],
			})
		}

		grid = append(grid, CalendarDay{Day: day, Slots: slots})
	}
	return grid
}
