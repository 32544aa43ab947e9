// Package agenda implements the clinic's appointment calendar: the
// working-hours table, the day-by-slot event grid, the appointment form
// flow, the doctor filter, and the orchestrating service behind the
// scheduling endpoints.
package agenda

import "fmt"

// Weekday indices follow time.Weekday: 0=Sunday .. 6=Saturday.
const (
	weekdayOpenHour  = 9
	weekdayCloseHour = 18
	saturdayOpenHour = 9
)

// WorkingHours returns the ordered bookable slot labels for a weekday.
// Sunday and out-of-range indices yield no slots. Monday through Friday
// run 09:00 to 18:00 inclusive. Saturday runs 09:00 to 12:00 and then
// jumps to 14:00 with no 13:00 slot.
// TODO: confirm with the clinics whether Saturday 13:00 should open.
func WorkingHours(weekday int) []string {
	switch {
	case weekday >= 1 && weekday <= 5:
		slots := hourRange(weekdayOpenHour, weekdayCloseHour)
		return append(slots, slotLabel(weekdayCloseHour))
	case weekday == 6:
		slots := hourRange(saturdayOpenHour, 13)
		return append(slots, slotLabel(14))
	default:
		return nil
	}
}

// WeekMap builds the full weekday-to-slots table, indexed 0..6.
func WeekMap() [7][]string {
	var m [7][]string
	for day := 0; day < 7; day++ {
		m[day] = WorkingHours(day)
	}
	return m
}

// IsWorkingSlot reports whether a slot label is bookable on a weekday.
func IsWorkingSlot(weekday int, slot string) bool {
	for _, s := range WorkingHours(weekday) {
		if s == slot {
			return true
		}
	}
	return false
}

// hourRange yields hourly labels from start up to but excluding end.
func hourRange(start, end int) []string {
	var slots []string
	for h := start; h < end; h++ {
		slots = append(slots, slotLabel(h))
	}
	return slots
}

func slotLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
