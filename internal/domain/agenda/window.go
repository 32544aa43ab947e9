package agenda

import "time"

// Zoom is the calendar's display granularity. It controls both the
// visible date window and how far navigation jumps.
type Zoom string

const (
	ZoomWeek     Zoom = "week"
	ZoomTwoWeeks Zoom = "two-weeks"
	ZoomMonth    Zoom = "month"
)

// ParseZoom maps a query value to a Zoom, defaulting to week.
func ParseZoom(s string) Zoom {
	switch Zoom(s) {
	case ZoomTwoWeeks:
		return ZoomTwoWeeks
	case ZoomMonth:
		return ZoomMonth
	default:
		return ZoomWeek
	}
}

// startOfWeek returns the Monday of the week containing d, at midnight
// in d's location.
func startOfWeek(d time.Time) time.Time {
	d = truncateToDay(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func truncateToDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func daysFrom(start time.Time, n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// WeekWindow is the 7 days of the Monday-first week containing pivot.
func WeekWindow(pivot time.Time) []time.Time {
	return daysFrom(startOfWeek(pivot), 7)
}

// TwoWeeksWindow is 14 consecutive days starting at pivot's week start.
func TwoWeeksWindow(pivot time.Time) []time.Time {
	return daysFrom(startOfWeek(pivot), 14)
}

// MonthWindow covers pivot's month in whole Monday-first weeks, padded
// with adjacent-month days so the grid is always a multiple of 7.
func MonthWindow(pivot time.Time) []time.Time {
	first := time.Date(pivot.Year(), pivot.Month(), 1, 0, 0, 0, 0, pivot.Location())
	last := first.AddDate(0, 1, -1)

	start := startOfWeek(first)
	end := startOfWeek(last).AddDate(0, 0, 7) // exclusive

	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Window returns the visible days for a zoom level and pivot.
func Window(zoom Zoom, pivot time.Time) []time.Time {
	switch zoom {
	case ZoomTwoWeeks:
		return TwoWeeksWindow(pivot)
	case ZoomMonth:
		return MonthWindow(pivot)
	default:
		return WeekWindow(pivot)
	}
}

// Advance moves the pivot forward by one navigation step of the zoom.
func Advance(zoom Zoom, pivot time.Time) time.Time {
	switch zoom {
	case ZoomTwoWeeks:
		return pivot.AddDate(0, 0, 14)
	case ZoomMonth:
		return pivot.AddDate(0, 1, 0)
	default:
		return pivot.AddDate(0, 0, 7)
	}
}

// Retreat moves the pivot backward by one navigation step of the zoom.
func Retreat(zoom Zoom, pivot time.Time) time.Time {
	switch zoom {
	case ZoomTwoWeeks:
		return pivot.AddDate(0, 0, -14)
	case ZoomMonth:
		return pivot.AddDate(0, -1, 0)
	default:
		return pivot.AddDate(0, 0, -7)
	}
}

// Today is computed fresh on every call; the calendar never caches it
// across day boundaries. The "go to today" action resets the pivot and
// the selected day to this value.
func Today() time.Time {
	return truncateToDay(time.Now())
}
