package lifecycle

import "time"

// DueDate returns the date an order in phase p is due, zero when p has no due date
func DueDate(p Phase, pickupDate, returnDate time.Time) time.Time {
	switch p {
	case PhaseAwaitingPickup:
		return pickupDate
	case PhaseAwaitingReturn:
		return returnDate
	default:
		return time.Time{}
	}
}

// IsOverdue reports whether an order in phase p has passed its due date.
// Only the calendar day of the due date counts, so an order due today is not
// overdue until tomorrow.
func IsOverdue(p Phase, pickupDate, returnDate, now time.Time) bool {
	if !p.CanBeOverdue() {
		return false
	}
	due := DueDate(p, pickupDate, returnDate)
	if due.IsZero() {
		return false
	}
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return dueDay.Before(today)
}
