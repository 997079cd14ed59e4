package domain

import "time"

// Phase is the position of an instant relative to a question's window.
type Phase int

const (
	Upcoming Phase = iota
	Active
	Ended
)

func (p Phase) String() string {
	switch p {
	case Upcoming:
		return "upcoming"
	case Active:
		return "active"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Classify partitions the timeline into Upcoming, Active and Ended. Active is
// exactly [start, end). Both the participant countdown and the admin's
// winner-computation guard use this same function.
func Classify(now, start, end time.Time) Phase {
	if now.Before(start) {
		return Upcoming
	}
	if now.Before(end) {
		return Active
	}
	return Ended
}
