package clock

import "time"

// Source supplies the wall-clock time the plate follows.
type Source interface {
	Now() time.Time
}

// SystemSource reads the system clock in Location (time.Local when nil).
type SystemSource struct {
	Location *time.Location
}

func (s SystemSource) Now() time.Time {
	now := time.Now()
	if s.Location != nil {
		return now.In(s.Location)
	}
	return now
}

// ClockFace reduces t to the (hour, minute) shown on a twelve hour plate.
func ClockFace(t time.Time) (hour, minute int) {
	return t.Hour() % 12, t.Minute()
}
