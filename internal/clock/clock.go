package clock

import "time"

// Clock abstracts time access so services and tests can control "now".
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Real returns a Clock backed by the system clock, normalized to UTC.
func Real() Clock {
	return realClock{}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// Fixed returns a Clock that always reports the given instant.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}
