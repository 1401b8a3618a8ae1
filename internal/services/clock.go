package services

import "time"

// Clock supplies the current instant. Services fall back to time.Now when the
// field is left nil; tests inject fixed instants.
type Clock func() time.Time

func nowOr(c Clock) time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
