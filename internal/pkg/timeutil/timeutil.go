package timeutil

import "time"

// Clock returns the current time. Services take one so tests can pin time.
type Clock func() time.Time

func Now() time.Time {
	return time.Now().UTC()
}

func NowUnix() int64 {
	return time.Now().Unix()
}
