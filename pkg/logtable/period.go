package logtable

import "time"

// PeriodStart returns the current UTC time minus minutesAgo minutes.
func PeriodStart(minutesAgo int) time.Time {
	return PeriodStartAt(time.Now(), minutesAgo)
}

// PeriodStartAt returns now, in UTC, minus minutesAgo minutes.
func PeriodStartAt(now time.Time, minutesAgo int) time.Time {
	return now.UTC().Add(-time.Duration(minutesAgo) * time.Minute)
}

// WallClockUTC drops the location of t and reads its wall clock as UTC.
// Record times are UTC, so a since bound in another zone is shifted by its
// offset rather than converted. Pass UTC times to get instant comparison.
func WallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
