// Package filetime converts between Go's time.Time and the 64-bit Windows
// FILETIME representation (100-ns ticks since 1601-01-01 UTC) the archive
// format persists for CreationTime, LastUpdateTime, and each entry's
// ModificationTime.
package filetime

import "time"

// epochDelta is the number of 100-ns ticks between the FILETIME epoch
// (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const epochDelta = 116444736000000000

// ticksPerSecond is the number of 100-ns ticks in one second.
const ticksPerSecond = 10000000

// FromTime converts t to its FILETIME representation.
func FromTime(t time.Time) int64 {
	u := t.UTC()
	ticks := u.Unix()*ticksPerSecond + int64(u.Nanosecond()/100)
	return ticks + epochDelta
}

// ToTime converts a FILETIME value to a UTC time.Time.
func ToTime(ft int64) time.Time {
	ticks := ft - epochDelta
	sec := ticks / ticksPerSecond
	nsec := (ticks % ticksPerSecond) * 100
	return time.Unix(sec, nsec).UTC()
}

// Now returns the current time as a FILETIME value.
func Now() int64 {
	return FromTime(time.Now())
}
