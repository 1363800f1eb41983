// Package timerange provides half-open time interval primitives shared by the
// availability resolver, slot generator, and booking transactor.
package timerange

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that merely touch at an endpoint do not
// overlap, so back-to-back bookings are allowed.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Buffered widens [start, end) by the given leading and trailing padding.
func Buffered(start, end time.Time, before, after time.Duration) (time.Time, time.Time) {
	return start.Add(-before), end.Add(after)
}

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time `db:"start" json:"start"`
	End   time.Time `db:"end" json:"end"`
}

// Overlaps reports whether two ranges intersect.
func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Buffered returns the range widened by the given padding on each side.
func (r Range) Buffered(before, after time.Duration) Range {
	start, end := Buffered(r.Start, r.End, before, after)
	return Range{Start: start, End: end}
}

// ConflictsWith reports whether a candidate booking collides with a committed
// booked range under buffer padding. Two things disqualify the candidate: its
// raw interval overlaps the booked interval, or its start falls inside the
// booked interval widened by the padding. A candidate that ends exactly where
// the booked interval starts stays bookable, so buffers push later starts out
// without eating the preceding back-to-back slot.
func (r Range) ConflictsWith(booked Range, before, after time.Duration) bool {
	if r.Overlaps(booked) {
		return true
	}
	padded := booked.Buffered(before, after)
	return !r.Start.Before(padded.Start) && r.Start.Before(padded.End)
}

// Contains reports whether [start, end) lies entirely inside the range.
func (r Range) Contains(start, end time.Time) bool {
	return !start.Before(r.Start) && !end.After(r.End)
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
