// Package conflict decides whether a candidate course overlaps a set of
// already selected courses.
//
// Intervals are half-open: a course ending at 10:00 and another starting at
// 10:00 on the same day do not conflict.
package conflict

import (
	"github.com/pfrederiksen/timebox/internal/course"
)

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(a, b course.Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

// Conflict describes the first overlap found for a candidate.
type Conflict struct {
	Existing  course.Course
	Day       course.Day
	Candidate course.Interval
	Other     course.Interval
}

// FindConflict returns the first selected course whose interval overlaps the
// candidate's interval on the same day. Days are checked in week order so
// the result is deterministic.
func FindConflict(selected []course.Course, candidate course.Course) (Conflict, bool) {
	for _, day := range candidate.Schedule.Days() {
		cand := candidate.Schedule[day]
		for _, existing := range selected {
			other, ok := existing.Schedule[day]
			if !ok {
				continue
			}
			if Overlaps(cand, other) {
				return Conflict{
					Existing:  existing,
					Day:       day,
					Candidate: cand,
					Other:     other,
				}, true
			}
		}
	}
	return Conflict{}, false
}

// HasConflict reports whether candidate overlaps any selected course.
func HasConflict(selected []course.Course, candidate course.Course) bool {
	_, found := FindConflict(selected, candidate)
	return found
}
