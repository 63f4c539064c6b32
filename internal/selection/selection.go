// Package selection holds the user's chosen courses.
//
// A Set keeps courses in insertion order and treats two courses with the
// same name and section as the same offering. Every Add consults the
// conflict package first; members are never re-validated afterwards.
package selection

import (
	"errors"
	"fmt"

	"github.com/pfrederiksen/timebox/internal/conflict"
	"github.com/pfrederiksen/timebox/internal/course"
)

var (
	ErrAlreadySelected = errors.New("course already selected")
	ErrConflict        = errors.New("course conflicts with selection")
)

// Key identifies a course offering inside a Set.
type Key struct {
	CourseName string
	Section    string
}

// KeyOf returns the Set key for c.
func KeyOf(c course.Course) Key {
	return Key{CourseName: c.CourseName, Section: c.Section}
}

// ConflictError explains why Add rejected a course.
type ConflictError struct {
	conflict.Conflict
	Candidate course.Course
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s overlaps %s on %s (%s vs %s)",
		e.Candidate.ID(), e.Existing.ID(), e.Day, e.Conflict.Candidate, e.Other)
}

// Unwrap lets callers match ErrConflict with errors.Is.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Set is an insertion-ordered collection of non-overlapping courses.
// It is not safe for concurrent use.
type Set struct {
	courses []course.Course
	index   map[Key]int
}

// New creates an empty Set.
func New() *Set {
	return &Set{index: make(map[Key]int)}
}

// Add appends c unless it is already selected or overlaps a member.
func (s *Set) Add(c course.Course) error {
	if _, exists := s.index[KeyOf(c)]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadySelected, c.ID())
	}
	if found, ok := conflict.FindConflict(s.courses, c); ok {
		return &ConflictError{Conflict: found, Candidate: c}
	}
	s.index[KeyOf(c)] = len(s.courses)
	s.courses = append(s.courses, c)
	return nil
}

// Remove deletes the course with the given key and reports whether it was
// present.
func (s *Set) Remove(k Key) bool {
	i, exists := s.index[k]
	if !exists {
		return false
	}
	s.courses = append(s.courses[:i], s.courses[i+1:]...)
	delete(s.index, k)
	for j := i; j < len(s.courses); j++ {
		s.index[KeyOf(s.courses[j])] = j
	}
	return true
}

// Contains reports whether a course with key k is selected.
func (s *Set) Contains(k Key) bool {
	_, exists := s.index[k]
	return exists
}

// Courses returns a copy of the members in insertion order.
func (s *Set) Courses() []course.Course {
	out := make([]course.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

// Len returns the number of selected courses.
func (s *Set) Len() int {
	return len(s.courses)
}

// TotalCredits sums the credits of every member.
func (s *Set) TotalCredits() int {
	total := 0
	for _, c := range s.courses {
		total += c.Credit
	}
	return total
}

// Summary is the header shown above a course list.
type Summary struct {
	Loaded       int `json:"loaded"`
	Selected     int `json:"selected"`
	TotalCredits int `json:"total_credits"`
}

// Summarize reports the selection against the number of loaded courses.
func (s *Set) Summarize(loaded int) Summary {
	return Summary{
		Loaded:       loaded,
		Selected:     s.Len(),
		TotalCredits: s.TotalCredits(),
	}
}
