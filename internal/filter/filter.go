// Package filter narrows a loaded course list.
//
// A Filter combines optional criteria, all of which must hold:
//   - Query: case-insensitive substring of the course name or professor
//   - Days: the course meets on one of the days (or, with DaysOnly, only on
//     those days)
//   - Category: substring of the course's category, e.g. "전공" or "교양"
//   - Period: every meeting starts in the morning, or every meeting starts
//     in the afternoon
//   - FitsSelection: the course does not overlap the current selection
//
// Recommend lists the unselected courses that fit the selection.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Query = "홍길동"
//	f.Days = []course.Day{course.Mon, course.Wed}
//	f.FitsSelection = true
//
//	visible := f.Apply(loaded, selected)
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/timebox/internal/conflict"
	"github.com/pfrederiksen/timebox/internal/course"
)

// Period restricts when a course's meetings start.
type Period int

const (
	PeriodAny Period = iota
	PeriodMorning
	PeriodAfternoon
)

// Noon divides morning from afternoon, in decimal hours.
const Noon = 12.0

func (p Period) String() string {
	switch p {
	case PeriodMorning:
		return "morning"
	case PeriodAfternoon:
		return "afternoon"
	default:
		return "any"
	}
}

// Filter represents course filtering criteria
type Filter struct {
	Query         string       `json:"query,omitempty"`
	Days          []course.Day `json:"days,omitempty"`
	DaysOnly      bool         `json:"days_only,omitempty"`
	Category      string       `json:"category,omitempty"`
	Period        Period       `json:"period,omitempty"`
	FitsSelection bool         `json:"fits_selection,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{
		Days: []course.Day{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" &&
		len(f.Days) == 0 &&
		strings.TrimSpace(f.Category) == "" &&
		f.Period == PeriodAny &&
		!f.FitsSelection
}

// Fold prepares text for comparison: trimmed, lower-cased and in NFC, so
// decomposed Hangul typed on some systems matches the portal's text.
func Fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// Matches checks c against every active criterion. selected is consulted
// only by FitsSelection.
func (f *Filter) Matches(c course.Course, selected []course.Course) bool {
	if q := Fold(f.Query); q != "" {
		if !strings.Contains(Fold(c.CourseName), q) &&
			!strings.Contains(Fold(c.Professor), q) {
			return false
		}
	}

	if len(f.Days) > 0 && !f.matchesDays(c) {
		return false
	}

	if cat := Fold(f.Category); cat != "" && !strings.Contains(Fold(c.Category), cat) {
		return false
	}

	if f.Period != PeriodAny && !f.matchesPeriod(c) {
		return false
	}

	if f.FitsSelection && conflict.HasConflict(selected, c) {
		return false
	}

	return true
}

func (f *Filter) matchesDays(c course.Course) bool {
	wanted := make(map[course.Day]bool, len(f.Days))
	for _, d := range f.Days {
		wanted[d] = true
	}

	if f.DaysOnly {
		if len(c.Schedule) == 0 {
			return false
		}
		for d := range c.Schedule {
			if !wanted[d] {
				return false
			}
		}
		return true
	}

	for d := range c.Schedule {
		if wanted[d] {
			return true
		}
	}
	return false
}

func (f *Filter) matchesPeriod(c course.Course) bool {
	if len(c.Schedule) == 0 {
		return false
	}
	for _, iv := range c.Schedule {
		morning := iv.Start < Noon
		if (f.Period == PeriodMorning) != morning {
			return false
		}
	}
	return true
}

// Apply returns the courses matching the filter, in their original order.
// An empty filter returns courses unchanged.
func (f *Filter) Apply(courses, selected []course.Course) []course.Course {
	if f.IsEmpty() {
		return courses
	}

	filtered := make([]course.Course, 0, len(courses))
	for _, c := range courses {
		if f.Matches(c, selected) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Recommend returns the scheduled courses that are not selected, fit the
// selection and match f (which may be nil).
func Recommend(courses, selected []course.Course, f *Filter) []course.Course {
	chosen := make(map[string]bool, len(selected))
	for _, c := range selected {
		chosen[c.ID()] = true
	}

	out := make([]course.Course, 0)
	for _, c := range courses {
		if chosen[c.ID()] || len(c.Schedule) == 0 {
			continue
		}
		if conflict.HasConflict(selected, c) {
			continue
		}
		if f != nil && !f.Matches(c, selected) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// String returns a human-readable description of the active criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if q := strings.TrimSpace(f.Query); q != "" {
		parts = append(parts, fmt.Sprintf("Search: %s", q))
	}

	if len(f.Days) > 0 {
		labels := make([]string, len(f.Days))
		for i, d := range f.Days {
			labels[i] = d.Label()
		}
		prefix := "Days"
		if f.DaysOnly {
			prefix = "Only"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", prefix, strings.Join(labels, "/")))
	}

	if cat := strings.TrimSpace(f.Category); cat != "" {
		parts = append(parts, fmt.Sprintf("Category: %s", cat))
	}

	if f.Period != PeriodAny {
		parts = append(parts, fmt.Sprintf("Period: %s", f.Period))
	}

	if f.FitsSelection {
		parts = append(parts, "Fits timetable")
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	clone := *f
	clone.Days = append([]course.Day{}, f.Days...)
	return &clone
}
