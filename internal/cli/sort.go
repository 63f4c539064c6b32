package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/timebox/internal/course"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone        SortOrder = ""
	SortByName      SortOrder = "name"
	SortByCredit    SortOrder = "credit"
	SortByProfessor SortOrder = "professor"
	SortByDay       SortOrder = "day"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortByName, SortByCredit, SortByProfessor, SortByDay:
		return o, nil
	}
	return SortNone, fmt.Errorf("invalid sort order: %s (must be 'name', 'credit', 'professor' or 'day')", s)
}

// sortCourses sorts courses in place. SortNone keeps the loaded order.
func sortCourses(courses []course.Course, order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(courses, func(i, j int) bool {
			return compareByName(courses[i], courses[j])
		})
	case SortByCredit:
		sort.SliceStable(courses, func(i, j int) bool {
			if courses[i].Credit != courses[j].Credit {
				return courses[i].Credit > courses[j].Credit
			}
			return compareByName(courses[i], courses[j])
		})
	case SortByProfessor:
		sort.SliceStable(courses, func(i, j int) bool {
			if courses[i].Professor != courses[j].Professor {
				return courses[i].Professor < courses[j].Professor
			}
			return compareByName(courses[i], courses[j])
		})
	case SortByDay:
		sort.SliceStable(courses, func(i, j int) bool {
			return compareByFirstMeeting(courses[i], courses[j])
		})
	}
}

func compareByName(a, b course.Course) bool {
	if a.CourseName != b.CourseName {
		return strings.ToLower(a.CourseName) < strings.ToLower(b.CourseName)
	}
	return a.Section < b.Section
}

// compareByFirstMeeting orders by earliest day, then start time. Courses
// without a schedule go last.
func compareByFirstMeeting(a, b course.Course) bool {
	da, db := a.Schedule.Days(), b.Schedule.Days()
	if len(da) == 0 || len(db) == 0 {
		if len(da) != len(db) {
			return len(db) == 0
		}
		return compareByName(a, b)
	}
	if da[0] != db[0] {
		return da[0] < db[0]
	}
	if sa, sb := a.Schedule[da[0]].Start, b.Schedule[db[0]].Start; sa != sb {
		return sa < sb
	}
	return compareByName(a, b)
}
