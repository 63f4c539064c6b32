package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/timebox/internal/course"
	"github.com/pfrederiksen/timebox/internal/filter"
	"github.com/pfrederiksen/timebox/internal/logger"
	"github.com/pfrederiksen/timebox/internal/selection"
	"github.com/pfrederiksen/timebox/internal/storage"
)

var (
	errNoInput         = errors.New("one of --input or --fragment is required")
	errAmbiguousSelect = errors.New("course name matches more than one section")
	errUnknownCourse   = errors.New("no loaded course matches")
)

// inputFlags are the course list sources shared by courses and timetable.
type inputFlags struct {
	input    string
	fragment string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "Course list JSON file, or - for stdin")
	flags.StringVar(&f.fragment, "fragment", "", "URL (or fragment) carrying a percent-encoded course list")
}

// load reads the course list from whichever source was given.
func (a *app) load(f inputFlags) ([]course.Course, error) {
	var (
		courses []course.Course
		err     error
	)
	switch {
	case f.input != "" && f.fragment != "":
		return nil, errors.New("--input and --fragment are mutually exclusive")
	case f.input == "-":
		courses, err = storage.LoadCourses(a.in)
	case f.input != "":
		courses, err = storage.LoadFile(f.input)
	case f.fragment != "":
		courses, err = storage.LoadFragment(f.fragment)
	default:
		return nil, errNoInput
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("courses loaded", logger.Fields{"count": len(courses)})
	return courses, nil
}

// resolve finds the loaded course named by ref: "name#section", or a bare
// name when only one section of it was loaded.
func resolve(courses []course.Course, ref string) (course.Course, error) {
	name, section, hasSection := strings.Cut(ref, "#")
	name = filter.Fold(name)

	var matches []course.Course
	for _, c := range courses {
		if filter.Fold(c.CourseName) != name {
			continue
		}
		if hasSection && c.Section != strings.TrimSpace(section) {
			continue
		}
		matches = append(matches, c)
	}

	switch len(matches) {
	case 0:
		return course.Course{}, fmt.Errorf("%w: %s", errUnknownCourse, ref)
	case 1:
		return matches[0], nil
	default:
		return course.Course{}, fmt.Errorf("%w: %s (use name#section)", errAmbiguousSelect, ref)
	}
}

// selectCourses adds each ref in order. Courses that cannot be found or
// that the set rejects are reported to errOut and skipped.
func (a *app) selectCourses(courses []course.Course, refs []string) *selection.Set {
	set := selection.New()
	for _, ref := range refs {
		c, err := resolve(courses, ref)
		if err == nil {
			err = set.Add(c)
		}
		if err != nil {
			logger.IncrCounter("selection.rejected")
			logger.Debug("selection rejected", logger.Fields{"course": ref, "error": err.Error()})
			fmt.Fprintf(a.errOut, "Skipped %s: %v\n", ref, err)
		}
	}
	return set
}
