package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pfrederiksen/timebox/internal/course"
	"github.com/pfrederiksen/timebox/internal/selection"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatXLSX OutputFormat = "xlsx"
	FormatICS  OutputFormat = "ics"
)

// CourseListResult contains data to be output by the courses command
type CourseListResult struct {
	Summary     selection.Summary `json:"summary"`
	Filter      string            `json:"filter"`
	Recommended bool              `json:"recommended,omitempty"`
	Selected    []course.Course   `json:"selected"`
	Courses     []course.Course   `json:"courses"`
}

// WriteCourseList writes the result in the specified format
func WriteCourseList(w io.Writer, result *CourseListResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeCourseText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeCourseText outputs the list as an aligned table under a summary line.
func writeCourseText(w io.Writer, result *CourseListResult) error {
	s := result.Summary
	fmt.Fprintf(w, "Loaded %d courses | Selected %d | %d credits\n", s.Loaded, s.Selected, s.TotalCredits)
	fmt.Fprintf(w, "Filter: %s\n", result.Filter)

	label := "Matching"
	if result.Recommended {
		label = "Recommended"
	}

	if len(result.Courses) == 0 {
		fmt.Fprintf(w, "\n%s courses: none\n", label)
		return nil
	}

	fmt.Fprintf(w, "\n%s courses (%d):\n", label, len(result.Courses))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tCOURSE\tSECTION\tCREDIT\tCATEGORY\tPROFESSOR\tTIME")
	selected := make(map[selection.Key]bool, len(result.Selected))
	for _, c := range result.Selected {
		selected[selection.KeyOf(c)] = true
	}
	for _, c := range result.Courses {
		mark := " "
		if selected[selection.KeyOf(c)] {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			mark, c.CourseName, c.Section, c.Credit, c.Category, c.Professor, timeText(c))
	}
	return tw.Flush()
}

func timeText(c course.Course) string {
	if t := c.TimeText(); strings.TrimSpace(t) != "" {
		return t
	}
	return "-"
}
