package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/timebox/internal/calendar"
	"github.com/pfrederiksen/timebox/internal/logger"
	"github.com/pfrederiksen/timebox/internal/timetable"
)

// termStartLayout is the --term-start date format.
const termStartLayout = "2006-01-02"

func newTimetableCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		selects   []string
		format    string
		output    string
		termStart string
		weeks     int
	)

	cmd := &cobra.Command{
		Use:   "timetable",
		Short: "Build a weekly timetable from selected courses",
		Long: `Loads a course list and adds each --select course in order. A course that
overlaps one already added is rejected and reported; the rest are laid out on
a weekly grid and rendered as text, JSON, an Excel workbook or an iCalendar
file.`,
		Example: `  timebox timetable -i courses.json -s "자료구조#01" -s "운영체제#02"
  timebox timetable -i courses.json -s 자료구조 --format ics --term-start 2026-03-02 -o term.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat := OutputFormat(strings.ToLower(format))
			switch outFormat {
			case FormatText, FormatJSON, FormatXLSX, FormatICS:
			default:
				return fmt.Errorf("invalid format: %s (must be 'text', 'json', 'xlsx' or 'ics')", format)
			}
			if outFormat == FormatXLSX && output == "" {
				return fmt.Errorf("--output is required for xlsx")
			}

			calOpts := calendar.Options{Weeks: weeks, Stamp: a.now()}
			if termStart != "" {
				start, err := time.Parse(termStartLayout, termStart)
				if err != nil {
					return fmt.Errorf("invalid --term-start: %s (want YYYY-MM-DD)", termStart)
				}
				calOpts.TermStart = start
			}

			loaded, err := a.load(in)
			if err != nil {
				return err
			}
			set := a.selectCourses(loaded, selects)
			grid := timetable.Assemble(set.Courses(), a.cfg.TimetableOptions())

			logger.Info("timetable assembled", logger.Fields{
				"courses": set.Len(),
				"blocks":  len(grid.Blocks),
				"credits": set.TotalCredits(),
			})

			return a.writeTo(output, func(w io.Writer) error {
				switch outFormat {
				case FormatJSON:
					return writeJSON(w, grid)
				case FormatXLSX:
					return timetable.WriteXLSX(w, grid)
				case FormatICS:
					return calendar.WriteICS(w, grid, calOpts)
				default:
					s := set.Summarize(len(loaded))
					fmt.Fprintf(w, "Selected %d of %d courses | %d credits\n\n", s.Selected, s.Loaded, s.TotalCredits)
					return timetable.WriteText(w, grid)
				}
			})
		},
	}

	in.register(cmd)
	flags := cmd.Flags()
	flags.StringArrayVarP(&selects, "select", "s", nil, "Course to add as name#section (repeatable, added in order)")
	flags.StringVarP(&format, "format", "f", "text", "Output format: text, json, xlsx or ics")
	flags.StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	flags.StringVar(&termStart, "term-start", "", "First day of term for ics output (YYYY-MM-DD, default today)")
	flags.IntVar(&weeks, "weeks", calendar.DefaultWeeks, "Weekly occurrences for ics output")

	return cmd
}

// writeTo runs render against path, or against stdout when path is empty.
func (a *app) writeTo(path string, render func(io.Writer) error) error {
	if path == "" {
		return render(a.out)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	fmt.Fprintf(a.errOut, "Wrote %s\n", path)
	return nil
}
