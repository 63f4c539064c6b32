package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/timebox/internal/filter"
)

func newCoursesCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		query     string
		day       string
		daysOnly  bool
		category  string
		period    string
		fits      bool
		selects   []string
		recommend bool
		sortFlag  string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List and filter a loaded course list",
		Long: `Loads a course list exported by capture or sweep and prints the courses
matching the given filters. Courses passed with --select are treated as the
current timetable: they are marked in the list and --fits or --recommend
only show courses that do not overlap them.`,
		Example: `  timebox courses -i timebox_courses_2026-02-10.json --day mwf --period morning
  timebox courses -i courses.json --select "자료구조#01" --recommend --category major`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := filter.NewFilter()
			f.Query = query
			f.DaysOnly = daysOnly
			f.Category = filter.ParseCategory(category)
			f.FitsSelection = fits

			if day != "" {
				days, err := filter.ParseDays(day)
				if err != nil {
					return err
				}
				f.Days = days
			}
			p, err := filter.ParsePeriod(period)
			if err != nil {
				return err
			}
			f.Period = p

			order, err := parseSortOrder(sortFlag)
			if err != nil {
				return err
			}
			outFormat := OutputFormat(strings.ToLower(format))
			if outFormat != FormatText && outFormat != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			loaded, err := a.load(in)
			if err != nil {
				return err
			}
			set := a.selectCourses(loaded, selects)
			selected := set.Courses()

			shown := f.Apply(loaded, selected)
			if recommend {
				shown = filter.Recommend(loaded, selected, f)
			}
			sortCourses(shown, order)

			return WriteCourseList(a.out, &CourseListResult{
				Summary:     set.Summarize(len(loaded)),
				Filter:      f.String(),
				Recommended: recommend,
				Selected:    selected,
				Courses:     shown,
			}, outFormat)
		},
	}

	in.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&query, "query", "q", "", "Match course name or professor (case-insensitive)")
	flags.StringVar(&day, "day", "", "Days to match: 월,수 or mon,wed or presets mwf, tt, weekdays, weekend")
	flags.BoolVar(&daysOnly, "days-only", false, "Require every meeting to fall on --day")
	flags.StringVar(&category, "category", "", "Category: major, general or any text such as 전공")
	flags.StringVar(&period, "period", "", "Meeting start: morning or afternoon")
	flags.BoolVar(&fits, "fits", false, "Only courses that fit the selected timetable")
	flags.StringArrayVarP(&selects, "select", "s", nil, "Selected course as name#section (repeatable)")
	flags.BoolVar(&recommend, "recommend", false, "Show unselected courses that fit the selected timetable")
	flags.StringVar(&sortFlag, "sort", "", "Sort by: name, credit, professor or day")
	flags.StringVarP(&format, "format", "f", "text", "Output format: text or json")

	return cmd
}
