// Package cli implements the command-line interface for timebox.
//
// The root command loads configuration (flags, TIMEBOX_* environment
// variables, timebox.yaml) and configures logging. Subcommands:
//
//   - capture: open the portal in Chrome, intercept the next course search
//     response and export it
//   - sweep: scroll through the portal's results grid and export every
//     course it renders
//   - courses: filter, sort and summarize a course list, or recommend
//     courses that fit a selection
//   - timetable: select courses through the conflict check and render the
//     timetable as text, JSON, XLSX or iCalendar
package cli
