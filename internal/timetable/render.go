package timetable

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pfrederiksen/timebox/internal/course"
)

const continuation = "┃"

// WriteText renders the grid as an aligned table with two-digit hour labels.
// A block shows its course name in its first cell and a continuation mark
// below it.
func WriteText(w io.Writer, g *Grid) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := make([]string, 0, len(g.Days)+1)
	header = append(header, "")
	for _, d := range g.Days {
		header = append(header, d.Label())
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, hour := range g.Axis {
		row := make([]string, 0, len(g.Days)+1)
		row = append(row, fmt.Sprintf("%02d", hour))
		for _, d := range g.Days {
			row = append(row, cellText(g, d, hour))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func cellText(g *Grid, day course.Day, hour int) string {
	b, ok := g.BlockAt(day, hour)
	if !ok {
		return "."
	}
	if b.StartCell == hour {
		return b.Course.CourseName
	}
	return continuation
}
