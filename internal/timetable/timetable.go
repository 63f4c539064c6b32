// Package timetable assembles selected courses into a weekly grid.
//
// The grid's vertical axis is a list of whole hours. It defaults to 9..18
// and widens to cover every scheduled interval; it never shrinks below the
// default. Each (course, day) interval becomes a Block snapped outward to
// whole-hour cells. Weekend columns appear only when a course uses them.
package timetable

import (
	"math"

	"github.com/pfrederiksen/timebox/internal/course"
)

const (
	DefaultAxisStart = 9
	DefaultAxisEnd   = 18
)

// Options configures the default axis bounds.
type Options struct {
	AxisStart int
	AxisEnd   int
}

// DefaultOptions returns the 9..18 axis.
func DefaultOptions() Options {
	return Options{AxisStart: DefaultAxisStart, AxisEnd: DefaultAxisEnd}
}

// Block is one course's contiguous run of cells on one day. StartCell is
// inclusive and EndCell exclusive, both expressed as hours.
type Block struct {
	ID        string        `json:"id"`
	Course    course.Course `json:"course"`
	Day       course.Day    `json:"day"`
	StartCell int           `json:"startCell"`
	EndCell   int           `json:"endCell"`
}

// Covers reports whether the block occupies the cell starting at hour.
func (b Block) Covers(hour int) bool {
	return hour >= b.StartCell && hour < b.EndCell
}

// Column holds the blocks rendered under one day heading.
type Column struct {
	Day    course.Day `json:"day"`
	Blocks []Block    `json:"blocks"`
}

// Grid is everything a renderer needs.
type Grid struct {
	Axis    []int        `json:"axis"`
	Days    []course.Day `json:"days"`
	Blocks  []Block      `json:"blocks"`
	Columns []Column     `json:"columns"`
}

// BlockID builds the identity of a course's block on a day.
func BlockID(c course.Course, day course.Day) string {
	return c.CourseName + "-" + c.Section + "-" + day.String()
}

// Assemble derives the grid for courses. The result depends only on the
// input, so calling it twice on the same selection yields identical grids.
func Assemble(courses []course.Course, opts Options) *Grid {
	lo, hi := axisBounds(courses, opts)

	axis := make([]int, 0, hi-lo+1)
	for h := lo; h <= hi; h++ {
		axis = append(axis, h)
	}

	days := visibleDays(courses)
	shown := make(map[course.Day]int, len(days))
	columns := make([]Column, len(days))
	for i, d := range days {
		shown[d] = i
		columns[i] = Column{Day: d, Blocks: []Block{}}
	}

	blocks := make([]Block, 0)
	for _, c := range courses {
		for _, day := range c.Schedule.Days() {
			iv := c.Schedule[day]
			start := clamp(int(math.Floor(iv.Start)), lo, hi)
			end := clamp(int(math.Ceil(iv.End)), lo, hi)
			if start >= end {
				continue
			}
			b := Block{
				ID:        BlockID(c, day),
				Course:    c,
				Day:       day,
				StartCell: start,
				EndCell:   end,
			}
			blocks = append(blocks, b)
			if i, ok := shown[day]; ok {
				columns[i].Blocks = append(columns[i].Blocks, b)
			}
		}
	}

	return &Grid{
		Axis:    axis,
		Days:    days,
		Blocks:  blocks,
		Columns: columns,
	}
}

// axisBounds returns the first and last hour of the axis.
func axisBounds(courses []course.Course, opts Options) (int, int) {
	lo, hi := opts.AxisStart, opts.AxisEnd
	for _, c := range courses {
		for _, iv := range c.Schedule {
			if start := int(math.Floor(iv.Start)); start < lo {
				lo = start
			}
			if end := int(math.Ceil(iv.End)); end > hi {
				hi = end
			}
		}
	}
	return lo, hi
}

// visibleDays lists Monday to Friday plus any weekend day in use.
func visibleDays(courses []course.Course) []course.Day {
	used := make(map[course.Day]bool)
	for _, c := range courses {
		for d := range c.Schedule {
			used[d] = true
		}
	}

	days := make([]course.Day, 0, len(course.Days))
	for _, d := range course.Days {
		if !d.Weekend() || used[d] {
			days = append(days, d)
		}
	}
	return days
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Column returns the column for day, if it is visible.
func (g *Grid) Column(day course.Day) (Column, bool) {
	for _, col := range g.Columns {
		if col.Day == day {
			return col, true
		}
	}
	return Column{}, false
}

// BlockAt returns the block covering the given day and hour cell.
func (g *Grid) BlockAt(day course.Day, hour int) (Block, bool) {
	col, ok := g.Column(day)
	if !ok {
		return Block{}, false
	}
	for _, b := range col.Blocks {
		if b.Covers(hour) {
			return b, true
		}
	}
	return Block{}, false
}
