// Package calendar exports a timetable as an iCalendar file with one weekly
// recurring event per course meeting.
package calendar

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/timebox/internal/course"
	"github.com/pfrederiksen/timebox/internal/timetable"
)

const (
	ProductID    = "-//TimeBox//timebox//KO"
	DefaultWeeks = 16
)

// Options places the weekly timetable on the calendar.
type Options struct {
	// TermStart is the first day of the term. Zero means today.
	TermStart time.Time
	// Weeks is the number of weekly occurrences. Zero means DefaultWeeks.
	Weeks int
	// Location interprets meeting times. Nil means Asia/Seoul.
	Location *time.Location
	// Stamp is written as DTSTAMP. Zero means now.
	Stamp time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = seoul()
	}
	if o.Stamp.IsZero() {
		o.Stamp = time.Now()
	}
	if o.TermStart.IsZero() {
		o.TermStart = time.Now()
	}
	if o.Weeks <= 0 {
		o.Weeks = DefaultWeeks
	}
	return o
}

func seoul() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// Build creates the calendar for g. Each block becomes an event at the
// course's exact meeting time on that day, repeated weekly.
func Build(g *timetable.Grid, opts Options) *ics.Calendar {
	opts = opts.withDefaults()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)

	for _, b := range g.Blocks {
		iv, ok := b.Course.Schedule[b.Day]
		if !ok {
			continue
		}

		first := FirstOccurrence(opts.TermStart, b.Day, opts.Location)
		start := at(first, iv.Start)
		end := at(first, iv.End)

		evt := cal.AddEvent(b.ID + "@timebox")
		evt.SetDtStampTime(opts.Stamp)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(summary(b.Course))
		evt.SetDescription(description(b.Course))
		evt.SetProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
	}
	return cal
}

// WriteICS writes the calendar for g to w.
func WriteICS(w io.Writer, g *timetable.Grid, opts Options) error {
	_, err := io.WriteString(w, Build(g, opts).Serialize())
	return err
}

// FirstOccurrence returns midnight of the first date on or after termStart
// that falls on day.
func FirstOccurrence(termStart time.Time, day course.Day, loc *time.Location) time.Time {
	t := termStart.In(loc)
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	shift := (int(day.Weekday()) - int(date.Weekday()) + 7) % 7
	return date.AddDate(0, 0, shift)
}

func at(date time.Time, hours float64) time.Time {
	minutes := int(math.Round(hours * 60))
	return date.Add(time.Duration(minutes) * time.Minute)
}

func summary(c course.Course) string {
	if c.Section == "" {
		return c.CourseName
	}
	return fmt.Sprintf("%s (%s)", c.CourseName, c.Section)
}

func description(c course.Course) string {
	var lines []string
	if c.Professor != "" {
		lines = append(lines, "교수: "+c.Professor)
	}
	if c.Credit > 0 {
		lines = append(lines, fmt.Sprintf("학점: %d", c.Credit))
	}
	if c.Category != "" {
		lines = append(lines, "이수구분: "+c.Category)
	}
	if t := c.TimeText(); t != "" {
		lines = append(lines, "시간: "+t)
	}
	return strings.Join(lines, "\n")
}
