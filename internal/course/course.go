package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Day is a day of the week, Monday first.
type Day int

const (
	Mon Day = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

// Days lists every day in display order.
var Days = []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var (
	dayNames  = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
	dayLabels = [...]string{"월", "화", "수", "목", "금", "토", "일"}
)

var (
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidInterval = errors.New("interval start must be before end")
	ErrMissingName     = errors.New("course name is empty")
)

// Valid reports whether d is one of the seven enumerated days.
func (d Day) Valid() bool {
	return d >= Mon && d <= Sun
}

// String returns the lowercase English abbreviation ("mon").
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Label returns the single-character Korean marker used by the portal ("월").
func (d Day) Label() string {
	if !d.Valid() {
		return "?"
	}
	return dayLabels[d]
}

// Weekend reports whether d is Saturday or Sunday.
func (d Day) Weekend() bool {
	return d == Sat || d == Sun
}

// Weekday converts d to the standard library weekday.
func (d Day) Weekday() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// MarshalText implements encoding.TextMarshaler so Day works as a JSON map key.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
	}
	return []byte(dayNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDay accepts either the English abbreviation ("mon", "Mon") or the
// Korean marker ("월").
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i, name := range dayNames {
		if strings.EqualFold(s, name) {
			return Day(i), nil
		}
	}
	for i, label := range dayLabels {
		if s == label {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// DayFromMarker resolves a schedule entry's leading day character.
func DayFromMarker(r rune) (Day, bool) {
	for i, label := range dayLabels {
		if string(r) == label {
			return Day(i), true
		}
	}
	return 0, false
}

// Interval is a half-open time range [Start, End) in decimal hours.
type Interval struct {
	Start float64
	End   float64
}

// NewInterval validates start < end.
func NewInterval(start, end float64) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: %s~%s", ErrInvalidInterval, FormatClock(start), FormatClock(end))
	}
	return iv, nil
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// String renders the interval as "HH:MM~HH:MM".
func (iv Interval) String() string {
	return FormatClock(iv.Start) + "~" + FormatClock(iv.End)
}

type intervalJSON struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
}

// MarshalJSON writes {"start":"HH:MM","end":"HH:MM"}.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}{FormatClock(iv.Start), FormatClock(iv.End)})
}

// UnmarshalJSON accepts clock strings ("09:00") or decimal hours (9.5).
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw intervalJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := decodeHour(raw.Start)
	if err != nil {
		return fmt.Errorf("interval start: %w", err)
	}
	end, err := decodeHour(raw.End)
	if err != nil {
		return fmt.Errorf("interval end: %w", err)
	}
	parsed, err := NewInterval(start, end)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

func decodeHour(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing value")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseClock(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("expected clock string or number, got %s", string(raw))
	}
	return f, nil
}

// Schedule maps each day to at most one interval.
type Schedule map[Day]Interval

// Days returns the scheduled days in week order.
func (s Schedule) Days() []Day {
	days := make([]Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// String renders the schedule in the portal's text form.
func (s Schedule) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s.Days() {
		parts = append(parts, d.Label()+s[d].String())
	}
	return strings.Join(parts, ",")
}

// Course is a normalized course offering. Values are never mutated after
// construction; copy before changing a field.
type Course struct {
	Department   string   `json:"department"`
	Grade        string   `json:"grade"`
	CourseName   string   `json:"courseName"`
	Section      string   `json:"section"`
	Category     string   `json:"category"`
	Credit       int      `json:"credit"`
	CreditText   string   `json:"creditText,omitempty"`
	ClassType    string   `json:"classType"`
	Professor    string   `json:"professor"`
	Schedule     Schedule `json:"schedule"`
	ScheduleText string   `json:"scheduleText,omitempty"`
}

// ID identifies a course offering by name and section ("자료구조#01").
func (c Course) ID() string {
	return c.CourseName + "#" + c.Section
}

// TimeText returns the raw schedule text, or the canonical rendering of the
// parsed schedule when no text was recorded.
func (c Course) TimeText() string {
	if c.ScheduleText != "" {
		return c.ScheduleText
	}
	return c.Schedule.String()
}

// Validate checks the fields every consumer relies on.
func (c Course) Validate() error {
	if strings.TrimSpace(c.CourseName) == "" {
		return ErrMissingName
	}
	for d, iv := range c.Schedule {
		if !d.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidDay, int(d))
		}
		if !iv.Valid() {
			return fmt.Errorf("%s: %w", d, ErrInvalidInterval)
		}
	}
	return nil
}
