package course

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	entrySeparator = ","
	rangeSeparator = "~"
)

// ErrScheduleEntry marks a schedule entry that was dropped during parsing.
var ErrScheduleEntry = errors.New("unparsable schedule entry")

// ParseSchedule converts the portal's schedule text into a Schedule.
//
// The text is a comma-separated list of entries, each a day marker followed
// by a "start~end" range: "월13:00~15:00,수13:00~15:00". Entries with an
// unknown day marker, no range separator or unreadable times are skipped and
// the rest of the text is still processed. When two entries name the same
// day the later one wins.
func ParseSchedule(text string) Schedule {
	schedule := make(Schedule)
	for _, part := range strings.Split(text, entrySeparator) {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		day, iv, err := parseEntry(entry)
		if err != nil {
			continue
		}
		schedule[day] = iv
	}
	return schedule
}

// parseEntry parses a single trimmed, non-empty entry such as "월09:00~10:00".
func parseEntry(entry string) (Day, Interval, error) {
	marker, size := utf8.DecodeRuneInString(entry)
	day, ok := DayFromMarker(marker)
	if !ok {
		return 0, Interval{}, fmt.Errorf("%w: unknown day marker %q", ErrScheduleEntry, marker)
	}

	rest := strings.TrimSpace(entry[size:])
	if !strings.Contains(rest, rangeSeparator) {
		return 0, Interval{}, fmt.Errorf("%w: no range in %q", ErrScheduleEntry, entry)
	}

	bounds := strings.Split(rest, rangeSeparator)
	start, err := ParseClock(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, Interval{}, fmt.Errorf("%w: %v", ErrScheduleEntry, err)
	}
	end, err := ParseClock(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, Interval{}, fmt.Errorf("%w: %v", ErrScheduleEntry, err)
	}

	iv, err := NewInterval(start, end)
	if err != nil {
		return 0, Interval{}, fmt.Errorf("%w: %v", ErrScheduleEntry, err)
	}
	return day, iv, nil
}

// ParseClock converts "H:MM" or "HH:MM" into decimal hours.
func ParseClock(s string) (float64, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("clock %q is past midnight", s)
	}
	return float64(h) + float64(m)/60, nil
}

// FormatClock renders decimal hours as "HH:MM".
func FormatClock(hours float64) string {
	minutes := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
