package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/timebox/internal/course"
)

// Day presets accepted by ParseDays.
var dayPresets = map[string][]course.Day{
	"mwf":      {course.Mon, course.Wed, course.Fri},
	"tt":       {course.Tue, course.Thu},
	"weekdays": {course.Mon, course.Tue, course.Wed, course.Thu, course.Fri},
	"weekend":  {course.Sat, course.Sun},
}

// ParseDays parses a day list such as "mon,wed", "월/수/금", "월수금" or a
// preset ("mwf", "tt", "weekdays", "weekend"). Duplicates are dropped and
// the result is in week order.
func ParseDays(input string) ([]course.Day, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("day list cannot be empty")
	}

	if days, ok := dayPresets[strings.ToLower(input)]; ok {
		return append([]course.Day(nil), days...), nil
	}

	seen := make(map[course.Day]bool)
	for _, tok := range strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '/' || r == ' '
	}) {
		if d, err := course.ParseDay(tok); err == nil {
			seen[d] = true
			continue
		}
		// A run of Korean markers such as "월수금".
		for _, r := range tok {
			d, ok := course.DayFromMarker(r)
			if !ok {
				return nil, fmt.Errorf("invalid day: %s", tok)
			}
			seen[d] = true
		}
	}

	days := make([]course.Day, 0, len(seen))
	for _, d := range course.Days {
		if seen[d] {
			days = append(days, d)
		}
	}
	return days, nil
}

// ParsePeriod parses "any", "morning"/"아침" or "afternoon"/"오후".
func ParsePeriod(input string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "any", "all", "전체":
		return PeriodAny, nil
	case "morning", "am", "아침", "오전":
		return PeriodMorning, nil
	case "afternoon", "pm", "오후":
		return PeriodAfternoon, nil
	}
	return PeriodAny, fmt.Errorf("invalid period: %s (must be any, morning or afternoon)", input)
}

// ParseCategory normalizes the category option: "all" and "전체" clear it,
// "major" and "general" map to 전공 and 교양.
func ParseCategory(input string) string {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "all", "전체":
		return ""
	case "major":
		return "전공"
	case "general", "liberal":
		return "교양"
	}
	return strings.TrimSpace(input)
}
