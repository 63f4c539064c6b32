package filter

import (
	"reflect"
	"testing"

	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/timebox/internal/course"
)

func newCourse(name, section, professor, category, schedule string) course.Course {
	return course.Course{
		CourseName:   name,
		Section:      section,
		Professor:    professor,
		Category:     category,
		Credit:       3,
		Schedule:     course.ParseSchedule(schedule),
		ScheduleText: schedule,
	}
}

var (
	dataStructures = newCourse("자료구조", "01", "홍길동", "전공필수", "월09:00~10:30,수09:00~10:30")
	osCourse       = newCourse("운영체제", "01", "김철수", "전공선택", "화13:00~15:00,목13:00~14:00")
	english        = newCourse("영어회화", "03", "Jane Smith", "교양", "금10:00~12:00")
	writing        = newCourse("글쓰기", "02", "이영희", "교양필수", "월10:00~11:00")
	online         = newCourse("온라인 특강", "01", "박교수", "교양", "")
	catalog        = []course.Course{dataStructures, osCourse, english, writing, online}
)

func names(courses []course.Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.CourseName
	}
	return out
}

func TestFilter_IsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"empty filter", NewFilter(), true},
		{"whitespace query", &Filter{Query: "  "}, true},
		{"query", &Filter{Query: "자료"}, false},
		{"days", &Filter{Days: []course.Day{course.Mon}}, false},
		{"category", &Filter{Category: "전공"}, false},
		{"period", &Filter{Period: PeriodMorning}, false},
		{"fits selection", &Filter{FitsSelection: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.IsEmpty(); got != tt.want {
				t.Errorf("Filter.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	selected := []course.Course{dataStructures}

	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{
			name:   "empty filter returns everything",
			filter: NewFilter(),
			want:   []string{"자료구조", "운영체제", "영어회화", "글쓰기", "온라인 특강"},
		},
		{
			name:   "query matches course name",
			filter: &Filter{Query: "운영"},
			want:   []string{"운영체제"},
		},
		{
			name:   "decomposed query matches",
			filter: &Filter{Query: norm.NFD.String("운영")},
			want:   []string{"운영체제"},
		},
		{
			name:   "query matches professor case-insensitively",
			filter: &Filter{Query: "jane"},
			want:   []string{"영어회화"},
		},
		{
			name:   "single day",
			filter: &Filter{Days: []course.Day{course.Mon}},
			want:   []string{"자료구조", "글쓰기"},
		},
		{
			name:   "days only",
			filter: &Filter{Days: []course.Day{course.Mon, course.Fri}, DaysOnly: true},
			want:   []string{"영어회화", "글쓰기"},
		},
		{
			name:   "major category",
			filter: &Filter{Category: "전공"},
			want:   []string{"자료구조", "운영체제"},
		},
		{
			name:   "general category",
			filter: &Filter{Category: "교양"},
			want:   []string{"영어회화", "글쓰기", "온라인 특강"},
		},
		{
			name:   "morning",
			filter: &Filter{Period: PeriodMorning},
			want:   []string{"자료구조", "영어회화", "글쓰기"},
		},
		{
			name:   "afternoon",
			filter: &Filter{Period: PeriodAfternoon},
			want:   []string{"운영체제"},
		},
		{
			name:   "fits selection drops overlapping courses",
			filter: &Filter{FitsSelection: true},
			want:   []string{"운영체제", "영어회화", "온라인 특강"},
		},
		{
			name:   "combined criteria",
			filter: &Filter{Category: "교양", FitsSelection: true, Period: PeriodMorning},
			want:   []string{"영어회화"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(tt.filter.Apply(catalog, selected))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	selected := []course.Course{dataStructures}

	got := names(Recommend(catalog, selected, nil))
	want := []string{"운영체제", "영어회화"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}

	got = names(Recommend(catalog, selected, &Filter{Days: []course.Day{course.Tue, course.Thu}, DaysOnly: true}))
	if !reflect.DeepEqual(got, []string{"운영체제"}) {
		t.Errorf("Recommend(tt) = %v", got)
	}

	if got := Recommend(catalog, catalog, nil); len(got) != 0 {
		t.Errorf("Recommend(all selected) = %v, want none", names(got))
	}

	got = names(Recommend(catalog, nil, nil))
	if len(got) != 4 {
		t.Errorf("Recommend(no selection) = %v, want every scheduled course", got)
	}
}

func TestFilter_String(t *testing.T) {
	if got := NewFilter().String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}

	f := &Filter{
		Query:         "홍길동",
		Days:          []course.Day{course.Mon, course.Wed},
		Category:      "전공",
		Period:        PeriodMorning,
		FitsSelection: true,
	}
	want := "Search: 홍길동 | Days: 월/수 | Category: 전공 | Period: morning | Fits timetable"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFilter_Clone(t *testing.T) {
	f := &Filter{Query: "a", Days: []course.Day{course.Mon}}
	clone := f.Clone()
	clone.Days[0] = course.Fri
	clone.Query = "b"

	if f.Days[0] != course.Mon || f.Query != "a" {
		t.Errorf("Clone() shares state with the original: %+v", f)
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input   string
		want    []course.Day
		wantErr bool
	}{
		{input: "mon,wed", want: []course.Day{course.Mon, course.Wed}},
		{input: "월/수/금", want: []course.Day{course.Mon, course.Wed, course.Fri}},
		{input: "금월수", want: []course.Day{course.Mon, course.Wed, course.Fri}},
		{input: "tt", want: []course.Day{course.Tue, course.Thu}},
		{input: "MWF", want: []course.Day{course.Mon, course.Wed, course.Fri}},
		{input: "sat sat", want: []course.Day{course.Sat}},
		{input: "", wantErr: true},
		{input: "funday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDays(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDays(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDays(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDays(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{"", PeriodAny, false},
		{"any", PeriodAny, false},
		{"Morning", PeriodMorning, false},
		{"아침", PeriodMorning, false},
		{"오후", PeriodAfternoon, false},
		{"evening", PeriodAny, true},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePeriod(%q) = %v, %v", tt.input, got, err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"전체":      "",
		"major":   "전공",
		"General": "교양",
		" 교양 ":    "교양",
	}
	for input, want := range tests {
		if got := ParseCategory(input); got != want {
			t.Errorf("ParseCategory(%q) = %q, want %q", input, got, want)
		}
	}
}
