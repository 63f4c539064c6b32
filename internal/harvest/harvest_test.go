package harvest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/course"
)

func gridRow(name, section, timeText string) []string {
	return []string{"1", "컴퓨터공학과", "2", name, section, "전공", "3", "대면", timeText, "", "홍길동"}
}

// fakeGrid renders only the rows inside its viewport, like the portal's grid.
type fakeGrid struct {
	rows      [][]string
	rowHeight float64
	height    float64
	offset    float64
	unbounded bool

	scrolls int
	err     error
}

func (g *fakeGrid) maxOffset() float64 {
	if g.unbounded {
		return math.Inf(1)
	}
	return math.Max(0, float64(len(g.rows))*g.rowHeight-g.height)
}

func (g *fakeGrid) VisibleRows(ctx context.Context) ([][]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	first := int(g.offset / g.rowHeight)
	last := int(math.Ceil((g.offset + g.height) / g.rowHeight))
	if first > len(g.rows) {
		first = len(g.rows)
	}
	if last > len(g.rows) {
		last = len(g.rows)
	}
	return g.rows[first:last], nil
}

func (g *fakeGrid) ScrollOffset(ctx context.Context) (float64, error) {
	return g.offset, nil
}

func (g *fakeGrid) ViewportHeight(ctx context.Context) (float64, error) {
	return g.height, nil
}

func (g *fakeGrid) ScrollBy(ctx context.Context, delta float64) error {
	g.scrolls++
	g.offset = math.Min(g.offset+delta, g.maxOffset())
	return nil
}

func newGrid(n int) *fakeGrid {
	g := &fakeGrid{rowHeight: 20, height: 100}
	for i := 0; i < n; i++ {
		g.rows = append(g.rows, gridRow(fmt.Sprintf("과목%02d", i), "01", "월09:00~10:30"))
	}
	return g
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.SettleDelay = time.Millisecond
	return opts
}

func TestSweep_StopsWhenStable(t *testing.T) {
	g := newGrid(25)

	result, err := Sweep(context.Background(), g, fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	if result.Len() != 25 {
		t.Errorf("Sweep() harvested %d courses, want 25", result.Len())
	}
	// Five scrolls reach the bottom, then three unchanged iterations.
	if result.Iterations != 8 {
		t.Errorf("Iterations = %d, want 8", result.Iterations)
	}
	if g.scrolls != result.Iterations {
		t.Errorf("scrolls = %d, want %d", g.scrolls, result.Iterations)
	}
	for i, c := range result.Courses {
		if want := fmt.Sprintf("과목%02d", i); c.CourseName != want {
			t.Fatalf("Courses[%d] = %q, want %q (first-seen order)", i, c.CourseName, want)
		}
	}
}

func TestSweep_SingleScreen(t *testing.T) {
	g := newGrid(3)

	result, err := Sweep(context.Background(), g, fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Len() != 3 {
		t.Errorf("Len() = %d, want 3", result.Len())
	}
	// The offset is already at its maximum: the first iteration moves it
	// from the -1 sentinel, the next three are stable.
	if result.Iterations != 4 {
		t.Errorf("Iterations = %d, want 4", result.Iterations)
	}
}

func TestSweep_Deduplicates(t *testing.T) {
	g := &fakeGrid{rowHeight: 20, height: 100}
	same := gridRow("자료구조", "01", "월09:00~10:30")
	g.rows = [][]string{
		same,
		same,
		gridRow("자료구조", "02", "화09:00~10:30"),
		same,
		// Same course and section, different schedule text: a distinct key.
		gridRow("자료구조", "01", "수09:00~10:30"),
	}

	result, err := Sweep(context.Background(), g, fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", result.Len())
	}
	if len(result.Cells) != result.Len() {
		t.Errorf("Cells = %d, want %d", len(result.Cells), result.Len())
	}
	if result.Courses[1].Section != "02" {
		t.Errorf("Courses[1].Section = %q, want 02", result.Courses[1].Section)
	}
}

func TestSweep_KeepsRowsDifferingInCreditText(t *testing.T) {
	g := &fakeGrid{rowHeight: 20, height: 100}
	pass := gridRow("세미나", "01", "금15:00~16:00")
	pass[6] = "P/F"
	tba := gridRow("세미나", "01", "금15:00~16:00")
	tba[6] = "TBA"
	g.rows = [][]string{pass, tba, pass}

	result, err := Sweep(context.Background(), g, fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", result.Len())
	}
	if result.Courses[0].CreditText != "P/F" || result.Courses[1].CreditText != "TBA" {
		t.Errorf("CreditText = %q, %q", result.Courses[0].CreditText, result.Courses[1].CreditText)
	}
}

func TestSweep_SkipsMalformedRows(t *testing.T) {
	g := &fakeGrid{rowHeight: 20, height: 100}
	g.rows = [][]string{
		{"1", "학과", "과목"},
		gridRow("", "01", "월09:00~10:30"),
		gridRow("운영체제", "01", "화13:00~15:00"),
	}

	result, err := Sweep(context.Background(), g, fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Len() != 1 {
		t.Errorf("Len() = %d, want 1", result.Len())
	}
	if result.Skipped == 0 {
		t.Error("Skipped = 0, want malformed rows counted")
	}
}

func TestSweep_NoData(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"empty grid", nil},
		{"only malformed rows", [][]string{{"1", "2"}, gridRow("  ", "01", "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGrid{rows: tt.rows, rowHeight: 20, height: 100}
			result, err := Sweep(context.Background(), g, fastOptions())
			if !errors.Is(err, ErrNoData) {
				t.Errorf("Sweep() error = %v, want ErrNoData", err)
			}
			if result != nil {
				t.Errorf("Sweep() result = %+v, want nil", result)
			}
		})
	}
}

func TestSweep_MaxIterations(t *testing.T) {
	g := newGrid(1000)
	g.unbounded = true

	opts := fastOptions()
	opts.MaxIterations = 5

	result, err := Sweep(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if result.Iterations != 5 {
		t.Errorf("Iterations = %d, want 5", result.Iterations)
	}
	if result.Len() == 1000 {
		t.Error("Sweep() read past the iteration cap")
	}
}

func TestSweep_Errors(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		opts := DefaultOptions()
		opts.SettleDelay = time.Minute
		_, err := Sweep(ctx, newGrid(25), opts)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Sweep() error = %v, want context.Canceled", err)
		}
	})

	t.Run("row source failure", func(t *testing.T) {
		boom := errors.New("row container not found")
		g := newGrid(5)
		g.err = boom

		_, err := Sweep(context.Background(), g, fastOptions())
		if !errors.Is(err, boom) {
			t.Errorf("Sweep() error = %v, want %v", err, boom)
		}
	})
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	if got != DefaultOptions() {
		t.Errorf("withDefaults() = %+v, want %+v", got, DefaultOptions())
	}

	custom := Options{SettleDelay: time.Second, Overlap: 5, MaxIterations: 7, StableIterations: 2, MinColumns: 12}
	if got := custom.withDefaults(); got != custom {
		t.Errorf("withDefaults() changed explicit options: %+v", got)
	}
}

func TestExtractRow(t *testing.T) {
	tests := []struct {
		name       string
		cells      []string
		minColumns int
		wantErr    bool
		check      func(*testing.T, course.Course)
	}{
		{
			name:  "full row",
			cells: []string{"1", " 컴퓨터공학과 ", "3", "운영체제", "02", "전공", "3", "대면", "화13:00~15:00,목13:00~14:00", "x", "김철수"},
			check: func(t *testing.T, c course.Course) {
				if c.Department != "컴퓨터공학과" || c.Grade != "3" || c.Section != "02" || c.Credit != 3 {
					t.Errorf("fields = %+v", c)
				}
				if c.Professor != "김철수" || c.ClassType != "대면" || c.Category != "전공" {
					t.Errorf("fields = %+v", c)
				}
				if len(c.Schedule) != 2 || c.Schedule[course.Thu].End != 14 {
					t.Errorf("Schedule = %v", c.Schedule)
				}
				if c.ScheduleText != "화13:00~15:00,목13:00~14:00" {
					t.Errorf("ScheduleText = %q", c.ScheduleText)
				}
			},
		},
		{
			name:  "non-numeric credit",
			cells: gridRowWith(6, "-"),
			check: func(t *testing.T, c course.Course) {
				if c.Credit != 0 {
					t.Errorf("Credit = %d, want 0", c.Credit)
				}
				if c.CreditText != "-" {
					t.Errorf("CreditText = %q, want the raw cell", c.CreditText)
				}
			},
		},
		{
			name:  "no schedule",
			cells: gridRowWith(8, ""),
			check: func(t *testing.T, c course.Course) {
				if len(c.Schedule) != 0 {
					t.Errorf("Schedule = %v, want empty", c.Schedule)
				}
			},
		},
		{name: "too few cells", cells: gridRow("A", "01", "")[:10], wantErr: true},
		{name: "blank name", cells: gridRowWith(3, "   "), wantErr: true},
		{name: "custom minimum", cells: gridRow("A", "01", ""), minColumns: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ExtractRow(tt.cells, tt.minColumns)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedRow) {
					t.Errorf("ExtractRow() error = %v, want ErrMalformedRow", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractRow() error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func gridRowWith(col int, value string) []string {
	row := gridRow("자료구조", "01", "월09:00~10:30")
	row[col] = value
	return row
}

const gridHTML = `
<tbody id="mf_tac_layout_contents_2020603_body_gdM0_F0_body_tbody">
  <tr class="grid_body_row">
    <td>1</td><td>컴퓨터공학과</td><td>2</td><td> 자료구조 </td><td>01</td>
    <td>전공</td><td>3</td><td>대면</td>
    <td><div class="w2grid_textarea">월09:00~10:30,수09:00~10:30</div><span>hidden</span></td>
    <td></td><td>홍길동</td>
  </tr>
  <tr class="grid_header_row"><td>skip</td></tr>
  <tr class="grid_body_row">
    <td>2</td><td>경영학과</td><td>1</td><td>회계원리</td><td>03</td>
    <td>교양</td><td>2</td><td>온라인</td>
    <td>화13:00~15:00</td>
    <td></td><td>김영희<br>이민수</td>
  </tr>
</tbody>`

func TestRowParser_ParseFragment(t *testing.T) {
	rows, err := NewRowParser().ParseFragment(gridHTML)
	if err != nil {
		t.Fatalf("ParseFragment() error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ParseFragment() returned %d rows, want 2", len(rows))
	}

	first := rows[0]
	if len(first) != 11 {
		t.Fatalf("first row has %d cells, want 11", len(first))
	}
	if first[3] != "자료구조" {
		t.Errorf("name cell = %q", first[3])
	}
	if first[8] != "월09:00~10:30,수09:00~10:30" {
		t.Errorf("schedule cell = %q, want textarea text only", first[8])
	}
	if rows[1][10] != "김영희\n이민수" {
		t.Errorf("professor cell = %q", rows[1][10])
	}

	c, err := ExtractRow(first, DefaultMinColumns)
	if err != nil {
		t.Fatalf("ExtractRow() error: %v", err)
	}
	if len(c.Schedule) != 2 {
		t.Errorf("Schedule = %v", c.Schedule)
	}
}

func TestRowParser_ParseRows(t *testing.T) {
	doc := "<html><body><table>" + gridHTML + "</table></body></html>"
	rows, err := NewRowParser().ParseRows(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseRows() error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("ParseRows() returned %d rows, want 2", len(rows))
	}

	none, err := NewRowParser().ParseRows(strings.NewReader("<p>empty</p>"))
	if err != nil || len(none) != 0 {
		t.Errorf("ParseRows(no grid) = %v, %v", none, err)
	}
}

func TestResult_Batch(t *testing.T) {
	result, err := Sweep(context.Background(), newGrid(4), fastOptions())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}

	now := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	b := result.Batch(now)
	if b.Source != capture.SourceGrid || b.ID == "" {
		t.Errorf("Batch() metadata = %+v", b)
	}
	if b.Len() != 4 || len(b.Courses) != 4 {
		t.Errorf("Batch() records = %d, courses = %d", b.Len(), len(b.Courses))
	}
	if b.Timestamp != "2026-02-10T09:30:00.000Z" {
		t.Errorf("Timestamp = %q", b.Timestamp)
	}
	cells, ok := b.Records[0]["cells"].([]string)
	if !ok || cells[3] != "과목00" {
		t.Errorf("Records[0] = %v", b.Records[0])
	}
}
