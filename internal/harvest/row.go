package harvest

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/timebox/internal/course"
)

// Grid selectors for the portal's course search results.
const (
	DefaultRowContainer = "#mf_tac_layout_contents_2020603_body_gdM0_F0_body_tbody"
	DefaultScrollArea   = "#mf_tac_layout_contents_2020603_body_gdM0_F0_scrollY_div"
	DefaultRowSelector  = "tr.grid_body_row"
	DefaultScheduleCell = ".w2grid_textarea"
)

// Column positions within a grid row.
const (
	colDepartment = 1
	colGrade      = 2
	colCourseName = 3
	colSection    = 4
	colCategory   = 5
	colCredit     = 6
	colClassType  = 7
	colSchedule   = 8
	colProfessor  = 10
)

// ExtractRow builds a course from one row's cell text. Rows with fewer than
// minColumns cells or without a course name are malformed.
func ExtractRow(cells []string, minColumns int) (course.Course, error) {
	if minColumns <= colProfessor {
		minColumns = colProfessor + 1
	}
	if len(cells) < minColumns {
		return course.Course{}, fmt.Errorf("%w: %d cells, need %d", ErrMalformedRow, len(cells), minColumns)
	}

	cell := func(i int) string { return strings.TrimSpace(cells[i]) }

	name := cell(colCourseName)
	if name == "" {
		return course.Course{}, fmt.Errorf("%w: %v", ErrMalformedRow, course.ErrMissingName)
	}

	timeText := cell(colSchedule)
	creditText := cell(colCredit)
	return course.Course{
		Department:   cell(colDepartment),
		Grade:        cell(colGrade),
		CourseName:   name,
		Section:      cell(colSection),
		Category:     cell(colCategory),
		Credit:       course.ParseCredit(creditText),
		CreditText:   creditText,
		ClassType:    cell(colClassType),
		Professor:    cell(colProfessor),
		Schedule:     course.ParseSchedule(timeText),
		ScheduleText: timeText,
	}, nil
}

// RowParser reads grid rows out of HTML.
type RowParser struct {
	// RowSelector matches one grid row.
	RowSelector string
	// ScheduleCell, when found inside the schedule column, holds the
	// schedule text instead of the cell itself.
	ScheduleCell string
}

// NewRowParser returns a parser for the portal's grid markup.
func NewRowParser() *RowParser {
	return &RowParser{
		RowSelector:  DefaultRowSelector,
		ScheduleCell: DefaultScheduleCell,
	}
}

// ParseRows extracts the trimmed text of every cell of every matching row.
// Line breaks inside a cell are kept; surrounding whitespace is not.
func (p *RowParser) ParseRows(r io.Reader) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rows := make([][]string, 0)
	doc.Find(p.RowSelector).Each(func(_ int, row *goquery.Selection) {
		tds := row.ChildrenFiltered("td")
		cells := make([]string, 0, tds.Length())
		tds.Each(func(i int, td *goquery.Selection) {
			sel := td
			if i == colSchedule && p.ScheduleCell != "" {
				if inner := td.Find(p.ScheduleCell).First(); inner.Length() > 0 {
					sel = inner
				}
			}
			cells = append(cells, cellText(sel))
		})
		rows = append(rows, cells)
	})
	return rows, nil
}

// ParseFragment parses a bare table section such as the row container's
// outerHTML. HTML parsing drops rows found outside a table, so the fragment
// is wrapped in one first.
func (p *RowParser) ParseFragment(fragment string) ([][]string, error) {
	return p.ParseRows(strings.NewReader("<table>" + fragment + "</table>"))
}

// cellText approximates innerText: <br> becomes a newline and each line is
// trimmed.
func cellText(sel *goquery.Selection) string {
	sel = sel.Clone()
	sel.Find("br").ReplaceWithHtml("\n")

	lines := strings.Split(sel.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
