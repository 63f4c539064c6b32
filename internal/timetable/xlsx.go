package timetable

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "시간표"

// WriteXLSX renders the grid as a spreadsheet: one column per visible day,
// one row per axis hour, and each block as a merged, filled cell range.
func WriteXLSX(w io.Writer, g *Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	f.SetColWidth(sheetName, "A", "A", 6)
	if len(g.Days) > 0 {
		last, _ := excelize.ColumnNumberToName(len(g.Days) + 1)
		f.SetColWidth(sheetName, "B", last, 18)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	blockStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("creating block style: %w", err)
	}

	// Header row: empty corner, then day labels.
	for i, d := range g.Days {
		f.SetCellValue(sheetName, cellName(i+2, 1), d.Label())
	}
	if len(g.Days) > 0 {
		f.SetCellStyle(sheetName, cellName(1, 1), cellName(len(g.Days)+1, 1), headerStyle)
	}

	// Hour labels.
	for i, hour := range g.Axis {
		f.SetCellValue(sheetName, cellName(1, i+2), fmt.Sprintf("%02d", hour))
	}

	if len(g.Axis) == 0 {
		return f.Write(w)
	}
	first := g.Axis[0]

	dayCol := make(map[string]int, len(g.Days))
	for i, d := range g.Days {
		dayCol[d.String()] = i + 2
	}

	written := make(map[string]string)
	for _, b := range g.Blocks {
		col, ok := dayCol[b.Day.String()]
		if !ok {
			continue
		}
		top := cellName(col, b.StartCell-first+2)
		bottom := cellName(col, b.EndCell-first+1)

		label := fmt.Sprintf("%s (%s)\n%s", b.Course.CourseName, b.Course.Section, b.Course.Professor)
		if prev, exists := written[top]; exists {
			label = prev + "\n" + label
		}
		written[top] = strings.TrimSpace(label)

		f.SetCellValue(sheetName, top, written[top])
		if bottom != top {
			if err := f.MergeCell(sheetName, top, bottom); err != nil {
				return fmt.Errorf("merging %s:%s: %w", top, bottom, err)
			}
		}
		f.SetCellStyle(sheetName, top, bottom, blockStyle)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
