package exam

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const marksSheet = "marks"

// header aliases accepted on import, checked in order
var (
	studentIDCols = []string{"student_id", "studentId"}
	rollNoCols    = []string{"roll_no", "Roll_No", "roll", "Roll", "Roll No"}
	marksCols     = []string{"marks", "Marks", "MARKS"}
)

// sheetRow is one raw data row of an uploaded marks sheet.
type sheetRow struct {
	num       int // 1-based sheet row number
	studentID string
	rollNo    string
	marks     string
}

// readMarksSheet parses the first sheet of an uploaded workbook into raw
// rows, mapping columns through the accepted header aliases.
func readMarksSheet(r io.Reader) ([]sheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		header[strings.TrimSpace(cell)] = i
	}
	idIdx := findColumn(header, studentIDCols)
	rollIdx := findColumn(header, rollNoCols)
	marksIdx := findColumn(header, marksCols)

	out := make([]sheetRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		out = append(out, sheetRow{
			num:       i + 2, // 1-based, after the header
			studentID: cellAt(row, idIdx),
			rollNo:    cellAt(row, rollIdx),
			marks:     cellAt(row, marksIdx),
		})
	}
	return out, nil
}

func findColumn(header map[string]int, aliases []string) int {
	for _, name := range aliases {
		if i, ok := header[name]; ok {
			return i
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// buildMarksWorkbook renders the export roster: fixed header, one row
// per enrolled student, blank marks cell where none is recorded.
func buildMarksWorkbook(roster []RosterRow) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), marksSheet)

	if err := f.SetSheetRow(marksSheet, "A1", &[]interface{}{"roll_no", "name", "class", "marks"}); err != nil {
		return nil, err
	}
	for i, r := range roster {
		var marks interface{} = ""
		if r.Marks != nil {
			marks = *r.Marks
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(marksSheet, cell, &[]interface{}{r.RollNo, r.Name, r.Class, marks}); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// exportFilename derives "<exam>_<class>.xlsx", replacing path-unsafe
// characters so the name is always a valid attachment filename.
func exportFilename(exam Exam) string {
	name := exam.Name
	if name == "" {
		name = "exam"
	}
	class := exam.Class
	if class == "" {
		class = "class"
	}
	return sanitizeFilename(name+"_"+class) + ".xlsx"
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, s)
}
