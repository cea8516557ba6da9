package exam_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/exam"
	"github.com/trezcool/darasa/core/student"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func setup(t *testing.T) (*dummydb.DB, *exam.Service, *student.Service) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return db, exam.NewService(dummydb.NewExamRepository(db)), student.NewService(dummydb.NewStudentRepository(db))
}

func createStudent(t *testing.T, svc *student.Service, name, roll, class string) student.Student {
	t.Helper()
	st, err := svc.Create(context.Background(), student.NewStudent{Name: name, RollNo: roll, Class: class})
	require.NoError(t, err)
	return st
}

func createExam(t *testing.T, svc *exam.Service, name, class string) exam.Exam {
	t.Helper()
	ex, err := svc.Create(context.Background(), exam.NewExam{Name: name, Class: class})
	require.NoError(t, err)
	return ex
}

// marksUpload builds an uploaded workbook from a header row and data rows.
func marksUpload(t *testing.T, rows ...[]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func intPtr(n int) *int { return &n }

// marksCell returns the marks column of an exported row; the reader may
// trim a trailing blank cell.
func marksCell(row []string) string {
	if len(row) < 4 {
		return ""
	}
	return row[3]
}

func TestService_UpsertMark(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	aman := createStudent(t, stuSvc, "Aman", "R001", "CS-A")

	m, created, err := examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: intPtr(80)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 80, m.Marks)

	// same (exam, student) updates in place
	m, created, err = examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: intPtr(85)})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 85, m.Marks)

	// missing marks coerce to 0
	m, created, err = examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, m.Marks)

	marks, err := examSvc.MarksByExam(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, "Aman", marks[0].StudentName)
}

func TestService_Query(t *testing.T) {
	_, examSvc, _ := setup(t)
	ctx := context.Background()

	old, err := examSvc.Create(ctx, exam.NewExam{Name: "midterm", Class: "CS-A", Date: "2026-03-01"})
	require.NoError(t, err)
	recent, err := examSvc.Create(ctx, exam.NewExam{Name: "final", Class: "CS-A", Date: "2026-06-01"})
	require.NoError(t, err)
	other, err := examSvc.Create(ctx, exam.NewExam{Name: "midterm", Class: "CS-B", Date: "2026-04-01"})
	require.NoError(t, err)

	// newest date first
	exams, err := examSvc.Query(ctx, "")
	require.NoError(t, err)
	require.Len(t, exams, 3)
	assert.Equal(t, []int{recent.ID, other.ID, old.ID}, []int{exams[0].ID, exams[1].ID, exams[2].ID})

	exams, err = examSvc.Query(ctx, "CS-B")
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, other.ID, exams[0].ID)
}

func TestService_Delete(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	aman := createStudent(t, stuSvc, "Aman", "R001", "CS-A")
	_, _, err := examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: intPtr(80)})
	require.NoError(t, err)

	require.NoError(t, examSvc.Delete(ctx, ex.ID))
	_, err = examSvc.GetByID(ctx, ex.ID)
	assert.Equal(t, exam.ErrNotFound, err)
	marks, err := examSvc.MarksByExam(ctx, ex.ID)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestService_Import(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	aman := createStudent(t, stuSvc, "Aman", "R001", "CS-A")
	ria := createStudent(t, stuSvc, "Ria", "R002", "CS-A")

	res, err := examSvc.Import(ctx, ex.ID, marksUpload(t,
		[]interface{}{"roll_no", "marks"},
		[]interface{}{"R001", 80},
		[]interface{}{"R002", 72},
		[]interface{}{"R999", 50}, // unknown roll
		[]interface{}{"", ""},     // names nobody: skipped silently
	))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	require.Len(t, res.Rows, 3)

	assert.Equal(t, exam.RowResult{Row: 2, StudentID: aman.ID, RollNo: "R001", Marks: 80, Status: exam.RowInserted}, res.Rows[0])
	assert.Equal(t, exam.RowResult{Row: 3, StudentID: ria.ID, RollNo: "R002", Marks: 72, Status: exam.RowInserted}, res.Rows[1])
	assert.Equal(t, exam.RowUnresolved, res.Rows[2].Status)

	marks, err := examSvc.MarksByExam(ctx, ex.ID)
	require.NoError(t, err)
	assert.Len(t, marks, 2)

	// re-importing updates existing rows instead of duplicating them
	res, err = examSvc.Import(ctx, ex.ID, marksUpload(t,
		[]interface{}{"roll_no", "marks"},
		[]interface{}{"R001", 90},
	))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, exam.RowUpdated, res.Rows[0].Status)

	marks, err = examSvc.MarksByExam(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, 90, marks[0].Marks) // ordered by roll; R001 first
}

func TestService_Import_studentIDWinsOverRoll(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	aman := createStudent(t, stuSvc, "Aman", "R001", "CS-A")
	createStudent(t, stuSvc, "Ria", "R002", "CS-A")

	res, err := examSvc.Import(ctx, ex.ID, marksUpload(t,
		[]interface{}{"student_id", "roll_no", "marks"},
		[]interface{}{aman.ID, "R002", 80}, // id, not the roll, decides
	))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, aman.ID, res.Rows[0].StudentID)

	marks, err := examSvc.MarksByExam(ctx, ex.ID)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, aman.ID, marks[0].StudentID)
}

func TestService_Import_headerAliases(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	createStudent(t, stuSvc, "Aman", "R001", "CS-A")

	res, err := examSvc.Import(ctx, ex.ID, marksUpload(t,
		[]interface{}{"Roll No", "MARKS"},
		[]interface{}{"R001", 80},
	))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, exam.RowInserted, res.Rows[0].Status)
}

func TestService_Import_badValues(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	createStudent(t, stuSvc, "Aman", "R001", "CS-A")

	res, err := examSvc.Import(ctx, ex.ID, marksUpload(t,
		[]interface{}{"student_id", "roll_no", "marks"},
		[]interface{}{"abc", "", 80},        // non-numeric id
		[]interface{}{"", "R001", "absent"}, // non-numeric marks stored as 0
	))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, exam.RowError, res.Rows[0].Status)
	assert.Equal(t, exam.RowInserted, res.Rows[1].Status)
	assert.Equal(t, 0, res.Rows[1].Marks)
	assert.NotEmpty(t, res.Rows[1].Note)
}

func TestService_Export(t *testing.T) {
	_, examSvc, stuSvc := setup(t)
	ctx := context.Background()

	ex := createExam(t, examSvc, "midterm", "CS-A")
	ria := createStudent(t, stuSvc, "Ria", "R002", "CS-A")
	createStudent(t, stuSvc, "Aman", "R001", "CS-A")
	createStudent(t, stuSvc, "Zuri", "R003", "CS-A")
	createStudent(t, stuSvc, "Omar", "R001", "CS-B") // other class, excluded
	_, _, err := examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: ria.ID, Marks: intPtr(72)})
	require.NoError(t, err)

	file, err := examSvc.Export(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "midterm_CS-A.xlsx", file.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"roll_no", "name", "class", "marks"}, rows[0])
	// every enrolled student, ordered by roll, blank cell without a mark
	assert.Equal(t, []string{"R001", "Aman", "CS-A"}, rows[1][:3])
	assert.Empty(t, marksCell(rows[1]))
	assert.Equal(t, []string{"R002", "Ria", "CS-A"}, rows[2][:3])
	assert.Equal(t, "72", marksCell(rows[2]))
	assert.Equal(t, []string{"R003", "Zuri", "CS-A"}, rows[3][:3])
	assert.Empty(t, marksCell(rows[3]))
}

func TestService_Export_unknownExam(t *testing.T) {
	_, examSvc, _ := setup(t)

	_, err := examSvc.Export(context.Background(), 404)
	assert.Equal(t, exam.ErrNotFound, err)
}
