package exam

import (
	"context"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("exam not found")
	ErrStudentNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, ex Exam) (Exam, error)
		// QueryExams lists exams newest date first, optionally scoped to a class.
		QueryExams(ctx context.Context, class string) ([]Exam, error)
		GetExamByID(ctx context.Context, id int) (Exam, error)
		// DeleteExam removes the exam and all its marks.
		DeleteExam(ctx context.Context, id int) error

		// UpsertExamMark inserts or updates the mark keyed by
		// (exam_id, student_id) atomically; created reports an insert.
		UpsertExamMark(ctx context.Context, em ExamMark) (mark ExamMark, created bool, err error)
		// QueryExamMarks lists an exam's marks joined to student
		// identity, ordered by roll number.
		QueryExamMarks(ctx context.Context, examID int) ([]ExamMarkDetail, error)
		// QueryExamRoster lists every student of the given class left
		// joined to this exam's marks, ordered by roll number.
		QueryExamRoster(ctx context.Context, examID int, class string) ([]RosterRow, error)

		GetStudentIDByRoll(ctx context.Context, rollNo string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewExam) (Exam, error) {
	return svc.repo.CreateExam(ctx, Exam{
		Name:  ne.Name,
		Class: ne.Class,
		Type:  ne.Type,
		Date:  ne.Date,
	})
}

func (svc *Service) Query(ctx context.Context, class string) ([]Exam, error) {
	return svc.repo.QueryExams(ctx, class)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Exam, error) {
	return svc.repo.GetExamByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteExam(ctx, id)
}

func (svc *Service) UpsertMark(ctx context.Context, mu MarkUpsert) (ExamMark, bool, error) {
	var marks int
	if mu.Marks != nil {
		marks = *mu.Marks
	}
	return svc.repo.UpsertExamMark(ctx, ExamMark{
		ExamID:    mu.ExamID,
		StudentID: mu.StudentID,
		Marks:     marks,
	})
}

func (svc *Service) MarksByExam(ctx context.Context, examID int) ([]ExamMarkDetail, error) {
	return svc.repo.QueryExamMarks(ctx, examID)
}

// Export renders the exam's class-complete roster as a spreadsheet:
// every enrolled student appears, ordered by roll number, with a blank
// marks cell for students without a recorded mark.
func (svc *Service) Export(ctx context.Context, examID int) (ExportFile, error) {
	ex, err := svc.repo.GetExamByID(ctx, examID)
	if err != nil {
		return ExportFile{}, err
	}
	roster, err := svc.repo.QueryExamRoster(ctx, examID, ex.Class)
	if err != nil {
		return ExportFile{}, err
	}

	f, err := buildMarksWorkbook(roster)
	if err != nil {
		return ExportFile{}, errors.Wrap(err, "building workbook")
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return ExportFile{}, errors.Wrap(err, "writing workbook")
	}
	return ExportFile{Filename: exportFilename(ex), Content: buf.Bytes()}, nil
}

// Import bulk-upserts marks from an uploaded workbook. Rows process
// strictly sequentially, one store round-trip at a time, and the batch
// never aborts: an unresolved roll number or a store failure skips that
// row only. An explicit student id column wins over a roll number; rows
// naming neither are skipped silently.
func (svc *Service) Import(ctx context.Context, examID int, upload io.Reader) (ImportResult, error) {
	rows, err := readMarksSheet(upload)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{Rows: make([]RowResult, 0, len(rows))}
	for _, row := range rows {
		if row.studentID == "" && row.rollNo == "" {
			continue
		}
		res.Processed++

		rr := RowResult{Row: row.num, RollNo: row.rollNo}
		rr.Marks, rr.Note = coerceMarks(row.marks)

		if row.studentID != "" {
			id, err := strconv.Atoi(row.studentID)
			if err != nil {
				rr.Status = RowError
				rr.Note = "student_id is not numeric"
				res.Rows = append(res.Rows, rr)
				continue
			}
			rr.StudentID = id
		} else {
			id, err := svc.repo.GetStudentIDByRoll(ctx, row.rollNo)
			if err != nil {
				if errors.Cause(err) == ErrStudentNotFound {
					rr.Status = RowUnresolved
				} else {
					rr.Status = RowError
					rr.Note = err.Error()
				}
				res.Rows = append(res.Rows, rr)
				continue
			}
			rr.StudentID = id
		}

		_, created, err := svc.repo.UpsertExamMark(ctx, ExamMark{
			ExamID:    examID,
			StudentID: rr.StudentID,
			Marks:     rr.Marks,
		})
		switch {
		case err != nil:
			rr.Status = RowError
			rr.Note = err.Error()
		case created:
			rr.Status = RowInserted
		default:
			rr.Status = RowUpdated
		}
		res.Rows = append(res.Rows, rr)
	}
	return res, nil
}

// coerceMarks turns the raw cell into a number; anything non-numeric
// becomes 0 with a note rather than failing the row.
func coerceMarks(raw string) (int, string) {
	if raw == "" {
		return 0, ""
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, ""
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f), ""
	}
	return 0, "marks value is not numeric; stored 0"
}
