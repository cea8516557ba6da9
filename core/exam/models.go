package exam

import (
	"github.com/trezcool/darasa/core"
)

type Exam struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Class string `json:"class" db:"class"`
	Type  string `json:"type,omitempty" db:"type"`
	Date  string `json:"date,omitempty" db:"date"`
}

// ExamMark is one student's score for one exam. (exam_id, student_id)
// is the upsert key, declared unique in the store.
type ExamMark struct {
	ID        int `json:"id" db:"id"`
	ExamID    int `json:"exam_id" db:"exam_id"`
	StudentID int `json:"student_id" db:"student_id"`
	Marks     int `json:"marks" db:"marks"`
}

// ExamMarkDetail is an ExamMark joined to the student's identity.
type ExamMarkDetail struct {
	ID          int    `json:"id" db:"id"`
	ExamID      int    `json:"exam_id" db:"exam_id"`
	StudentID   int    `json:"student_id" db:"student_id"`
	Marks       int    `json:"marks" db:"marks"`
	StudentName string `json:"student_name" db:"student_name"`
	RollNo      string `json:"roll_no" db:"roll_no"`
	Class       string `json:"class" db:"class"`
}

// RosterRow is one export line: every student of the exam's class,
// Marks nil where no mark is recorded.
type RosterRow struct {
	RollNo string `db:"roll_no"`
	Name   string `db:"name"`
	Class  string `db:"class"`
	Marks  *int   `db:"marks"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Name  string `json:"name" validate:"required"`
	Class string `json:"class" validate:"required"`
	Type  string `json:"type"`
	Date  string `json:"date"`
}

func (ne *NewExam) Validate() error {
	ne.Name = core.CleanString(ne.Name)
	ne.Class = core.CleanString(ne.Class)
	ne.Type = core.CleanString(ne.Type)
	ne.Date = core.CleanString(ne.Date)
	return core.Validate.Struct(ne)
}

// MarkUpsert is a single-mark insert-or-update request.
type MarkUpsert struct {
	ExamID    int  `json:"exam_id" validate:"required"`
	StudentID int  `json:"student_id" validate:"required"`
	Marks     *int `json:"marks"` // missing coerces to 0
}

func (mu MarkUpsert) Validate() error { return core.Validate.Struct(mu) }

// RowStatus is the outcome of one import row.
type RowStatus string

const (
	RowInserted   RowStatus = "inserted"
	RowUpdated    RowStatus = "updated"
	RowUnresolved RowStatus = "unresolved"
	RowError      RowStatus = "error"
)

// RowResult reports what happened to one import row.
type RowResult struct {
	Row       int       `json:"row"` // 1-based sheet row number
	StudentID int       `json:"student_id,omitempty"`
	RollNo    string    `json:"roll_no,omitempty"`
	Marks     int       `json:"marks"`
	Status    RowStatus `json:"status"`
	Note      string    `json:"note,omitempty"`
}

// ImportResult reports a whole import. Processed counts rows matched to
// an operation (resolved or not); rows naming neither a student id nor
// a roll number are skipped silently and appear nowhere.
type ImportResult struct {
	Processed int         `json:"processed"`
	Rows      []RowResult `json:"rows"`
}

// ExportFile is a rendered spreadsheet attachment.
type ExportFile struct {
	Filename string
	Content  []byte
}
