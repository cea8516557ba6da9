package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/darasa/core/exam"
)

type examRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sqlx.DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	err := repo.db.GetContext(ctx, &ex.ID,
		`INSERT INTO exams (name, class, type, date) VALUES ($1, $2, $3, $4) RETURNING id`,
		ex.Name, ex.Class, ex.Type, ex.Date,
	)
	return ex, err
}

func (repo *examRepository) QueryExams(ctx context.Context, class string) ([]exam.Exam, error) {
	exams := make([]exam.Exam, 0)
	err := repo.db.SelectContext(ctx, &exams,
		`SELECT * FROM exams WHERE ($1 = '' OR class = $1) ORDER BY date DESC, id DESC`, class)
	return exams, err
}

func (repo *examRepository) GetExamByID(ctx context.Context, id int) (exam.Exam, error) {
	var ex exam.Exam
	err := repo.db.GetContext(ctx, &ex, `SELECT * FROM exams WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return exam.Exam{}, exam.ErrNotFound
	}
	return ex, err
}

func (repo *examRepository) DeleteExam(ctx context.Context, id int) error {
	// marks go with it (ON DELETE CASCADE)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return exam.ErrNotFound
	}
	return nil
}

func (repo *examRepository) UpsertExamMark(ctx context.Context, em exam.ExamMark) (exam.ExamMark, bool, error) {
	// xmax = 0 only on freshly inserted rows, distinguishing the
	// insert from the conflict-update path in a single round trip
	var row struct {
		exam.ExamMark
		Created bool `db:"created"`
	}
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO exam_marks (exam_id, student_id, marks)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, student_id) DO UPDATE SET marks = EXCLUDED.marks
		 RETURNING id, exam_id, student_id, marks, (xmax = 0) AS created`,
		em.ExamID, em.StudentID, em.Marks,
	).StructScan(&row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return exam.ExamMark{}, false, exam.ErrNotFound
		}
		return exam.ExamMark{}, false, err
	}
	return row.ExamMark, row.Created, nil
}

func (repo *examRepository) QueryExamMarks(ctx context.Context, examID int) ([]exam.ExamMarkDetail, error) {
	details := make([]exam.ExamMarkDetail, 0)
	err := repo.db.SelectContext(ctx, &details,
		`SELECT em.id, em.exam_id, em.student_id, em.marks,
		        s.name AS student_name, s.roll_no, s.class
		 FROM exam_marks em
		 JOIN students s ON s.id = em.student_id
		 WHERE em.exam_id = $1
		 ORDER BY s.roll_no`,
		examID,
	)
	return details, err
}

func (repo *examRepository) QueryExamRoster(ctx context.Context, examID int, class string) ([]exam.RosterRow, error) {
	roster := make([]exam.RosterRow, 0)
	err := repo.db.SelectContext(ctx, &roster,
		`SELECT s.roll_no, s.name, s.class, em.marks
		 FROM students s
		 LEFT JOIN exam_marks em ON em.student_id = s.id AND em.exam_id = $1
		 WHERE s.class = $2
		 ORDER BY s.roll_no`,
		examID, class,
	)
	return roster, err
}

func (repo *examRepository) GetStudentIDByRoll(ctx context.Context, rollNo string) (int, error) {
	var id int
	err := repo.db.GetContext(ctx, &id,
		`SELECT id FROM students WHERE roll_no = $1 ORDER BY id LIMIT 1`, rollNo)
	if err == sql.ErrNoRows {
		return 0, exam.ErrStudentNotFound
	}
	return id, err
}
