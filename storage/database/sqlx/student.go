package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	err := repo.db.GetContext(ctx, &st.ID,
		`INSERT INTO students (name, roll_no, class, gender) VALUES ($1, $2, $3, $4) RETURNING id`,
		st.Name, st.RollNo, st.Class, st.Gender,
	)
	return st, err
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	err := repo.db.SelectContext(ctx, &students, `SELECT * FROM students ORDER BY class, roll_no`)
	return students, err
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var st student.Student
	err := repo.db.GetContext(ctx, &st, `SELECT * FROM students WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	return st, err
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET name = $1, roll_no = $2, class = $3, gender = $4 WHERE id = $5`,
		st.Name, st.RollNo, st.Class, st.Gender, st.ID,
	)
	if err != nil {
		return student.Student{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return student.Student{}, err
	} else if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return st, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	// marks and attendance rows go with it (ON DELETE CASCADE)
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) QueryClassSummaries(ctx context.Context) ([]student.ClassSummary, error) {
	summaries := make([]student.ClassSummary, 0)
	err := repo.db.SelectContext(ctx, &summaries,
		`SELECT class, COUNT(*) AS total FROM students GROUP BY class ORDER BY class`)
	return summaries, err
}

func (repo *studentRepository) QueryClassDetailRows(ctx context.Context, class string) ([]student.DetailRow, error) {
	rows := make([]student.DetailRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT s.id AS student_id, s.name, s.roll_no, s.gender,
		        m.subject, m.marks, a.id AS attendance_id, a.present_days, a.total_days
		 FROM students s
		 LEFT JOIN attendance a ON a.student_id = s.id
		 LEFT JOIN marks m ON m.student_id = s.id
		 WHERE s.class = $1
		 ORDER BY s.id, a.id, m.id`,
		class,
	)
	return rows, err
}

func (repo *studentRepository) QueryMarksByStudentID(ctx context.Context, id int) ([]student.Mark, error) {
	marks := make([]student.Mark, 0)
	err := repo.db.SelectContext(ctx, &marks, `SELECT * FROM marks WHERE student_id = $1 ORDER BY id`, id)
	return marks, err
}

func (repo *studentRepository) GetAttendanceByStudentID(ctx context.Context, id int) (student.Attendance, error) {
	var att student.Attendance
	err := repo.db.GetContext(ctx, &att,
		`SELECT * FROM attendance WHERE student_id = $1 ORDER BY id LIMIT 1`, id)
	if err == sql.ErrNoRows {
		return student.Attendance{}, student.ErrAttendanceNotFound
	}
	return att, err
}

func (repo *studentRepository) QueryAllAttendance(ctx context.Context) ([]student.Attendance, error) {
	rows := make([]student.Attendance, 0)
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM attendance ORDER BY id`)
	return rows, err
}
