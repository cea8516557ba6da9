package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		students = append(students, *st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.studentPK++
	st.ID = repo.db.studentPK
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].Class != students[j].Class {
			return students[i].Class < students[j].Class
		}
		return students[i].RollNo < students[j].RollNo
	})
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return *st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[st.ID] = &st
	return st, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	for mid, m := range repo.db.marks {
		if m.StudentID == id {
			delete(repo.db.marks, mid)
		}
	}
	for aid, a := range repo.db.attendance {
		if a.StudentID == id {
			delete(repo.db.attendance, aid)
		}
	}
	return nil
}

func (repo *studentRepository) QueryClassSummaries(ctx context.Context) ([]student.ClassSummary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, st := range repo.db.students {
		counts[st.Class]++
	}
	summaries := make([]student.ClassSummary, 0, len(counts))
	for class, total := range counts {
		summaries = append(summaries, student.ClassSummary{Class: class, Total: total})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Class < summaries[j].Class })
	return summaries, nil
}

// QueryClassDetailRows emulates the flattened left join: one row per
// (attendance, mark) pair with NULLs where either side is absent,
// ordered by student id.
func (repo *studentRepository) QueryClassDetailRows(ctx context.Context, class string) ([]student.DetailRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]student.DetailRow, 0)
	for _, st := range repo.query() {
		if st.Class != class {
			continue
		}

		marks := repo.marksOf(st.ID)
		att := repo.attendanceOf(st.ID)

		switch {
		case len(att) == 0 && len(marks) == 0:
			rows = append(rows, detailRow(st, nil, nil))
		case len(att) == 0:
			for i := range marks {
				rows = append(rows, detailRow(st, &marks[i], nil))
			}
		case len(marks) == 0:
			for i := range att {
				rows = append(rows, detailRow(st, nil, &att[i]))
			}
		default:
			for i := range att {
				for j := range marks {
					rows = append(rows, detailRow(st, &marks[j], &att[i]))
				}
			}
		}
	}
	return rows, nil
}

func (repo *studentRepository) QueryMarksByStudentID(ctx context.Context, id int) ([]student.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.marksOf(id), nil
}

func (repo *studentRepository) GetAttendanceByStudentID(ctx context.Context, id int) (student.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if att := repo.attendanceOf(id); len(att) > 0 {
		return att[0], nil
	}
	return student.Attendance{}, student.ErrAttendanceNotFound
}

func (repo *studentRepository) QueryAllAttendance(ctx context.Context) ([]student.Attendance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]student.Attendance, 0, len(repo.db.attendance))
	for _, a := range repo.db.attendance {
		rows = append(rows, *a)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (repo *studentRepository) marksOf(studentID int) []student.Mark {
	marks := make([]student.Mark, 0)
	for _, m := range repo.db.marks {
		if m.StudentID == studentID {
			marks = append(marks, *m)
		}
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].ID < marks[j].ID })
	return marks
}

func (repo *studentRepository) attendanceOf(studentID int) []student.Attendance {
	att := make([]student.Attendance, 0)
	for _, a := range repo.db.attendance {
		if a.StudentID == studentID {
			att = append(att, *a)
		}
	}
	sort.Slice(att, func(i, j int) bool { return att[i].ID < att[j].ID })
	return att
}

func detailRow(st student.Student, m *student.Mark, a *student.Attendance) student.DetailRow {
	row := student.DetailRow{
		StudentID: st.ID,
		Name:      st.Name,
		RollNo:    st.RollNo,
		Gender:    st.Gender,
	}
	if m != nil {
		row.Subject = &m.Subject
		row.Marks = &m.Marks
	}
	if a != nil {
		row.AttendanceID = &a.ID
		row.PresentDays = &a.PresentDays
		row.TotalDays = &a.TotalDays
	}
	return row
}
