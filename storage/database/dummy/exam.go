package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/exam"
)

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

func (repo *examRepository) CreateExam(ctx context.Context, ex exam.Exam) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.examPK++
	ex.ID = repo.db.examPK
	repo.db.exams[ex.ID] = &ex
	return ex, nil
}

func (repo *examRepository) QueryExams(ctx context.Context, class string) ([]exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exams := make([]exam.Exam, 0, len(repo.db.exams))
	for _, ex := range repo.db.exams {
		if class != "" && ex.Class != class {
			continue
		}
		exams = append(exams, *ex)
	}
	sort.Slice(exams, func(i, j int) bool {
		if exams[i].Date != exams[j].Date {
			return exams[i].Date > exams[j].Date
		}
		return exams[i].ID > exams[j].ID
	})
	return exams, nil
}

func (repo *examRepository) GetExamByID(ctx context.Context, id int) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ex, ok := repo.db.exams[id]; ok {
		return *ex, nil
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) DeleteExam(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[id]; !ok {
		return exam.ErrNotFound
	}
	delete(repo.db.exams, id)
	for mid, m := range repo.db.examMarks {
		if m.ExamID == id {
			delete(repo.db.examMarks, mid)
		}
	}
	return nil
}

func (repo *examRepository) UpsertExamMark(ctx context.Context, em exam.ExamMark) (exam.ExamMark, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.exams[em.ExamID]; !ok {
		return exam.ExamMark{}, false, exam.ErrNotFound
	}

	for _, m := range repo.db.examMarks {
		if m.ExamID == em.ExamID && m.StudentID == em.StudentID {
			m.Marks = em.Marks
			return *m, false, nil
		}
	}

	repo.db.examMarkPK++
	em.ID = repo.db.examMarkPK
	repo.db.examMarks[em.ID] = &em
	return em, true, nil
}

func (repo *examRepository) QueryExamMarks(ctx context.Context, examID int) ([]exam.ExamMarkDetail, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	details := make([]exam.ExamMarkDetail, 0)
	for _, m := range repo.db.examMarks {
		if m.ExamID != examID {
			continue
		}
		st, ok := repo.db.students[m.StudentID]
		if !ok {
			continue
		}
		details = append(details, exam.ExamMarkDetail{
			ID:          m.ID,
			ExamID:      m.ExamID,
			StudentID:   m.StudentID,
			Marks:       m.Marks,
			StudentName: st.Name,
			RollNo:      st.RollNo,
			Class:       st.Class,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].RollNo < details[j].RollNo })
	return details, nil
}

func (repo *examRepository) QueryExamRoster(ctx context.Context, examID int, class string) ([]exam.RosterRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	roster := make([]exam.RosterRow, 0)
	for _, st := range repo.db.students {
		if st.Class != class {
			continue
		}
		row := exam.RosterRow{RollNo: st.RollNo, Name: st.Name, Class: st.Class}
		for _, m := range repo.db.examMarks {
			if m.ExamID == examID && m.StudentID == st.ID {
				marks := m.Marks
				row.Marks = &marks
				break
			}
		}
		roster = append(roster, row)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].RollNo < roster[j].RollNo })
	return roster, nil
}

func (repo *examRepository) GetStudentIDByRoll(ctx context.Context, rollNo string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make([]int, 0, 1)
	for _, st := range repo.db.students {
		if st.RollNo == rollNo {
			ids = append(ids, st.ID)
		}
	}
	if len(ids) == 0 {
		return 0, exam.ErrStudentNotFound
	}
	sort.Ints(ids)
	return ids[0], nil
}
