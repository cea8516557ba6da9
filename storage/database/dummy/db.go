package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/exam"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/timetable"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory store for tests. A single lock guards every table
// so the joined queries read a consistent snapshot.
type DB struct {
	sync.RWMutex

	users          map[int]*user.User
	teacherClasses map[int][]string
	students       map[int]*student.Student
	marks          map[int]*student.Mark
	attendance     map[int]*student.Attendance
	exams          map[int]*exam.Exam
	examMarks      map[int]*exam.ExamMark
	timetable      map[int]*timetable.Entry

	userPK       int
	studentPK    int
	markPK       int
	attendancePK int
	examPK       int
	examMarkPK   int
	entryPK      int
}

func Open() (*DB, error) {
	db := &DB{
		users:          make(map[int]*user.User),
		teacherClasses: make(map[int][]string),
		students:       make(map[int]*student.Student),
		marks:          make(map[int]*student.Mark),
		attendance:     make(map[int]*student.Attendance),
		exams:          make(map[int]*exam.Exam),
		examMarks:      make(map[int]*exam.ExamMark),
		timetable:      make(map[int]*timetable.Entry),
	}
	return db, nil
}

// AddMark inserts a per-subject mark row directly; test seam.
func (db *DB) AddMark(m student.Mark) student.Mark {
	db.Lock()
	defer db.Unlock()

	db.markPK++
	m.ID = db.markPK
	db.marks[m.ID] = &m
	return m
}

// AddAttendance inserts an attendance row directly; test seam.
func (db *DB) AddAttendance(a student.Attendance) student.Attendance {
	db.Lock()
	defer db.Unlock()

	db.attendancePK++
	a.ID = db.attendancePK
	db.attendance[a.ID] = &a
	return a
}
