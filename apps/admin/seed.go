package main

import (
	"context"

	"github.com/pkg/errors"
)

// seed loads a small demo dataset: two CS-A students with marks and
// attendance, a graded midterm exam and a timetable for the class.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	tx, err := cli.sdb.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var examID int
	err = tx.GetContext(ctx, &examID,
		`INSERT INTO exams (name, class, type, date) VALUES ($1, $2, $3, $4) RETURNING id`,
		"Midterm", "CS-A", "internal", "2026-03-10",
	)
	if err != nil {
		return errors.Wrap(err, "seeding exam")
	}

	students := []struct {
		name, roll, class, gender string
		presentDays, totalDays    int
		examMarks                 int
		marks                     map[string]int
	}{
		{"Aman Gupta", "R001", "CS-A", "male", 40, 45, 68, map[string]int{"Maths": 78, "Physics": 64}},
		{"Ria Sharma", "R002", "CS-A", "female", 42, 45, 83, map[string]int{"Maths": 91, "Physics": 85}},
	}
	for _, s := range students {
		var sid int
		err = tx.GetContext(ctx, &sid,
			`INSERT INTO students (name, roll_no, class, gender) VALUES ($1, $2, $3, $4) RETURNING id`,
			s.name, s.roll, s.class, s.gender,
		)
		if err != nil {
			return errors.Wrapf(err, "seeding student %q", s.name)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attendance (student_id, present_days, total_days) VALUES ($1, $2, $3)`,
			sid, s.presentDays, s.totalDays,
		)
		if err != nil {
			return errors.Wrapf(err, "seeding attendance for %q", s.name)
		}
		for subject, marks := range s.marks {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO marks (student_id, subject, marks) VALUES ($1, $2, $3)`,
				sid, subject, marks,
			)
			if err != nil {
				return errors.Wrapf(err, "seeding marks for %q", s.name)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO exam_marks (exam_id, student_id, marks) VALUES ($1, $2, $3)`,
			examID, sid, s.examMarks,
		)
		if err != nil {
			return errors.Wrapf(err, "seeding exam marks for %q", s.name)
		}
	}

	timetable := []struct {
		time, subject, faculty string
	}{
		{"Mon 09:00-10:00", "Maths", "S. Rao"},
		{"Mon 10:00-11:00", "Physics", "K. Iyer"},
		{"Tue 09:00-10:00", "Maths", "S. Rao"},
	}
	for _, e := range timetable {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO timetable (class, time, subject, faculty) VALUES ($1, $2, $3, $4)`,
			"CS-A", e.time, e.subject, e.faculty,
		)
		if err != nil {
			return errors.Wrap(err, "seeding timetable")
		}
	}

	return errors.Wrap(tx.Commit(), "committing seed data")
}
