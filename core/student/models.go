package student

import (
	"github.com/trezcool/darasa/core"
)

type Student struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	RollNo string `json:"roll_no" db:"roll_no"`
	Class  string `json:"class" db:"class"`
	Gender string `json:"gender,omitempty" db:"gender"`
}

// Mark is a per-subject score. The schema does not forbid duplicate
// (student, subject) rows; the aggregation reports whatever is stored.
type Mark struct {
	ID        int    `json:"id" db:"id"`
	StudentID int    `json:"student_id" db:"student_id"`
	Subject   string `json:"subject" db:"subject"`
	Marks     int    `json:"marks" db:"marks"`
}

type Attendance struct {
	ID          int `json:"id" db:"id"`
	StudentID   int `json:"student_id" db:"student_id"`
	PresentDays int `json:"present_days" db:"present_days"`
	TotalDays   int `json:"total_days" db:"total_days"`
}

type ClassSummary struct {
	Class string `json:"class" db:"class"`
	Total int    `json:"total" db:"total"`
}

// DetailRow is one flattened row of the class-details left join:
// one row per (student, mark) pair, attendance repeated on every row,
// mark and attendance fields NULL where the joined row is absent.
type DetailRow struct {
	StudentID    int     `db:"student_id"`
	Name         string  `db:"name"`
	RollNo       string  `db:"roll_no"`
	Gender       string  `db:"gender"`
	Subject      *string `db:"subject"`
	Marks        *int    `db:"marks"`
	AttendanceID *int    `db:"attendance_id"`
	PresentDays  *int    `db:"present_days"`
	TotalDays    *int    `db:"total_days"`
}

type SubjectMark struct {
	Subject string `json:"subject"`
	Marks   int    `json:"marks"`
}

type AttendanceSummary struct {
	Present *int `json:"present"`
	Total   *int `json:"total"`
}

// ClassDetail is the nested per-student record served by /class-details.
type ClassDetail struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	RollNo     string            `json:"roll_no"`
	Gender     string            `json:"gender,omitempty"`
	Subjects   []SubjectMark     `json:"subjects"`
	Attendance AttendanceSummary `json:"attendance"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name   string `json:"name" validate:"required"`
	RollNo string `json:"roll_no" validate:"required"`
	Class  string `json:"class" validate:"required"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female other"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.RollNo = core.CleanString(ns.RollNo)
	ns.Class = core.CleanString(ns.Class)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an
// existing Student; empty fields keep their current value.
type UpdateStudent struct {
	Name   string `json:"name"`
	RollNo string `json:"roll_no"`
	Class  string `json:"class"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female other"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if roll := core.CleanString(us.RollNo); roll != "" {
		us.RollNo = roll
	} else {
		us.RollNo = orig.RollNo
	}
	if class := core.CleanString(us.Class); class != "" {
		us.Class = class
	} else {
		us.Class = orig.Class
	}
	if gender := core.CleanString(us.Gender, true /* lower */); gender != "" {
		us.Gender = gender
	} else {
		us.Gender = orig.Gender
	}
	return core.Validate.Struct(us)
}
