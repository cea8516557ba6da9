package timetable

import (
	"github.com/trezcool/darasa/core"
)

// Entry is one timetable slot for a class.
type Entry struct {
	ID      int    `json:"id" db:"id"`
	Class   string `json:"class" db:"class"`
	Time    string `json:"time" db:"time"`
	Subject string `json:"subject" db:"subject"`
	Faculty string `json:"faculty" db:"faculty"`
}

// NewEntry contains information needed to create a new Entry.
type NewEntry struct {
	Class   string `json:"class" validate:"required"`
	Time    string `json:"time" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Faculty string `json:"faculty" validate:"required"`
}

func (ne *NewEntry) Validate() error {
	ne.Class = core.CleanString(ne.Class)
	ne.Time = core.CleanString(ne.Time)
	ne.Subject = core.CleanString(ne.Subject)
	ne.Faculty = core.CleanString(ne.Faculty)
	return core.Validate.Struct(ne)
}
