package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/timetable"
)

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sqlx.DB) timetable.Repository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) CreateEntry(ctx context.Context, e timetable.Entry) (timetable.Entry, error) {
	err := repo.db.GetContext(ctx, &e.ID,
		`INSERT INTO timetable (class, time, subject, faculty) VALUES ($1, $2, $3, $4) RETURNING id`,
		e.Class, e.Time, e.Subject, e.Faculty,
	)
	return e, err
}

func (repo *timetableRepository) QueryEntriesByClass(ctx context.Context, class string) ([]timetable.Entry, error) {
	entries := make([]timetable.Entry, 0)
	err := repo.db.SelectContext(ctx, &entries, `SELECT * FROM timetable WHERE class = $1 ORDER BY id`, class)
	return entries, err
}

func (repo *timetableRepository) DeleteEntry(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM timetable WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return timetable.ErrNotFound
	}
	return nil
}

func (repo *timetableRepository) QueryClasses(ctx context.Context) ([]string, error) {
	classes := make([]string, 0)
	err := repo.db.SelectContext(ctx, &classes, `SELECT DISTINCT class FROM timetable ORDER BY class`)
	return classes, err
}
