package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/timetable"
)

type timetableRepository struct {
	db *DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db}
}

func (repo *timetableRepository) CreateEntry(ctx context.Context, e timetable.Entry) (timetable.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.entryPK++
	e.ID = repo.db.entryPK
	repo.db.timetable[e.ID] = &e
	return e, nil
}

func (repo *timetableRepository) QueryEntriesByClass(ctx context.Context, class string) ([]timetable.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]timetable.Entry, 0)
	for _, e := range repo.db.timetable {
		if e.Class == class {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (repo *timetableRepository) DeleteEntry(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.timetable[id]; !ok {
		return timetable.ErrNotFound
	}
	delete(repo.db.timetable, id)
	return nil
}

func (repo *timetableRepository) QueryClasses(ctx context.Context) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	classes := make([]string, 0)
	for _, e := range repo.db.timetable {
		if !seen[e.Class] {
			seen[e.Class] = true
			classes = append(classes, e.Class)
		}
	}
	sort.Strings(classes)
	return classes, nil
}
