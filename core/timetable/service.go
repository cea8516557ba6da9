package timetable

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("timetable entry not found")

type (
	Repository interface {
		CreateEntry(ctx context.Context, e Entry) (Entry, error)
		// QueryEntriesByClass lists a class's entries in insertion order.
		QueryEntriesByClass(ctx context.Context, class string) ([]Entry, error)
		DeleteEntry(ctx context.Context, id int) error
		// QueryClasses lists the distinct class labels with entries.
		QueryClasses(ctx context.Context) ([]string, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEntry) (Entry, error) {
	return svc.repo.CreateEntry(ctx, Entry{
		Class:   ne.Class,
		Time:    ne.Time,
		Subject: ne.Subject,
		Faculty: ne.Faculty,
	})
}

func (svc *Service) QueryByClass(ctx context.Context, class string) ([]Entry, error) {
	return svc.repo.QueryEntriesByClass(ctx, class)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteEntry(ctx, id)
}

func (svc *Service) Classes(ctx context.Context) ([]string, error) {
	return svc.repo.QueryClasses(ctx)
}
