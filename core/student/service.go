package student

import (
	"context"
	"math"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound           = errors.New("student not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryAllStudents returns the full roster ordered by class then roll number.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		// DeleteStudent removes the student and cascades to marks and attendance.
		DeleteStudent(ctx context.Context, id int) error

		QueryClassSummaries(ctx context.Context) ([]ClassSummary, error)
		// QueryClassDetailRows returns the flattened class-details join
		// ordered by student id ascending.
		QueryClassDetailRows(ctx context.Context, class string) ([]DetailRow, error)
		QueryMarksByStudentID(ctx context.Context, id int) ([]Mark, error)
		GetAttendanceByStudentID(ctx context.Context, id int) (Attendance, error)
		QueryAllAttendance(ctx context.Context) ([]Attendance, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		Name:   ns.Name,
		RollNo: ns.RollNo,
		Class:  ns.Class,
		Gender: ns.Gender,
	})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	return svc.repo.UpdateStudent(ctx, Student{
		ID:     id,
		Name:   us.Name,
		RollNo: us.RollNo,
		Class:  us.Class,
		Gender: us.Gender,
	})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) ClassSummaries(ctx context.Context) ([]ClassSummary, error) {
	return svc.repo.QueryClassSummaries(ctx)
}

func (svc *Service) Marks(ctx context.Context, id int) ([]Mark, error) {
	return svc.repo.QueryMarksByStudentID(ctx, id)
}

func (svc *Service) AttendanceByStudent(ctx context.Context, id int) (Attendance, error) {
	return svc.repo.GetAttendanceByStudentID(ctx, id)
}

// OverallAttendance sums every attendance row and returns the rounded
// school-wide presence percentage; 0 when there are no rows.
func (svc *Service) OverallAttendance(ctx context.Context) (int, error) {
	rows, err := svc.repo.QueryAllAttendance(ctx)
	if err != nil {
		return 0, err
	}

	var present, total int
	for _, a := range rows {
		present += a.PresentDays
		total += a.TotalDays
	}
	if total == 0 {
		return 0, nil
	}
	return int(math.Round(float64(present) / float64(total) * 100)), nil
}

// ClassDetails groups the flattened join rows into one nested record per
// student, in first-seen (ascending id) order. A student with no marks
// yields an empty subjects list; a student with no attendance row yields
// null present/total. Should a student carry more than one attendance
// row, the first one seen wins and later rows are ignored, so mark
// entries are never duplicated by join fan-out.
func (svc *Service) ClassDetails(ctx context.Context, class string) ([]ClassDetail, error) {
	rows, err := svc.repo.QueryClassDetailRows(ctx, class)
	if err != nil {
		return nil, err
	}

	details := make([]ClassDetail, 0)
	index := make(map[int]int, len(rows))       // student id -> position in details
	firstAtt := make(map[int]*int, len(rows))   // student id -> first-seen attendance row id

	for _, r := range rows {
		i, ok := index[r.StudentID]
		if !ok {
			i = len(details)
			index[r.StudentID] = i
			firstAtt[r.StudentID] = r.AttendanceID
			details = append(details, ClassDetail{
				ID:       r.StudentID,
				Name:     r.Name,
				RollNo:   r.RollNo,
				Gender:   r.Gender,
				Subjects: make([]SubjectMark, 0),
				Attendance: AttendanceSummary{
					Present: r.PresentDays,
					Total:   r.TotalDays,
				},
			})
		}
		d := &details[i]

		// a second attendance row fans the same mark rows out again;
		// keep only rows joined against the first-seen attendance row
		if !sameAttendanceRow(firstAtt[r.StudentID], r.AttendanceID) {
			continue
		}

		if r.Subject != nil {
			marks := 0
			if r.Marks != nil {
				marks = *r.Marks
			}
			d.Subjects = append(d.Subjects, SubjectMark{Subject: *r.Subject, Marks: marks})
		}
	}
	return details, nil
}

func sameAttendanceRow(first, got *int) bool {
	if first == nil || got == nil {
		return first == nil && got == nil
	}
	return *first == *got
}
