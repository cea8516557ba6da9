package tests

import (
	"context"
	"net/http"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

func Test_studentApi_crud(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	hero := createUser(t, "hero", "hero@test.cd", "Str0ng#pass", user.RoleStudent, nil)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, hero)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/students",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", method: http.MethodPost, path: "/students", token: studentToken,
			body:     marchallObj(t, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/students", token: teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": reqMsg, "roll_no": reqMsg, "class": reqMsg}),
		},
		{
			name: "invalid gender", method: http.MethodPost, path: "/students", token: teacherToken,
			body:     marchallObj(t, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "lol"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"gender": "gender must be one of [male female other]"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/students", token: teacherToken,
			body:     marchallObj(t, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "male"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, student.Student{ID: 1, Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "male"}),
		},
		{
			name: "students may read", method: http.MethodGet, path: "/students", token: studentToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, student.Student{ID: 1, Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "male"}),
		},
		{
			name: "retrieve", method: http.MethodGet, path: "/students/1", token: teacherToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, student.Student{ID: 1, Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "male"}),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/students/999", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "retrieve garbage id", method: http.MethodGet, path: "/students/lol", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "update keeps empty fields", method: http.MethodPut, path: "/students/1", token: teacherToken,
			body:     marchallObj(t, student.UpdateStudent{Name: "Aman G."}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, student.Student{ID: 1, Name: "Aman G.", RollNo: "R001", Class: "CS-A", Gender: "male"}),
		},
		{
			name: "update forbidden for students", method: http.MethodPut, path: "/students/1", token: studentToken,
			body:     marchallObj(t, student.UpdateStudent{Name: "lol"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "delete forbidden for students", method: http.MethodDelete, path: "/students/1", token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/students/1", token: teacherToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "deleted is gone", method: http.MethodGet, path: "/students/1", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_aggregations(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	token := getToken(t, teacher)

	aman, err := stuSvc.Create(ctx, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A", Gender: "male"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	ria, err := stuSvc.Create(ctx, student.NewStudent{Name: "Ria Sharma", RollNo: "R002", Class: "CS-A", Gender: "female"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err = stuSvc.Create(ctx, student.NewStudent{Name: "Ben Okoro", RollNo: "R001", Class: "CS-B"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	m1 := db.AddMark(student.Mark{StudentID: aman.ID, Subject: "Maths", Marks: 78})
	m2 := db.AddMark(student.Mark{StudentID: aman.ID, Subject: "Physics", Marks: 64})
	db.AddMark(student.Mark{StudentID: ria.ID, Subject: "Maths", Marks: 91})
	att := db.AddAttendance(student.Attendance{StudentID: aman.ID, PresentDays: 40, TotalDays: 45})
	db.AddAttendance(student.Attendance{StudentID: ria.ID, PresentDays: 42, TotalDays: 45})

	iPtr := func(i int) *int { return &i }

	tests := []httpTest{
		{
			name: "marks", method: http.MethodGet, path: "/marks/1", token: token,
			wantCode: http.StatusOK, wantData: marchallList(t, m1, m2),
		},
		{
			name: "no marks", method: http.MethodGet, path: "/marks/3", token: token,
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
		{
			name: "attendance", method: http.MethodGet, path: "/attendance/1", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, att),
		},
		{
			name: "no attendance recorded", method: http.MethodGet, path: "/attendance/3", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "class list", method: http.MethodGet, path: "/class-list", token: token,
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				student.ClassSummary{Class: "CS-A", Total: 2},
				student.ClassSummary{Class: "CS-B", Total: 1},
			),
		},
		{
			name: "overall attendance", method: http.MethodGet, path: "/overall-attendance", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.AttendancePercentageResponse{Percentage: 91}),
		},
		{
			name: "class details", method: http.MethodGet, path: "/class-details?class=CS-A", token: token,
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				student.ClassDetail{
					ID: aman.ID, Name: aman.Name, RollNo: aman.RollNo, Gender: aman.Gender,
					Subjects: []student.SubjectMark{
						{Subject: "Maths", Marks: 78},
						{Subject: "Physics", Marks: 64},
					},
					Attendance: student.AttendanceSummary{Present: iPtr(40), Total: iPtr(45)},
				},
				student.ClassDetail{
					ID: ria.ID, Name: ria.Name, RollNo: ria.RollNo, Gender: ria.Gender,
					Subjects: []student.SubjectMark{
						{Subject: "Maths", Marks: 91},
					},
					Attendance: student.AttendanceSummary{Present: iPtr(42), Total: iPtr(45)},
				},
			),
		},
		{
			name: "class details of empty class", method: http.MethodGet, path: "/class-details?class=CS-Z", token: token,
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
		{
			name: "class details without class param", method: http.MethodGet, path: "/class-details", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class": "a class query parameter is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
