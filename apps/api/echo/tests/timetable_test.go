package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/timetable"
	"github.com/trezcool/darasa/core/user"
)

func Test_timetableApi(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	hero := createUser(t, "hero", "hero@test.cd", "Str0ng#pass", user.RoleStudent, nil)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, hero)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/timetable",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", method: http.MethodPost, path: "/timetable", token: studentToken,
			body:     marchallObj(t, timetable.NewEntry{Class: "CS-A", Time: "Mon 09:00-10:00", Subject: "Maths", Faculty: "S. Rao"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/timetable", token: teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class": reqMsg, "time": reqMsg, "subject": reqMsg, "faculty": reqMsg}),
		},
		{
			name: "create", method: http.MethodPost, path: "/timetable", token: teacherToken,
			body:     marchallObj(t, timetable.NewEntry{Class: "CS-A", Time: "Mon 09:00-10:00", Subject: "Maths", Faculty: "S. Rao"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, timetable.Entry{ID: 1, Class: "CS-A", Time: "Mon 09:00-10:00", Subject: "Maths", Faculty: "S. Rao"}),
		},
		{
			name: "create other class", method: http.MethodPost, path: "/timetable", token: teacherToken,
			body:     marchallObj(t, timetable.NewEntry{Class: "CS-B", Time: "Mon 10:00-11:00", Subject: "Physics", Faculty: "K. Iyer"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, timetable.Entry{ID: 2, Class: "CS-B", Time: "Mon 10:00-11:00", Subject: "Physics", Faculty: "K. Iyer"}),
		},
		{
			name: "query by class", method: http.MethodGet, path: "/timetable?class=CS-A", token: studentToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, timetable.Entry{ID: 1, Class: "CS-A", Time: "Mon 09:00-10:00", Subject: "Maths", Faculty: "S. Rao"}),
		},
		{
			name: "query unknown class", method: http.MethodGet, path: "/timetable?class=CS-Z", token: studentToken,
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
		{
			name: "classes", method: http.MethodGet, path: "/timetable-classes", token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []string{"CS-A", "CS-B"}),
		},
		{
			name: "delete forbidden for students", method: http.MethodDelete, path: "/timetable/2", token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/timetable/999", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/timetable/2", token: teacherToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "deleted class gone", method: http.MethodGet, path: "/timetable-classes", token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []string{"CS-A"}),
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
