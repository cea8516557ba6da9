package tests

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/exam"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
)

// marksUpload builds an uploaded workbook from a header row and data rows.
func marksUpload(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &rows[i]); err != nil {
			t.Fatalf("SetSheetRow() failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() failed: %v", err)
	}
	return buf.Bytes()
}

// newUploadRequest builds a multipart POST carrying file under the "file" field.
func newUploadRequest(t *testing.T, path, token string, file []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "marks.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err = fw.Write(file); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func Test_examApi_crud(t *testing.T) {
	app := setup(t)

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	hero := createUser(t, "hero", "hero@test.cd", "Str0ng#pass", user.RoleStudent, nil)
	teacherToken := getToken(t, teacher)
	studentToken := getToken(t, hero)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/exams",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Teacher required", method: http.MethodPost, path: "/exams", token: studentToken,
			body:     marchallObj(t, exam.NewExam{Name: "Midterm", Class: "CS-A"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "required fields", method: http.MethodPost, path: "/exams", token: teacherToken,
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": reqMsg, "class": reqMsg}),
		},
		{
			name: "create", method: http.MethodPost, path: "/exams", token: teacherToken,
			body:     marchallObj(t, exam.NewExam{Name: "Midterm", Class: "CS-A", Type: "internal", Date: "2026-03-10"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, exam.Exam{ID: 1, Name: "Midterm", Class: "CS-A", Type: "internal", Date: "2026-03-10"}),
		},
		{
			name: "create older exam", method: http.MethodPost, path: "/exams", token: teacherToken,
			body:     marchallObj(t, exam.NewExam{Name: "Entrance", Class: "CS-B", Date: "2025-11-02"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, exam.Exam{ID: 2, Name: "Entrance", Class: "CS-B", Date: "2025-11-02"}),
		},
		{
			name: "query newest first", method: http.MethodGet, path: "/exams", token: studentToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t,
				exam.Exam{ID: 1, Name: "Midterm", Class: "CS-A", Type: "internal", Date: "2026-03-10"},
				exam.Exam{ID: 2, Name: "Entrance", Class: "CS-B", Date: "2025-11-02"},
			),
		},
		{
			name: "query filtered by class", method: http.MethodGet, path: "/exams?class=CS-B", token: studentToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, exam.Exam{ID: 2, Name: "Entrance", Class: "CS-B", Date: "2025-11-02"}),
		},
		{
			name: "delete unknown", method: http.MethodDelete, path: "/exams/999", token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "delete", method: http.MethodDelete, path: "/exams/2", token: teacherToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "deleted is gone", method: http.MethodGet, path: "/exams?class=CS-B", token: studentToken,
			wantCode: http.StatusOK, wantData: []byte("[]"),
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

func Test_examApi_marks(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	token := getToken(t, teacher)

	aman, err := stuSvc.Create(ctx, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	ex, err := examSvc.Create(ctx, exam.NewExam{Name: "Midterm", Class: "CS-A", Date: "2026-03-10"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	iPtr := func(i int) *int { return &i }

	tests := []httpTest{
		{
			name: "mark inserted", method: http.MethodPost, path: "/exam-marks", token: token,
			body:     marchallObj(t, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: iPtr(68)}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, exam.ExamMark{ID: 1, ExamID: ex.ID, StudentID: aman.ID, Marks: 68}),
		},
		{
			name: "mark updated in place", method: http.MethodPost, path: "/exam-marks", token: token,
			body:     marchallObj(t, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: iPtr(72)}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, exam.ExamMark{ID: 1, ExamID: ex.ID, StudentID: aman.ID, Marks: 72}),
		},
		{
			name: "unknown exam", method: http.MethodPost, path: "/exam-marks", token: token,
			body:     marchallObj(t, exam.MarkUpsert{ExamID: 999, StudentID: aman.ID, Marks: iPtr(50)}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "marks by exam", method: http.MethodGet, path: fmt.Sprintf("/exam-marks/exam/%d", ex.ID), token: token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, exam.ExamMarkDetail{
				ID: 1, ExamID: ex.ID, StudentID: aman.ID, Marks: 72,
				StudentName: aman.Name, RollNo: aman.RollNo, Class: aman.Class,
			}),
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

func Test_examApi_export(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	hero := createUser(t, "hero", "hero@test.cd", "Str0ng#pass", user.RoleStudent, nil)
	token := getToken(t, teacher)

	aman, err := stuSvc.Create(ctx, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	ex, err := examSvc.Create(ctx, exam.NewExam{Name: "Midterm", Class: "CS-A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	marks := 68
	if _, _, err = examSvc.UpsertMark(ctx, exam.MarkUpsert{ExamID: ex.ID, StudentID: aman.ID, Marks: &marks}); err != nil {
		t.Fatalf("UpsertMark() failed: %v", err)
	}

	t.Run("Teacher required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/exam-marks/export/%d", ex.ID), getToken(t, hero))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("unknown exam", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/exam-marks/export/999", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/exam-marks/export/%d", ex.ID), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
			t.Errorf("failed! Content-Type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Midterm_CS-A.xlsx"` {
			t.Errorf("failed! Content-Disposition = %q", cd)
		}

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("OpenReader() failed: %v", err)
		}
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			t.Fatalf("GetRows() failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("failed! len(rows) = %d; want 2", len(rows))
		}
		want := []string{"R001", "Aman Gupta", "CS-A", "68"}
		for i, cell := range want {
			if rows[1][i] != cell {
				t.Errorf("failed! rows[1][%d] = %q; want %q", i, rows[1][i], cell)
			}
		}
	})
}

func Test_examApi_importMarks(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	teacher := createUser(t, "teach", "teach@test.cd", "Str0ng#pass", user.RoleTeacher, nil)
	token := getToken(t, teacher)

	aman, err := stuSvc.Create(ctx, student.NewStudent{Name: "Aman Gupta", RollNo: "R001", Class: "CS-A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	ex, err := examSvc.Create(ctx, exam.NewExam{Name: "Midterm", Class: "CS-A"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	upload := marksUpload(t,
		[]interface{}{"roll_no", "marks"},
		[]interface{}{"R001", 68},
		[]interface{}{"R999", 50},
	)

	t.Run("exam_id required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/exam-marks/import", token, upload)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"exam_id": "a numeric exam_id query parameter is required"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown exam", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/exam-marks/import?exam_id=999", token, upload)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("file required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, fmt.Sprintf("/exam-marks/import?exam_id=%d", ex.ID), token)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "an uploaded workbook is required"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("import", func(t *testing.T) {
		req, rec := newUploadRequest(t, fmt.Sprintf("/exam-marks/import?exam_id=%d", ex.ID), token, upload)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, exam.ImportResult{
				Processed: 2,
				Rows: []exam.RowResult{
					{Row: 2, StudentID: aman.ID, RollNo: "R001", Marks: 68, Status: exam.RowInserted},
					{Row: 3, RollNo: "R999", Marks: 50, Status: exam.RowUnresolved},
				},
			}),
		}
		checkCodeAndData(t, tt, rec)

		details, err := examSvc.MarksByExam(ctx, ex.ID)
		if err != nil {
			t.Fatalf("MarksByExam() failed: %v", err)
		}
		if len(details) != 1 || details[0].Marks != 68 {
			t.Errorf("failed! stored marks = %+v", details)
		}
	})
}
