package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/exam"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type examApi struct {
	svc *exam.Service
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service) {
	api := examApi{svc: svc}

	ag := g.Group("", jwt)

	ag.POST("/exams", api.create, teacherMiddleware())
	ag.GET("/exams", api.query)
	ag.DELETE("/exams/:id", api.destroy, teacherMiddleware())

	ag.POST("/exam-marks", api.upsertMark, teacherMiddleware())
	ag.GET("/exam-marks/exam/:examId", api.queryMarks)
	ag.GET("/exam-marks/export/:examId", api.export, teacherMiddleware())
	ag.POST("/exam-marks/import", api.importMarks, teacherMiddleware())
}

// Handlers

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ex, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, ex)
}

func (api *examApi) query(ctx echo.Context) error {
	exams, err := api.svc.Query(ctx.Request().Context(), ctx.QueryParam("class"))
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) upsertMark(ctx echo.Context) error {
	var data exam.MarkUpsert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkUpsert")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	mark, created, err := api.svc.UpsertMark(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "upserting exam mark")
	}
	if created {
		return ctx.JSON(http.StatusCreated, mark)
	}
	return ctx.JSON(http.StatusOK, mark)
}

func (api *examApi) queryMarks(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("examId"))
	if err != nil {
		return errHttpNotFound
	}
	marks, err := api.svc.MarksByExam(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying exam marks")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *examApi) export(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("examId"))
	if err != nil {
		return errHttpNotFound
	}
	file, err := api.svc.Export(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "exporting exam marks")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, file.Content)
}

func (api *examApi) importMarks(ctx echo.Context) error {
	examID, err := strconv.Atoi(ctx.QueryParam("exam_id"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "exam_id", Error: "a numeric exam_id query parameter is required"})
	}
	if _, err := api.svc.GetByID(ctx.Request().Context(), examID); err != nil {
		if errors.Cause(err) == exam.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding exam by ID")
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "an uploaded workbook is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = f.Close() }()

	res, err := api.svc.Import(ctx.Request().Context(), examID, f)
	if err != nil {
		return core.NewValidationError(errors.Wrap(err, "unreadable workbook"))
	}
	return ctx.JSON(http.StatusOK, res)
}
