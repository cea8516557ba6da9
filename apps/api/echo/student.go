package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	ag := g.Group("", jwt)

	ag.GET("/students", api.query)
	ag.POST("/students", api.create, teacherMiddleware())
	ag.GET("/students/:id", api.retrieve)
	ag.PUT("/students/:id", api.update, teacherMiddleware())
	ag.DELETE("/students/:id", api.destroy, teacherMiddleware())

	ag.GET("/marks/:studentID", api.queryMarks)
	ag.GET("/attendance/:studentID", api.retrieveAttendance)

	// dashboard aggregations
	ag.GET("/class-list", api.queryClassList)
	ag.GET("/overall-attendance", api.overallAttendance)
	ag.GET("/class-details", api.queryClassDetails)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	st, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	st, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) queryMarks(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("studentID"))
	if err != nil {
		return errHttpNotFound
	}
	marks, err := api.svc.Marks(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying marks")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *studentApi) retrieveAttendance(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("studentID"))
	if err != nil {
		return errHttpNotFound
	}
	att, err := api.svc.AttendanceByStudent(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == student.ErrAttendanceNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *studentApi) queryClassList(ctx echo.Context) error {
	summaries, err := api.svc.ClassSummaries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying class summaries")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *studentApi) overallAttendance(ctx echo.Context) error {
	pct, err := api.svc.OverallAttendance(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing overall attendance")
	}
	return ctx.JSON(http.StatusOK, AttendancePercentageResponse{Percentage: pct})
}

func (api *studentApi) queryClassDetails(ctx echo.Context) error {
	class := ctx.QueryParam("class")
	if class == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class", Error: "a class query parameter is required"})
	}
	details, err := api.svc.ClassDetails(ctx.Request().Context(), class)
	if err != nil {
		return errors.Wrap(err, "querying class details")
	}
	return ctx.JSON(http.StatusOK, details)
}

type AttendancePercentageResponse struct {
	Percentage int `json:"percentage"`
}
