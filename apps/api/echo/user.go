package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userApi struct {
	svc *user.Service
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service) {
	api := userApi{svc: svc}

	ag := g.Group("/auth")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.GET("/me", api.me)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// class ownership; advisory bookkeeping for the teacher dashboard
	tg := g.Group("/teacher", jwt, teacherMiddleware())
	tg.POST("/assign", api.assignClass)
	tg.POST("/unassign", api.unassignClass)
	tg.GET("/classes", api.queryClasses)
	tg.GET("/is-owner/:class", api.isClassOwner)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return err
	}

	setTokenCookie(ctx, token)
	return ctx.JSON(http.StatusOK, claimsResponse(claims))
}

func (api *userApi) logout(ctx echo.Context) error {
	// cookie-only: issued tokens stay valid until they expire
	clearTokenCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

// me reports the session's decoded identity; a missing, expired or
// garbage cookie yields null, never an error.
func (api *userApi) me(ctx echo.Context) error {
	claims, err := parseTokenCookie(ctx)
	if err != nil {
		return ctx.JSON(http.StatusOK, nil)
	}
	return ctx.JSON(http.StatusOK, claimsResponse(claims))
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Username); err != nil {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the username supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ConfirmPasswordReset(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) assignClass(ctx echo.Context) error {
	var data ClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.AssignClass(ctx.Request().Context(), usr.ID, data.Class); err != nil {
		return errors.Wrap(err, "assigning class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) unassignClass(ctx echo.Context) error {
	var data ClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err := api.svc.UnassignClass(ctx.Request().Context(), usr.ID, data.Class); err != nil {
		return errors.Wrap(err, "unassigning class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) queryClasses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	classes, err := api.svc.TeacherClasses(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *userApi) isClassOwner(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	owns, err := api.svc.IsClassOwner(ctx.Request().Context(), usr.ID, ctx.Param("class"))
	if err != nil {
		return errors.Wrap(err, "checking class ownership")
	}
	return ctx.JSON(http.StatusOK, OwnershipResponse{Owner: owns})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	IdentityResponse struct {
		ID        int       `json:"id"`
		Username  string    `json:"username"`
		Role      user.Role `json:"role"`
		StudentID *int      `json:"student_id,omitempty"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	ClassRequest struct {
		Class string `json:"class" validate:"required"`
	}

	OwnershipResponse struct {
		Owner bool `json:"owner"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (cr *ClassRequest) Validate() error {
	cr.Class = core.CleanString(cr.Class)
	return core.Validate.Struct(cr)
}

func claimsResponse(claims *Claims) IdentityResponse {
	id, _ := strconv.Atoi(claims.Subject)
	return IdentityResponse{
		ID:        id,
		Username:  claims.Username,
		Role:      claims.Role,
		StudentID: claims.StudentID,
	}
}
