package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrEmailExists    = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, username string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)

		// teacher class assignments
		AssignClass(ctx context.Context, teacherUserID int, class string) error
		UnassignClass(ctx context.Context, teacherUserID int, class string) error
		QueryTeacherClasses(ctx context.Context, teacherUserID int) ([]string, error)
		TeacherOwnsClass(ctx context.Context, teacherUserID int, class string) (bool, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Email:     nu.Email,
		Role:      nu.Role,
		StudentID: nu.StudentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// RequestPasswordReset emails a reset token to the matched account.
// It reports success even when no account matches so the endpoint
// cannot be used to probe for usernames.
func (svc *Service) RequestPasswordReset(ctx context.Context, uname string) error {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return errors.Wrap(err, "finding user")
	}
	if usr.Email == "" {
		return nil
	}

	token, err := MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}

	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Follow the link below to set a new password:\n\n"+
			"%s/password-reset?uid=%s&token=%s\n\n"+
			"If you did not request this, you can safely ignore this email.",
		usr.Username, core.Conf.FrontendBaseURL, EncodeUID(usr), token,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject: "Password Reset",
		BodyStr: body,
	})
	return nil
}

// ConfirmPasswordReset verifies the uid/token pair and sets the new password.
func (svc *Service) ConfirmPasswordReset(ctx context.Context, rp ResetUserPassword) error {
	fail := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}

	id, err := decodeUID(rp.UID)
	if err != nil {
		return fail(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return fail(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return fail(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// Teacher class assignments

func (svc *Service) AssignClass(ctx context.Context, teacherUserID int, class string) error {
	return svc.repo.AssignClass(ctx, teacherUserID, core.CleanString(class))
}

func (svc *Service) UnassignClass(ctx context.Context, teacherUserID int, class string) error {
	return svc.repo.UnassignClass(ctx, teacherUserID, core.CleanString(class))
}

func (svc *Service) TeacherClasses(ctx context.Context, teacherUserID int) ([]string, error) {
	return svc.repo.QueryTeacherClasses(ctx, teacherUserID)
}

func (svc *Service) IsClassOwner(ctx context.Context, teacherUserID int, class string) (bool, error) {
	return svc.repo.TeacherOwnsClass(ctx, teacherUserID, core.CleanString(class))
}
