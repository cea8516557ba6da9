package main

import (
	"context"

	"github.com/trezcool/darasa/core/user"
)

// addUser creates a user.User after running it through the usual validation.
func (cli *commandLine) addUser(uname, email, pwd string, role user.Role, studentID int) error {
	ctx := context.Background()

	var sid *int
	if studentID > 0 {
		sid = &studentID
	}
	nu := user.NewUser{
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            role,
		StudentID:       sid,
	}
	if err := nu.Validate(ctx, cli.usrSvc); err != nil {
		return err
	}
	if _, err := cli.usrSvc.Create(ctx, nu); err != nil {
		return err
	}
	return nil
}
