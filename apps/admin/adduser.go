package main

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// addUser updates or creates a user.User. Role only applies on creation;
// it is immutable once registered.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			now := time.Now().UTC()
			usr = user.User{
				Name:      name,
				Email:     email,
				Role:      role,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := usr.SetPassword(pwd); err != nil {
				return err
			}
			_, err = cli.usrRepo.CreateUser(ctx, usr)
			return err
		}
		return err
	}

	usr.Name = name
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
