package main

import (
	"context"
	"time"

	"github.com/Vasu3050/schoolsite/core"
	"github.com/Vasu3050/schoolsite/core/account"
)

// addAdmin grants the admin role to an existing account or creates a
// fresh active one.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	acc, err := cli.accRepo.GetAccountByNameOrEmail(ctx, name, email)
	if err != nil {
		if err != account.ErrNotFound {
			return err
		}
		acc = account.Account{
			Name:      name,
			Email:     email,
			CreatedAt: now,
		}
	}
	acc.AddRole(account.RoleAdmin)
	acc.Status = account.StatusActive
	acc.UpdatedAt = now
	if err := acc.SetPassword(pwd); err != nil {
		return err
	}

	if acc.ID == "" {
		_, err = cli.accRepo.CreateAccount(ctx, acc)
	} else {
		_, err = cli.accRepo.UpdateAccount(ctx, acc)
	}
	return err
}
