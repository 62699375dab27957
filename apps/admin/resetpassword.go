package main

import (
	"context"

	"github.com/Vasu3050/schoolsite/core"
)

func (cli *commandLine) resetPassword(nameOrEmail, pwd string) error {
	ctx := context.Background()
	nameOrEmail = core.CleanString(nameOrEmail)

	acc, err := cli.accRepo.GetAccountByNameOrEmail(ctx, nameOrEmail, nameOrEmail)
	if err != nil {
		return err
	}
	if err := acc.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.accRepo.UpdateAccount(ctx, acc)
	return err
}
