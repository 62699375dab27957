package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/storage/inmem"
	testutil "github.com/Vasu3050/schoolsite/tests"
)

var accRepo *inmem.AccountRepository

func setup(t *testing.T) *commandLine {
	accRepo = inmem.NewAccountRepository()
	return &commandLine{accRepo: accRepo}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	extra   interface{}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	teacher := testutil.CreateAccount(t, accRepo, "Mary Teacher", "mary@test.cd", "mdr", []string{account.RoleTeacher}, account.StatusActive)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addadmin", "-name", "Root"}, wantErr: errHelp},
		{name: "no password", args: []string{"addadmin", "-name", "Root", "-email", "root@test.cd"}, wantErr: errHelp},
		{name: "new admin", args: []string{"addadmin", "-name", "Root", "-email", "root@test.cd"}, extra: extra{pwd: "lol"}},
		{name: "grant to existing account", args: []string{"addadmin", "-name", teacher.Name, "-email", teacher.Email}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	acc, err := accRepo.GetAccountByNameOrEmail(context.Background(), "", "root@test.cd")
	if err != nil {
		t.Fatalf("GetAccountByNameOrEmail() failed, %v", err)
	}
	if !acc.IsAdmin() {
		t.Error("created account is not admin")
	}
	if acc.Status != account.StatusActive {
		t.Errorf("created account status = %s, want %s", acc.Status, account.StatusActive)
	}
	if err = acc.CheckPassword("lol"); err != nil {
		t.Error("created account password not set")
	}
	if acc.CreatedAt.IsZero() || acc.UpdatedAt.IsZero() {
		t.Errorf("created account timestamps = %v / %v, want stamped", acc.CreatedAt, acc.UpdatedAt)
	}

	granted, err := accRepo.GetAccountByID(context.Background(), teacher.ID)
	if err != nil {
		t.Fatalf("GetAccountByID() failed, %v", err)
	}
	if !granted.IsAdmin() || !granted.IsTeacher() {
		t.Errorf("granted account roles = %v, want admin and teacher kept", granted.Roles)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	acc := testutil.CreateAccount(t, accRepo, "Mona Rao", "mona@test.cd", "mdr", []string{account.RoleParent}, account.StatusActive)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "name but no password", args: []string{"resetpassword", "-name", "lol"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-name", "lol"}, extra: extra{pwd: "lol"}, wantErr: account.ErrNotFound},
		{name: "reset with name", args: []string{"resetpassword", "-name", acc.Name}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-name", acc.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := accRepo.GetAccountByID(context.Background(), acc.ID)
				if err != nil {
					t.Fatalf("GetAccountByID() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, acc.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
