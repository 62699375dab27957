package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Vasu3050/schoolsite/core/account"
	"github.com/Vasu3050/schoolsite/core/student"
)

func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email, pwd string,
	roles []string,
	status string,
	createdAt ...time.Time,
) account.Account {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	acc := account.Account{
		Name:      name,
		Email:     email,
		Roles:     roles,
		Status:    status,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	code, name, grade, division string,
	guardianIDs ...string,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	st := student.Student{
		Code:        code,
		Name:        name,
		DOB:         tstamp.AddDate(-6, 0, 0),
		Grade:       grade,
		Division:    division,
		GuardianIDs: guardianIDs,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	st, err := repo.CreateStudent(context.Background(), st)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}
