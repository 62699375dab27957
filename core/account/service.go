package account

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Vasu3050/schoolsite/core"
)

var (
	// errors
	ErrNotFound    = errors.New("account not found")
	ErrEmailTaken  = errors.New("an account with this email already exists")
	ErrRoleExists  = errors.New("account already has this role")
	ErrNotPending  = errors.New("account is not pending approval")
	ErrBlocked     = errors.New("account is blocked")
	ErrNoSuchChild = errors.New("student not found with the provided code")
)

type (
	Repository interface {
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccountByID(ctx context.Context, id string) (Account, error)
		// GetAccountsByID returns the accounts matching ids; missing ids are skipped.
		GetAccountsByID(ctx context.Context, ids ...string) ([]Account, error)
		// GetAccountByNameOrEmail matches either field; ErrNotFound when absent.
		GetAccountByNameOrEmail(ctx context.Context, name, email string) (Account, error)
		// FilterAccounts applies AND operation on available QueryFilter fields
		// and returns one page plus the unpaged total.
		FilterAccounts(ctx context.Context, filter QueryFilter) ([]Account, int, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		SetRefreshToken(ctx context.Context, id, token string) error
		DeleteAccountsByID(ctx context.Context, ids ...string) error
	}

	// GuardianRegistry is the slice of the student registry the credential
	// component needs: linking a new parent to a student and cleaning up
	// guardian references when a parent account is deleted.
	GuardianRegistry interface {
		LinkGuardian(ctx context.Context, studentCode, accountID string) error
		UnlinkGuardian(ctx context.Context, accountID string) error
	}

	Service interface {
		RegisterAdmin(ctx context.Context, na NewAdmin) (Account, error)
		Register(ctx context.Context, na NewAccount) (Account, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByIDs(ctx context.Context, ids ...string) ([]Account, error)
		GetByNameOrEmail(ctx context.Context, nameOrEmail string) (Account, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Account, int, error)
		Update(ctx context.Context, id string, ua UpdateAccount) (Account, error)
		Approve(ctx context.Context, id string) (Account, error)
		Reject(ctx context.Context, id string) error
		StoreRefreshToken(ctx context.Context, id, token string) error
		ClearRefreshToken(ctx context.Context, id string) error
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo      Repository
		guardians GuardianRegistry
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, guardians GuardianRegistry, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:      repo,
		guardians: guardians,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

// RegisterAdmin creates an active admin account. If an account already
// matches the name or email, the admin role is added to it (and it is
// activated); ErrRoleExists if it already holds the role.
func (svc *service) RegisterAdmin(ctx context.Context, na NewAdmin) (Account, error) {
	existing, err := svc.repo.GetAccountByNameOrEmail(ctx, na.Name, na.Email)
	if err == nil {
		if existing.IsAdmin() {
			return Account{}, ErrRoleExists
		}
		existing.AddRole(RoleAdmin)
		existing.Status = StatusActive
		existing.UpdatedAt = time.Now().UTC()
		return svc.repo.UpdateAccount(ctx, existing)
	}
	if errors.Cause(err) != ErrNotFound {
		return Account{}, errors.Wrap(err, "finding account by name or email")
	}

	now := time.Now().UTC()
	acc := Account{
		Name:      na.Name,
		Email:     na.Email,
		Phone:     na.Phone,
		Roles:     []string{RoleAdmin},
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, err
	}
	return svc.repo.CreateAccount(ctx, acc)
}

// Register creates a pending teacher or parent account, or adds the role
// to an account matching the name or email. A parent registration is
// linked to the student identified by NewAccount.StudentCode; when the
// link fails on an existing account the added role is rolled back.
func (svc *service) Register(ctx context.Context, na NewAccount) (Account, error) {
	existing, err := svc.repo.GetAccountByNameOrEmail(ctx, na.Name, na.Email)
	if err == nil {
		if existing.HasRole(na.Role) {
			return Account{}, ErrRoleExists
		}
		existing.AddRole(na.Role)
		existing.UpdatedAt = time.Now().UTC()
		acc, err := svc.repo.UpdateAccount(ctx, existing)
		if err != nil {
			return Account{}, errors.Wrap(err, "adding role to account")
		}
		if na.Role == RoleParent {
			if err := svc.linkGuardian(ctx, na.StudentCode, &acc); err != nil {
				return Account{}, err
			}
		}
		return acc, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Account{}, errors.Wrap(err, "finding account by name or email")
	}

	now := time.Now().UTC()
	acc := Account{
		Name:      na.Name,
		Email:     na.Email,
		Phone:     na.Phone,
		Roles:     []string{na.Role},
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, err
	}
	acc, err = svc.repo.CreateAccount(ctx, acc)
	if err != nil {
		return Account{}, err
	}
	if na.Role == RoleParent {
		if err := svc.linkGuardian(ctx, na.StudentCode, &acc); err != nil {
			return Account{}, err
		}
	}
	return acc, nil
}

// linkGuardian links acc into the guardian list of the student identified
// by code, rolling the parent role back on failure.
func (svc *service) linkGuardian(ctx context.Context, code string, acc *Account) error {
	if err := svc.guardians.LinkGuardian(ctx, code, acc.ID); err != nil {
		acc.RemoveRole(RoleParent)
		if _, uerr := svc.repo.UpdateAccount(ctx, *acc); uerr != nil {
			return errors.Wrap(uerr, "rolling back parent role")
		}
		return ErrNoSuchChild
	}
	return nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *service) GetByIDs(ctx context.Context, ids ...string) ([]Account, error) {
	return svc.repo.GetAccountsByID(ctx, ids...)
}

func (svc *service) GetByNameOrEmail(ctx context.Context, nameOrEmail string) (Account, error) {
	v := core.CleanString(nameOrEmail)
	return svc.repo.GetAccountByNameOrEmail(ctx, v, core.CleanString(v, true /* lower */))
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Account, int, error) {
	return svc.repo.FilterAccounts(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAccount) (Account, error) {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	acc.Name = ua.Name
	acc.Email = ua.Email
	if ua.Phone != "" {
		acc.Phone = ua.Phone
	}
	if ua.Roles != nil {
		acc.Roles = ua.Roles
	}
	if ua.Status != "" {
		acc.Status = ua.Status
	}
	if ua.Password != "" {
		if err := acc.SetPassword(ua.Password); err != nil {
			return Account{}, err
		}
	}
	acc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

// Approve activates a pending account and notifies it by email.
func (svc *service) Approve(ctx context.Context, id string) (Account, error) {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if acc.Status != StatusPending {
		return Account{}, ErrNotPending
	}
	acc.Status = StatusActive
	acc.UpdatedAt = time.Now().UTC()
	acc, err = svc.repo.UpdateAccount(ctx, acc)
	if err != nil {
		return Account{}, err
	}
	svc.sendApprovalMail(acc)
	return acc, nil
}

// Reject deletes a pending account.
func (svc *service) Reject(ctx context.Context, id string) error {
	acc, err := svc.repo.GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if acc.Status != StatusPending {
		return ErrNotPending
	}
	return svc.repo.DeleteAccountsByID(ctx, id)
}

func (svc *service) StoreRefreshToken(ctx context.Context, id, token string) error {
	return svc.repo.SetRefreshToken(ctx, id, token)
}

func (svc *service) ClearRefreshToken(ctx context.Context, id string) error {
	return svc.repo.SetRefreshToken(ctx, id, "")
}

// Delete removes accounts; any account holding the parent role is first
// pulled from every student's guardian list.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		acc, err := svc.repo.GetAccountByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return err
		}
		if acc.IsParent() {
			if err := svc.guardians.UnlinkGuardian(ctx, acc.ID); err != nil {
				return errors.Wrap(err, "unlinking guardian references")
			}
		}
	}
	return svc.repo.DeleteAccountsByID(ctx, ids...)
}

func (svc *service) sendApprovalMail(acc Account) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject: "Your account has been approved",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s account is now active. You can log in at %s.\n",
			acc.Name, svc.conf.AppName, svc.conf.Server.Host,
		),
	})
}
