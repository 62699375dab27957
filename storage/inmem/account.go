// Package inmem provides map-backed repositories, primarily for tests
// and local development without a database.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vasu3050/schoolsite/core/account"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]account.Account)}
}

func (repo *AccountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, a := range repo.accounts {
		if a.Email == acc.Email {
			return account.Account{}, account.ErrEmailTaken
		}
	}
	acc.ID = uuid.New().String()
	repo.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *AccountRepository) GetAccountByID(_ context.Context, id string) (account.Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

func (repo *AccountRepository) GetAccountsByID(_ context.Context, ids ...string) ([]account.Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	accs := make([]account.Account, 0, len(ids))
	for _, id := range ids {
		if acc, ok := repo.accounts[id]; ok {
			accs = append(accs, acc)
		}
	}
	return accs, nil
}

func (repo *AccountRepository) GetAccountByNameOrEmail(_ context.Context, name, email string) (account.Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, acc := range repo.accounts {
		if acc.Name == name || acc.Email == email {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *AccountRepository) FilterAccounts(_ context.Context, filter account.QueryFilter) ([]account.Account, int, error) {
	filter.Clean()

	repo.mu.RLock()
	matches := make([]account.Account, 0, len(repo.accounts))
	for _, acc := range repo.accounts {
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(acc.Name), needle) &&
				!strings.Contains(strings.ToLower(acc.Email), needle) {
				continue
			}
		}
		if filter.Role != "" && !acc.HasRole(filter.Role) {
			continue
		}
		if filter.Status != "" && acc.Status != filter.Status {
			continue
		}
		matches = append(matches, acc)
	}
	repo.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	total := len(matches)
	lo, hi := pageBounds(total, filter.Offset(), filter.Limit)
	return matches[lo:hi], total, nil
}

func (repo *AccountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.accounts[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	for _, a := range repo.accounts {
		if a.ID != acc.ID && a.Email == acc.Email {
			return account.Account{}, account.ErrEmailTaken
		}
	}
	repo.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *AccountRepository) SetRefreshToken(_ context.Context, id, token string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	acc, ok := repo.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	acc.RefreshToken = token
	acc.UpdatedAt = time.Now().UTC()
	repo.accounts[id] = acc
	return nil
}

func (repo *AccountRepository) DeleteAccountsByID(_ context.Context, ids ...string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, id := range ids {
		delete(repo.accounts, id)
	}
	return nil
}

// pageBounds clamps one page window onto a slice of length n.
func pageBounds(n, offset, limit int) (int, int) {
	if offset >= n {
		return 0, 0
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}
