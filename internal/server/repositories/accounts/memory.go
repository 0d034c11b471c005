package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]models.Account)}
}

func clone(a models.Account) *models.Account {
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		a.LastLoginAt = &t
	}
	return &a
}

func (r *MemoryRepository) Get(ctx context.Context, userName string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (r *MemoryRepository) Exists(ctx context.Context, userName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[userName]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[a.UserName]; ok {
		return common.ErrorAlreadyExists
	}
	r.accounts[a.UserName] = *clone(*a)
	return nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[a.UserName] = *clone(*a)
	return nil
}

// update applies fn to the stored record under the write lock.
func (r *MemoryRepository) update(userName string, fn func(a *models.Account)) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(&a)
	r.accounts[userName] = a
	return clone(a), nil
}

func (r *MemoryRepository) TouchLastLogin(ctx context.Context, userName string, at time.Time) error {
	_, err := r.update(userName, func(a *models.Account) { a.LastLoginAt = &at })
	return err
}

func (r *MemoryRepository) SetPassword(ctx context.Context, userName, hash string, temporary bool) error {
	_, err := r.update(userName, func(a *models.Account) {
		a.PasswordHash = hash
		a.PasswordIsTemporary = temporary
		a.MustChangeOnNextLogin = temporary
	})
	return err
}

func (r *MemoryRepository) SetTOTPSecret(ctx context.Context, userName, secret string) error {
	_, err := r.update(userName, func(a *models.Account) { a.TOTPSecret = secret })
	return err
}

func (r *MemoryRepository) SetProfile(ctx context.Context, userName string, p models.Profile) (*models.Account, error) {
	return r.update(userName, func(a *models.Account) {
		a.FullName = p.FullName
		a.Email = p.Email
		a.Phone = p.Phone
	})
}

// All returns accounts ordered by username.
func (r *MemoryRepository) All(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}
