package wallets

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	wallets map[string]*models.Wallet
	order   []string // creation order, for GetByOwner
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{wallets: make(map[string]*models.Wallet)}
}

func (r *MemoryRepository) Create(ctx context.Context, w *models.Wallet) error {
	if w.Balance.IsNegative() {
		return fmt.Errorf("negative balance: %w", common.ErrorInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wallets[w.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.wallets[w.ID] = w.Clone()
	r.order = append(r.order, w.ID)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return w.Clone(), nil
}

// GetForUpdate is Get; the ledger's wallet locks serialize writers.
func (r *MemoryRepository) GetForUpdate(ctx context.Context, id string) (*models.Wallet, error) {
	return r.Get(ctx, id)
}

func (r *MemoryRepository) GetByOwner(ctx context.Context, owner string) (*models.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if w := r.wallets[id]; w.OwnerUserName == owner {
			return w.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Save(ctx context.Context, w *models.Wallet) error {
	if w.Balance.IsNegative() {
		return fmt.Errorf("negative balance: %w", common.ErrorInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.wallets[w.ID]
	if !ok {
		return common.ErrorNotFound
	}

	next := w.Clone()
	next.History = mergeHistory(cur.History, w.History)
	r.wallets[w.ID] = next
	return nil
}

// mergeHistory appends the entries of incoming that stored lacks, keeping
// stored order.
func mergeHistory(stored, incoming []string) []string {
	seen := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		seen[id] = struct{}{}
	}

	out := append([]string(nil), stored...)
	for _, id := range incoming {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
			seen[id] = struct{}{}
		}
	}
	return out
}
