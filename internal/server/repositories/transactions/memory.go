package transactions

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/pointgate/internal/common"
	"github.com/dmitrijs2005/pointgate/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Transaction
	seq   map[string]int
	next  int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]models.Transaction),
		seq:   make(map[string]int),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	r.items[t.ID] = *t
	r.seq[t.ID] = r.next
	r.next++
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) ForWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Transaction
	for _, t := range r.items {
		if t.SenderWalletID == walletID || t.ReceiverWalletID == walletID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, t *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		return common.ErrorNotFound
	}
	r.items[t.ID] = *t
	return nil
}
