package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/orders/ports"
)

var _ ports.OrderStore = (*Store)(nil)

// Store is an in-memory order persistence adapter.
// The map lock guards membership only; each order has its own lock for reads and updates.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	order *domain.Order
}

func NewStore() *Store {
	return &Store{orders: map[string]*entry{}}
}

func (s *Store) Create(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	clone := order.Clone()
	if clone.Version == 0 {
		clone.Version = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[clone.ID]; ok {
		return ports.ErrAlreadyExists
	}
	s.orders[clone.ID] = &entry{order: clone}
	order.Version = clone.Version
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Order, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ports.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.Clone(), nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.orders))
	for _, e := range s.orders {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	list := make([]*domain.Order, 0)
	for _, e := range entries {
		e.mu.Lock()
		if e.order.UserID == userID {
			list = append(list, e.order.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// Update runs mutate on a copy while holding the order's lock and stores the copy on success.
func (s *Store) Update(_ context.Context, id string, mutate ports.MutateFunc) (*domain.Order, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ports.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	working := e.order.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version = e.order.Version + 1
	e.order = working.Clone()
	return working, nil
}

func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders[id]
}
