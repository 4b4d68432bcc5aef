package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/domain"
	"github.com/Apurer/go-gin-artstore-api/internal/domains/auctions/ports"
)

var _ ports.ArtworkStore = (*Store)(nil)

// Store keeps artworks in memory. Each artwork is guarded by its own mutex
// so bids on different artworks never contend.
type Store struct {
	mu       sync.RWMutex
	artworks map[string]*slot
}

type slot struct {
	mu      sync.Mutex
	artwork *domain.Artwork
}

func NewStore() *Store {
	return &Store{artworks: map[string]*slot{}}
}

func (s *Store) Create(_ context.Context, artwork *domain.Artwork) error {
	if artwork == nil {
		return errors.New("artwork is nil")
	}
	clone := artwork.Clone()
	if clone.Version == 0 {
		clone.Version = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artworks[clone.ID]; ok {
		return ports.ErrAlreadyExists
	}
	s.artworks[clone.ID] = &slot{artwork: clone}
	artwork.Version = clone.Version
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Artwork, error) {
	sl := s.slot(id)
	if sl == nil {
		return nil, ports.ErrNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.artwork.Clone(), nil
}

// List returns copies ordered by creation time, oldest first.
func (s *Store) List(_ context.Context) ([]*domain.Artwork, error) {
	s.mu.RLock()
	slots := make([]*slot, 0, len(s.artworks))
	for _, sl := range s.artworks {
		slots = append(slots, sl)
	}
	s.mu.RUnlock()

	list := make([]*domain.Artwork, 0, len(slots))
	for _, sl := range slots {
		sl.mu.Lock()
		list = append(list, sl.artwork.Clone())
		sl.mu.Unlock()
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) Update(_ context.Context, id string, mutate ports.MutateFunc) (*domain.Artwork, error) {
	sl := s.slot(id)
	if sl == nil {
		return nil, ports.ErrNotFound
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	working := sl.artwork.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version = sl.artwork.Version + 1
	sl.artwork = working.Clone()
	return working, nil
}

func (s *Store) slot(id string) *slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artworks[id]
}
