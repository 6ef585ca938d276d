// Package favorites keeps the user's pinned asset list in the durable store.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

const storeKey = "favorite-assets"

// FavoriteAsset is one pinned asset.
type FavoriteAsset struct {
	Index   uint64    `json:"index"`
	AddedAt time.Time `json:"addedAt"`
}

// Store persists the favorite list.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// Service manages the favorite asset list. Safe for concurrent use; every
// mutation writes through to the store.
type Service struct {
	store Store
	now   func() time.Time

	mu sync.Mutex
}

// NewService creates a favorites service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns the favorites sorted by asset index.
func (s *Service) List(ctx context.Context) ([]FavoriteAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// IsFavorite reports whether the asset is pinned.
func (s *Service) IsFavorite(ctx context.Context, assetID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range list {
		if f.Index == assetID {
			return true, nil
		}
	}
	return false, nil
}

// Add pins the asset. Adding an already pinned asset is a no-op that keeps
// the original AddedAt.
func (s *Service) Add(ctx context.Context, assetID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, f := range list {
		if f.Index == assetID {
			return nil
		}
	}
	list = append(list, FavoriteAsset{Index: assetID, AddedAt: s.now().UTC()})
	return s.save(ctx, list)
}

// Remove unpins the asset. Removing an unknown asset is a no-op.
func (s *Service) Remove(ctx context.Context, assetID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, f := range list {
		if f.Index != assetID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	return s.save(ctx, kept)
}

// Toggle flips the pinned state and reports the new one.
func (s *Service) Toggle(ctx context.Context, assetID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	kept := list[:0]
	removed := false
	for _, f := range list {
		if f.Index == assetID {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	if removed {
		return false, s.save(ctx, kept)
	}
	kept = append(kept, FavoriteAsset{Index: assetID, AddedAt: s.now().UTC()})
	return true, s.save(ctx, kept)
}

// Clear removes all favorites.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Del(ctx, storeKey)
}

func (s *Service) load(ctx context.Context) ([]FavoriteAsset, error) {
	raw, ok, err := s.store.Get(ctx, storeKey)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var list []FavoriteAsset
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	return list, nil
}

func (s *Service) save(ctx context.Context, list []FavoriteAsset) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := s.store.Set(ctx, storeKey, string(raw)); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}
