package grocery

import (
	"fmt"
	"sync"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

// ItemStore holds the canonical collection of items in insertion order.
//
// Update and Delete report ErrNotFound for an absent id and leave the
// collection untouched.
type ItemStore interface {
	List() []model.GroceryItem
	Add(item model.GroceryItem) error
	Update(item model.GroceryItem) error
	Delete(id int64) error
	Reset(items []model.GroceryItem) error
}

// MemStore is an in-memory ItemStore.
type MemStore struct {
	mu    sync.RWMutex
	items []model.GroceryItem
	index map[int64]int
}

func NewMemStore() *MemStore {
	return &MemStore{index: make(map[int64]int)}
}

func (s *MemStore) List() []model.GroceryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.GroceryItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *MemStore) Add(item model.GroceryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[item.ID]; ok {
		return fmt.Errorf("add item %d: %w", item.ID, ErrDuplicateID)
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
	return nil
}

func (s *MemStore) Update(item model.GroceryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[item.ID]
	if !ok {
		return fmt.Errorf("update item %d: %w", item.ID, ErrNotFound)
	}
	s.items[i] = item
	return nil
}

func (s *MemStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	return nil
}

// Reset replaces the whole collection. Input with a repeated id is rejected
// and the current contents are kept.
func (s *MemStore) Reset(items []model.GroceryItem) error {
	index := make(map[int64]int, len(items))
	for i, item := range items {
		if _, ok := index[item.ID]; ok {
			return fmt.Errorf("reset items: id %d: %w", item.ID, ErrDuplicateID)
		}
		index[item.ID] = i
	}

	next := make([]model.GroceryItem, len(items))
	copy(next, items)

	s.mu.Lock()
	s.items = next
	s.index = index
	s.mu.Unlock()
	return nil
}
