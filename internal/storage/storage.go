package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
)

// ItemStore keeps batch items in insertion order. Values are copied in and
// out, so callers never share an item with the store.
type ItemStore struct {
	items map[string]models.BatchItem
	order []string
	mu    sync.RWMutex
}

func New() *ItemStore {
	return &ItemStore{
		items: make(map[string]models.BatchItem),
	}
}

func (s *ItemStore) Get(id string) (models.BatchItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, exists := s.items[id]
	return item, exists
}

// Set inserts a new item at the end or replaces an existing one in place
func (s *ItemStore) Set(item models.BatchItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.items[item.ID] = item
}

// GetAll returns a snapshot of every item in insertion order
func (s *ItemStore) GetAll() []models.BatchItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.BatchItem, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.items[id])
	}
	return result
}

func (s *ItemStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every item and returns how many were removed
func (s *ItemStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.order)
	s.items = make(map[string]models.BatchItem)
	s.order = nil
	return n
}

func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
