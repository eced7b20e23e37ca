package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/photo"
)

// inMemory implements ItemStore using a map for lookups and a slice for order.
type inMemory struct {
	mu     sync.RWMutex
	items  map[int64]Item
	order  []int64
	nextID int64
}

// NewInMemoryStore creates a new instance of ItemStore
func NewInMemoryStore() ItemStore {
	return &inMemory{
		items:  make(map[int64]Item),
		nextID: 1,
	}
}

// FindByID retrieves an item by its ID.
func (s *inMemory) FindByID(id int64) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", errors.ErrItemNotFound, id)
	}
	return item, nil
}

// FindAll retrieves all items in the order they were created.
func (s *inMemory) FindAll() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.items[id])
	}
	return list
}

// Create creates a new item and returns it.
func (s *inMemory) Create(name, description string, photoRef photo.Ref) (Item, error) {
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", errors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		Photo:       photoRef,
	}
	s.nextID++
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)

	return item, nil
}

// Update changes name and description, skipping empty values.
func (s *inMemory) Update(id int64, name, description string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", errors.ErrItemNotFound, id)
	}
	if name != "" {
		item.Name = name
	}
	if description != "" {
		item.Description = description
	}
	s.items[id] = item
	return item, nil
}

// SetPhoto replaces the photo reference of an item.
func (s *inMemory) SetPhoto(id int64, photoRef photo.Ref) (Item, photo.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return Item{}, "", fmt.Errorf("%w: %d", errors.ErrItemNotFound, id)
	}
	previous := item.Photo
	item.Photo = photoRef
	s.items[id] = item
	return item, previous, nil
}

// DeleteByID deletes an item by its ID.
func (s *inMemory) DeleteByID(id int64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return Item{}, fmt.Errorf("%w: %d", errors.ErrItemNotFound, id)
	}
	delete(s.items, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return item, nil
}

func (s *inMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
