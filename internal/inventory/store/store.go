// Package store provides the inventory catalog: the authoritative registry of items.
package store

import "github.com/abgdnv/inventory/internal/inventory/photo"

// Item represents an inventory item entity in the catalog.
type Item struct {
	ID          int64
	Name        string
	Description string
	Photo       photo.Ref // zero value means no photo
}

// ItemStore is an interface for catalog operations.
// It abstracts the underlying data store, allowing for different implementations.
type ItemStore interface {
	// FindByID retrieves a single item by its identifier.
	// Returns ErrItemNotFound if no item exists with the given ID.
	FindByID(id int64) (Item, error)

	// FindAll returns all items in insertion order.
	// Returns an empty slice if the catalog is empty.
	FindAll() []Item

	// Create adds a new item and assigns it the next unused ID.
	// Returns ErrValidation if name is empty; no ID is consumed in that case.
	Create(name, description string, photoRef photo.Ref) (Item, error)

	// Update applies the non-empty fields. Empty strings leave the stored value untouched.
	// Returns ErrItemNotFound if no item exists with the given ID.
	Update(id int64, name, description string) (Item, error)

	// SetPhoto replaces the photo reference and returns the updated item together
	// with the reference it replaced.
	// Returns ErrItemNotFound if no item exists with the given ID.
	SetPhoto(id int64, photoRef photo.Ref) (Item, photo.Ref, error)

	// DeleteByID removes an item and returns the removed record.
	// Returns ErrItemNotFound if no item exists with the given ID.
	DeleteByID(id int64) (Item, error)

	// Len returns the number of items in the catalog.
	Len() int
}
