// Package service provides the implementation of inventory business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/photo"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/internal/platform/metrics"
)

// InventoryService defines the methods for managing inventory items and their photos.
// It abstracts the catalog and the photo store behind a single API for the handlers.
type InventoryService interface {
	// Register creates a new item. photo may be nil.
	// Returns ErrValidation if the name is missing.
	Register(ctx context.Context, dto RegisterDto, photo io.Reader) (*ItemDto, error)

	// FindByID retrieves a single item with its photo link.
	// Returns ErrItemNotFound if no item exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ItemView, error)

	// FindAll returns all items in registration order.
	// Returns an empty slice if no items exist.
	FindAll(ctx context.Context) ([]ItemView, error)

	// Update changes name and/or description. Empty values are ignored.
	// Returns ErrItemNotFound if no item exists with the given ID.
	Update(ctx context.Context, id int64, dto UpdateDto) (*ItemDto, error)

	// Photo returns the stored photo bytes of an item.
	// Returns ErrItemNotFound or ErrPhotoNotFound.
	Photo(ctx context.Context, id int64) ([]byte, error)

	// ReplacePhoto stores a new photo for an item.
	// Returns ErrItemNotFound for unknown items and ErrValidation if photo is nil.
	ReplacePhoto(ctx context.Context, id int64, photo io.Reader) (*ItemDto, error)

	// DeleteByID removes an item; its photo is reclaimed in the background.
	// Returns ErrItemNotFound if no item exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error

	// Search looks an item up by ID, adding the photo link only when asked for
	// and a photo is present.
	Search(ctx context.Context, id int64, withPhotoLink bool) (*SearchResult, error)
}

// Reclaimer takes photos that are no longer referenced by any item.
type Reclaimer interface {
	Enqueue(ref photo.Ref) bool
}

// Options tunes the service. The zero value keeps every replaced or deleted photo.
type Options struct {
	// Cleanup removes a photo once no item refers to it any more.
	Cleanup bool
	// Reclaimer deletes photos asynchronously. If nil, photos are deleted inline.
	Reclaimer Reclaimer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Service implements InventoryService.
type Service struct {
	items   store.ItemStore
	photos  photo.Store
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService creates a new instance of InventoryService.
func NewService(items store.ItemStore, photos photo.Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		items:   items,
		photos:  photos,
		opts:    opts,
		logger:  logger.With("component", "service"),
		metrics: opts.Metrics,
	}
}

// RegisterDto carries the fields of the register form.
type RegisterDto struct {
	Name        string `json:"inventory_name" validate:"required"`
	Description string `json:"description"`
}

// UpdateDto carries the optional fields of an update.
type UpdateDto struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ItemDto represents the data transfer object for an inventory item.
type ItemDto struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Photo       *string `json:"photo"`
}

// ItemView is an item as listed: photo_link is always present, null without a photo.
type ItemView struct {
	ItemDto
	PhotoLink *string `json:"photo_link"`
}

// SearchResult is an item as returned by search: photo_link only when requested.
type SearchResult struct {
	ItemDto
	PhotoLink *string `json:"photo_link,omitempty"`
}

// Register saves the photo (if any) first, outside of the catalog lock, and then
// creates the item referencing it.
func (s *Service) Register(ctx context.Context, dto RegisterDto, photoReader io.Reader) (*ItemDto, error) {
	if dto.Name == "" {
		return nil, fmt.Errorf("%w: name is required", inverrors.ErrValidation)
	}

	var ref photo.Ref
	if photoReader != nil {
		saved, err := s.savePhoto(ctx, photoReader)
		if err != nil {
			return nil, err
		}
		ref = saved
	}

	item, err := s.items.Create(dto.Name, dto.Description, ref)
	if err != nil {
		if !ref.IsZero() {
			s.reclaim(ctx, ref)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	s.metrics.SetCatalogItems(s.items.Len())
	s.logger.DebugContext(ctx, "Item registered", "ID", item.ID, "photo", item.Photo)
	return toDto(item), nil
}

// FindByID retrieves an item by its ID.
func (s *Service) FindByID(_ context.Context, id int64) (*ItemView, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item by ID %d: %w", id, err)
	}
	view := toView(item)
	return &view, nil
}

// FindAll retrieves all items.
func (s *Service) FindAll(_ context.Context) ([]ItemView, error) {
	items := s.items.FindAll()
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = toView(item)
	}
	return views, nil
}

// Update applies a partial update.
func (s *Service) Update(_ context.Context, id int64, dto UpdateDto) (*ItemDto, error) {
	item, err := s.items.Update(id, dto.Name, dto.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d: %w", id, err)
	}
	return toDto(item), nil
}

// Photo reads the photo bytes of an item.
func (s *Service) Photo(ctx context.Context, id int64) ([]byte, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item by ID %d: %w", id, err)
	}
	if item.Photo.IsZero() {
		return nil, fmt.Errorf("item %d has no photo: %w", id, inverrors.ErrPhotoNotFound)
	}
	data, err := s.photos.Read(ctx, item.Photo)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo of item %d: %w", id, err)
	}
	s.metrics.PhotoServed(len(data))
	return data, nil
}

// ReplacePhoto stores a new photo and points the item at it.
func (s *Service) ReplacePhoto(ctx context.Context, id int64, photoReader io.Reader) (*ItemDto, error) {
	// Fail before writing any bytes if the item is unknown.
	if _, err := s.items.FindByID(id); err != nil {
		return nil, fmt.Errorf("failed to fetch item by ID %d: %w", id, err)
	}
	if photoReader == nil {
		return nil, fmt.Errorf("%w: photo is required", inverrors.ErrValidation)
	}

	ref, err := s.savePhoto(ctx, photoReader)
	if err != nil {
		return nil, err
	}
	item, previous, err := s.items.SetPhoto(id, ref)
	if err != nil {
		// the item was deleted while the photo was uploading
		s.reclaim(ctx, ref)
		return nil, fmt.Errorf("failed to set photo of item %d: %w", id, err)
	}
	if s.opts.Cleanup && !previous.IsZero() && previous != ref {
		s.reclaim(ctx, previous)
	}
	return toDto(item), nil
}

// DeleteByID deletes an item by its ID.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	removed, err := s.items.DeleteByID(id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	s.metrics.SetCatalogItems(s.items.Len())
	if s.opts.Cleanup && !removed.Photo.IsZero() {
		s.reclaim(ctx, removed.Photo)
	}
	return nil
}

// Search finds an item by ID for the search form.
func (s *Service) Search(_ context.Context, id int64, withPhotoLink bool) (*SearchResult, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item by ID %d: %w", id, err)
	}
	result := SearchResult{ItemDto: *toDto(item)}
	if withPhotoLink && !item.Photo.IsZero() {
		result.PhotoLink = photoLink(item.ID)
	}
	return &result, nil
}

func (s *Service) savePhoto(ctx context.Context, r io.Reader) (photo.Ref, error) {
	cr := &countingReader{r: r}
	ref, err := s.photos.Save(ctx, cr)
	if err != nil {
		return "", fmt.Errorf("failed to store photo: %w", err)
	}
	s.metrics.PhotoStored(cr.n)
	return ref, nil
}

// reclaim hands ref to the reclaimer, or deletes it inline when there is none.
func (s *Service) reclaim(ctx context.Context, ref photo.Ref) {
	if s.opts.Reclaimer != nil {
		s.opts.Reclaimer.Enqueue(ref)
		return
	}
	err := s.photos.Delete(context.WithoutCancel(ctx), ref)
	s.metrics.PhotoReclaimed(err)
	if err != nil && !errors.Is(err, inverrors.ErrPhotoNotFound) {
		s.logger.WarnContext(ctx, "Failed to delete photo", "photo", ref, "error", err)
	}
}

// toDto converts a store.Item to an ItemDto.
func toDto(item store.Item) *ItemDto {
	dto := &ItemDto{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
	}
	if !item.Photo.IsZero() {
		name := item.Photo.String()
		dto.Photo = &name
	}
	return dto
}

func toView(item store.Item) ItemView {
	view := ItemView{ItemDto: *toDto(item)}
	if !item.Photo.IsZero() {
		view.PhotoLink = photoLink(item.ID)
	}
	return view
}

func photoLink(id int64) *string {
	link := fmt.Sprintf("/inventory/%d/photo", id)
	return &link
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
