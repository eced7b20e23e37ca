package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/photo"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 'J', 'F', 'I', 'F', 0xFF, 0xD9}

// mockPhotoStore is a mock implementation of the photo.Store interface
type mockPhotoStore struct {
	ref     photo.Ref
	data    []byte
	saveErr error
	readErr error
	saved   int
}

func (m *mockPhotoStore) Save(_ context.Context, r io.Reader) (photo.Ref, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	_, _ = io.Copy(io.Discard, r)
	m.saved++
	return m.ref, nil
}

func (m *mockPhotoStore) Read(_ context.Context, _ photo.Ref) ([]byte, error) {
	return m.data, m.readErr
}

func (m *mockPhotoStore) Delete(_ context.Context, _ photo.Ref) error {
	return nil
}

// recordingReclaimer collects the refs handed over for deletion
type recordingReclaimer struct {
	mu   sync.Mutex
	refs []photo.Ref
}

func (r *recordingReclaimer) Enqueue(ref photo.Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs = append(r.refs, ref)
	return true
}

func newTestService(cleanup bool) (*Service, *photo.MemoryStore, *recordingReclaimer) {
	photos := photo.NewMemoryStore(0)
	reclaimer := &recordingReclaimer{}
	svc := NewService(store.NewInMemoryStore(), photos, Options{Cleanup: cleanup, Reclaimer: reclaimer})
	return svc, photos, reclaimer
}

func Test_InventoryService_Register(t *testing.T) {
	testCases := []struct {
		name        string
		dto         RegisterDto
		photo       io.Reader
		expected    *ItemDto
		expectPhoto bool
		expectError error
	}{
		{
			name:     "Success - name only",
			dto:      RegisterDto{Name: "Drill"},
			expected: &ItemDto{ID: 1, Name: "Drill", Description: ""},
		},
		{
			name:        "Success - with photo",
			dto:         RegisterDto{Name: "Drill", Description: "Cordless"},
			photo:       bytes.NewReader(jpegBytes),
			expected:    &ItemDto{ID: 1, Name: "Drill", Description: "Cordless"},
			expectPhoto: true,
		},
		{
			name:        "Error - name missing",
			dto:         RegisterDto{Description: "no name"},
			photo:       bytes.NewReader(jpegBytes),
			expectError: inverrors.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, photos, _ := newTestService(true)
			// when
			created, err := svc.Register(context.Background(), tc.dto, tc.photo)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				assert.Equal(t, 0, photos.Len(), "no photo is stored for a rejected item")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected.ID, created.ID)
			assert.Equal(t, tc.expected.Name, created.Name)
			assert.Equal(t, tc.expected.Description, created.Description)
			if !tc.expectPhoto {
				assert.Nil(t, created.Photo)
				return
			}
			require.NotNil(t, created.Photo)
			data, err := svc.Photo(context.Background(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, jpegBytes, data)
		})
	}
}

func Test_InventoryService_Register_PhotoStoreFailure(t *testing.T) {
	// given
	storeErr := errors.New("disk full")
	items := store.NewInMemoryStore()
	svc := NewService(items, &mockPhotoStore{saveErr: storeErr}, Options{})

	// when
	created, err := svc.Register(context.Background(), RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))

	// then
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, created)
	assert.Empty(t, items.FindAll(), "a failed photo write must not leave an item behind")
}

func Test_InventoryService_ScenarioA_NewItemDefaults(t *testing.T) {
	// given
	svc, _, _ := newTestService(true)
	_, err := svc.Register(context.Background(), RegisterDto{Name: "Drill"}, nil)
	require.NoError(t, err)

	// when
	found, err := svc.FindByID(context.Background(), 1)

	// then
	require.NoError(t, err)
	assert.Equal(t, "Drill", found.Name)
	assert.Equal(t, "", found.Description)
	assert.Nil(t, found.Photo)
	assert.Nil(t, found.PhotoLink)
}

func Test_InventoryService_Update(t *testing.T) {
	testCases := []struct {
		name        string
		id          int64
		dto         UpdateDto
		expected    *ItemDto
		expectError error
	}{
		{
			name:     "Success - description only keeps name",
			id:       1,
			dto:      UpdateDto{Description: "Cordless"},
			expected: &ItemDto{ID: 1, Name: "Drill", Description: "Cordless"},
		},
		{
			name:     "Success - empty fields do not overwrite",
			id:       1,
			dto:      UpdateDto{Name: "", Description: ""},
			expected: &ItemDto{ID: 1, Name: "Drill", Description: "Corded"},
		},
		{
			name:        "Error - item not found",
			id:          999,
			dto:         UpdateDto{Name: "x"},
			expectError: inverrors.ErrItemNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, _, _ := newTestService(true)
			_, err := svc.Register(context.Background(), RegisterDto{Name: "Drill", Description: "Corded"}, nil)
			require.NoError(t, err)
			// when
			updated, err := svc.Update(context.Background(), tc.id, tc.dto)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
		})
	}
}

func Test_InventoryService_Photo(t *testing.T) {
	testCases := []struct {
		name        string
		photos      *mockPhotoStore
		withPhoto   bool
		id          int64
		expected    []byte
		expectError error
	}{
		{
			name:      "Success - photo returned",
			photos:    &mockPhotoStore{ref: "photo-a.jpg", data: jpegBytes},
			withPhoto: true,
			id:        1,
			expected:  jpegBytes,
		},
		{
			name:        "Error - item not found",
			photos:      &mockPhotoStore{},
			id:          2,
			expectError: inverrors.ErrItemNotFound,
		},
		{
			name:        "Error - item has no photo",
			photos:      &mockPhotoStore{},
			id:          1,
			expectError: inverrors.ErrPhotoNotFound,
		},
		{
			name:        "Error - photo file missing",
			photos:      &mockPhotoStore{ref: "photo-a.jpg", readErr: inverrors.ErrPhotoNotFound},
			withPhoto:   true,
			id:          1,
			expectError: inverrors.ErrPhotoNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := NewService(store.NewInMemoryStore(), tc.photos, Options{})
			var upload io.Reader
			if tc.withPhoto {
				upload = bytes.NewReader(jpegBytes)
			}
			_, err := svc.Register(context.Background(), RegisterDto{Name: "Drill"}, upload)
			require.NoError(t, err)
			// when
			data, err := svc.Photo(context.Background(), tc.id)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, data)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, data)
		})
	}
}

func Test_InventoryService_ScenarioC_ReplacePhoto(t *testing.T) {
	// given
	svc, photos, reclaimer := newTestService(true)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterDto{Name: "Drill"}, nil)
	require.NoError(t, err)

	// when
	updated, err := svc.ReplacePhoto(ctx, 1, bytes.NewReader(jpegBytes))

	// then
	require.NoError(t, err)
	require.NotNil(t, updated.Photo)
	data, err := photos.Read(ctx, photo.Ref(*updated.Photo))
	require.NoError(t, err)
	assert.Equal(t, jpegBytes, data)
	assert.Empty(t, reclaimer.refs, "nothing to reclaim for the first photo")
}

func Test_InventoryService_ReplacePhoto_Cleanup(t *testing.T) {
	testCases := []struct {
		name          string
		cleanup       bool
		expectReclaim bool
	}{
		{name: "cleanup on reclaims the previous photo", cleanup: true, expectReclaim: true},
		{name: "cleanup off keeps the previous photo", cleanup: false, expectReclaim: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc, _, reclaimer := newTestService(tc.cleanup)
			ctx := context.Background()
			created, err := svc.Register(ctx, RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))
			require.NoError(t, err)
			// when
			_, err = svc.ReplacePhoto(ctx, created.ID, bytes.NewReader([]byte("second")))
			// then
			require.NoError(t, err)
			if tc.expectReclaim {
				assert.Equal(t, []photo.Ref{photo.Ref(*created.Photo)}, reclaimer.refs)
				return
			}
			assert.Empty(t, reclaimer.refs)
		})
	}
}

func Test_InventoryService_ReplacePhoto_Errors(t *testing.T) {
	// given
	photos := &mockPhotoStore{ref: "photo-a.jpg"}
	svc := NewService(store.NewInMemoryStore(), photos, Options{})
	ctx := context.Background()

	// when the item does not exist
	_, err := svc.ReplacePhoto(ctx, 1, bytes.NewReader(jpegBytes))
	// then
	assert.ErrorIs(t, err, inverrors.ErrItemNotFound)
	assert.Equal(t, 0, photos.saved, "no bytes are written for an unknown item")

	// when the item exists but no photo is supplied
	_, err = svc.Register(ctx, RegisterDto{Name: "Drill"}, nil)
	require.NoError(t, err)
	_, err = svc.ReplacePhoto(ctx, 1, nil)
	// then
	assert.ErrorIs(t, err, inverrors.ErrValidation)
	assert.Equal(t, 0, photos.saved)
}

func Test_InventoryService_DeleteByID(t *testing.T) {
	// given
	svc, _, reclaimer := newTestService(true)
	ctx := context.Background()

	// when deleting from an empty catalog
	err := svc.DeleteByID(ctx, 1)
	// then
	assert.ErrorIs(t, err, inverrors.ErrItemNotFound)

	// given
	created, err := svc.Register(ctx, RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	// when
	require.NoError(t, svc.DeleteByID(ctx, created.ID))
	// then
	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, inverrors.ErrItemNotFound)
	assert.Equal(t, []photo.Ref{photo.Ref(*created.Photo)}, reclaimer.refs)
}

func Test_InventoryService_DeleteByID_InlineReclaim(t *testing.T) {
	// given
	photos := photo.NewMemoryStore(0)
	svc := NewService(store.NewInMemoryStore(), photos, Options{Cleanup: true})
	ctx := context.Background()
	created, err := svc.Register(ctx, RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))
	require.NoError(t, err)

	// when
	require.NoError(t, svc.DeleteByID(ctx, created.ID))

	// then
	assert.Equal(t, 0, photos.Len())
}

func Test_InventoryService_FindAll(t *testing.T) {
	// given
	svc, _, _ := newTestService(true)
	ctx := context.Background()
	empty, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.Register(ctx, RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterDto{Name: "Saw"}, nil)
	require.NoError(t, err)

	// when
	list, err := svc.FindAll(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].PhotoLink)
	assert.Equal(t, "/inventory/1/photo", *list[0].PhotoLink)
	assert.Nil(t, list[1].PhotoLink)
}

func Test_InventoryService_Search(t *testing.T) {
	testCases := []struct {
		name        string
		id          int64
		withLink    bool
		expectLink  bool
		expectError error
	}{
		{name: "Success - link requested and present", id: 1, withLink: true, expectLink: true},
		{name: "Success - link not requested", id: 1, withLink: false, expectLink: false},
		{name: "Success - link requested but no photo", id: 2, withLink: true, expectLink: false},
		{name: "Error - item not found", id: 3, expectError: inverrors.ErrItemNotFound},
	}

	svc, _, _ := newTestService(true)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterDto{Name: "Drill"}, bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterDto{Name: "Saw"}, nil)
	require.NoError(t, err)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			result, err := svc.Search(ctx, tc.id, tc.withLink)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.id, result.ID)
			assert.Equal(t, tc.expectLink, result.PhotoLink != nil)
		})
	}
}
