// Package handler provides HTTP handlers for inventory operations.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/platform/web"
	"github.com/go-playground/validator/v10"
)

// multipartMemory is how much of a multipart body is kept in memory before
// net/http spills file parts to temporary files.
const multipartMemory = 8 << 20

// InventoryAPI defines HTTP handlers for inventory endpoints.
type InventoryAPI interface {
	Register(w http.ResponseWriter, r *http.Request)
	FindAll(w http.ResponseWriter, r *http.Request)
	FindByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Photo(w http.ResponseWriter, r *http.Request)
	ReplacePhoto(w http.ResponseWriter, r *http.Request)
	DeleteByID(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)

	Index(w http.ResponseWriter, r *http.Request)
	RegisterForm(w http.ResponseWriter, r *http.Request)
	SearchForm(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
	MethodNotAllowed(w http.ResponseWriter, r *http.Request)
}

type api struct {
	service        service.InventoryService
	validate       *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAPI creates a new instance of InventoryAPI with the provided service.
// maxUploadBytes caps request bodies carrying a photo; 0 means unlimited.
func NewAPI(service service.InventoryService, logger *slog.Logger, maxUploadBytes int64) InventoryAPI {
	validate := validator.New()
	// report fields by their wire names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &api{
		service:        service,
		validate:       validate,
		logger:         logger.With("component", "api"),
		maxUploadBytes: maxUploadBytes,
	}
}

// SearchDto carries the search form fields.
type SearchDto struct {
	ID       string `json:"id" validate:"required"`
	HasPhoto bool   `json:"has_photo"`
}

// Register handles the multipart register form.
func (a *api) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !a.parseUpload(w, r) {
		return
	}
	dto := service.RegisterDto{
		Name:        r.FormValue("inventory_name"),
		Description: r.FormValue("description"),
	}
	a.logger.DebugContext(ctx, "Received request to register item", "item", dto)
	if err := a.validate.Struct(dto); err != nil {
		web.RespondValidation(w, r, a.logger, err)
		return
	}

	file, ok := a.formFile(w, r)
	if !ok {
		return
	}
	var photo io.Reader
	if file != nil {
		defer file.Close()
		photo = file
	}

	created, err := a.service.Register(ctx, dto, photo)
	if err != nil {
		a.respondWriteError(w, r, err, "Failed to register item")
		return
	}
	a.logger.InfoContext(ctx, "Item registered successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, a.logger, http.StatusCreated, created)
}

// FindAll retrieves a list of all items.
func (a *api) FindAll(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.FindAll(r.Context())
	if err != nil {
		a.logger.ErrorContext(r.Context(), "Error retrieving item list", "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, "Failed to fetch items")
		return
	}
	a.logger.DebugContext(r.Context(), "Successfully retrieved item list", "count", len(list))
	web.RespondJSON(w, a.logger, http.StatusOK, list)
}

// FindByID retrieves an item by its ID.
func (a *api) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, a.logger)
	if !ok {
		return
	}
	found, err := a.service.FindByID(r.Context(), id)
	if err != nil {
		a.respondReadError(w, r, err, id)
		return
	}
	web.RespondJSON(w, a.logger, http.StatusOK, found)
}

// Update changes the name and/or description of an item. The body may be JSON or a form.
func (a *api) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, a.logger)
	if !ok {
		return
	}

	var dto service.UpdateDto
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
			a.logger.WarnContext(ctx, "Error decoding request body", "error", err)
			web.RespondError(w, a.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			a.logger.WarnContext(ctx, "Error parsing form", "error", err)
			web.RespondError(w, a.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		dto = service.UpdateDto{Name: r.PostFormValue("name"), Description: r.PostFormValue("description")}
	}
	a.logger.DebugContext(ctx, "Received request to update item", "ID", id, "item", dto)

	updated, err := a.service.Update(ctx, id, dto)
	if err != nil {
		a.respondReadError(w, r, err, id)
		return
	}
	a.logger.InfoContext(ctx, "Item updated successfully", "ID", updated.ID)
	web.RespondJSON(w, a.logger, http.StatusOK, updated)
}

// Photo streams the stored photo of an item as JPEG.
func (a *api) Photo(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, a.logger)
	if !ok {
		return
	}
	data, err := a.service.Photo(r.Context(), id)
	if err != nil {
		if errors.Is(err, inverrors.ErrInvalidReference) {
			a.logger.WarnContext(r.Context(), "Item refers to an invalid photo", "ID", id, "error", err)
		} else {
			a.logger.InfoContext(r.Context(), "Photo not available", "ID", id, "error", err)
		}
		web.RespondError(w, a.logger, http.StatusNotFound, "Photo not found")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ReplacePhoto handles a multipart upload replacing the photo of an item.
func (a *api) ReplacePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := web.ParseID(w, r, a.logger)
	if !ok {
		return
	}
	if !a.parseUpload(w, r) {
		return
	}
	file, ok := a.formFile(w, r)
	if !ok {
		return
	}
	var photo io.Reader
	if file != nil {
		defer file.Close()
		photo = file
	}

	updated, err := a.service.ReplacePhoto(ctx, id, photo)
	if err != nil {
		switch {
		case errors.Is(err, inverrors.ErrItemNotFound):
			a.logger.WarnContext(ctx, "Item not found for photo update", "ID", id)
			web.RespondError(w, a.logger, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", id))
		case errors.Is(err, inverrors.ErrValidation):
			web.RespondError(w, a.logger, http.StatusBadRequest, "Photo is required")
		default:
			a.respondWriteError(w, r, err, fmt.Sprintf("Failed to update photo of item with ID %d", id))
		}
		return
	}
	a.logger.InfoContext(ctx, "Photo updated successfully", "ID", updated.ID)
	web.RespondJSON(w, a.logger, http.StatusOK, updated)
}

// DeleteByID deletes an item by its ID.
func (a *api) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, a.logger)
	if !ok {
		return
	}
	if err := a.service.DeleteByID(r.Context(), id); err != nil {
		a.respondReadError(w, r, err, id)
		return
	}
	a.logger.InfoContext(r.Context(), "Item deleted successfully", "ID", id)
	web.RespondText(w, http.StatusOK, "Item deleted")
}

// Search looks an item up by the id from the search form or a JSON body.
func (a *api) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dto, err := decodeSearch(r)
	if err != nil {
		a.logger.WarnContext(ctx, "Error decoding search request", "error", err)
		web.RespondError(w, a.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := a.validate.Struct(dto); err != nil {
		web.RespondValidation(w, r, a.logger, err)
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(dto.ID), 10, 64)
	if err != nil || id <= 0 {
		web.RespondError(w, a.logger, http.StatusNotFound, fmt.Sprintf("Item with ID %s not found", dto.ID))
		return
	}

	result, err := a.service.Search(ctx, id, dto.HasPhoto)
	if err != nil {
		a.respondReadError(w, r, err, id)
		return
	}
	web.RespondJSON(w, a.logger, http.StatusOK, result)
}

// HealthCheck is a simple health check endpoint.
func (a *api) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// MethodNotAllowed answers every route and method the service does not serve.
func (a *api) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.logger.DebugContext(r.Context(), "Unsupported request", "method", r.Method, "path", r.URL.Path)
	web.RespondText(w, http.StatusMethodNotAllowed, "Method not supported")
}

// parseUpload parses a multipart (or url-encoded) body, enforcing the upload limit.
func (a *api) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	if a.maxUploadBytes > 0 {
		// leave room for the other form fields and multipart framing
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes+multipartMemory)
	}
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		a.logger.WarnContext(r.Context(), "Upload too large", "limit", maxErr.Limit)
		web.RespondError(w, a.logger, http.StatusRequestEntityTooLarge, "Photo is too large")
		return false
	}
	a.logger.WarnContext(r.Context(), "Error parsing form", "error", err)
	web.RespondError(w, a.logger, http.StatusBadRequest, "Invalid form data")
	return false
}

// formFile returns the uploaded photo, or nil if the form has none.
func (a *api) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	file, _, err := r.FormFile("photo")
	if err == nil {
		return file, true
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	a.logger.WarnContext(r.Context(), "Error reading uploaded photo", "error", err)
	web.RespondError(w, a.logger, http.StatusBadRequest, "Invalid photo upload")
	return nil, false
}

// respondReadError maps errors of lookups and catalog mutations.
func (a *api) respondReadError(w http.ResponseWriter, r *http.Request, err error, id int64) {
	if errors.Is(err, inverrors.ErrItemNotFound) {
		a.logger.WarnContext(r.Context(), "Item not found", "ID", id)
		web.RespondError(w, a.logger, http.StatusNotFound, fmt.Sprintf("Item with ID %d not found", id))
		return
	}
	a.logger.ErrorContext(r.Context(), "Error processing item", "ID", id, "error", err)
	web.RespondError(w, a.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to process item with ID %d", id))
}

// respondWriteError maps errors of requests that store a photo.
func (a *api) respondWriteError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, inverrors.ErrValidation):
		web.RespondError(w, a.logger, http.StatusBadRequest, "Name is required")
	case errors.Is(err, inverrors.ErrPhotoTooLarge):
		a.logger.WarnContext(r.Context(), "Photo rejected", "error", err)
		web.RespondError(w, a.logger, http.StatusRequestEntityTooLarge, "Photo is too large")
	default:
		a.logger.ErrorContext(r.Context(), message, "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, message)
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeSearch reads the search fields from JSON or a form. has_photo is a
// checkbox in the form, so any non-empty value turns it on.
func decodeSearch(r *http.Request) (SearchDto, error) {
	if !isJSON(r) {
		if err := r.ParseForm(); err != nil {
			return SearchDto{}, err
		}
		return SearchDto{
			ID:       strings.TrimSpace(r.PostFormValue("id")),
			HasPhoto: r.PostFormValue("has_photo") != "",
		}, nil
	}

	var body struct {
		ID       any `json:"id"`
		HasPhoto any `json:"has_photo"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return SearchDto{}, err
	}
	dto := SearchDto{HasPhoto: truthy(body.HasPhoto)}
	switch v := body.ID.(type) {
	case json.Number:
		dto.ID = v.String()
	case string:
		dto.ID = strings.TrimSpace(v)
	}
	return dto, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}
