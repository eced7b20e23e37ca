// Package errors provides custom error types for inventory-related operations.
package errors

import "errors"

var ErrValidation = errors.New("validation failed")
var ErrItemNotFound = errors.New("inventory item not found")

var ErrPhotoNotFound = errors.New("photo not found")
var ErrInvalidReference = errors.New("invalid photo reference")
var ErrPhotoTooLarge = errors.New("photo exceeds upload limit")

// ErrIO is wrapped around failures of the underlying photo backend.
var ErrIO = errors.New("photo storage i/o error")
