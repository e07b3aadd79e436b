// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to operate on a record owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of
// dependent records (e.g. deleting a car that still has service
// requests).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels per aggregate. They wrap the common case of
// sql.ErrNoRows into something handlers can match without importing
// database/sql everywhere.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrCarNotFound     = errors.New("car not found")
	ErrDealerNotFound  = errors.New("dealer not found")
	ErrRequestNotFound = errors.New("service request not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrItemNotFound    = errors.New("inventory item not found")
)
