// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict indicates that an operation cannot proceed due to
// existing dependent records (e.g. deleting a property with recorded
// sales), while ErrPropertySold signals that a sale was attempted
// against a property that has already been transferred.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update violates the
// unique constraint on users.email. Handlers should translate this
// into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a delete cannot be performed because of
// conflicting state, such as attempting to delete a property that still
// has sales recorded against it. Handlers should translate this into an
// HTTP 400 response with a domain-specific message.
var ErrConflict = errors.New("conflict")

// ErrPropertySold is returned by the sale workflow when the referenced
// property is already marked sold. A property is transferred at most
// once; handlers should translate this into an HTTP 409 response.
var ErrPropertySold = errors.New("property already sold")

// ErrNoFieldsToUpdate is returned by partial updates when the patch
// contains no updatable fields after filtering. Handlers should
// translate this into an HTTP 400 response.
var ErrNoFieldsToUpdate = errors.New("no fields to update")
