// Package domain defines domain-level errors for the stocks feature.
package domain

import "errors"

// Domain errors for stock search and lookup.
// The HTTP layer translates them into the error envelope with errors.Is.
var (
	// ErrInvalidQuery indicates an empty or oversized search query.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrInvalidPagination indicates page < 1 or size outside [1,100].
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrStockNotFound indicates that no security exists for the requested code.
	ErrStockNotFound = errors.New("stock not found")

	// ErrIndexUnavailable indicates that no usable snapshot is loaded.
	ErrIndexUnavailable = errors.New("search index unavailable")

	// ErrInvalidHierarchy indicates a classification forest that breaks the
	// LARGE > MEDIUM > SMALL parent rules.
	ErrInvalidHierarchy = errors.New("invalid classification hierarchy")

	// ErrNodeNotFound indicates an unknown classification node code.
	ErrNodeNotFound = errors.New("classification node not found")
)
