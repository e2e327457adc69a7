package types

import "errors"

// Sentinel errors for catalogd operations.
var (
	// ErrProductNotFound indicates a product lookup by ID matched no row.
	ErrProductNotFound = errors.New("product not found")

	// ErrCollectionNotFound indicates a collection lookup by ID matched no row.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidRule indicates a smart-collection rule failed to parse as JSON.
	ErrInvalidRule = errors.New("invalid collection rule")

	// ErrInvalidStrategy indicates an unknown suggestion strategy name.
	ErrInvalidStrategy = errors.New("invalid suggestion strategy")

	// ErrInvalidLimit indicates a non-positive or out-of-range result limit.
	ErrInvalidLimit = errors.New("invalid result limit")
)
