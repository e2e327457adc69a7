package types

import (
	"time"

	"github.com/google/uuid"
)

// ProductID represents a UUIDv7 product identifier.
// String alias enables type safety while maintaining JSON string
// serialization. UUIDv7 time-ordering clusters sequential inserts in
// B-tree indexes.
type ProductID string

// CollectionID represents a UUIDv7 collection identifier.
type CollectionID string

// NewProductID generates a UUIDv7 product identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewProductID() ProductID {
	return ProductID(uuid.Must(uuid.NewV7()).String())
}

// NewCollectionID generates a UUIDv7 collection identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewCollectionID() CollectionID {
	return CollectionID(uuid.Must(uuid.NewV7()).String())
}

// ParseProductID validates and converts a string to ProductID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseProductID(s string) (ProductID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return ProductID(s), nil
}

// ParseCollectionID validates and converts a string to CollectionID.
func ParseCollectionID(s string) (CollectionID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return CollectionID(s), nil
}

// ProductIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func ProductIDTime(id ProductID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
