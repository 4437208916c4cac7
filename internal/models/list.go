package models

// List represents a user-owned, shareable collection.
type List struct {
	// ID is the unique identifier for the list (UUID format).
	ID string `json:"id"`

	// Title is the display title of the list.
	Title string `json:"title"`

	// Elements is the list's content as an opaque serialized payload
	// (usually a JSON array). The engine never parses it.
	Elements string `json:"elements"`

	// IsShared is true while at least one share grant has been made.
	// It is flipped to true by Share and back to false only by
	// RevokeAllShares.
	IsShared bool `json:"is_shared"`

	// OwnerID references the user the list is permanently bound to.
	// Immutable after creation.
	OwnerID string `json:"owner_id"`

	// CreatedAt is the Unix timestamp when the list was created.
	CreatedAt int64 `json:"created_at"`
}
