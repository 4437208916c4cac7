package models

// Group represents a user-owned membership group. Groups carry no content
// payload; they exist to bind a set of users together.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Title is the display title of the group.
	Title string `json:"title"`

	// OwnerID references the user the group is permanently bound to.
	// Immutable after creation. Only the owner may delete the group or
	// change its membership.
	OwnerID string `json:"owner_id"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}
