package storage

import "errors"

// Domain errors returned by Store implementations. Services map these to
// transport status codes; anything else is treated as a store failure and
// reported opaquely.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrListNotFound   = errors.New("list not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("member not found")

	// ErrEmailTaken is returned when a registration or email update
	// collides with the unique index on users.email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDuplicateID is returned when an insert collides with an existing
	// primary key. Should not occur with UUID generation.
	ErrDuplicateID = errors.New("id already exists")

	// ErrNotOwner is returned when an operation reserved for the resource
	// owner is attempted by another user.
	ErrNotOwner = errors.New("requester is not the owner")
)
