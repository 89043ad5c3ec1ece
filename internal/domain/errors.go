package domain

import "errors"

// Sentinel errors surfaced by repositories and services. The HTTP layer maps
// each to a client-visible status; none of them is fatal to the process.
var (
	// ErrNotFound indicates the referenced user or post does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfFollow indicates a user attempted to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing indicates the follow edge already exists.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrNotFollowing indicates the follow edge to remove does not exist.
	ErrNotFollowing = errors.New("not following")
	// ErrEmptyContent indicates a post or comment body was blank.
	ErrEmptyContent = errors.New("content is empty")
	// ErrPermission indicates a mutation attempted by someone other than the owner.
	ErrPermission = errors.New("permission denied")
)
