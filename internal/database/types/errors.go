package types

import "errors"

var (
	// ErrNotFound indicates the requested entry does not exist or is
	// not visible to the caller (soft-deleted, or owned by someone
	// else for owner-scoped operations).
	ErrNotFound = errors.New("entry not found")

	// ErrAlreadyExists indicates a uniqueness constraint was violated
	// on create, e.g. a duplicate question slug.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidVoteValue indicates a vote intent outside the defined
	// set of upvote, downvote and retract.
	ErrInvalidVoteValue = errors.New("invalid vote value")

	// ErrDuplicateVote indicates an attempt to cast the same-direction
	// vote twice on one entry.
	ErrDuplicateVote = errors.New("vote already exists")

	// ErrNoVote indicates an attempt to retract a vote that does not
	// exist.
	ErrNoVote = errors.New("vote does not exist")

	// ErrPermission indicates a mutation attempted by a non-owner.
	ErrPermission = errors.New("not the owner of this entry")

	// ErrConflict indicates the store aborted the operation due to a
	// concurrent transaction. Callers may retry; the engine never
	// retries internally.
	ErrConflict = errors.New("transaction conflict")
)
