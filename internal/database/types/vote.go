package types

import (
	"time"

	"github.com/uptrace/bun"
)

// VoteIntent is the caller-facing encoding of a vote action.
type VoteIntent int16

const (
	// VoteRetract removes the caller's existing vote.
	VoteRetract VoteIntent = 0
	// VoteUpvote casts or flips to a +1 vote.
	VoteUpvote VoteIntent = 1
	// VoteDownvote casts or flips to a -1 vote.
	VoteDownvote VoteIntent = 2
)

// Value maps the intent to the stored vote value. Only valid for
// VoteUpvote and VoteDownvote.
func (i VoteIntent) Value() int16 {
	if i == VoteDownvote {
		return -1
	}
	return 1
}

// String returns the lowercase name of the intent.
func (i VoteIntent) String() string {
	switch i {
	case VoteRetract:
		return "retract"
	case VoteUpvote:
		return "upvote"
	case VoteDownvote:
		return "downvote"
	default:
		return "invalid"
	}
}

// Valid reports whether the intent is one of the defined actions.
func (i VoteIntent) Valid() bool {
	switch i {
	case VoteRetract, VoteUpvote, VoteDownvote:
		return true
	default:
		return false
	}
}

// Vote is a single live vote. At most one vote exists per
// (voter_id, entry_id) pair, enforced by a unique index.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:v"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	VoterID   int64     `bun:"voter_id,notnull"    json:"voterId"`
	EntryID   int64     `bun:"entry_id,notnull"    json:"entryId"`
	Value     int16     `bun:"value,notnull"       json:"value"`
	CreatedAt time.Time `bun:"created_at,notnull"  json:"createdAt"`
}
