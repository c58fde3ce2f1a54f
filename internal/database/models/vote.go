package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/types"
)

// VoteModel is the vote ledger. It owns the one-vote-per-voter
// invariant and the denormalized entry score: every vote row mutation
// and its matching score delta commit in one transaction, so a reader
// never observes a vote without its score contribution.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a new vote ledger model.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// Record applies a vote intent for (voterID, entryID).
//
//   - Retract without an existing vote fails with ErrNoVote; with one,
//     the vote is deleted and the score decremented by its value.
//   - Upvote/Downvote without an existing vote inserts it and moves
//     the score by +-1.
//   - The same direction twice fails with ErrDuplicateVote.
//   - The opposite direction flips the vote and moves the score by
//     twice the new value.
//
// Same-pair races are resolved by value-guarded updates and the
// (voter_id, entry_id) unique index: a lost race becomes
// ErrDuplicateVote or ErrConflict, never a second row or a skewed
// score. Returns the resulting vote, or nil after a retract.
func (m *VoteModel) Record(
	ctx context.Context, voterID, entryID int64, intent types.VoteIntent,
) (*types.Vote, error) {
	if !intent.Valid() {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidVoteValue, intent)
	}

	var result *types.Vote

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(types.Vote)

		err := tx.NewSelect().
			Model(existing).
			Where("voter_id = ?", voterID).
			Where("entry_id = ?", entryID).
			Scan(ctx)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to look up existing vote: %w", err)
			}
			existing = nil
		}

		switch intent {
		case types.VoteRetract:
			return m.retract(ctx, tx, existing)
		default:
			result, err = m.cast(ctx, tx, voterID, entryID, existing, intent.Value())
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// retract deletes an existing vote and rolls its value out of the
// entry score.
func (m *VoteModel) retract(ctx context.Context, tx bun.Tx, existing *types.Vote) error {
	if existing == nil {
		return types.ErrNoVote
	}

	res, err := tx.NewDelete().
		Model((*types.Vote)(nil)).
		Where("id = ?", existing.ID).
		Where("value = ?", existing.Value).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		// A concurrent retract or flip got there first.
		return types.ErrNoVote
	}

	return adjustScore(ctx, tx, existing.EntryID, -int64(existing.Value))
}

// cast inserts a new vote or flips an existing one.
func (m *VoteModel) cast(
	ctx context.Context, tx bun.Tx, voterID, entryID int64, existing *types.Vote, value int16,
) (*types.Vote, error) {
	if existing == nil {
		vote := &types.Vote{
			VoterID:   voterID,
			EntryID:   entryID,
			Value:     value,
			CreatedAt: time.Now().UTC(),
		}

		if _, err := tx.NewInsert().Model(vote).Exec(ctx); err != nil {
			err = translateConstraintError(err, types.ErrDuplicateVote)
			if errors.Is(err, types.ErrDuplicateVote) || errors.Is(err, types.ErrConflict) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}

		if err := adjustScore(ctx, tx, entryID, int64(value)); err != nil {
			return nil, err
		}

		return vote, nil
	}

	if existing.Value == value {
		return nil, types.ErrDuplicateVote
	}

	res, err := tx.NewUpdate().
		Model((*types.Vote)(nil)).
		Set("value = ?", value).
		Where("id = ?", existing.ID).
		Where("value = ?", existing.Value).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to flip vote: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		// A concurrent call already flipped it to this direction.
		return nil, types.ErrDuplicateVote
	}

	// Flipping moves the score by twice the new value: the old vote
	// comes off and the new one goes on.
	if err := adjustScore(ctx, tx, entryID, 2*int64(value)); err != nil {
		return nil, err
	}

	existing.Value = value

	return existing, nil
}

// adjustScore moves the denormalized score of a live entry. Zero rows
// means the entry is missing or soft-deleted, which aborts the
// transaction so the vote mutation rolls back with it.
func adjustScore(ctx context.Context, tx bun.Tx, entryID, delta int64) error {
	res, err := tx.NewUpdate().
		Model((*types.Entry)(nil)).
		Set("score = score + ?", delta).
		Where("id = ?", entryID).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to adjust score: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return types.ErrNotFound
	}

	return nil
}

// Exists reports whether a live vote exists for the pair.
func (m *VoteModel) Exists(ctx context.Context, voterID, entryID int64) (bool, error) {
	exists, err := m.db.NewSelect().
		Model((*types.Vote)(nil)).
		Where("voter_id = ?", voterID).
		Where("entry_id = ?", entryID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check vote existence: %w", err)
	}

	return exists, nil
}

// Get returns the vote for the pair, or ErrNotFound.
func (m *VoteModel) Get(ctx context.Context, voterID, entryID int64) (*types.Vote, error) {
	vote := new(types.Vote)

	err := m.db.NewSelect().
		Model(vote).
		Where("voter_id = ?", voterID).
		Where("entry_id = ?", entryID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}

	return vote, nil
}

// MapForVoter returns the voter's votes on the given entries, keyed by
// entry id, in a single query. An empty id list yields an empty map.
func (m *VoteModel) MapForVoter(
	ctx context.Context, voterID int64, entryIDs []int64,
) (map[int64]*types.Vote, error) {
	votes := make(map[int64]*types.Vote, len(entryIDs))
	if voterID == 0 || len(entryIDs) == 0 {
		return votes, nil
	}

	var rows []*types.Vote

	err := m.db.NewSelect().
		Model(&rows).
		Where("voter_id = ?", voterID).
		Where("entry_id IN (?)", bun.In(entryIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	for _, vote := range rows {
		votes[vote.EntryID] = vote
	}

	return votes, nil
}
