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

// EntryModel handles operations that apply to any kind of entry.
type EntryModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewEntry creates a new entry model.
func NewEntry(db *bun.DB, logger *zap.Logger) *EntryModel {
	return &EntryModel{
		db:     db,
		logger: logger.Named("db_entry"),
	}
}

// Get retrieves a live entry by id.
func (m *EntryModel) Get(ctx context.Context, id int64) (*types.Entry, error) {
	entry := new(types.Entry)

	err := m.db.NewSelect().
		Model(entry).
		Relation("Author").
		Where("e.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return entry, nil
}

// Exists reports whether a live entry with the id exists.
func (m *EntryModel) Exists(ctx context.Context, id int64) (bool, error) {
	exists, err := m.db.NewSelect().
		Model((*types.Entry)(nil)).
		Where("e.id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check entry existence: %w", err)
	}

	return exists, nil
}

// GetScore returns the denormalized score of a live entry.
func (m *EntryModel) GetScore(ctx context.Context, id int64) (int64, error) {
	var score int64

	err := m.db.NewSelect().
		Model((*types.Entry)(nil)).
		Column("score").
		Where("e.id = ?", id).
		Scan(ctx, &score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, types.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get score: %w", err)
	}

	return score, nil
}

// GetWithViewerVote retrieves a live entry together with the viewing
// user's vote on it, if any. The vote is nil when viewerID is zero or
// no vote exists.
func (m *EntryModel) GetWithViewerVote(
	ctx context.Context, id, viewerID int64,
) (*types.Entry, *types.Vote, error) {
	entry, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if viewerID == 0 {
		return entry, nil, nil
	}

	vote := new(types.Vote)

	err = m.db.NewSelect().
		Model(vote).
		Where("voter_id = ?", viewerID).
		Where("entry_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get viewer vote: %w", err)
	}

	return entry, vote, nil
}

// MarkAsDeleted soft-deletes an entry owned by the requester. Fails
// with ErrNotFound when no live entry with that id belongs to the
// requester. The row and any votes referencing it persist for audit
// and score recalculation.
func (m *EntryModel) MarkAsDeleted(ctx context.Context, id, requesterID int64) error {
	res, err := m.db.NewUpdate().
		Model((*types.Entry)(nil)).
		Set("deleted_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("author_id = ?", requesterID).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark entry as deleted: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return types.ErrNotFound
	}

	return nil
}

// RecalculateScore recomputes an entry's score from its live votes
// inside one transaction. Audit operation: the ledger keeps the score
// consistent on every write, this verifies or repairs it after manual
// intervention. Works on soft-deleted entries too.
func (m *EntryModel) RecalculateScore(ctx context.Context, id int64) (int64, error) {
	var score int64

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model((*types.Vote)(nil)).
			ColumnExpr("COALESCE(SUM(value), 0)").
			Where("entry_id = ?", id).
			Scan(ctx, &score)
		if err != nil {
			return fmt.Errorf("failed to sum votes: %w", err)
		}

		res, err := tx.NewUpdate().
			Model((*types.Entry)(nil)).
			Set("score = ?", score).
			Where("id = ?", id).
			WhereAllWithDeleted().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update score: %w", err)
		}

		if affected, _ := res.RowsAffected(); affected == 0 {
			return types.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return score, nil
}
