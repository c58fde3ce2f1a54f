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

// CommentModel handles comment authoring. Comments attach to a
// question or an answer, never to another comment.
type CommentModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewComment creates a new comment model.
func NewComment(db *bun.DB, logger *zap.Logger) *CommentModel {
	return &CommentModel{
		db:     db,
		logger: logger.Named("db_comment"),
	}
}

// Create inserts a comment under a question or answer. The parent must
// exist, be live and be commentable, otherwise ErrNotFound.
func (m *CommentModel) Create(
	ctx context.Context, authorID, parentEntryID int64, content string,
) (*types.Entry, error) {
	comment := &types.Entry{
		Kind:          types.KindComment,
		AuthorID:      authorID,
		ParentEntryID: parentEntryID,
		Content:       content,
		CreatedAt:     time.Now().UTC(),
	}

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*types.Entry)(nil)).
			Where("e.id = ?", parentEntryID).
			Where("e.kind IN (?)", bun.In([]types.EntryKind{types.KindQuestion, types.KindAnswer})).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check parent entry: %w", err)
		}

		if !exists {
			return fmt.Errorf("%w: entry %d", types.ErrNotFound, parentEntryID)
		}

		if _, err := tx.NewInsert().Model(comment).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

// Update rewrites a comment's content. Only the author may update.
func (m *CommentModel) Update(
	ctx context.Context, id, requesterID int64, content string,
) (*types.Entry, error) {
	return updateContent(ctx, m.db, id, requesterID, types.KindComment, content)
}

// Get retrieves a live comment by id.
func (m *CommentModel) Get(ctx context.Context, id int64) (*types.Entry, error) {
	comment := new(types.Entry)

	err := m.db.NewSelect().
		Model(comment).
		Relation("Author").
		Where("e.id = ?", id).
		Where("e.kind = ?", types.KindComment).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// AllForParent returns the live comments under an entry in creation
// order.
func (m *CommentModel) AllForParent(ctx context.Context, parentEntryID int64) ([]*types.Entry, error) {
	var comments []*types.Entry

	err := m.db.NewSelect().
		Model(&comments).
		Relation("Author").
		Where("e.kind = ?", types.KindComment).
		Where("e.parent_entry_id = ?", parentEntryID).
		OrderExpr("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
