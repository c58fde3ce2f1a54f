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

// AnswerModel handles answer authoring.
type AnswerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAnswer creates a new answer model.
func NewAnswer(db *bun.DB, logger *zap.Logger) *AnswerModel {
	return &AnswerModel{
		db:     db,
		logger: logger.Named("db_answer"),
	}
}

// Create inserts an answer under a question. The question must exist
// and be live, otherwise ErrNotFound.
func (m *AnswerModel) Create(
	ctx context.Context, authorID, questionID int64, content string,
) (*types.Entry, error) {
	answer := &types.Entry{
		Kind:       types.KindAnswer,
		AuthorID:   authorID,
		QuestionID: questionID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*types.Entry)(nil)).
			Where("e.id = ?", questionID).
			Where("e.kind = ?", types.KindQuestion).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check question: %w", err)
		}

		if !exists {
			return fmt.Errorf("%w: question %d", types.ErrNotFound, questionID)
		}

		if _, err := tx.NewInsert().Model(answer).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return answer, nil
}

// Update rewrites an answer's content. Only the author may update.
func (m *AnswerModel) Update(
	ctx context.Context, id, requesterID int64, content string,
) (*types.Entry, error) {
	return updateContent(ctx, m.db, id, requesterID, types.KindAnswer, content)
}

// Get retrieves a live answer by id.
func (m *AnswerModel) Get(ctx context.Context, id int64) (*types.Entry, error) {
	answer := new(types.Entry)

	err := m.db.NewSelect().
		Model(answer).
		Relation("Author").
		Where("e.id = ?", id).
		Where("e.kind = ?", types.KindAnswer).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	return answer, nil
}

// AllForUser returns the user's live answers, newest first.
func (m *AnswerModel) AllForUser(ctx context.Context, userID int64) ([]*types.Entry, error) {
	var answers []*types.Entry

	err := m.db.NewSelect().
		Model(&answers).
		Where("e.kind = ?", types.KindAnswer).
		Where("e.author_id = ?", userID).
		OrderExpr("e.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	return answers, nil
}

// updateContent is the shared owner-checked content rewrite used by
// answers and comments.
func updateContent(
	ctx context.Context, db *bun.DB, id, requesterID int64, kind types.EntryKind, content string,
) (*types.Entry, error) {
	entry := new(types.Entry)

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(entry).
			Where("e.id = ?", id).
			Where("e.kind = ?", kind).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrNotFound
			}
			return fmt.Errorf("failed to get %s: %w", kind, err)
		}

		if entry.AuthorID != requesterID {
			return types.ErrPermission
		}

		now := time.Now().UTC()

		_, err = tx.NewUpdate().
			Model((*types.Entry)(nil)).
			Set("content = ?", content).
			Set("edited_at = ?", now).
			Where("id = ?", entry.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", kind, err)
		}

		entry.Content = content
		entry.EditedAt = &now

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}
