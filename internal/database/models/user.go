package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/types"
)

// UserModel handles author lookups for assembled views and profile
// pages.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new user model.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// Get retrieves a user by id.
func (m *UserModel) Get(ctx context.Context, id int64) (*types.User, error) {
	user := new(types.User)

	err := m.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetWithCounts retrieves a user together with live question and
// answer counts computed at read time.
func (m *UserModel) GetWithCounts(ctx context.Context, id int64) (*types.UserCounts, error) {
	user := new(types.UserCounts)

	err := m.db.NewSelect().
		Model(user).
		ColumnExpr("u.*").
		ColumnExpr(
			"(SELECT COUNT(*) FROM entries WHERE kind = ? AND author_id = u.id AND deleted_at IS NULL) AS question_count",
			types.KindQuestion,
		).
		ColumnExpr(
			"(SELECT COUNT(*) FROM entries WHERE kind = ? AND author_id = u.id AND deleted_at IS NULL) AS answer_count",
			types.KindAnswer,
		).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
