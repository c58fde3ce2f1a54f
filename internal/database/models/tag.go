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

// TagModel handles the tag vocabulary.
type TagModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTag creates a new tag model.
func NewTag(db *bun.DB, logger *zap.Logger) *TagModel {
	return &TagModel{
		db:     db,
		logger: logger.Named("db_tag"),
	}
}

// Create inserts a tag. A taken slug fails with ErrAlreadyExists.
func (m *TagModel) Create(ctx context.Context, name, slug string) (*types.Tag, error) {
	tag := &types.Tag{Name: name, Slug: slug}

	if _, err := m.db.NewInsert().Model(tag).Exec(ctx); err != nil {
		err = translateConstraintError(err, types.ErrAlreadyExists)
		if errors.Is(err, types.ErrAlreadyExists) || errors.Is(err, types.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}

	return tag, nil
}

// All returns every tag ordered by name.
func (m *TagModel) All(ctx context.Context) ([]*types.Tag, error) {
	var tags []*types.Tag

	err := m.db.NewSelect().
		Model(&tags).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

// GetBySlug retrieves a tag by slug.
func (m *TagModel) GetBySlug(ctx context.Context, slug string) (*types.Tag, error) {
	tag := new(types.Tag)

	err := m.db.NewSelect().
		Model(tag).
		Where("t.slug = ?", slug).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}
