package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/content"
	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

// CommentService wraps comment authoring with markdown rendering.
type CommentService struct {
	model    *models.CommentModel
	renderer *content.Renderer
	logger   *zap.Logger
}

// NewComment creates a new comment service.
func NewComment(model *models.CommentModel, renderer *content.Renderer, logger *zap.Logger) *CommentService {
	return &CommentService{
		model:    model,
		renderer: renderer,
		logger:   logger.Named("comment_service"),
	}
}

// Create stores a new comment under a question or answer and returns
// it rendered for display.
func (s *CommentService) Create(
	ctx context.Context, authorID, parentEntryID int64, body string,
) (*types.CommentView, error) {
	comment, err := s.model.Create(ctx, authorID, parentEntryID, body)
	if err != nil {
		return nil, err
	}

	return s.render(comment), nil
}

// Update rewrites a comment and returns it rendered for display.
func (s *CommentService) Update(
	ctx context.Context, id, requesterID int64, body string,
) (*types.CommentView, error) {
	comment, err := s.model.Update(ctx, id, requesterID, body)
	if err != nil {
		return nil, err
	}

	return s.render(comment), nil
}

func (s *CommentService) render(comment *types.Entry) *types.CommentView {
	return &types.CommentView{
		Entry:       comment,
		ContentHTML: s.renderer.Render(comment.Content),
	}
}
