package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/content"
	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

// AnswerService wraps answer authoring with markdown rendering.
type AnswerService struct {
	model    *models.AnswerModel
	renderer *content.Renderer
	logger   *zap.Logger
}

// NewAnswer creates a new answer service.
func NewAnswer(model *models.AnswerModel, renderer *content.Renderer, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		model:    model,
		renderer: renderer,
		logger:   logger.Named("answer_service"),
	}
}

// Create stores a new answer under a question and returns it rendered
// for display.
func (s *AnswerService) Create(
	ctx context.Context, authorID, questionID int64, body string,
) (*types.AnswerView, error) {
	answer, err := s.model.Create(ctx, authorID, questionID, body)
	if err != nil {
		return nil, err
	}

	return s.render(answer), nil
}

// Update rewrites an answer and returns it rendered for display.
func (s *AnswerService) Update(
	ctx context.Context, id, requesterID int64, body string,
) (*types.AnswerView, error) {
	answer, err := s.model.Update(ctx, id, requesterID, body)
	if err != nil {
		return nil, err
	}

	return s.render(answer), nil
}

// Get returns a rendered answer by id.
func (s *AnswerService) Get(ctx context.Context, id int64) (*types.AnswerView, error) {
	answer, err := s.model.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.render(answer), nil
}

func (s *AnswerService) render(answer *types.Entry) *types.AnswerView {
	return &types.AnswerView{
		Entry:       answer,
		ContentHTML: s.renderer.Render(answer.Content),
	}
}
