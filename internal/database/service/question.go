package service

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/content"
	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
	"github.com/askstack/askstack/internal/pagination"
	"github.com/askstack/askstack/internal/search"
	"github.com/askstack/askstack/internal/viewcount"
)

// QuestionService wraps question authoring and reads with the
// collaborators the model layer stays unaware of: the view counter,
// the search-index queue and the markdown renderer.
type QuestionService struct {
	model      *models.QuestionModel
	counter    *viewcount.Counter
	indexQueue *search.Queue
	renderer   *content.Renderer
	perPage    int
	logger     *zap.Logger
}

// NewQuestion creates a new question service.
func NewQuestion(
	model *models.QuestionModel,
	counter *viewcount.Counter,
	indexQueue *search.Queue,
	renderer *content.Renderer,
	perPage int,
	logger *zap.Logger,
) *QuestionService {
	return &QuestionService{
		model:      model,
		counter:    counter,
		indexQueue: indexQueue,
		renderer:   renderer,
		perPage:    perPage,
		logger:     logger.Named("question_service"),
	}
}

// Create stores a new question and schedules a search-index refresh.
// The refresh is fire-and-forget: a queue failure is logged and never
// fails the write.
func (s *QuestionService) Create(
	ctx context.Context, authorID int64, title, body string, tagIDs []int64,
) (*types.Entry, error) {
	question, err := s.model.Create(ctx, authorID, title, body, tagIDs)
	if err != nil {
		return nil, err
	}

	s.enqueueIndex(ctx, question.ID)

	return question, nil
}

// Update rewrites a question and schedules a search-index refresh.
func (s *QuestionService) Update(
	ctx context.Context, id, requesterID int64, title, body string, tagIDs []int64,
) (*types.Entry, error) {
	question, err := s.model.Update(ctx, id, requesterID, title, body, tagIDs)
	if err != nil {
		return nil, err
	}

	s.enqueueIndex(ctx, question.ID)

	return question, nil
}

func (s *QuestionService) enqueueIndex(ctx context.Context, questionID int64) {
	if err := s.indexQueue.Enqueue(ctx, questionID); err != nil {
		s.logger.Warn("Failed to enqueue index refresh",
			zap.Int64("questionID", questionID),
			zap.Error(err))
	}
}

// RegisterView records one view of a question by the given visitor
// identifier.
func (s *QuestionService) RegisterView(ctx context.Context, questionID int64, visitor string) error {
	return s.counter.Register(ctx, questionID, visitor)
}

// GetWithRelated returns the fully assembled question tree with
// rendered content. The tree assembly and the view-count read run
// concurrently since they hit independent stores.
func (s *QuestionService) GetWithRelated(
	ctx context.Context, id, viewerID int64,
) (*types.QuestionView, error) {
	var (
		view      *types.QuestionView
		viewCount int64
	)

	p := pool.New().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		var err error
		view, err = s.model.GetWithRelated(ctx, id, viewerID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		viewCount = s.counter.Count(ctx, id)
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	view.ViewCount = viewCount
	s.renderTree(view)

	return view, nil
}

// GetBySlugWithRelated resolves a question slug and returns the
// assembled tree.
func (s *QuestionService) GetBySlugWithRelated(
	ctx context.Context, slug string, viewerID int64,
) (*types.QuestionView, error) {
	question, err := s.model.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return s.GetWithRelated(ctx, question.ID, viewerID)
}

// renderTree fills ContentHTML for the question and every answer and
// comment in the tree.
func (s *QuestionService) renderTree(view *types.QuestionView) {
	view.ContentHTML = s.renderer.Render(view.Content)

	for _, comment := range view.Comments {
		comment.ContentHTML = s.renderer.Render(comment.Content)
	}

	for _, answer := range view.Answers {
		answer.ContentHTML = s.renderer.Render(answer.Content)

		for _, comment := range answer.Comments {
			comment.ContentHTML = s.renderer.Render(comment.Content)
		}
	}
}

// List returns one page of questions, newest first.
func (s *QuestionService) List(
	ctx context.Context, page int,
) ([]*types.QuestionSummary, *pagination.Paginator, error) {
	return s.page(ctx, page, func(ctx context.Context, page int) ([]*types.QuestionSummary, int, error) {
		return s.model.List(ctx, page, s.perPage)
	})
}

// Search returns one page of questions matching the full-text query.
func (s *QuestionService) Search(
	ctx context.Context, query string, page int,
) ([]*types.QuestionSummary, *pagination.Paginator, error) {
	return s.page(ctx, page, func(ctx context.Context, page int) ([]*types.QuestionSummary, int, error) {
		return s.model.Search(ctx, query, page, s.perPage)
	})
}

// ListByTag returns one page of questions carrying the tag.
func (s *QuestionService) ListByTag(
	ctx context.Context, tagID int64, page int,
) ([]*types.QuestionSummary, *pagination.Paginator, error) {
	return s.page(ctx, page, func(ctx context.Context, page int) ([]*types.QuestionSummary, int, error) {
		return s.model.ListByTag(ctx, tagID, page, s.perPage)
	})
}

// ListForUser returns one page of the user's questions.
func (s *QuestionService) ListForUser(
	ctx context.Context, userID int64, page int,
) ([]*types.QuestionSummary, *pagination.Paginator, error) {
	return s.page(ctx, page, func(ctx context.Context, page int) ([]*types.QuestionSummary, int, error) {
		return s.model.ListForUser(ctx, userID, page, s.perPage)
	})
}

// page runs one list query, builds the paginator and fills view counts
// for the page in a single batched counter call.
func (s *QuestionService) page(
	ctx context.Context,
	page int,
	query func(ctx context.Context, page int) ([]*types.QuestionSummary, int, error),
) ([]*types.QuestionSummary, *pagination.Paginator, error) {
	summaries, total, err := query(ctx, page)
	if err != nil {
		return nil, nil, err
	}

	paginator := pagination.New(total, page, s.perPage)

	if len(summaries) > 0 {
		ids := make([]int64, 0, len(summaries))
		for _, summary := range summaries {
			ids = append(ids, summary.ID)
		}

		for i, count := range s.counter.CountMany(ctx, ids) {
			summaries[i].ViewCount = count
		}
	}

	return summaries, paginator, nil
}
