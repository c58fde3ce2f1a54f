package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

// tagCacheTTL bounds how stale a cached tag read can get after a
// vocabulary change from another process.
const tagCacheTTL = 5 * time.Minute

// TagService exposes the tag vocabulary behind a small expiring
// cache. The vocabulary is tiny and rarely changes, so list and slug
// lookups are served from memory.
type TagService struct {
	model     *models.TagModel
	slugCache *expirable.LRU[string, *types.Tag]
	listCache *expirable.LRU[string, []*types.Tag]
	logger    *zap.Logger
}

// NewTag creates a new tag service.
func NewTag(model *models.TagModel, logger *zap.Logger) *TagService {
	return &TagService{
		model:     model,
		slugCache: expirable.NewLRU[string, *types.Tag](256, nil, tagCacheTTL),
		listCache: expirable.NewLRU[string, []*types.Tag](1, nil, tagCacheTTL),
		logger:    logger.Named("tag_service"),
	}
}

// Create inserts a tag and drops the caches.
func (s *TagService) Create(ctx context.Context, name, slug string) (*types.Tag, error) {
	tag, err := s.model.Create(ctx, name, slug)
	if err != nil {
		return nil, err
	}

	s.slugCache.Purge()
	s.listCache.Purge()

	return tag, nil
}

// All returns every tag ordered by name.
func (s *TagService) All(ctx context.Context) ([]*types.Tag, error) {
	if tags, ok := s.listCache.Get("all"); ok {
		return tags, nil
	}

	tags, err := s.model.All(ctx)
	if err != nil {
		return nil, err
	}

	s.listCache.Add("all", tags)

	return tags, nil
}

// GetBySlug returns a tag by slug.
func (s *TagService) GetBySlug(ctx context.Context, slug string) (*types.Tag, error) {
	if tag, ok := s.slugCache.Get(slug); ok {
		return tag, nil
	}

	tag, err := s.model.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.slugCache.Add(slug, tag)

	return tag, nil
}
