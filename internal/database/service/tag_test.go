package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/service"
)

type queryCounter struct {
	queries int
}

func (c *queryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	c.queries++
	return ctx
}

func (c *queryCounter) AfterQuery(context.Context, *bun.QueryEvent) {}

func TestTagServiceCaching(t *testing.T) {
	t.Parallel()
	env := setupTest(t)
	ctx := t.Context()

	logger := zap.NewNop()
	tags := service.NewTag(models.NewTag(env.db, logger), logger)

	_, err := tags.Create(ctx, "Go", "go")
	require.NoError(t, err)

	counter := &queryCounter{}
	env.db.AddQueryHook(counter)

	first, err := tags.GetBySlug(ctx, "go")
	require.NoError(t, err)

	// Repeat lookups are served from the cache.
	second, err := tags.GetBySlug(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, counter.queries)

	all, err := tags.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = tags.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.queries)

	// Creating a tag drops the caches.
	_, err = tags.Create(ctx, "Redis", "redis")
	require.NoError(t, err)

	all, err = tags.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
