package viewcount_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/askstack/askstack/internal/viewcount"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) *viewcount.Counter {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return viewcount.New(client, zap.NewNop())
}

func TestCountWithoutViews(t *testing.T) {
	t.Parallel()
	counter := setupTest(t)

	assert.Zero(t, counter.Count(t.Context(), 42))
}

func TestRegisterIsIdempotent(t *testing.T) {
	t.Parallel()
	counter := setupTest(t)
	ctx := t.Context()

	for range 3 {
		require.NoError(t, counter.Register(ctx, 1, "203.0.113.5"))
	}

	assert.EqualValues(t, 1, counter.Count(ctx, 1))

	require.NoError(t, counter.Register(ctx, 1, "203.0.113.6"))
	assert.EqualValues(t, 2, counter.Count(ctx, 1))
}

func TestCounterIsPerQuestion(t *testing.T) {
	t.Parallel()
	counter := setupTest(t)
	ctx := t.Context()

	require.NoError(t, counter.Register(ctx, 1, "203.0.113.5"))
	require.NoError(t, counter.Register(ctx, 2, "203.0.113.5"))
	require.NoError(t, counter.Register(ctx, 2, "203.0.113.9"))

	assert.EqualValues(t, 1, counter.Count(ctx, 1))
	assert.EqualValues(t, 2, counter.Count(ctx, 2))
}

func TestCountMany(t *testing.T) {
	t.Parallel()
	counter := setupTest(t)
	ctx := t.Context()

	require.NoError(t, counter.Register(ctx, 10, "a"))
	require.NoError(t, counter.Register(ctx, 10, "b"))
	require.NoError(t, counter.Register(ctx, 30, "c"))

	// Order of results must follow input order, with unseen
	// questions reported as zero.
	counts := counter.CountMany(ctx, []int64{30, 20, 10})
	assert.Equal(t, []int64{1, 0, 2}, counts)
}

func TestCountManyEmpty(t *testing.T) {
	t.Parallel()
	counter := setupTest(t)

	assert.Nil(t, counter.CountMany(t.Context(), nil))
}
