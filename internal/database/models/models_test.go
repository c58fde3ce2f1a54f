package models_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/types"
)

// setupTest opens an isolated in-memory SQLite database with the
// engine schema applied. SQLite keeps these tests hermetic; the
// store-specific full-text search path is exercised against a real
// PostgreSQL instance instead.
func setupTest(t *testing.T) (*bun.DB, *zap.Logger) {
	t.Helper()

	// A named shared-cache memory database so the pool's connections
	// all see the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	sqldb.SetMaxIdleConns(16)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := t.Context()

	for _, model := range []any{
		(*types.User)(nil),
		(*types.Entry)(nil),
		(*types.Vote)(nil),
		(*types.Tag)(nil),
		(*types.QuestionTag)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	for _, ddl := range []string{
		`CREATE UNIQUE INDEX votes_voter_entry_uq ON votes (voter_id, entry_id)`,
		`CREATE UNIQUE INDEX entries_question_slug_uq ON entries (slug) WHERE kind = 1`,
		`CREATE UNIQUE INDEX tags_slug_uq ON tags (slug)`,
	} {
		_, err := db.ExecContext(ctx, ddl)
		require.NoError(t, err)
	}

	logger := zap.NewNop()

	return db, logger
}

func seedUser(t *testing.T, db *bun.DB, username string) *types.User {
	t.Helper()

	user := &types.User{
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.NewInsert().Model(user).Exec(t.Context())
	require.NoError(t, err)

	return user
}

// queryCounter counts executed statements so assembly paths can assert
// a fixed number of round trips.
type queryCounter struct {
	queries int
}

func (c *queryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	c.queries++
	return ctx
}

func (c *queryCounter) AfterQuery(context.Context, *bun.QueryEvent) {}
