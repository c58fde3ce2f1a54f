package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/askstack/askstack/internal/database/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.User)(nil),
			(*types.Entry)(nil),
			(*types.Vote)(nil),
			(*types.Tag)(nil),
			(*types.QuestionTag)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				WithForeignKeys().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		// The one-vote-per-user invariant lives in the schema so a
		// lost race surfaces as a constraint violation instead of a
		// second row.
		indexes := []string{
			"CREATE UNIQUE INDEX IF NOT EXISTS votes_voter_entry_uq ON votes (voter_id, entry_id)",
			"CREATE UNIQUE INDEX IF NOT EXISTS entries_question_slug_uq ON entries (slug) WHERE kind = 1",
			"CREATE UNIQUE INDEX IF NOT EXISTS tags_slug_uq ON tags (slug)",
			"CREATE INDEX IF NOT EXISTS entries_kind_idx ON entries (kind)",
			"CREATE INDEX IF NOT EXISTS entries_author_idx ON entries (author_id)",
			"CREATE INDEX IF NOT EXISTS entries_question_idx ON entries (question_id) WHERE question_id IS NOT NULL",
			"CREATE INDEX IF NOT EXISTS entries_parent_idx ON entries (parent_entry_id) WHERE parent_entry_id IS NOT NULL",
			"CREATE INDEX IF NOT EXISTS votes_entry_idx ON votes (entry_id)",
			"CREATE INDEX IF NOT EXISTS question_tags_tag_idx ON question_tags (tag_id)",
			"CREATE INDEX IF NOT EXISTS entries_question_fts_idx ON entries USING GIN " +
				"(to_tsvector('english', coalesce(title, '') || ' ' || coalesce(content, ''))) WHERE kind = 1",
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []string{"question_tags", "votes", "tags", "entries", "users"}
		for _, table := range tables {
			if _, err := db.NewRaw(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}

		return nil
	})
}
