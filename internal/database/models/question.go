package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/types"
	"github.com/askstack/askstack/internal/pagination"
	"github.com/askstack/askstack/pkg/utils"
)

// QuestionModel handles question authoring, list reads and the
// assembled question tree. Every read path here uses a fixed number of
// queries regardless of how many answers or comments a thread has.
type QuestionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewQuestion creates a new question model.
func NewQuestion(db *bun.DB, logger *zap.Logger) *QuestionModel {
	return &QuestionModel{
		db:     db,
		logger: logger.Named("db_question"),
	}
}

// Create inserts a question and its tag links in one transaction. The
// slug derives from the title; a taken slug fails with
// ErrAlreadyExists.
func (m *QuestionModel) Create(
	ctx context.Context, authorID int64, title, content string, tagIDs []int64,
) (*types.Entry, error) {
	question := &types.Entry{
		Kind:      types.KindQuestion,
		AuthorID:  authorID,
		Title:     title,
		Slug:      utils.Slugify(title),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.checkSlugFree(ctx, tx, question.Slug, 0); err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(question).Exec(ctx); err != nil {
			err = translateConstraintError(err, types.ErrAlreadyExists)
			if errors.Is(err, types.ErrAlreadyExists) || errors.Is(err, types.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to insert question: %w", err)
		}

		return replaceTagLinks(ctx, tx, question.ID, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	return question, nil
}

// Update rewrites a question's title, content and tag set. Only the
// author may update; the slug follows the new title.
func (m *QuestionModel) Update(
	ctx context.Context, id, requesterID int64, title, content string, tagIDs []int64,
) (*types.Entry, error) {
	question := new(types.Entry)

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(question).
			Where("e.id = ?", id).
			Where("e.kind = ?", types.KindQuestion).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrNotFound
			}
			return fmt.Errorf("failed to get question: %w", err)
		}

		if question.AuthorID != requesterID {
			return types.ErrPermission
		}

		slug := utils.Slugify(title)
		if slug != question.Slug {
			if err := m.checkSlugFree(ctx, tx, slug, question.ID); err != nil {
				return err
			}
		}

		now := time.Now().UTC()

		_, err = tx.NewUpdate().
			Model((*types.Entry)(nil)).
			Set("title = ?", title).
			Set("slug = ?", slug).
			Set("content = ?", content).
			Set("edited_at = ?", now).
			Where("id = ?", question.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}

		question.Title = title
		question.Slug = slug
		question.Content = content
		question.EditedAt = &now

		if _, err := tx.NewDelete().
			Model((*types.QuestionTag)(nil)).
			Where("question_id = ?", question.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear tag links: %w", err)
		}

		return replaceTagLinks(ctx, tx, question.ID, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	return question, nil
}

// checkSlugFree fails with ErrAlreadyExists when another question,
// live or deleted, already owns the slug.
func (m *QuestionModel) checkSlugFree(ctx context.Context, tx bun.Tx, slug string, selfID int64) error {
	taken, err := tx.NewSelect().
		Model((*types.Entry)(nil)).
		Where("e.kind = ?", types.KindQuestion).
		Where("e.slug = ?", slug).
		Where("e.id != ?", selfID).
		WhereAllWithDeleted().
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	}

	if taken {
		return fmt.Errorf("%w: slug %q", types.ErrAlreadyExists, slug)
	}

	return nil
}

func replaceTagLinks(ctx context.Context, tx bun.Tx, questionID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]*types.QuestionTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, &types.QuestionTag{QuestionID: questionID, TagID: tagID})
	}

	if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert tag links: %w", err)
	}

	return nil
}

// Get retrieves a live question by id.
func (m *QuestionModel) Get(ctx context.Context, id int64) (*types.Entry, error) {
	return m.getOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("e.id = ?", id)
	})
}

// GetBySlug retrieves a live question by slug.
func (m *QuestionModel) GetBySlug(ctx context.Context, slug string) (*types.Entry, error) {
	return m.getOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("e.slug = ?", slug)
	})
}

func (m *QuestionModel) getOne(
	ctx context.Context, apply func(*bun.SelectQuery) *bun.SelectQuery,
) (*types.Entry, error) {
	question := new(types.Entry)

	err := apply(m.db.NewSelect().
		Model(question).
		Relation("Author").
		Where("e.kind = ?", types.KindQuestion)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return question, nil
}

// GetWithRelated assembles the full question tree: the question, its
// answers ordered by score then recency, every comment on the question
// or an answer in creation order, and the viewer's vote on each entry.
// The view count is filled in by the service layer from the counter
// store.
func (m *QuestionModel) GetWithRelated(
	ctx context.Context, id, viewerID int64,
) (*types.QuestionView, error) {
	question, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := m.tagsFor(ctx, question.ID)
	if err != nil {
		return nil, err
	}

	var answers []*types.Entry

	err = m.db.NewSelect().
		Model(&answers).
		Relation("Author").
		Where("e.kind = ?", types.KindAnswer).
		Where("e.question_id = ?", question.ID).
		OrderExpr("e.score DESC, e.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	// Comments attach to the question or to any of its answers; one
	// query covers both levels.
	parentIDs := make([]int64, 0, len(answers)+1)
	parentIDs = append(parentIDs, question.ID)
	entryIDs := make([]int64, 0, len(answers)+len(parentIDs))
	entryIDs = append(entryIDs, question.ID)

	for _, answer := range answers {
		parentIDs = append(parentIDs, answer.ID)
		entryIDs = append(entryIDs, answer.ID)
	}

	var comments []*types.Entry

	err = m.db.NewSelect().
		Model(&comments).
		Relation("Author").
		Where("e.kind = ?", types.KindComment).
		Where("e.parent_entry_id IN (?)", bun.In(parentIDs)).
		OrderExpr("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	for _, comment := range comments {
		entryIDs = append(entryIDs, comment.ID)
	}

	votes, err := m.viewerVotes(ctx, viewerID, entryIDs)
	if err != nil {
		return nil, err
	}

	return assembleTree(question, tags, answers, comments, votes), nil
}

// viewerVotes loads the viewer's votes on the given entries in one
// query. A zero viewer id means an anonymous reader: no votes at all.
func (m *QuestionModel) viewerVotes(
	ctx context.Context, viewerID int64, entryIDs []int64,
) (map[int64]*types.Vote, error) {
	votes := make(map[int64]*types.Vote, len(entryIDs))
	if viewerID == 0 {
		return votes, nil
	}

	var rows []*types.Vote

	err := m.db.NewSelect().
		Model(&rows).
		Where("voter_id = ?", viewerID).
		Where("entry_id IN (?)", bun.In(entryIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer votes: %w", err)
	}

	for _, vote := range rows {
		votes[vote.EntryID] = vote
	}

	return votes, nil
}

func assembleTree(
	question *types.Entry,
	tags []*types.Tag,
	answers, comments []*types.Entry,
	votes map[int64]*types.Vote,
) *types.QuestionView {
	commentsByParent := make(map[int64][]*types.CommentView)
	for _, comment := range comments {
		view := &types.CommentView{
			Entry:      comment,
			ViewerVote: votes[comment.ID],
		}
		commentsByParent[comment.ParentEntryID] = append(commentsByParent[comment.ParentEntryID], view)
	}

	answerViews := make([]*types.AnswerView, 0, len(answers))
	for _, answer := range answers {
		answerViews = append(answerViews, &types.AnswerView{
			Entry:      answer,
			ViewerVote: votes[answer.ID],
			Comments:   commentsByParent[answer.ID],
		})
	}

	return &types.QuestionView{
		Entry:      question,
		ViewerVote: votes[question.ID],
		Tags:       tags,
		Answers:    answerViews,
		Comments:   commentsByParent[question.ID],
	}
}

// List returns one page of live questions, newest first, along with
// the total count.
func (m *QuestionModel) List(
	ctx context.Context, page, perPage int,
) ([]*types.QuestionSummary, int, error) {
	return m.list(ctx, page, perPage, nil)
}

// ListForUser returns one page of the user's live questions.
func (m *QuestionModel) ListForUser(
	ctx context.Context, userID int64, page, perPage int,
) ([]*types.QuestionSummary, int, error) {
	return m.list(ctx, page, perPage, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("e.author_id = ?", userID)
	})
}

// ListByTag returns one page of live questions carrying the tag.
func (m *QuestionModel) ListByTag(
	ctx context.Context, tagID int64, page, perPage int,
) ([]*types.QuestionSummary, int, error) {
	return m.list(ctx, page, perPage, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("e.id IN (SELECT question_id FROM question_tags WHERE tag_id = ?)", tagID)
	})
}

// Search returns one page of live questions matching the full-text
// query over title and content.
func (m *QuestionModel) Search(
	ctx context.Context, query string, page, perPage int,
) ([]*types.QuestionSummary, int, error) {
	cleaned := cleanSearchQuery(query)
	if cleaned == "" {
		return nil, 0, nil
	}

	return m.list(ctx, page, perPage, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(
			"to_tsvector('english', coalesce(e.title, '') || ' ' || coalesce(e.content, '')) @@ to_tsquery('english', ?)",
			cleaned,
		)
	})
}

// Count returns the number of live questions.
func (m *QuestionModel) Count(ctx context.Context) (int, error) {
	count, err := m.db.NewSelect().
		Model((*types.Entry)(nil)).
		Where("e.kind = ?", types.KindQuestion).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	return count, nil
}

// list runs the shared page query: count, page of questions with
// authors, then per-page answer counts and tags in one grouped and two
// link queries. Five round trips per page, never per row.
func (m *QuestionModel) list(
	ctx context.Context, page, perPage int, apply func(*bun.SelectQuery) *bun.SelectQuery,
) ([]*types.QuestionSummary, int, error) {
	filter := func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("e.kind = ?", types.KindQuestion)
		if apply != nil {
			q = apply(q)
		}
		return q
	}

	total, err := filter(m.db.NewSelect().Model((*types.Entry)(nil))).Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*types.Entry

	err = filter(m.db.NewSelect().Model(&questions).Relation("Author")).
		OrderExpr("e.id DESC").
		Limit(perPage).
		Offset(pagination.Offset(page, perPage)).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	if len(questions) == 0 {
		return nil, total, nil
	}

	ids := make([]int64, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.ID)
	}

	answerCounts, err := m.answerCounts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	tagsByQuestion, err := m.tagsForMany(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*types.QuestionSummary, 0, len(questions))
	for _, question := range questions {
		summaries = append(summaries, &types.QuestionSummary{
			Entry:       *question,
			AnswerCount: answerCounts[question.ID],
			Tags:        tagsByQuestion[question.ID],
		})
	}

	return summaries, total, nil
}

// answerCounts computes live answer counts for a set of questions at
// read time, so displayed counts always match the underlying data.
func (m *QuestionModel) answerCounts(ctx context.Context, questionIDs []int64) (map[int64]int, error) {
	var rows []struct {
		QuestionID int64 `bun:"question_id"`
		Count      int   `bun:"count"`
	}

	err := m.db.NewSelect().
		Model((*types.Entry)(nil)).
		ColumnExpr("e.question_id").
		ColumnExpr("COUNT(*) AS count").
		Where("e.kind = ?", types.KindAnswer).
		Where("e.question_id IN (?)", bun.In(questionIDs)).
		GroupExpr("e.question_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count answers: %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.QuestionID] = row.Count
	}

	return counts, nil
}

// tagsFor loads the tags of a single question.
func (m *QuestionModel) tagsFor(ctx context.Context, questionID int64) ([]*types.Tag, error) {
	tagsByQuestion, err := m.tagsForMany(ctx, []int64{questionID})
	if err != nil {
		return nil, err
	}

	return tagsByQuestion[questionID], nil
}

// tagsForMany loads tags for a set of questions in two queries: the
// link rows, then the tags themselves.
func (m *QuestionModel) tagsForMany(
	ctx context.Context, questionIDs []int64,
) (map[int64][]*types.Tag, error) {
	var links []*types.QuestionTag

	err := m.db.NewSelect().
		Model(&links).
		Where("question_id IN (?)", bun.In(questionIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag links: %w", err)
	}

	if len(links) == 0 {
		return map[int64][]*types.Tag{}, nil
	}

	tagIDs := make([]int64, 0, len(links))
	for _, link := range links {
		tagIDs = append(tagIDs, link.TagID)
	}

	var tags []*types.Tag

	err = m.db.NewSelect().
		Model(&tags).
		Where("t.id IN (?)", bun.In(tagIDs)).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	tagByID := make(map[int64]*types.Tag, len(tags))
	for _, tag := range tags {
		tagByID[tag.ID] = tag
	}

	result := make(map[int64][]*types.Tag, len(questionIDs))
	for _, link := range links {
		if tag, ok := tagByID[link.TagID]; ok {
			result[link.QuestionID] = append(result[link.QuestionID], tag)
		}
	}

	return result, nil
}

// cleanSearchQuery turns free-form input into a tsquery expression:
// backslashes stripped, words joined with AND.
func cleanSearchQuery(query string) string {
	words := strings.Fields(strings.ReplaceAll(query, `\`, ""))
	return strings.Join(words, " & ")
}
