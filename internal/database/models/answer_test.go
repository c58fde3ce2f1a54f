package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

func TestAnswerCreate(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)

	author := seedUser(t, db, "author")

	question, err := questions.Create(ctx, author.ID, "Needs an Answer", "body", nil)
	require.NoError(t, err)

	answer, err := answers.Create(ctx, author.ID, question.ID, "the answer")
	require.NoError(t, err)
	assert.Equal(t, types.KindAnswer, answer.Kind)
	assert.Equal(t, question.ID, answer.QuestionID)
}

func TestAnswerCreateMissingQuestion(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")

	_, err := answers.Create(ctx, author.ID, 9999, "answer")
	require.ErrorIs(t, err, types.ErrNotFound)

	// A deleted question cannot take new answers.
	question, err := questions.Create(ctx, author.ID, "Short Lived", "body", nil)
	require.NoError(t, err)
	require.NoError(t, entries.MarkAsDeleted(ctx, question.ID, author.ID))

	_, err = answers.Create(ctx, author.ID, question.ID, "answer")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestAnswerCreateUnderAnswer(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)

	author := seedUser(t, db, "author")

	question, err := questions.Create(ctx, author.ID, "Top Level", "body", nil)
	require.NoError(t, err)
	answer, err := answers.Create(ctx, author.ID, question.ID, "answer")
	require.NoError(t, err)

	// Answers attach to questions only.
	_, err = answers.Create(ctx, author.ID, answer.ID, "nested")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestAnswerUpdate(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)

	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	question, err := questions.Create(ctx, author.ID, "Editable", "body", nil)
	require.NoError(t, err)
	answer, err := answers.Create(ctx, author.ID, question.ID, "draft")
	require.NoError(t, err)

	_, err = answers.Update(ctx, answer.ID, other.ID, "hijacked")
	require.ErrorIs(t, err, types.ErrPermission)

	updated, err := answers.Update(ctx, answer.ID, author.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Content)
	require.NotNil(t, updated.EditedAt)
}

func TestCommentCreate(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)
	comments := models.NewComment(db, logger)

	author := seedUser(t, db, "author")

	question, err := questions.Create(ctx, author.ID, "Commentable", "body", nil)
	require.NoError(t, err)
	answer, err := answers.Create(ctx, author.ID, question.ID, "answer")
	require.NoError(t, err)

	onQuestion, err := comments.Create(ctx, author.ID, question.ID, "on the question")
	require.NoError(t, err)
	assert.Equal(t, question.ID, onQuestion.ParentEntryID)

	onAnswer, err := comments.Create(ctx, author.ID, answer.ID, "on the answer")
	require.NoError(t, err)
	assert.Equal(t, answer.ID, onAnswer.ParentEntryID)

	// Comments do not nest.
	_, err = comments.Create(ctx, author.ID, onQuestion.ID, "on a comment")
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestCommentUpdate(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	comments := models.NewComment(db, logger)

	author := seedUser(t, db, "author")
	other := seedUser(t, db, "other")

	question, err := questions.Create(ctx, author.ID, "With Comment", "body", nil)
	require.NoError(t, err)
	comment, err := comments.Create(ctx, author.ID, question.ID, "typo'd")
	require.NoError(t, err)

	_, err = comments.Update(ctx, comment.ID, other.ID, "not yours")
	require.ErrorIs(t, err, types.ErrPermission)

	updated, err := comments.Update(ctx, comment.ID, author.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)
}

func TestCommentAllForParent(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	comments := models.NewComment(db, logger)

	author := seedUser(t, db, "author")

	question, err := questions.Create(ctx, author.ID, "Ordered Comments", "body", nil)
	require.NoError(t, err)

	first, err := comments.Create(ctx, author.ID, question.ID, "first")
	require.NoError(t, err)
	second, err := comments.Create(ctx, author.ID, question.ID, "second")
	require.NoError(t, err)

	got, err := comments.AllForParent(ctx, question.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}
