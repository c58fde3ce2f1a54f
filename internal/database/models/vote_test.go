package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

func TestRecordUpvote(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "How do I frob the widget?", "body", nil)
	require.NoError(t, err)

	vote, err := votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)
	assert.Equal(t, int16(1), vote.Value)

	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
}

func TestRecordDuplicateVote(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Duplicate votes", "body", nil)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.ErrorIs(t, err, types.ErrDuplicateVote)

	// The failed repeat must not move the score.
	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
}

func TestRecordFlip(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Flipping a vote", "body", nil)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)

	// Flipping from +1 to -1 moves the score by two.
	vote, err := votes.Record(ctx, voter.ID, question.ID, types.VoteDownvote)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), vote.Value)

	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), score)
}

func TestRecordRetract(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Retracting a vote", "body", nil)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)

	vote, err := votes.Record(ctx, voter.ID, question.ID, types.VoteRetract)
	require.NoError(t, err)
	assert.Nil(t, vote)

	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), score)

	_, err = votes.Get(ctx, voter.ID, question.ID)
	require.ErrorIs(t, err, types.ErrNotFound)

	// A second retract has nothing to remove.
	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteRetract)
	require.ErrorIs(t, err, types.ErrNoVote)
}

func TestRecordRetractWithoutVote(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Nothing to retract", "body", nil)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteRetract)
	require.ErrorIs(t, err, types.ErrNoVote)
}

func TestRecordInvalidIntent(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)

	votes := models.NewVote(db, logger)

	_, err := votes.Record(t.Context(), 1, 1, types.VoteIntent(7))
	require.ErrorIs(t, err, types.ErrInvalidVoteValue)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Round trip", "body", nil)
	require.NoError(t, err)

	// Cast, retract, cast again: the unique index must not block the
	// second cast and the score must land where the first cast left it.
	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteRetract)
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)

	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)
}

func TestRecordOnDeletedEntry(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Deleted target", "body", nil)
	require.NoError(t, err)

	require.NoError(t, entries.MarkAsDeleted(ctx, question.ID, author.ID))

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.ErrorIs(t, err, types.ErrNotFound)
}

func TestScoreMatchesLedger(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	votes := models.NewVote(db, logger)
	entries := models.NewEntry(db, logger)

	author := seedUser(t, db, "author")

	question, err := questions.Create(ctx, author.ID, "Ledger consistency", "body", nil)
	require.NoError(t, err)

	voters := make([]*types.User, 5)
	for i := range voters {
		voters[i] = seedUser(t, db, "voter"+string(rune('a'+i)))
	}

	// A mix of casts, flips and retracts.
	_, err = votes.Record(ctx, voters[0].ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voters[1].ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voters[2].ID, question.ID, types.VoteDownvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voters[1].ID, question.ID, types.VoteDownvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voters[3].ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voters[3].ID, question.ID, types.VoteRetract)
	require.NoError(t, err)

	score, err := entries.GetScore(ctx, question.ID)
	require.NoError(t, err)

	recalculated, err := entries.RecalculateScore(ctx, question.ID)
	require.NoError(t, err)
	assert.Equal(t, score, recalculated)
	assert.Equal(t, int64(-1), score)
}

func TestMapForVoter(t *testing.T) {
	t.Parallel()
	db, logger := setupTest(t)
	ctx := t.Context()

	questions := models.NewQuestion(db, logger)
	answers := models.NewAnswer(db, logger)
	votes := models.NewVote(db, logger)

	author := seedUser(t, db, "author")
	voter := seedUser(t, db, "voter")

	question, err := questions.Create(ctx, author.ID, "Vote map", "body", nil)
	require.NoError(t, err)

	answer, err := answers.Create(ctx, author.ID, question.ID, "an answer")
	require.NoError(t, err)

	_, err = votes.Record(ctx, voter.ID, question.ID, types.VoteUpvote)
	require.NoError(t, err)
	_, err = votes.Record(ctx, voter.ID, answer.ID, types.VoteDownvote)
	require.NoError(t, err)

	ids := []int64{question.ID, answer.ID}

	voteMap, err := votes.MapForVoter(ctx, voter.ID, ids)
	require.NoError(t, err)
	require.Len(t, voteMap, 2)
	assert.Equal(t, int16(1), voteMap[question.ID].Value)
	assert.Equal(t, int16(-1), voteMap[answer.ID].Value)

	// Anonymous viewers have no votes.
	voteMap, err = votes.MapForVoter(ctx, 0, ids)
	require.NoError(t, err)
	assert.Empty(t, voteMap)
}
