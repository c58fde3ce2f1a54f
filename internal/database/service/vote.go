package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

// VoteService exposes the vote ledger.
type VoteService struct {
	model  *models.VoteModel
	logger *zap.Logger
}

// NewVote creates a new vote service.
func NewVote(model *models.VoteModel, logger *zap.Logger) *VoteService {
	return &VoteService{
		model:  model,
		logger: logger.Named("vote_service"),
	}
}

// Record applies a vote intent from a user to an entry. Upvote and
// downvote cast or flip the user's vote, retract removes it; the
// entry's score moves in the same transaction. The returned vote is
// nil for a retract.
func (s *VoteService) Record(
	ctx context.Context, voterID, entryID int64, intent types.VoteIntent,
) (*types.Vote, error) {
	vote, err := s.model.Record(ctx, voterID, entryID, intent)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Recorded vote",
		zap.Int64("voterID", voterID),
		zap.Int64("entryID", entryID),
		zap.Stringer("intent", intent))

	return vote, nil
}

// Get returns the user's current vote on an entry.
func (s *VoteService) Get(ctx context.Context, voterID, entryID int64) (*types.Vote, error) {
	return s.model.Get(ctx, voterID, entryID)
}

// MapForVoter returns the user's votes on the given entries keyed by
// entry id.
func (s *VoteService) MapForVoter(
	ctx context.Context, voterID int64, entryIDs []int64,
) (map[int64]*types.Vote, error) {
	return s.model.MapForVoter(ctx, voterID, entryIDs)
}
