package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/models"
	"github.com/askstack/askstack/internal/database/types"
)

// EntryService exposes the operations shared by all entry kinds.
type EntryService struct {
	model  *models.EntryModel
	logger *zap.Logger
}

// NewEntry creates a new entry service.
func NewEntry(model *models.EntryModel, logger *zap.Logger) *EntryService {
	return &EntryService{
		model:  model,
		logger: logger.Named("entry_service"),
	}
}

// Get returns a live entry of any kind by id.
func (s *EntryService) Get(ctx context.Context, id int64) (*types.Entry, error) {
	return s.model.Get(ctx, id)
}

// GetWithViewerVote returns a live entry and the viewer's vote on it,
// nil when the viewer has not voted or is anonymous.
func (s *EntryService) GetWithViewerVote(
	ctx context.Context, id, viewerID int64,
) (*types.Entry, *types.Vote, error) {
	return s.model.GetWithViewerVote(ctx, id, viewerID)
}

// MarkAsDeleted soft-deletes an entry. Only the author may delete;
// a non-owned or already deleted entry fails with ErrNotFound.
func (s *EntryService) MarkAsDeleted(ctx context.Context, id, requesterID int64) error {
	if err := s.model.MarkAsDeleted(ctx, id, requesterID); err != nil {
		return err
	}

	s.logger.Debug("Marked entry as deleted",
		zap.Int64("entryID", id),
		zap.Int64("requesterID", requesterID))

	return nil
}
