package database

import (
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/database/models"
)

// Repository provides access to all database models.
type Repository struct {
	entry    *models.EntryModel
	question *models.QuestionModel
	answer   *models.AnswerModel
	comment  *models.CommentModel
	vote     *models.VoteModel
	tag      *models.TagModel
	user     *models.UserModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		entry:    models.NewEntry(db, logger),
		question: models.NewQuestion(db, logger),
		answer:   models.NewAnswer(db, logger),
		comment:  models.NewComment(db, logger),
		vote:     models.NewVote(db, logger),
		tag:      models.NewTag(db, logger),
		user:     models.NewUser(db, logger),
	}
}

// Entry returns the entry model repository.
func (r *Repository) Entry() *models.EntryModel {
	return r.entry
}

// Question returns the question model repository.
func (r *Repository) Question() *models.QuestionModel {
	return r.question
}

// Answer returns the answer model repository.
func (r *Repository) Answer() *models.AnswerModel {
	return r.answer
}

// Comment returns the comment model repository.
func (r *Repository) Comment() *models.CommentModel {
	return r.comment
}

// Vote returns the vote ledger repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Tag returns the tag model repository.
func (r *Repository) Tag() *models.TagModel {
	return r.tag
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}
