package database

import (
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/content"
	"github.com/askstack/askstack/internal/database/service"
	"github.com/askstack/askstack/internal/search"
	"github.com/askstack/askstack/internal/viewcount"
)

// Service provides access to all business logic services.
type Service struct {
	question *service.QuestionService
	answer   *service.AnswerService
	comment  *service.CommentService
	vote     *service.VoteService
	entry    *service.EntryService
	tag      *service.TagService
}

// NewService creates a new service instance with all services.
func NewService(
	repository *Repository,
	counter *viewcount.Counter,
	indexQueue *search.Queue,
	perPage int,
	logger *zap.Logger,
) *Service {
	renderer := content.NewRenderer()

	return &Service{
		question: service.NewQuestion(
			repository.Question(), counter, indexQueue, renderer, perPage, logger,
		),
		answer:  service.NewAnswer(repository.Answer(), renderer, logger),
		comment: service.NewComment(repository.Comment(), renderer, logger),
		vote:    service.NewVote(repository.Vote(), logger),
		entry:   service.NewEntry(repository.Entry(), logger),
		tag:     service.NewTag(repository.Tag(), logger),
	}
}

// Question returns the question service.
func (s *Service) Question() *service.QuestionService {
	return s.question
}

// Answer returns the answer service.
func (s *Service) Answer() *service.AnswerService {
	return s.answer
}

// Comment returns the comment service.
func (s *Service) Comment() *service.CommentService {
	return s.comment
}

// Vote returns the vote service.
func (s *Service) Vote() *service.VoteService {
	return s.vote
}

// Entry returns the entry service.
func (s *Service) Entry() *service.EntryService {
	return s.entry
}

// Tag returns the tag service.
func (s *Service) Tag() *service.TagService {
	return s.tag
}
