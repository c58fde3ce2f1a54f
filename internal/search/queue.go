// Package search hands question ids to the external search-index
// collaborator. The engine never talks to the index directly: writes
// enqueue a refresh task onto a Redis list and move on, and the
// indexer drains the list on its own schedule with at-least-once
// delivery.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// indexQueueKey is the Redis list holding pending refresh tasks.
const indexQueueKey = "search:index_queue"

// ErrQueueEmpty is returned by Dequeue when no task is pending.
var ErrQueueEmpty = fmt.Errorf("index queue is empty")

// Task is one pending index refresh. ID makes redeliveries
// distinguishable for the consumer.
type Task struct {
	ID         string    `json:"id"`
	QuestionID int64     `json:"questionId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Queue is the producer/consumer handle for index-refresh tasks.
type Queue struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewQueue creates an index queue on the given Redis client.
func NewQueue(client rueidis.Client, logger *zap.Logger) *Queue {
	return &Queue{
		client: client,
		logger: logger.Named("search_queue"),
	}
}

// Enqueue schedules an index refresh for a question.
func (q *Queue) Enqueue(ctx context.Context, questionID int64) error {
	task := Task{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		EnqueuedAt: time.Now().UTC(),
	}

	payload, err := sonic.Marshal(&task)
	if err != nil {
		return fmt.Errorf("failed to marshal index task: %w", err)
	}

	err = q.client.Do(ctx,
		q.client.B().Lpush().Key(indexQueueKey).Element(string(payload)).Build(),
	).Error()
	if err != nil {
		return fmt.Errorf("failed to enqueue index task: %w", err)
	}

	q.logger.Debug("Enqueued index refresh",
		zap.String("taskID", task.ID),
		zap.Int64("questionID", questionID))

	return nil
}

// Dequeue pops the oldest pending task. Returns ErrQueueEmpty when the
// list has no entries.
func (q *Queue) Dequeue(ctx context.Context) (*Task, error) {
	payload, err := q.client.Do(ctx, q.client.B().Rpop().Key(indexQueueKey).Build()).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("failed to dequeue index task: %w", err)
	}

	var task Task
	if err := sonic.Unmarshal([]byte(payload), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index task: %w", err)
	}

	return &task, nil
}

// Len returns the number of pending tasks.
func (q *Queue) Len(ctx context.Context) int {
	count, err := q.client.Do(ctx, q.client.B().Llen().Key(indexQueueKey).Build()).ToInt64()
	if err != nil {
		q.logger.Error("Failed to get index queue length", zap.Error(err))
		return 0
	}

	return int(count)
}
