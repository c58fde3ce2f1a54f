// Package viewcount tracks approximate unique views per question
// using Redis HyperLogLog keys. Counts are advisory display data
// stored outside the transactional database: a counter outage degrades
// counts to zero instead of failing reads.
package viewcount

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// viewKey namespaces the per-question HyperLogLog keys.
const viewKey = "question:%d:views"

// Counter estimates unique viewers per question. The underlying
// client is a shared long-lived handle, safe for concurrent use.
type Counter struct {
	client rueidis.Client
	logger *zap.Logger
}

// New creates a view counter on the given Redis client.
func New(client rueidis.Client, logger *zap.Logger) *Counter {
	return &Counter{
		client: client,
		logger: logger.Named("viewcount"),
	}
}

// Register adds a visitor identifier (typically a network address) to
// the question's HyperLogLog. Registering the same identifier again
// does not grow the estimate.
func (c *Counter) Register(ctx context.Context, questionID int64, visitor string) error {
	key := fmt.Sprintf(viewKey, questionID)

	err := c.client.Do(ctx, c.client.B().Pfadd().Key(key).Element(visitor).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to register view: %w", err)
	}

	return nil
}

// Count returns the current unique-view estimate for a question.
// A question with no registered views, or a counter-store failure,
// yields zero.
func (c *Counter) Count(ctx context.Context, questionID int64) int64 {
	key := fmt.Sprintf(viewKey, questionID)

	count, err := c.client.Do(ctx, c.client.B().Pfcount().Key(key).Build()).ToInt64()
	if err != nil {
		c.logger.Warn("Failed to read view count",
			zap.Int64("questionID", questionID),
			zap.Error(err))
		return 0
	}

	return count
}

// CountMany returns estimates for all given questions in a single
// pipelined round trip, preserving input order. Failed slots degrade
// to zero.
func (c *Counter) CountMany(ctx context.Context, questionIDs []int64) []int64 {
	if len(questionIDs) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(questionIDs))
	for _, id := range questionIDs {
		key := fmt.Sprintf(viewKey, id)
		cmds = append(cmds, c.client.B().Pfcount().Key(key).Build())
	}

	counts := make([]int64, len(questionIDs))

	for i, resp := range c.client.DoMulti(ctx, cmds...) {
		count, err := resp.ToInt64()
		if err != nil {
			c.logger.Warn("Failed to read view count in batch",
				zap.Int64("questionID", questionIDs[i]),
				zap.Error(err))
			continue
		}

		counts[i] = count
	}

	return counts
}
