package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/askstack/askstack/internal/pagination"
	"github.com/askstack/askstack/internal/setup"
)

func main() {
	app := &cli.Command{
		Name:  "askstack",
		Usage: "Q&A engine maintenance tool",
		Commands: []*cli.Command{
			{
				Name:   "audit-scores",
				Usage:  "Recompute denormalized scores from the vote ledger and repair drift",
				Action: auditScores,
			},
			{
				Name:   "queue-stats",
				Usage:  "Show pending search-index tasks",
				Action: queueStats,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// auditScores walks every question thread and recomputes each entry's
// score from its live votes. Scores only drift if something bypassed
// the ledger, so any repair is worth a warning.
func auditScores(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, false)
	if err != nil {
		return err
	}
	defer app.Cleanup(ctx)

	questions := app.DB.Model().Question()
	entries := app.DB.Model().Entry()

	var audited, repaired int

	for page := 1; ; page++ {
		summaries, total, err := questions.List(ctx, page, app.Config.App.PerPage)
		if err != nil {
			return err
		}

		for _, summary := range summaries {
			view, err := questions.GetWithRelated(ctx, summary.ID, 0)
			if err != nil {
				return err
			}

			ids := []int64{view.ID}
			for _, comment := range view.Comments {
				ids = append(ids, comment.ID)
			}

			for _, answer := range view.Answers {
				ids = append(ids, answer.ID)
				for _, comment := range answer.Comments {
					ids = append(ids, comment.ID)
				}
			}

			for _, id := range ids {
				before, err := entries.GetScore(ctx, id)
				if err != nil {
					return err
				}

				after, err := entries.RecalculateScore(ctx, id)
				if err != nil {
					return err
				}

				audited++

				if before != after {
					repaired++

					app.Logger.Warn("Repaired drifted score",
						zap.Int64("entryID", id),
						zap.Int64("stored", before),
						zap.Int64("recomputed", after))
				}
			}
		}

		if !pagination.New(total, page, app.Config.App.PerPage).HasNext() {
			break
		}
	}

	app.Logger.Info("Score audit complete",
		zap.Int("audited", audited),
		zap.Int("repaired", repaired))

	return nil
}

func queueStats(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, false)
	if err != nil {
		return err
	}
	defer app.Cleanup(ctx)

	app.Logger.Info("Search-index queue",
		zap.Int("pending", app.IndexQueue.Len(ctx)))

	return nil
}
