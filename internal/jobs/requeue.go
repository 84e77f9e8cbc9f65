package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StaleJobRequeuer returns jobs stuck in processing to the pending queue.
type StaleJobRequeuer interface {
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StaleJobProcessor periodically requeues jobs whose claim has gone stale,
// recovering work orphaned when a worker dies mid-job. Run it on its own
// Worker; its first pass fires at startup so a restart picks up orphans
// right away.
type StaleJobProcessor struct {
	repo      StaleJobRequeuer
	olderThan time.Duration
}

func NewStaleJobProcessor(repo StaleJobRequeuer, olderThan time.Duration) *StaleJobProcessor {
	return &StaleJobProcessor{repo: repo, olderThan: olderThan}
}

func (p *StaleJobProcessor) ProcessJobs(ctx context.Context) error {
	requeued, err := p.repo.RequeueStale(ctx, p.olderThan)
	if err != nil {
		return fmt.Errorf("failed to requeue stale jobs: %w", err)
	}
	if requeued > 0 {
		log.Warn().Int64("count", requeued).Dur("older_than", p.olderThan).Msg("requeued stale embedding jobs")
	}
	return nil
}
