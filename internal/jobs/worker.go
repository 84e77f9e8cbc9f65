package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// JobProcessor handles one batch of pending work per invocation.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed interval until stopped, either
// via Stop or by cancelling the context passed to Start.
type Worker struct {
	processor JobProcessor
	interval  time.Duration
	quit      chan struct{}
	finished  chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor: processor,
		interval:  pollInterval,
		quit:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

// Start runs the polling loop on the calling goroutine. The first batch is
// processed immediately so queued work does not wait a full interval after
// startup.
func (w *Worker) Start(ctx context.Context) {
	defer close(w.finished)

	log.Info().Dur("poll_interval", w.interval).Msg("worker: started")
	w.runBatch(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker: context cancelled")
			return
		case <-w.quit:
			log.Info().Msg("worker: stop requested")
			return
		case <-ticker.C:
			w.runBatch(ctx)
		}
	}
}

func (w *Worker) runBatch(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Error().Err(err).Msg("worker: batch failed")
	}
}

// Stop signals the loop to exit and blocks until it has.
func (w *Worker) Stop() {
	close(w.quit)
	<-w.finished
	log.Info().Msg("worker: shutdown complete")
}
