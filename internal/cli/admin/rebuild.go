package admin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inkstand-ai/inkstand/internal/config"
	"github.com/inkstand-ai/inkstand/internal/database"
	"github.com/inkstand-ai/inkstand/internal/domain"
	"github.com/inkstand-ai/inkstand/internal/repository"
	"github.com/inkstand-ai/inkstand/internal/service"
)

// RebuildEmbeddingsCmd returns the rebuild-embeddings command
func RebuildEmbeddingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild-embeddings",
		Short: "Queue re-embedding of all sources, notes and insights",
		Long:  "Enqueue embedding jobs for every source, note and insight, for example after changing the embedding model or chunking configuration. The jobs are processed by the worker of a running serve instance, which applies the usual retry policy.",
		RunE:  runRebuildEmbeddings,
	}

	cmd.Flags().Bool("sources-only", false, "Only enqueue source chunk embedding jobs")

	return cmd
}

type rebuildEnqueuer interface {
	Enqueue(ctx context.Context, itemType service.EmbedItemType, itemID string) (*domain.EmbeddingJob, error)
}

type rebuildSourceLister interface {
	List(ctx context.Context) ([]*domain.Source, error)
}

type rebuildNoteLister interface {
	List(ctx context.Context) ([]*domain.Note, error)
}

type rebuildInsightLister interface {
	ListBySource(ctx context.Context, sourceID string) ([]*domain.SourceInsight, error)
}

// rebuildCounts tallies job submissions per item kind.
type rebuildCounts struct {
	Sources  int
	Notes    int
	Insights int
	Failed   int
}

func (c rebuildCounts) total() int {
	return c.Sources + c.Notes + c.Insights
}

func runRebuildEmbeddings(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	sourceRepo := repository.NewSourceRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	insightRepo := repository.NewInsightRepository(pool)
	jobRepo := repository.NewEmbeddingJobRepository(pool)

	jobSvc := service.NewEmbeddingJobService(jobRepo, sourceRepo, noteRepo, insightRepo)

	sourcesOnly, _ := cmd.Flags().GetBool("sources-only")

	counts, err := enqueueRebuildJobs(ctx, jobSvc, sourceRepo, noteRepo, insightRepo, sourcesOnly)
	if err != nil {
		return err
	}

	fmt.Printf("submitted %d embedding jobs: %d sources, %d notes, %d insights (%d failed submissions)\n",
		counts.total(), counts.Sources, counts.Notes, counts.Insights, counts.Failed)

	if counts.Failed > 0 {
		return fmt.Errorf("%d job submissions failed", counts.Failed)
	}
	return nil
}

// enqueueRebuildJobs queues one pending embedding job per source, note and
// insight. Individual submission failures are counted and skipped so one bad
// item does not abort the rebuild; the worker retries transient failures
// when it processes the queue.
func enqueueRebuildJobs(
	ctx context.Context,
	enq rebuildEnqueuer,
	sources rebuildSourceLister,
	notes rebuildNoteLister,
	insights rebuildInsightLister,
	sourcesOnly bool,
) (rebuildCounts, error) {
	var counts rebuildCounts

	srcs, err := sources.List(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to list sources: %w", err)
	}
	for _, src := range srcs {
		if _, err := enq.Enqueue(ctx, service.EmbedItemSource, src.ID); err != nil {
			log.Error().Err(err).Str("source_id", src.ID).Msg("failed to enqueue source job")
			counts.Failed++
			continue
		}
		counts.Sources++

		if sourcesOnly {
			continue
		}

		ins, err := insights.ListBySource(ctx, src.ID)
		if err != nil {
			log.Error().Err(err).Str("source_id", src.ID).Msg("failed to list insights")
			counts.Failed++
			continue
		}
		for _, insight := range ins {
			if _, err := enq.Enqueue(ctx, service.EmbedItemInsight, insight.ID); err != nil {
				log.Error().Err(err).Str("insight_id", insight.ID).Msg("failed to enqueue insight job")
				counts.Failed++
				continue
			}
			counts.Insights++
		}
	}

	if sourcesOnly {
		return counts, nil
	}

	ns, err := notes.List(ctx)
	if err != nil {
		return counts, fmt.Errorf("failed to list notes: %w", err)
	}
	for _, n := range ns {
		if _, err := enq.Enqueue(ctx, service.EmbedItemNote, n.ID); err != nil {
			log.Error().Err(err).Str("note_id", n.ID).Msg("failed to enqueue note job")
			counts.Failed++
			continue
		}
		counts.Notes++
	}

	return counts, nil
}
