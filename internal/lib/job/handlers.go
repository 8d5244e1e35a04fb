package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// PageWarmer recomputes and caches a view.
type PageWarmer interface {
	WarmPage(ctx context.Context, path string) error
}

// InitHandlers sets the dependencies task handlers need. It must be called
// before Start.
func (j *JobService) InitHandlers(warmer PageWarmer) {
	j.warmer = warmer
}

func (j *JobService) handlePageWarmTask(ctx context.Context, t *asynq.Task) error {
	var p PageWarmPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal page warm payload: %w: %w", err, asynq.SkipRetry)
	}

	if j.warmer == nil {
		return fmt.Errorf("no page warmer registered: %w", asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", "page_warm").
		Str("path", p.Path).
		Msg("Processing page warm task")

	if err := j.warmer.WarmPage(ctx, p.Path); err != nil {
		j.logger.Error().
			Str("type", "page_warm").
			Str("path", p.Path).
			Err(err).
			Msg("Failed to warm page")
		return err
	}

	j.logger.Info().
		Str("type", "page_warm").
		Str("path", p.Path).
		Msg("Successfully warmed page")

	return nil
}
