package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/config"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

// CalendarSyncer is the part of the sync service the job needs.
type CalendarSyncer interface {
	SyncUser(ctx context.Context, userID string) (*service.SyncSummary, error)
}

// SyncJob periodically runs the calendar synchronizer for every user holding
// an active calendar connection. Users are processed one at a time; a failing
// user never stops the sweep.
type SyncJob struct {
	connRepo repository.ConnectionRepository
	syncer   CalendarSyncer
	interval time.Duration
	done     chan struct{}
}

func NewSyncJob(connRepo repository.ConnectionRepository, syncer CalendarSyncer, interval time.Duration) *SyncJob {
	return &SyncJob{
		connRepo: connRepo,
		syncer:   syncer,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *SyncJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("calendar sync job started")
}

func (j *SyncJob) Stop() {
	close(j.done)
	log.Info().Msg("calendar sync job stopped")
}

func (j *SyncJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *SyncJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	userIDs, err := j.connRepo.ListUserIDsWithActive(ctx, model.IntegrationCalendar)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("failed to list users for calendar sync")
		return
	}

	for _, userID := range userIDs {
		select {
		case <-j.done:
			return
		default:
		}

		runCtx, cancel := context.WithTimeout(context.Background(), config.SyncRunTimeout)
		summary, err := j.syncer.SyncUser(runCtx, userID)
		cancel()

		if err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("scheduled calendar sync failed")
			continue
		}
		if summary.Errors > 0 {
			log.Warn().
				Str("userId", userID).
				Int("eventsProcessed", summary.EventsProcessed).
				Int("errors", summary.Errors).
				Msg("scheduled calendar sync finished with errors")
		}
	}
}
