package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	syncdomain "remindkit/internal/sync/domain"
	"remindkit/internal/sync/usecase"
)

// PullScheduler periodically runs a full sync pass: push every local
// record back out, then pull and merge, so remote changes land locally and
// earlier failed pushes get retried without an explicit sync request.
type PullScheduler struct {
	syncUsecase usecase.SyncUsecase
	session     syncdomain.Session
	interval    time.Duration
	stopChan    chan struct{}
	log         *logrus.Entry
}

// NewPullScheduler creates a scheduler for the given session
func NewPullScheduler(syncUsecase usecase.SyncUsecase, session syncdomain.Session, interval time.Duration, log *logrus.Logger) *PullScheduler {
	return &PullScheduler{
		syncUsecase: syncUsecase,
		session:     session,
		interval:    interval,
		stopChan:    make(chan struct{}),
		log:         log.WithField("component", "sync-scheduler"),
	}
}

// Start begins the scheduler loop. A no-op for signed-out sessions: there
// is no remote partition to reconcile against.
func (s *PullScheduler) Start() {
	if !s.session.SignedIn {
		s.log.Info("no signed-in session, pull scheduler disabled")
		return
	}

	s.log.WithField("interval", s.interval.String()).Info("starting pull scheduler")

	go func() {
		// Run immediately on start
		s.syncOnce()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.syncOnce()
			case <-s.stopChan:
				s.log.Info("pull scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *PullScheduler) Stop() {
	close(s.stopChan)
}

func (s *PullScheduler) syncOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.syncUsecase.PushAll(ctx, s.session); err != nil {
		s.log.WithError(err).Warn("background push failed, will retry next tick")
	}
	if _, err := s.syncUsecase.Pull(ctx, s.session); err != nil {
		s.log.WithError(err).Warn("background pull failed, will retry next tick")
	}
}
