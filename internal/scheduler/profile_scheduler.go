package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"scoutiq/internal/logging"
)

const stopTimeout = 5 * time.Second

// ProfileRefresher recomputes the champion-profile table as of a point in time.
type ProfileRefresher interface {
	RefreshProfiles(ctx context.Context, asOf time.Time) error
}

// ProfileScheduler runs RefreshProfiles on a cron schedule. Overlapping runs
// are skipped and a panicking run is logged and recovered.
type ProfileScheduler struct {
	cron      *cron.Cron
	refresher ProfileRefresher
	logger    logging.Interface
	now       func() time.Time

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// cronLogger adapts logging.Interface to the printf logger cron expects.
type cronLogger struct {
	log logging.Interface
}

func (c cronLogger) Printf(format string, args ...interface{}) {
	c.log.Infof(format, args...)
}

// NewProfileScheduler validates spec (five-field cron or a descriptor such as
// @hourly) and registers the refresh job. Call Start to begin running it.
func NewProfileScheduler(spec string, refresher ProfileRefresher) (*ProfileScheduler, error) {
	logger := logging.Component("profile_scheduler")
	cl := cron.PrintfLogger(cronLogger{log: logger})
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &ProfileScheduler{
		cron:      c,
		refresher: refresher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		ctx:       ctx,
		cancel:    cancel,
	}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule profile refresh %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the scheduled job in the background.
func (s *ProfileScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("profile scheduler is already running")
	}
	s.cron.Start()
	s.running = true
	if next := s.Next(); !next.IsZero() {
		s.logger.Infof("profile refresh scheduled, next run at %s", next.Format(time.RFC3339))
	}
	return nil
}

// Stop halts the schedule, cancels an in-flight refresh and waits for it to
// return.
func (s *ProfileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Infof("profile scheduler stopped")
	case <-time.After(stopTimeout):
		s.logger.Warnf("profile scheduler stop timed out")
	}
	s.running = false
}

// Next returns the next scheduled run, or the zero time before Start.
func (s *ProfileScheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *ProfileScheduler) run() {
	startTime := time.Now()
	asOf := s.now()
	if err := s.refresher.RefreshProfiles(s.ctx, asOf); err != nil {
		s.logger.Errorf("scheduled profile refresh failed: %v", err)
		return
	}
	s.logger.Infof("scheduled profile refresh completed in %v", time.Since(startTime))
}
