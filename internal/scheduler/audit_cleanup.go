package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/catalog/internal/tasks"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// CleanupFunc hands a cleanup task to whatever executes it: the task queue
// or a direct call to the processor.
type CleanupFunc func(ctx context.Context, task tasks.CleanupAuditEventsTask) error

// ValidateSchedule reports whether schedule is a valid 5-field cron expression.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("schedule is empty")
	}
	_, err := cronParser.Parse(schedule)
	return err
}

// AuditCleanupScheduler periodically triggers removal of old audit events.
type AuditCleanupScheduler struct {
	schedule      string
	retentionDays int
	cleanup       CleanupFunc

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler instance
func NewAuditCleanupScheduler(schedule string, retentionDays int, cleanup CleanupFunc) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		schedule:      schedule,
		retentionDays: retentionDays,
		cleanup:       cleanup,
		cron:          cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler. Cancelling ctx stops it.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.run(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days. Next run: %v",
		s.schedule, s.retentionDays, nextRun(s.schedule, time.Now()))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow triggers a cleanup synchronously.
func (s *AuditCleanupScheduler) RunNow() {
	s.run(context.Background())
}

func (s *AuditCleanupScheduler) run(ctx context.Context) {
	task := tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}
	if err := s.cleanup(ctx, task); err != nil {
		log.Printf("Audit cleanup scheduler: run failed: %v", err)
	}
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next scheduled run, or the zero time when stopped.
func (s *AuditCleanupScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return nextRun(s.schedule, time.Now())
}

func nextRun(schedule string, from time.Time) time.Time {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}
