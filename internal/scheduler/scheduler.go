// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus describes a registered job.
type JobStatus struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	Next     time.Time  `json:"next_run"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	LastErr  string     `json:"last_error,omitempty"`
}

type entry struct {
	id       cron.EntryID
	job      Job
	schedule string
	lastRun  *time.Time
	lastErr  string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron         *cron.Cron
	eventManager *events.Manager
	log          zerolog.Logger

	mu      sync.Mutex
	entries []*entry
}

// New creates a new scheduler. eventManager may be nil; when set, failed
// runs are published as JobFailed events.
func New(eventManager *events.Manager, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		eventManager: eventManager,
		log:          log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job with a cron schedule (seconds precision).
// Schedule examples:
//   - "0 0 * * * *"  - Every hour
//   - "0 0 3 * * *"  - 03:00 every day
//   - "@every 30s"   - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	e := &entry{job: job, schedule: schedule}
	id, err := s.cron.AddFunc(schedule, func() { s.run(e) })
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}
	e.id = id

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	var found *entry
	for _, e := range s.entries {
		if e.job.Name() == name {
			found = e
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return fmt.Errorf("job %s is not registered", name)
	}
	s.log.Info().Str("job", name).Msg("Running job immediately")
	return s.run(found)
}

// Jobs returns the registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, JobStatus{
			Name:     e.job.Name(),
			Schedule: e.schedule,
			Next:     s.cron.Entry(e.id).Next,
			LastRun:  e.lastRun,
			LastErr:  e.lastErr,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(e *entry) error {
	name := e.job.Name()
	s.log.Debug().Str("job", name).Msg("Running job")

	start := time.Now()
	err := e.job.Run()

	s.mu.Lock()
	e.lastRun = &start
	e.lastErr = ""
	if err != nil {
		e.lastErr = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", name).
			Msg("Job failed")
		s.eventManager.EmitTyped(events.JobFailed, "scheduler", &events.JobFailedData{
			Job:   name,
			Error: err.Error(),
		})
		return err
	}

	s.log.Debug().
		Str("job", name).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
	return nil
}
