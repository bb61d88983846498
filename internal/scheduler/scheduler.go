package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

const (
	JobExport       = "export"
	JobPruneHistory = "prune_history"
)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Job is a cron entry that enqueues a task each time it fires.
type Job struct {
	Name     string
	Schedule string
	Task     func() backlite.Task
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// JobsFromConfig returns the periodic jobs enabled in the environment.
func JobsFromConfig(export config.Export, audit config.Audit) []Job {
	var jobs []Job
	if export.Enabled {
		jobs = append(jobs, Job{
			Name:     JobExport,
			Schedule: export.Schedule,
			Task:     func() backlite.Task { return tasks.ExportCatalogTask{Trigger: "schedule"} },
		})
	}
	if audit.Enabled && audit.RetentionDays > 0 {
		days := audit.RetentionDays
		jobs = append(jobs, Job{
			Name:     JobPruneHistory,
			Schedule: audit.Schedule,
			Task:     func() backlite.Task { return tasks.PruneHistoryTask{RetentionDays: days} },
		})
	}
	return jobs
}

// Scheduler runs the catalog's periodic jobs.
type Scheduler struct {
	queue Enqueuer
	jobs  []Job

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func New(queue Enqueuer, jobs ...Job) *Scheduler {
	return &Scheduler{
		queue:   queue,
		jobs:    jobs,
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

// Start registers every job and starts the cron loop. It stops by itself
// once ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("Scheduler: no periodic jobs enabled")
		return nil
	}

	for _, job := range s.jobs {
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}
		entryID, err := s.cron.AddFunc(job.Schedule, func() {
			if err := s.run(job); err != nil {
				log.Printf("Scheduler: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		s.entries[job.Name] = entryID
	}

	s.cron.Start()
	s.isRunning = true

	for _, entry := range s.cron.Entries() {
		for name, id := range s.entries {
			if id == entry.ID {
				log.Printf("Scheduler: %s scheduled, next run %v", name, entry.Next)
			}
		}
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for running jobs and stops the cron loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopped := s.cron.Stop()
	<-stopped.Done()

	s.isRunning = false
	log.Printf("Scheduler: stopped")
}

// RunNow enqueues the named job immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.run(job)
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the named job fires next, or nil when the
// scheduler is not running it.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	id, ok := s.entries[name]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func (s *Scheduler) run(job Job) error {
	if s.queue == nil {
		return fmt.Errorf("%s: task queue not configured", job.Name)
	}
	id, err := s.queue.Enqueue(job.Task())
	if err != nil {
		return fmt.Errorf("%s: failed to enqueue: %w", job.Name, err)
	}
	log.Printf("Scheduler: queued %s (task %s)", job.Name, id)
	return nil
}
