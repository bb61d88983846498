package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "task-1", nil
}

func TestJobsFromConfig(t *testing.T) {
	t.Run("both enabled", func(t *testing.T) {
		jobs := JobsFromConfig(
			config.Export{Enabled: true, Schedule: "0 * * * *"},
			config.Audit{Enabled: true, RetentionDays: 7, Schedule: "30 3 * * *"},
		)
		require.Len(t, jobs, 2)
		assert.Equal(t, JobExport, jobs[0].Name)
		assert.Equal(t, tasks.ExportCatalogTask{Trigger: "schedule"}, jobs[0].Task())
		assert.Equal(t, JobPruneHistory, jobs[1].Name)
		assert.Equal(t, tasks.PruneHistoryTask{RetentionDays: 7}, jobs[1].Task())
	})

	t.Run("disabled", func(t *testing.T) {
		jobs := JobsFromConfig(config.Export{}, config.Audit{Enabled: true})
		assert.Empty(t, jobs)
	})
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every hour"))
	assert.Error(t, ValidateSchedule("0 0 * * * *"), "seconds field is not accepted")
}

func TestScheduler_StartStop(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, JobsFromConfig(config.Export{Enabled: true, Schedule: "0 * * * *"}, config.Audit{})...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.NextRun(JobExport)
	require.NotNil(t, next)
	assert.Zero(t, next.Minute())
	assert.Nil(t, s.NextRun(JobPruneHistory))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun(JobExport))
}

func TestScheduler_NoJobs(t *testing.T) {
	s := New(&fakeQueue{})
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(&fakeQueue{}, Job{Name: JobExport, Schedule: "soon", Task: func() backlite.Task { return tasks.ExportCatalogTask{} }})
	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunNow(t *testing.T) {
	queue := &fakeQueue{}
	s := New(queue, JobsFromConfig(config.Export{}, config.Audit{Enabled: true, RetentionDays: 30, Schedule: "30 3 * * *"})...)

	require.NoError(t, s.RunNow(JobPruneHistory))
	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.PruneHistoryTask{RetentionDays: 30}, queue.tasks[0])

	assert.Error(t, s.RunNow(JobExport))

	queue.err = errors.New("queue closed")
	assert.ErrorContains(t, s.RunNow(JobPruneHistory), "queue closed")
}
