package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/mvt-analytics/internal/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
	ran  chan struct{}
}

func newCountingJob(name string, err error) *countingJob {
	return &countingJob{name: name, err: err, ran: make(chan struct{}, 16)}
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	j.ran <- struct{}{}
	return j.err
}

func (j *countingJob) Name() string { return j.name }

func TestAddJob_RejectsInvalidSchedule(t *testing.T) {
	s := New(nil, zerolog.Nop())
	err := s.AddJob("every now and then", newCountingJob("bad", nil))
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestRunNow(t *testing.T) {
	s := New(nil, zerolog.Nop())
	job := newCountingJob("cache_cleanup", nil)
	require.NoError(t, s.AddJob("0 0 * * * *", job))

	require.NoError(t, s.RunNow("cache_cleanup"))
	assert.Equal(t, int32(1), job.runs.Load())

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "cache_cleanup", jobs[0].Name)
	assert.Equal(t, "0 0 * * * *", jobs[0].Schedule)
	require.NotNil(t, jobs[0].LastRun)
	assert.Empty(t, jobs[0].LastErr)

	assert.Error(t, s.RunNow("unknown"))
}

func TestRunNow_FailureEmitsJobFailed(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	var failed []*events.Event
	bus.Subscribe(events.JobFailed, func(e *events.Event) { failed = append(failed, e) })

	s := New(events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, s.AddJob("@hourly", newCountingJob("database_backup", errors.New("disk full"))))

	err := s.RunNow("database_backup")
	assert.EqualError(t, err, "disk full")

	require.Len(t, failed, 1)
	data, ok := failed[0].Data.(*events.JobFailedData)
	require.True(t, ok)
	assert.Equal(t, "database_backup", data.Job)
	assert.Equal(t, "disk full", data.Error)
	assert.Equal(t, "disk full", s.Jobs()[0].LastErr)
}

func TestScheduledRun(t *testing.T) {
	s := New(nil, zerolog.Nop())
	job := newCountingJob("tick", nil)
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	select {
	case <-job.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run on schedule")
	}
	assert.False(t, s.Jobs()[0].Next.IsZero())
}
